package grid

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"emotionagg/internal/emotion"
)

// Entry is one slot of a day grid. It encodes as a flat object,
// {"time": "HH:MM", "<label>": score, ...}, with labels in vocabulary order.
type Entry struct {
	Time   string
	Labels []string
	Scores emotion.Vector
}

func (e Entry) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"time":`)
	timeJSON, err := json.Marshal(e.Time)
	if err != nil {
		return nil, err
	}
	buf.Write(timeJSON)
	for _, label := range e.Labels {
		key, err := json.Marshal(label)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.FormatFloat(e.Scores[label], 'f', -1, 64))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// DayGrid is the ordered 48-entry timeline for one subject-date.
type DayGrid struct {
	Vocabulary emotion.Vocabulary
	Entries    []Entry
}

func (g DayGrid) Len() int {
	return len(g.Entries)
}

func (g DayGrid) MarshalJSON() ([]byte, error) {
	entries := g.Entries
	if entries == nil {
		entries = []Entry{}
	}
	return json.Marshal(entries)
}

// Build densifies a sparse slot→vector map into a grid of exactly 48 entries.
// Absent slots are zero-filled; present vectors are projected onto vocab.
// Keys of sparse that are not canonical slot ids are ignored.
func Build(sparse map[string]emotion.Vector, vocab emotion.Vocabulary) DayGrid {
	g := DayGrid{
		Vocabulary: vocab,
		Entries:    make([]Entry, 0, SlotsPerDay),
	}
	for _, slot := range slots {
		scores := vocab.Zero()
		if vec, ok := sparse[slot]; ok {
			scores = vocab.Project(vec)
		}
		g.Entries = append(g.Entries, Entry{
			Time:   DisplayTime(slot),
			Labels: vocab.Labels,
			Scores: scores,
		})
	}
	return g
}

// Decode parses a stored grid back into a DayGrid over vocab. It checks the
// slot count but not the per-entry keys; missing labels read as zero.
func Decode(data []byte, vocab emotion.Vocabulary) (DayGrid, error) {
	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return DayGrid{}, fmt.Errorf("decoding day grid: %w", err)
	}
	if len(raw) != SlotsPerDay {
		return DayGrid{}, fmt.Errorf("decoding day grid: expected %d slots, got %d", SlotsPerDay, len(raw))
	}

	g := DayGrid{Vocabulary: vocab, Entries: make([]Entry, 0, len(raw))}
	for _, item := range raw {
		entry := Entry{Labels: vocab.Labels, Scores: vocab.Zero()}
		entry.Time, _ = item["time"].(string)
		for _, label := range vocab.Labels {
			if score, ok := item[label].(float64); ok {
				entry.Scores[label] = score
			}
		}
		g.Entries = append(g.Entries, entry)
	}
	return g, nil
}
