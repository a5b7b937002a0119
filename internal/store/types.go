package store

import (
	"encoding/json"
	"fmt"
	"time"
)

// SlotPayload is one recorded slot. Body holds the decoded JSON document the
// upstream extractor produced (features_timeline, emotion_scores, ...).
type SlotPayload struct {
	Subject   string
	Date      string
	TimeBlock string
	Body      map[string]any
	// DecodeErr is set when the stored payload could not be parsed. Body is
	// then empty and the slot scores as a failure.
	DecodeErr error
}

// DecodeInto fills p.Body from a stored payload column, recording a parse
// failure on the payload instead of returning it.
func DecodeInto(p *SlotPayload, data []byte) {
	body, err := DecodeBody(data)
	if err != nil {
		p.Body = map[string]any{}
		p.DecodeErr = fmt.Errorf("slot %s: %w", p.TimeBlock, err)
		return
	}
	p.Body = body
}

// DecodeBody parses a stored JSON payload column.
func DecodeBody(data []byte) (map[string]any, error) {
	if len(data) == 0 {
		return map[string]any{}, nil
	}
	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, fmt.Errorf("decoding slot payload: %w", err)
	}
	if body == nil {
		body = map[string]any{}
	}
	return body, nil
}

// Summary is a persisted day grid in its stored JSON form.
type Summary struct {
	Subject     string
	Date        string
	Vocabulary  string
	Grid        json.RawMessage
	ProcessedAt time.Time
}

type SummaryRef struct {
	Subject     string
	Date        string
	Vocabulary  string
	ProcessedAt time.Time
}
