package aggregate

import (
	"context"
	"encoding/json"
	"sync"

	"emotionagg/internal/adapter"
	"emotionagg/internal/emotion"
	"emotionagg/internal/grid"
	"emotionagg/internal/store"
)

type fakeSource struct {
	mu sync.Mutex

	day    []store.SlotPayload
	dayErr error

	slots     map[string]map[string]any
	slotErrs  map[string]error
	panicSlot string
	// blockSlot waits for its context to end, then returns the context error.
	blockSlot string

	dayCalls  int
	slotCalls []string
}

func (f *fakeSource) FetchDay(ctx context.Context, subject, date string) ([]store.SlotPayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dayCalls++
	if f.dayErr != nil {
		return nil, f.dayErr
	}
	return f.day, nil
}

func (f *fakeSource) FetchSlot(ctx context.Context, subject, date, slot string) (*store.SlotPayload, error) {
	f.mu.Lock()
	f.slotCalls = append(f.slotCalls, slot)
	body, ok := f.slots[slot]
	err := f.slotErrs[slot]
	f.mu.Unlock()

	if slot == f.panicSlot {
		panic("storage driver exploded")
	}
	if slot == f.blockSlot {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &store.SlotPayload{Subject: subject, Date: date, TimeBlock: slot, Body: body}, nil
}

func (f *fakeSource) slotCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.slotCalls)
}

type fakeSink struct {
	mu sync.Mutex

	err     error
	calls   int
	subject string
	date    string
	grid    grid.DayGrid
	encoded [][]byte
}

func (f *fakeSink) UpsertSummary(ctx context.Context, subject, date string, g grid.DayGrid) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.subject = subject
	f.date = date
	f.grid = g
	data, err := json.Marshal(g)
	if err != nil {
		return err
	}
	f.encoded = append(f.encoded, data)
	return f.err
}

// panickyScorer panics on any payload carrying a "boom" key and delegates
// everything else.
type panickyScorer struct {
	next *adapter.Selector
}

func (p panickyScorer) Vocabulary() emotion.Vocabulary {
	return p.next.Vocabulary()
}

func (p panickyScorer) Adapt(payload map[string]any) (emotion.Vector, adapter.Kind, error) {
	if _, ok := payload["boom"]; ok {
		panic("scorer exploded")
	}
	return p.next.Adapt(payload)
}

func scores(pairs ...any) map[string]any {
	m := map[string]any{}
	for i := 0; i+1 < len(pairs); i += 2 {
		m[pairs[i].(string)] = pairs[i+1]
	}
	return map[string]any{"emotion_scores": m}
}

func payload(slot string, body map[string]any) store.SlotPayload {
	return store.SlotPayload{Subject: "device-1", Date: "2025-06-26", TimeBlock: slot, Body: body}
}

func rows(p ...store.SlotPayload) []store.SlotPayload {
	return p
}
