package store

import (
	"context"

	"emotionagg/internal/grid"
)

// SlotSource returns the raw per-slot payloads recorded for a subject-day.
type SlotSource interface {
	FetchDay(ctx context.Context, subject, date string) ([]SlotPayload, error)
	// FetchSlot returns nil, nil when the slot has no payload.
	FetchSlot(ctx context.Context, subject, date, slot string) (*SlotPayload, error)
}

// SummarySink persists finished day grids. Upserts are keyed on
// (subject, date): writing the same key twice overwrites the first row.
type SummarySink interface {
	UpsertSummary(ctx context.Context, subject, date string, g grid.DayGrid) error
}

type Store interface {
	SlotSource
	SummarySink

	Close(ctx context.Context) error
	EnsureSchema(ctx context.Context) error

	PutSlot(ctx context.Context, p SlotPayload) error
	GetSummary(ctx context.Context, subject, date string) (*Summary, error)
	ListSummaries(ctx context.Context, subject string) ([]SummaryRef, error)
}
