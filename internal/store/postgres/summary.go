package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"emotionagg/internal/grid"
	"emotionagg/internal/store"
)

func (c *Client) UpsertSummary(ctx context.Context, subject, date string, g grid.DayGrid) error {
	if g.Len() != grid.SlotsPerDay {
		return fmt.Errorf("upserting summary: expected %d slots, got %d", grid.SlotsPerDay, g.Len())
	}
	payload, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("marshaling day grid: %w", err)
	}

	query := `
INSERT INTO emotion_summaries (subject, date, vocabulary, grid, processed_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (subject, date) DO UPDATE SET
    vocabulary = EXCLUDED.vocabulary,
    grid = EXCLUDED.grid,
    processed_at = now()
`
	if _, err := c.pool.Exec(ctx, query, subject, date, g.Vocabulary.Name, payload); err != nil {
		return fmt.Errorf("upserting summary: %w", err)
	}
	return nil
}

func (c *Client) GetSummary(ctx context.Context, subject, date string) (*store.Summary, error) {
	query := `
SELECT subject, date, vocabulary, grid, processed_at
FROM emotion_summaries
WHERE subject = $1 AND date = $2
`
	var s store.Summary
	var raw []byte
	err := c.pool.QueryRow(ctx, query, subject, date).Scan(&s.Subject, &s.Date, &s.Vocabulary, &raw, &s.ProcessedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting summary: %w", err)
	}
	s.Grid = json.RawMessage(raw)
	return &s, nil
}

func (c *Client) ListSummaries(ctx context.Context, subject string) ([]store.SummaryRef, error) {
	query := `
SELECT subject, date, vocabulary, processed_at
FROM emotion_summaries
WHERE ($1 = '' OR subject = $1)
ORDER BY subject, date
`
	rows, err := c.pool.Query(ctx, query, subject)
	if err != nil {
		return nil, fmt.Errorf("listing summaries: %w", err)
	}
	defer rows.Close()

	var refs []store.SummaryRef
	for rows.Next() {
		var ref store.SummaryRef
		if err := rows.Scan(&ref.Subject, &ref.Date, &ref.Vocabulary, &ref.ProcessedAt); err != nil {
			return nil, fmt.Errorf("scanning summary: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating summary rows: %w", err)
	}
	return refs, nil
}
