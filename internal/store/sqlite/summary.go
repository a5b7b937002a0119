package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

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
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (subject, date) DO UPDATE SET
		vocabulary = excluded.vocabulary,
		grid = excluded.grid,
		processed_at = excluded.processed_at
	`
	processedAt := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := c.db.ExecContext(ctx, query, subject, date, g.Vocabulary.Name, string(payload), processedAt); err != nil {
		return fmt.Errorf("upserting summary: %w", err)
	}
	return nil
}

func (c *Client) GetSummary(ctx context.Context, subject, date string) (*store.Summary, error) {
	query := `
	SELECT subject, date, vocabulary, grid, processed_at
	FROM emotion_summaries
	WHERE subject = ? AND date = ?
	`
	var s store.Summary
	var raw, processedAt string
	err := c.db.QueryRowContext(ctx, query, subject, date).Scan(&s.Subject, &s.Date, &s.Vocabulary, &raw, &processedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting summary: %w", err)
	}
	s.Grid = json.RawMessage(raw)
	s.ProcessedAt, err = time.Parse(time.RFC3339Nano, processedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing processed_at: %w", err)
	}
	return &s, nil
}

func (c *Client) ListSummaries(ctx context.Context, subject string) ([]store.SummaryRef, error) {
	query := `
	SELECT subject, date, vocabulary, processed_at
	FROM emotion_summaries
	WHERE (? = '' OR subject = ?)
	ORDER BY subject, date
	`
	rows, err := c.db.QueryContext(ctx, query, subject, subject)
	if err != nil {
		return nil, fmt.Errorf("listing summaries: %w", err)
	}
	defer rows.Close()

	var refs []store.SummaryRef
	for rows.Next() {
		var ref store.SummaryRef
		var processedAt string
		if err := rows.Scan(&ref.Subject, &ref.Date, &ref.Vocabulary, &processedAt); err != nil {
			return nil, fmt.Errorf("scanning summary: %w", err)
		}
		ref.ProcessedAt, err = time.Parse(time.RFC3339Nano, processedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing processed_at: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating summary rows: %w", err)
	}
	return refs, nil
}
