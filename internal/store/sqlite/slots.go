package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"emotionagg/internal/store"
)

func (c *Client) FetchDay(ctx context.Context, subject, date string) ([]store.SlotPayload, error) {
	query := `
	SELECT subject, date, time_block, payload
	FROM slot_payloads
	WHERE subject = ? AND date = ?
	ORDER BY time_block
	`
	rows, err := c.db.QueryContext(ctx, query, subject, date)
	if err != nil {
		return nil, fmt.Errorf("fetching day payloads: %w", err)
	}
	defer rows.Close()

	var payloads []store.SlotPayload
	for rows.Next() {
		var p store.SlotPayload
		var body string
		if err := rows.Scan(&p.Subject, &p.Date, &p.TimeBlock, &body); err != nil {
			return nil, fmt.Errorf("scanning slot payload: %w", err)
		}
		store.DecodeInto(&p, []byte(body))
		payloads = append(payloads, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating slot payload rows: %w", err)
	}
	return payloads, nil
}

func (c *Client) FetchSlot(ctx context.Context, subject, date, slot string) (*store.SlotPayload, error) {
	query := `
	SELECT subject, date, time_block, payload
	FROM slot_payloads
	WHERE subject = ? AND date = ? AND time_block = ?
	`
	var p store.SlotPayload
	var body string
	err := c.db.QueryRowContext(ctx, query, subject, date, slot).Scan(&p.Subject, &p.Date, &p.TimeBlock, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching slot payload: %w", err)
	}
	store.DecodeInto(&p, []byte(body))
	return &p, nil
}

func (c *Client) PutSlot(ctx context.Context, p store.SlotPayload) error {
	body, err := json.Marshal(p.Body)
	if err != nil {
		return fmt.Errorf("marshaling slot payload: %w", err)
	}

	query := `
	INSERT INTO slot_payloads (subject, date, time_block, payload, recorded_at)
	VALUES (?, ?, ?, ?, strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
	ON CONFLICT (subject, date, time_block) DO UPDATE SET
		payload = excluded.payload,
		recorded_at = excluded.recorded_at
	`
	if _, err := c.db.ExecContext(ctx, query, p.Subject, p.Date, p.TimeBlock, string(body)); err != nil {
		return fmt.Errorf("upserting slot payload: %w", err)
	}
	return nil
}
