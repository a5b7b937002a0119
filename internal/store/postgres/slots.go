package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"emotionagg/internal/store"
)

func (c *Client) FetchDay(ctx context.Context, subject, date string) ([]store.SlotPayload, error) {
	query := `
SELECT subject, date, time_block, payload
FROM slot_payloads
WHERE subject = $1 AND date = $2
ORDER BY time_block
`
	rows, err := c.pool.Query(ctx, query, subject, date)
	if err != nil {
		return nil, fmt.Errorf("fetching day payloads: %w", err)
	}
	defer rows.Close()

	var payloads []store.SlotPayload
	for rows.Next() {
		var p store.SlotPayload
		var body []byte
		if err := rows.Scan(&p.Subject, &p.Date, &p.TimeBlock, &body); err != nil {
			return nil, fmt.Errorf("scanning slot payload: %w", err)
		}
		store.DecodeInto(&p, body)
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
WHERE subject = $1 AND date = $2 AND time_block = $3
`
	var p store.SlotPayload
	var body []byte
	err := c.pool.QueryRow(ctx, query, subject, date, slot).Scan(&p.Subject, &p.Date, &p.TimeBlock, &body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching slot payload: %w", err)
	}
	store.DecodeInto(&p, body)
	return &p, nil
}

func (c *Client) PutSlot(ctx context.Context, p store.SlotPayload) error {
	body, err := json.Marshal(p.Body)
	if err != nil {
		return fmt.Errorf("marshaling slot payload: %w", err)
	}

	query := `
INSERT INTO slot_payloads (subject, date, time_block, payload, recorded_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (subject, date, time_block) DO UPDATE SET
    payload = EXCLUDED.payload,
    recorded_at = now()
`
	if _, err := c.pool.Exec(ctx, query, p.Subject, p.Date, p.TimeBlock, body); err != nil {
		return fmt.Errorf("upserting slot payload: %w", err)
	}
	return nil
}
