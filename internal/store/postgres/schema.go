package postgres

import (
	"context"
	"fmt"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	// Executed as one implicit transaction; IF NOT EXISTS keeps it idempotent.
	ddl := `
CREATE TABLE IF NOT EXISTS slot_payloads (
    id          BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    subject     TEXT NOT NULL,
    date        TEXT NOT NULL,
    time_block  TEXT NOT NULL,
    payload     JSONB NOT NULL DEFAULT '{}',
    recorded_at TIMESTAMPTZ DEFAULT now(),
    CONSTRAINT uq_slot_payload UNIQUE (subject, date, time_block)
);

CREATE TABLE IF NOT EXISTS emotion_summaries (
    id           BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    subject      TEXT NOT NULL,
    date         TEXT NOT NULL,
    vocabulary   TEXT NOT NULL,
    grid         JSONB NOT NULL,
    processed_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    CONSTRAINT uq_emotion_summary UNIQUE (subject, date)
);

CREATE INDEX IF NOT EXISTS idx_slot_payloads_day ON slot_payloads (subject, date);
CREATE INDEX IF NOT EXISTS idx_emotion_summaries_subject ON emotion_summaries (subject);
`
	_, err := c.pool.Exec(ctx, ddl)
	if err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}
