package sqlite

import (
	"context"
	"fmt"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	ddl := `
	CREATE TABLE IF NOT EXISTS slot_payloads (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		subject     TEXT NOT NULL,
		date        TEXT NOT NULL,
		time_block  TEXT NOT NULL,
		payload     TEXT NOT NULL DEFAULT '{}',
		recorded_at TEXT DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now')),
		CONSTRAINT uq_slot_payload UNIQUE (subject, date, time_block)
	);

	CREATE TABLE IF NOT EXISTS emotion_summaries (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		subject      TEXT NOT NULL,
		date         TEXT NOT NULL,
		vocabulary   TEXT NOT NULL,
		grid         TEXT NOT NULL,
		processed_at TEXT NOT NULL,
		CONSTRAINT uq_emotion_summary UNIQUE (subject, date)
	);

	CREATE INDEX IF NOT EXISTS idx_slot_payloads_day ON slot_payloads (subject, date);
	CREATE INDEX IF NOT EXISTS idx_emotion_summaries_subject ON emotion_summaries (subject);
	`
	if _, err := c.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}
