package store

import (
	"context"
	"fmt"
	"time"
)

// WriteTranslation inserts a translation record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are
// silently ignored. Other constraint violations still return errors.
func (s *Store) WriteTranslation(ctx context.Context, rec Record) error {
	steps, err := marshalSteps(rec.AdditionalSteps)
	if err != nil {
		return fmt.Errorf("write translation: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO translations
		(id, received_at, translator, input, query, additional_steps, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		rec.ID,
		rec.ReceivedAt.UTC().Format(time.RFC3339Nano),
		rec.Translator,
		rec.Input,
		rec.Query,
		steps,
		rec.Error,
	)
	if err != nil {
		return fmt.Errorf("write translation: %w", err)
	}

	return nil
}
