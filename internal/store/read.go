package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound reports that no record exists under the requested ID.
var ErrNotFound = errors.New("translation record not found")

// Recent returns the latest records, newest first. Records sharing a
// timestamp are ordered by ID so results are deterministic.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, received_at, translator, input, query, additional_steps, error
		FROM translations
		ORDER BY received_at DESC, id COLLATE BINARY ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query translations: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate translations: %w", err)
	}

	// Return empty slice instead of nil
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// Translation returns one record by ID, or ErrNotFound.
func (s *Store) Translation(ctx context.Context, id string) (Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, received_at, translator, input, query, additional_steps, error
		FROM translations
		WHERE id = ?
	`, id)
	if err != nil {
		return Record{}, fmt.Errorf("query translation: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return Record{}, fmt.Errorf("query translation: %w", err)
		}
		return Record{}, ErrNotFound
	}
	return scanRecord(rows)
}

func scanRecord(rows *sql.Rows) (Record, error) {
	var rec Record
	var receivedAt, steps string
	err := rows.Scan(&rec.ID, &receivedAt, &rec.Translator, &rec.Input, &rec.Query, &steps, &rec.Error)
	if err != nil {
		return Record{}, fmt.Errorf("scan translation: %w", err)
	}

	rec.ReceivedAt, err = time.Parse(time.RFC3339Nano, receivedAt)
	if err != nil {
		return Record{}, fmt.Errorf("parse received_at: %w", err)
	}
	rec.AdditionalSteps, err = unmarshalSteps(steps)
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}
