package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "translations.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testRecord(id string, at time.Time) Record {
	return Record{
		ID:         id,
		ReceivedAt: at,
		Translator: "grew",
		Input:      "pattern { X [lemma=dog] }",
		Query:      `[(lemma = "dog")]`,
	}
}

func TestOpen_AppliesPragmas(t *testing.T) {
	s := openTestStore(t)
	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma("foreign_keys", "1"))
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "translations.db")
	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	assert.NoError(t, s2.Close())
}

func TestWriteTranslation_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	rec := testRecord("req-1", at)
	rec.AdditionalSteps = []string{`B = [(upos = "NOUN")]`, "C = A & B"}
	require.NoError(t, s.WriteTranslation(ctx, rec))

	got, err := s.Translation(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, rec.Input, got.Input)
	assert.Equal(t, rec.Query, got.Query)
	assert.Equal(t, rec.AdditionalSteps, got.AdditionalSteps)
	assert.Equal(t, "grew", got.Translator)
	assert.True(t, at.Equal(got.ReceivedAt))
}

func TestWriteTranslation_DuplicateIDIgnored(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	at := time.Now()
	require.NoError(t, s.WriteTranslation(ctx, testRecord("req-1", at)))

	changed := testRecord("req-1", at)
	changed.Input = "something else"
	require.NoError(t, s.WriteTranslation(ctx, changed))

	got, err := s.Translation(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, "pattern { X [lemma=dog] }", got.Input)
}

func TestWriteTranslation_Failure(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec := Record{
		ID:         "req-err",
		ReceivedAt: time.Now(),
		Input:      "???",
		Error:      "cannot guess translator for query: no translator matches",
	}
	require.NoError(t, s.WriteTranslation(ctx, rec))

	got, err := s.Translation(ctx, "req-err")
	require.NoError(t, err)
	assert.Empty(t, got.Query)
	assert.Empty(t, got.Translator)
	assert.NotEmpty(t, got.Error)
}

func TestRecent_NewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"first", "second", "third"} {
		require.NoError(t, s.WriteTranslation(ctx, testRecord(id, base.Add(time.Duration(i)*time.Minute))))
	}

	records, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "third", records[0].ID)
	assert.Equal(t, "second", records[1].ID)
}

func TestRecent_EmptyStore(t *testing.T) {
	s := openTestStore(t)
	records, err := s.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestTranslation_NotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Translation(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSteps_PreserveQueryText(t *testing.T) {
	// CQP text is full of '&' and '<'; it must read back verbatim.
	steps := []string{`A = <s> [(word = "x")] </s>`, "C = A & B"}
	data, err := marshalSteps(steps)
	require.NoError(t, err)
	assert.NotContains(t, data, `\u`)

	back, err := unmarshalSteps(data)
	require.NoError(t, err)
	assert.Equal(t, steps, back)
}
