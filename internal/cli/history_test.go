package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpling/cqptree/internal/store"
)

func seedHistory(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "log.db")
	s, err := store.Open(path)
	require.NoError(t, err)
	defer s.Close()

	base := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.WriteTranslation(context.Background(), store.Record{
		ID:         "11111111-1111-1111-1111-111111111111",
		ReceivedAt: base,
		Translator: "grew",
		Input:      `pattern { X [lemma="dog"] }`,
		Query:      `[(lemma = "dog")]`,
	}))
	require.NoError(t, s.WriteTranslation(context.Background(), store.Record{
		ID:         "22222222-2222-2222-2222-222222222222",
		ReceivedAt: base.Add(time.Minute),
		Input:      "pattern {",
		Error:      "parsing failed: column 10: unexpected end of input",
	}))
	return path
}

func nonEmptyLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func TestHistory_ListsNewestFirst(t *testing.T) {
	path := seedHistory(t)

	out, _, err := execute(t, "", "history", "--database", path)

	require.NoError(t, err)
	lines := nonEmptyLines(out)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "22222222-2222-2222-2222-222222222222")
	assert.Contains(t, lines[0], "error")
	assert.Contains(t, lines[1], "11111111-1111-1111-1111-111111111111")
	assert.Contains(t, lines[1], "grew")
	assert.Contains(t, lines[1], `[(lemma = "dog")]`)
}

func TestHistory_Limit(t *testing.T) {
	path := seedHistory(t)

	out, _, err := execute(t, "", "history", "--database", path, "-n", "1")

	require.NoError(t, err)
	lines := nonEmptyLines(out)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "22222222-2222-2222-2222-222222222222")
}

func TestHistory_SingleTranslation(t *testing.T) {
	path := seedHistory(t)

	out, _, err := execute(t, "", "history", "--database", path,
		"11111111-1111-1111-1111-111111111111")

	require.NoError(t, err)
	assert.Contains(t, out, "translator:  grew")
	assert.Contains(t, out, `query:       [(lemma = "dog")]`)
	assert.NotContains(t, out, "error:")
}

func TestHistory_UnknownID(t *testing.T) {
	path := seedHistory(t)

	out, _, err := execute(t, "", "history", "--database", path, "no-such-id")

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "no translation with id")
}

func TestHistory_JSONFormat(t *testing.T) {
	path := seedHistory(t)

	out, _, err := execute(t, "", "history", "--database", path, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string         `json:"status"`
		Data   []store.Record `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "22222222-2222-2222-2222-222222222222", resp.Data[0].ID)
}

func TestHistory_NoDatabaseConfigured(t *testing.T) {
	out, _, err := execute(t, "", "history")

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "no translation log configured")
}

func TestServe_BadConfig(t *testing.T) {
	_, _, err := execute(t, "", "serve", "--config",
		filepath.Join(t.TempDir(), "absent.cue"))

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
