package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpling/cqptree/internal/frontend"
	"github.com/corpling/cqptree/internal/ir"
	"github.com/corpling/cqptree/internal/store"
)

func postTranslate(t *testing.T, s *Server, body string) (*httptest.ResponseRecorder, translateResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/translate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	var resp translateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestTranslators_ListsFrontEnds(t *testing.T) {
	s := NewServer(Options{})
	req := httptest.NewRequest(http.MethodGet, "/translators", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp translatorsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"conllu", "depsearch", "deptreepy", "grew"}, resp.Translators)
}

func TestTranslate_GuessesTranslator(t *testing.T) {
	s := NewServer(Options{})
	rec, resp := postTranslate(t, s, `{"text": "pattern { X [lemma=dog] }"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "grew", resp.Translator)
	assert.Equal(t, `[(lemma = "dog")]`, resp.Query)
	assert.Empty(t, resp.AdditionalSteps)
	assert.Empty(t, resp.Error)
}

func TestTranslate_ExplicitTranslator(t *testing.T) {
	s := NewServer(Options{})
	rec, resp := postTranslate(t, s, `{"text": "LEMMA hus", "translator": "deptreepy"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "deptreepy", resp.Translator)
	assert.Equal(t, `[(LEMMA = "hus")]`, resp.Query)
}

func TestTranslate_MultiStepProgram(t *testing.T) {
	s := NewServer(Options{})
	body := `{"text": "pattern { X [lemma=dog] } with { X [upos=NOUN] }"}`
	rec, resp := postTranslate(t, s, body)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `A = [(lemma = "dog")]`, resp.Query)
	assert.Equal(t, []string{`B = [(upos = "NOUN")]`, "C = A & B"}, resp.AdditionalSteps)
}

func TestTranslate_QueryTextIsNotEscaped(t *testing.T) {
	s := NewServer(Options{})
	rec, _ := postTranslate(t, s, `{"text": "(AND (a 1) (b 2))", "translator": "deptreepy"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), " & ")
	assert.NotContains(t, rec.Body.String(), `&`)
}

func TestTranslate_BadJSON(t *testing.T) {
	s := NewServer(Options{})
	rec, resp := postTranslate(t, s, `{"text": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, resp.Error)
}

func TestTranslate_MissingText(t *testing.T) {
	s := NewServer(Options{})
	rec, resp := postTranslate(t, s, `{"text": "  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp.Error, "text")
}

func TestTranslate_UnknownTranslator(t *testing.T) {
	s := NewServer(Options{})
	rec, resp := postTranslate(t, s, `{"text": "x", "translator": "sparql"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp.Error, "sparql")
}

func TestTranslate_NoTranslatorMatches(t *testing.T) {
	s := NewServer(Options{})
	rec, resp := postTranslate(t, s, `{"text": "???"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp.Error, "no translator matches")
}

func TestTranslate_NotSupportedInput(t *testing.T) {
	s := NewServer(Options{})
	body := `{"text": "(NOT (TREE_ (r 1) (d 1)))", "translator": "deptreepy"}`
	rec, resp := postTranslate(t, s, body)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.NotEmpty(t, resp.Error)
}

func TestTranslate_ParseFailureCarriesDiagnostics(t *testing.T) {
	s := NewServer(Options{})
	rec, resp := postTranslate(t, s, `{"text": "pattern { X [", "translator": "grew"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp.Error, "parsing failed")
	assert.NotContains(t, resp.Error, "error(s)")
}

func TestTranslate_TokenLimit(t *testing.T) {
	s := NewServer(Options{TokenLimit: 2})
	body := `{"text": "TREE_ (a 1) (b 2) (c 3)", "translator": "deptreepy"}`
	rec, resp := postTranslate(t, s, body)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, resp.Error, "limit is 2")
}

func TestTranslate_Timeout(t *testing.T) {
	registry := frontend.NewRegistry()
	require.NoError(t, registry.Register("slow", func(string) (*ir.Plan, error) {
		time.Sleep(200 * time.Millisecond)
		return nil, ir.NotSupported("never reached in time")
	}))
	s := NewServer(Options{Registry: registry, Timeout: 10 * time.Millisecond})

	rec, resp := postTranslate(t, s, `{"text": "x", "translator": "slow"}`)
	assert.Equal(t, http.StatusRequestTimeout, rec.Code)
	assert.Contains(t, resp.Error, "timed out")
}

func TestTranslate_RecordsToLog(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "log.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := NewServer(Options{Log: db})
	_, resp := postTranslate(t, s, `{"text": "pattern { X [lemma=dog] }"}`)
	require.Empty(t, resp.Error)

	records, err := db.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "grew", records[0].Translator)
	assert.Equal(t, "pattern { X [lemma=dog] }", records[0].Input)
	assert.Equal(t, `[(lemma = "dog")]`, records[0].Query)
}

func TestTranslate_RecordsFailures(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "log.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := NewServer(Options{Log: db})
	_, _ = postTranslate(t, s, `{"text": "???"}`)

	records, err := db.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Empty(t, records[0].Query)
	assert.NotEmpty(t, records[0].Error)
}
