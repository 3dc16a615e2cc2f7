package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-kit/log/level"
	"github.com/google/uuid"

	"github.com/corpling/cqptree/internal/cqp"
	"github.com/corpling/cqptree/internal/frontend"
	"github.com/corpling/cqptree/internal/ir"
	"github.com/corpling/cqptree/internal/store"
)

const maxRequestBody = 1 << 20

type translateRequest struct {
	Text       string `json:"text"`
	Translator string `json:"translator,omitempty"`
}

type translateResponse struct {
	Translator      string   `json:"translator,omitempty"`
	Query           string   `json:"query,omitempty"`
	AdditionalSteps []string `json:"additional_steps,omitempty"`
	Error           string   `json:"error,omitempty"`
}

type translatorsResponse struct {
	Translators []string `json:"translators"`
}

// TokenLimitError reports a query binding more tokens than the server
// accepts.
type TokenLimitError struct {
	Tokens int
	Limit  int
}

func (e *TokenLimitError) Error() string {
	return fmt.Sprintf("query binds %d tokens, the limit is %d", e.Tokens, e.Limit)
}

func (s *Server) handleTranslators(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, translatorsResponse{Translators: s.registry.Names()})
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	started := time.Now()

	var req translateRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := decoder.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, translateResponse{Error: "request body is not valid JSON"})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, translateResponse{Error: "field 'text' is required"})
		return
	}

	resp, status := s.translate(req)

	s.record(requestID, started, req, resp)
	level.Info(s.logger).Log(
		"msg", "handled translation",
		"request_id", requestID,
		"translator", resp.Translator,
		"status", status,
		"duration", time.Since(started),
	)
	writeJSON(w, status, resp)
}

// translate runs the translation under the wall-clock timeout. The work
// itself is CPU-bound and cannot be cancelled; on timeout its goroutine is
// left to finish and its late result is dropped.
func (s *Server) translate(req translateRequest) (translateResponse, int) {
	type outcome struct {
		resp   translateResponse
		status int
	}
	done := make(chan outcome, 1)
	go func() {
		resp, status := s.translateText(req.Text, req.Translator)
		done <- outcome{resp, status}
	}()

	select {
	case out := <-done:
		return out.resp, out.status
	case <-time.After(s.timeout):
		return translateResponse{Error: "translation timed out"}, http.StatusRequestTimeout
	}
}

func (s *Server) translateText(text, translator string) (translateResponse, int) {
	plan, name, err := s.registry.Translate(text, translator)
	if err != nil {
		return translateResponse{Error: userMessage(err)}, errorStatus(err)
	}

	// The cap applies before compiling: compilation enumerates token
	// arrangements and an over-long query would stall right there.
	if n := maxTokens(plan); n > s.limit {
		err := &TokenLimitError{Tokens: n, Limit: s.limit}
		return translateResponse{Translator: name, Error: err.Error()}, errorStatus(err)
	}

	program, err := cqp.CompilePlan(plan)
	if err != nil {
		return translateResponse{Translator: name, Error: userMessage(err)}, errorStatus(err)
	}

	return translateResponse{
		Translator:      name,
		Query:           program.Primary(),
		AdditionalSteps: program.AdditionalSteps(),
	}, http.StatusOK
}

// maxTokens returns the largest token count any single compiled query body
// can reach, counting a part together with the parent tokens it may
// re-match.
func maxTokens(plan *ir.Plan) int {
	most := 0
	for _, q := range plan.Queries {
		if n := len(q.Tokens); n > most {
			most = n
		}
		for _, part := range q.Parts {
			if n := len(q.Tokens) + len(part.Tokens); n > most {
				most = n
			}
		}
	}
	return most
}

func (s *Server) record(requestID string, started time.Time, req translateRequest, resp translateResponse) {
	if s.log == nil {
		return
	}
	rec := store.Record{
		ID:              requestID,
		ReceivedAt:      started,
		Translator:      resp.Translator,
		Input:           req.Text,
		Query:           resp.Query,
		AdditionalSteps: resp.AdditionalSteps,
		Error:           resp.Error,
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.log.WriteTranslation(ctx, rec); err != nil {
		level.Warn(s.logger).Log("msg", "failed to record translation", "request_id", requestID, "err", err)
	}
}

// userMessage renders an error for the response body. Parse failures
// expand to their diagnostics instead of the bare error count.
func userMessage(err error) string {
	var parseErr *ir.ParseFailedError
	if errors.As(err, &parseErr) {
		lines := make([]string, len(parseErr.Errors))
		for i, diag := range parseErr.Errors {
			lines[i] = diag.String()
		}
		return "parsing failed: " + strings.Join(lines, "; ")
	}
	return err.Error()
}

func errorStatus(err error) int {
	var unknown *frontend.UnknownTranslatorError
	var limit *TokenLimitError
	switch {
	case ir.IsParseFailed(err), frontend.IsAmbiguous(err), errors.As(err, &unknown):
		return http.StatusBadRequest
	case ir.IsNotSupported(err), ir.IsInvalid(err), errors.As(err, &limit):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false) // CQP text contains '&' and '<'
	_ = enc.Encode(body)
}
