package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Record is one handled translation request, success or failure.
type Record struct {
	// ID is the server-assigned request identifier.
	ID         string
	ReceivedAt time.Time
	// Translator is the resolved front-end name. Empty when the request
	// failed before a front end accepted the input.
	Translator string
	Input      string
	// Query is the primary CQP query. Empty when the translation failed.
	Query string
	// AdditionalSteps are the named follow-up query lines, in order.
	AdditionalSteps []string
	// Error is the user-facing failure description. Empty on success.
	Error string
}

// marshalSteps converts the step lines to JSON TEXT for storage. HTML
// escaping is disabled: CQP text is full of '&' and '<' and should read
// back verbatim from the database.
func marshalSteps(steps []string) (string, error) {
	if len(steps) == 0 {
		return "[]", nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(steps); err != nil {
		return "", fmt.Errorf("marshal steps: %w", err)
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSpace(buf.String()), nil
}

func unmarshalSteps(data string) ([]string, error) {
	if data == "" || data == "[]" {
		return nil, nil
	}
	var steps []string
	if err := json.Unmarshal([]byte(data), &steps); err != nil {
		return nil, fmt.Errorf("unmarshal steps: %w", err)
	}
	return steps, nil
}
