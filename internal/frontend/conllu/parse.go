// Package conllu translates CoNLL-U sentences into query plans. A sentence
// is read as a tree pattern: every token row becomes a query token and
// every non-root head field becomes a dependency.
//
// Only the first sentence of the input is used. Multiword-token and empty
// node rows (ids like 1-2 or 1.1) are skipped.
package conllu

import (
	"strconv"
	"strings"

	"github.com/corpling/cqptree/internal/ir"
)

// pair is one Key=Value entry of a feature column. Bare entries keep an
// empty value.
type pair struct {
	key   string
	value string
}

// row is one parsed token row. Columns holding the no-value marker are
// normalized to the empty string.
type row struct {
	line int // 1-based input line, for error positions
	id   int

	form   string
	lemma  string
	upos   string
	xpos   string
	head   string
	deprel string

	feats []pair
	misc  []pair
}

const (
	noValue     = "_"
	unspecified = "*"
	columnCount = 10
)

// parseSentence reads the first sentence of a CoNLL-U document. Comment
// lines are skipped; the sentence ends at the first blank line after its
// rows.
func parseSentence(input string) ([]row, error) {
	var rows []row
	started := false

	for num, text := range strings.Split(input, "\n") {
		line := strings.TrimRight(text, "\r")
		switch {
		case strings.TrimSpace(line) == "":
			if started {
				return rows, nil
			}
		case strings.HasPrefix(line, "#"):
			continue
		default:
			started = true
			r, skip, err := parseRow(num+1, line)
			if err != nil {
				return nil, err
			}
			if !skip {
				rows = append(rows, r)
			}
		}
	}

	if len(rows) == 0 {
		return nil, ir.ParseFailed(ir.ParseError{Message: "no token rows found in input"})
	}
	return rows, nil
}

func parseRow(line int, text string) (row, bool, error) {
	columns := strings.Split(text, "\t")
	if len(columns) != columnCount {
		return row{}, false, ir.ParseFailed(ir.ParseError{
			Position: "line " + strconv.Itoa(line),
			Message:  "expected 10 tab-separated columns, found " + strconv.Itoa(len(columns)),
		})
	}

	// Multiword tokens (1-2) and empty nodes (1.1) are structural rows
	// without a corpus position of their own.
	idColumn := columns[0]
	if strings.ContainsAny(idColumn, "-.") {
		return row{}, true, nil
	}
	id, err := strconv.Atoi(idColumn)
	if err != nil {
		return row{}, false, ir.ParseFailed(ir.ParseError{
			Position: "line " + strconv.Itoa(line),
			Message:  "token id " + strconv.Quote(idColumn) + " is not an integer",
		})
	}

	feats, err := parseFeatures(line, "feats", columns[5])
	if err != nil {
		return row{}, false, err
	}
	misc, err := parseFeatures(line, "misc", columns[9])
	if err != nil {
		return row{}, false, err
	}

	return row{
		line:   line,
		id:     id,
		form:   columnValue(columns[1]),
		lemma:  columnValue(columns[2]),
		upos:   columnValue(columns[3]),
		xpos:   columnValue(columns[4]),
		feats:  feats,
		head:   columns[6],
		deprel: columnValue(columns[7]),
		misc:   misc,
	}, false, nil
}

func columnValue(column string) string {
	if column == noValue {
		return ""
	}
	return column
}

// parseFeatures splits a feature column into its Key=Value entries. Keys
// without a value are kept with an empty value, which later stages skip.
func parseFeatures(line int, column, text string) ([]pair, error) {
	if text == noValue || text == "" {
		return nil, nil
	}

	var pairs []pair
	for _, entry := range strings.Split(text, "|") {
		if entry == "" {
			return nil, ir.ParseFailed(ir.ParseError{
				Position: "line " + strconv.Itoa(line),
				Message:  "empty entry in " + column + " column",
			})
		}
		key, value, _ := strings.Cut(entry, "=")
		if key == "" {
			return nil, ir.ParseFailed(ir.ParseError{
				Position: "line " + strconv.Itoa(line),
				Message:  "entry without key in " + column + " column",
			})
		}
		pairs = append(pairs, pair{key: key, value: value})
	}
	return pairs, nil
}
