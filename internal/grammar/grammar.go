// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package grammar turns blocks of whitespace-aligned report lines into typed
// records. Two row grammars are provided: Whitespace splits on runs of two
// or more spaces, Anchored matches trailing numeric columns and treats the
// rest of the line as the label.
package grammar

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/report-extract/pkg/types"
)

// Grammar parses one trimmed line into a record in Columns order.
type Grammar interface {
	Columns() []types.Column
	ParseLine(line string) (types.Record, error)
}

// Mismatch describes a line that did not fit its grammar. The line is
// dropped; the rest of the block is still parsed.
type Mismatch struct {
	Line   int // 1-based line number within the block
	Text   string
	Reason string
}

func (m Mismatch) Error() string {
	return fmt.Sprintf("line %d %q: %s", m.Line, m.Text, m.Reason)
}

// columnSep is the whitespace-table column separator.
var columnSep = regexp.MustCompile(`\s{2,}`)

// Whitespace maps the tokens of a line split on two or more spaces
// positionally onto a fixed column list.
type Whitespace struct {
	columns []types.Column
}

// NewWhitespace returns a whitespace-table grammar for the given columns.
func NewWhitespace(columns ...types.Column) *Whitespace {
	return &Whitespace{columns: columns}
}

func (g *Whitespace) Columns() []types.Column { return g.columns }

// ParseLine splits line and converts each token to its column kind.
func (g *Whitespace) ParseLine(line string) (types.Record, error) {
	tokens := columnSep.Split(strings.TrimSpace(line), -1)
	if len(tokens) != len(g.columns) {
		return nil, fmt.Errorf("got %d columns, want %d", len(tokens), len(g.columns))
	}
	return toRecord(g.columns, tokens)
}

// Anchored matches a label column followed by numeric columns with one
// regular expression. The numeric columns are anchored at the end of the
// line and the label takes everything before them, so labels may contain
// single or repeated spaces.
type Anchored struct {
	columns []types.Column
	re      *regexp.Regexp
}

// NewAnchored builds the grammar ^(.+?)\s+(num)...\s+(num)$ where integer
// columns match \d+ and float columns match [\d.]+. Every trailing column
// must be numeric.
func NewAnchored(label types.Column, trailing ...types.Column) *Anchored {
	var b strings.Builder
	b.WriteString(`^(.+?)`)
	for _, c := range trailing {
		switch c.Kind {
		case types.KindInt:
			b.WriteString(`\s+(\d+)`)
		case types.KindFloat:
			b.WriteString(`\s+([\d.]+)`)
		default:
			panic(fmt.Sprintf("grammar: anchored column %q must be numeric, got %s", c.Name, c.Kind))
		}
	}
	b.WriteString(`$`)

	columns := append([]types.Column{label}, trailing...)
	return &Anchored{columns: columns, re: regexp.MustCompile(b.String())}
}

func (g *Anchored) Columns() []types.Column { return g.columns }

// Pattern returns the compiled row expression.
func (g *Anchored) Pattern() string { return g.re.String() }

// ParseLine matches the trimmed line end to end.
func (g *Anchored) ParseLine(line string) (types.Record, error) {
	m := g.re.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return nil, fmt.Errorf("does not match %s", g.re)
	}
	tokens := m[1:]
	tokens[0] = strings.TrimSpace(tokens[0])
	return toRecord(g.columns, tokens)
}

func toRecord(columns []types.Column, tokens []string) (types.Record, error) {
	rec := make(types.Record, len(columns))
	for i, c := range columns {
		v, err := types.ParseValue(c.Kind, tokens[i])
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", c.Name, err)
		}
		rec[i] = v
	}
	return rec, nil
}
