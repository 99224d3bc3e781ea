// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assemble

import (
	"fmt"

	"github.com/pdiddy/report-extract/internal/grammar"
	"github.com/pdiddy/report-extract/internal/section"
	"github.com/pdiddy/report-extract/pkg/types"
)

// Association parses a per-disease association table: a header line
// followed by rows of a label and trailing numeric columns.
type Association struct {
	name    string
	start   string
	end     string
	grammar *grammar.Anchored
}

// NewGender returns the disease/gender assembler: label, male %, female %, cases.
func NewGender(m types.Markers) *Association {
	return &Association{
		name:  GenderName,
		start: m.GenderTable,
		end:   m.AgeHeader,
		grammar: grammar.NewAnchored(
			types.StringColumn(colDisease),
			types.FloatColumn(colMalePct),
			types.FloatColumn(colFemalePct),
			types.IntColumn(colCases),
		),
	}
}

// NewAge returns the disease/age assembler: label, mean, std, median, cases.
func NewAge(m types.Markers) *Association {
	return &Association{
		name:  AgeName,
		start: m.AgeTable,
		end:   m.EvolutionHeader,
		grammar: grammar.NewAnchored(
			types.StringColumn(colDisease),
			types.FloatColumn(colMeanAge),
			types.FloatColumn(colAgeStd),
			types.FloatColumn(colMedianAge),
			types.IntColumn(colCases),
		),
	}
}

func (a *Association) Name() string { return a.name }

// Assemble skips the column header line and keeps every row matching the
// anchored grammar.
func (a *Association) Assemble(report string) (Output, error) {
	text, err := section.Between(report, a.start, a.end)
	if err != nil {
		return Output{}, fmt.Errorf("%s: %w", a.name, err)
	}

	res := grammar.ParseBlock(a.grammar, text, grammar.BlockOptions{SkipHeader: true})

	table := types.NewTable(a.name, Destination(a.name), a.grammar.Columns()...)
	for _, rec := range res.Records {
		if err := table.Append(rec); err != nil {
			return Output{}, err
		}
	}
	return Output{Table: table, Dropped: res.Mismatches}, nil
}
