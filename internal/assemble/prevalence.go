// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assemble

import (
	"fmt"

	"github.com/pdiddy/report-extract/internal/grammar"
	"github.com/pdiddy/report-extract/internal/section"
	"github.com/pdiddy/report-extract/pkg/types"
)

// Prevalence joins the per-disease counts block with the percentage block.
type Prevalence struct {
	markers types.Markers
	counts  *grammar.Whitespace
	percent *grammar.Whitespace
}

// NewPrevalence returns the prevalence assembler for m.
func NewPrevalence(m types.Markers) *Prevalence {
	return &Prevalence{
		markers: m,
		counts:  grammar.NewWhitespace(types.StringColumn(colDisease), types.IntColumn(colCount)),
		percent: grammar.NewWhitespace(types.StringColumn(colDisease), types.FloatColumn(colPrevalence)),
	}
}

func (a *Prevalence) Name() string { return PrevalenceName }

// Assemble parses both blocks and keeps only diseases present in both, in
// the order of the counts block. A disease listed twice in the percentage
// block joins with its first row.
func (a *Prevalence) Assemble(report string) (Output, error) {
	m := a.markers

	countsText, err := section.Between(report, m.PrevalenceCounts, m.PrevalencePercent)
	if err != nil {
		return Output{}, fmt.Errorf("prevalence counts: %w", err)
	}
	percentText, err := section.Between(report, m.PrevalencePercent, m.GenderHeader)
	if err != nil {
		return Output{}, fmt.Errorf("prevalence percentages: %w", err)
	}

	opts := grammar.BlockOptions{Exclude: []string{m.ArtifactToken}}
	counts := grammar.ParseBlock(a.counts, countsText, opts)
	percent := grammar.ParseBlock(a.percent, percentText, opts)

	byLabel := make(map[string]types.Value, len(percent.Records))
	for _, rec := range percent.Records {
		if _, dup := byLabel[rec[0].Str]; !dup {
			byLabel[rec[0].Str] = rec[1]
		}
	}

	table := types.NewTable(PrevalenceName, Destination(PrevalenceName),
		types.StringColumn(colDisease), types.IntColumn(colCount), types.FloatColumn(colPrevalence))
	for _, rec := range counts.Records {
		pct, ok := byLabel[rec[0].Str]
		if !ok {
			continue
		}
		if err := table.Append(types.Record{rec[0], rec[1], pct}); err != nil {
			return Output{}, err
		}
	}

	dropped := append(counts.Mismatches, percent.Mismatches...)
	return Output{Table: table, Dropped: dropped}, nil
}
