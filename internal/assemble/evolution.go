// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assemble

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/report-extract/internal/grammar"
	"github.com/pdiddy/report-extract/internal/section"
	"github.com/pdiddy/report-extract/pkg/types"
)

// Evolution concatenates the follow-up tables of every initial-disease
// cohort into one table keyed by the initial disease.
type Evolution struct {
	markers types.Markers
	cohort  *regexp.Regexp
	rows    *grammar.Whitespace
}

// NewEvolution returns the disease evolution assembler for m.
func NewEvolution(m types.Markers) *Evolution {
	return &Evolution{
		markers: m,
		cohort:  section.MarkerPattern(m.CohortPrefix, m.CohortSuffix),
		rows: grammar.NewWhitespace(
			types.StringColumn(colNewDisease),
			types.IntColumn(colOccurrences),
			types.FloatColumn(colShare),
		),
	}
}

func (a *Evolution) Name() string { return EvolutionName }

// Assemble walks the cohort blocks in the order they appear in the report.
// A cohort whose body carries a "no data" phrase contributes no rows.
func (a *Evolution) Assemble(report string) (Output, error) {
	text, err := section.After(report, a.markers.EvolutionSection)
	if err != nil {
		return Output{}, fmt.Errorf("evolution: %w", err)
	}

	columns := append([]types.Column{types.StringColumn(colInitial)}, a.rows.Columns()...)
	table := types.NewTable(EvolutionName, Destination(EvolutionName), columns...)

	var out Output
	for _, block := range section.Blocks(text, a.cohort) {
		body := strings.TrimSpace(section.Cut(block.Body, a.markers.CohortSeparator))

		res := grammar.ParseBlock(a.rows, body, grammar.BlockOptions{
			SkipHeader: true,
			Sentinels:  a.markers.NoDataPhrases,
		})
		if res.Empty {
			out.EmptyCohorts = append(out.EmptyCohorts, block.Label)
			continue
		}

		label := types.StringValue(block.Label)
		for _, rec := range res.Records {
			if err := table.Append(append(types.Record{label}, rec...)); err != nil {
				return Output{}, err
			}
		}
		for _, mm := range res.Mismatches {
			mm.Text = block.Label + ": " + mm.Text
			out.Dropped = append(out.Dropped, mm)
		}
	}

	if table.Len() == 0 {
		return Output{}, fmt.Errorf("evolution: %d empty cohort(s): %w", len(out.EmptyCohorts), ErrNoData)
	}
	out.Table = table
	return out, nil
}
