// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assemble

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/report-extract/pkg/types"
)

type statPattern struct {
	name string
	re   *regexp.Regexp
}

// BasicStats extracts the scalar summary fields. Each field is an
// independent lookup over the whole report; a missing field is omitted.
type BasicStats struct {
	fields []statPattern
}

// NewBasicStats compiles the basic-stat patterns of m.
func NewBasicStats(m types.Markers) (*BasicStats, error) {
	fields := make([]statPattern, 0, len(m.BasicStats))
	for _, f := range m.BasicStats {
		re, err := regexp.Compile(f.Pattern)
		if err != nil {
			return nil, fmt.Errorf("basic stat %q: %w", f.Name, err)
		}
		if re.NumSubexp() < 1 {
			return nil, fmt.Errorf("basic stat %q: pattern needs a capture group", f.Name)
		}
		fields = append(fields, statPattern{name: f.Name, re: re})
	}
	return &BasicStats{fields: fields}, nil
}

func (a *BasicStats) Name() string { return BasicStatsName }

// Assemble returns one (item, value) row per field found, in pattern order.
func (a *BasicStats) Assemble(report string) (Output, error) {
	table := types.NewTable(BasicStatsName, Destination(BasicStatsName),
		types.StringColumn(colItem), types.StringColumn(colValue))

	for _, f := range a.fields {
		m := f.re.FindStringSubmatch(report)
		if m == nil {
			continue
		}
		rec := types.Record{types.StringValue(f.name), types.StringValue(strings.TrimSpace(m[1]))}
		if err := table.Append(rec); err != nil {
			return Output{}, err
		}
	}

	if table.Len() == 0 {
		return Output{}, fmt.Errorf("basic statistics: %w", ErrNoData)
	}
	return Output{Table: table}, nil
}
