// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assemble builds the five output tables of the analysis report.
// Each assembler locates its section, parses the rows with a grammar, and
// merges or orders the result into one table. Assemblers share nothing and
// never mutate the report.
package assemble

import (
	"errors"

	"github.com/pdiddy/report-extract/internal/grammar"
	"github.com/pdiddy/report-extract/pkg/types"
)

// ErrNoData is returned when a section yields no rows worth writing.
var ErrNoData = errors.New("no parsable data")

// Table names. The destination file of each is Name prefixed with "report_".
const (
	BasicStatsName = "basic_stats"
	PrevalenceName = "disease_prevalence"
	GenderName     = "disease_gender"
	AgeName        = "disease_age"
	EvolutionName  = "disease_evolution"
)

// Column names shared by several tables.
const (
	colDisease     = "疾病"
	colCases       = "總案例數"
	colInitial     = "初始疾病"
	colItem        = "項目"
	colValue       = "數值"
	colCount       = "數量"
	colPrevalence  = "盛行率(%)"
	colMalePct     = "男性比例 (%)"
	colFemalePct   = "女性比例 (%)"
	colMeanAge     = "平均年齡"
	colAgeStd      = "年齡標準差"
	colMedianAge   = "中位數年齡"
	colNewDisease  = "新發現的疾病"
	colOccurrences = "發現次數"
	colShare       = "佔比 (%)"
)

// Destination returns the output file name for a table name.
func Destination(name string) string {
	return "report_" + name + ".csv"
}

// Output is the result of one assembler run.
type Output struct {
	Table *types.Table

	// Dropped lists the lines that did not fit the row grammar.
	Dropped []grammar.Mismatch

	// EmptyCohorts names evolution cohorts skipped for a "no data" phrase.
	EmptyCohorts []string
}

// Assembler produces one table from the full report text.
type Assembler interface {
	Name() string
	Assemble(report string) (Output, error)
}

// All returns the five assemblers in report order.
func All(m types.Markers) ([]Assembler, error) {
	basic, err := NewBasicStats(m)
	if err != nil {
		return nil, err
	}
	return []Assembler{
		basic,
		NewPrevalence(m),
		NewGender(m),
		NewAge(m),
		NewEvolution(m),
	}, nil
}
