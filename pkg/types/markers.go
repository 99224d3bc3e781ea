// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"
)

// MarkersVersion is the version of the section-boundary contract shared
// with the report generator. Any change to a marker string is a new version.
const MarkersVersion = "1"

// BasicStatField is one scalar lookup in the basic statistics block.
// Pattern must contain exactly one capture group.
type BasicStatField struct {
	Name    string `json:"name" yaml:"name"`
	Pattern string `json:"pattern" yaml:"pattern"`
}

// Markers is the literal text the extractor relies on to find each
// section of the analysis report.
type Markers struct {
	Version string `json:"version" yaml:"version"`

	// BasicStats are matched anywhere in the report, in this order.
	BasicStats []BasicStatField `json:"basic_stats" yaml:"basic_stats"`

	PrevalenceCounts  string `json:"prevalence_counts" yaml:"prevalence_counts"`
	PrevalencePercent string `json:"prevalence_percent" yaml:"prevalence_percent"`
	GenderHeader      string `json:"gender_header" yaml:"gender_header"`
	GenderTable       string `json:"gender_table" yaml:"gender_table"`
	AgeHeader         string `json:"age_header" yaml:"age_header"`
	AgeTable          string `json:"age_table" yaml:"age_table"`
	EvolutionHeader   string `json:"evolution_header" yaml:"evolution_header"`
	EvolutionSection  string `json:"evolution_section" yaml:"evolution_section"`

	// CohortPrefix and CohortSuffix surround the initial-disease label of
	// each cohort block.
	CohortPrefix string `json:"cohort_prefix" yaml:"cohort_prefix"`
	CohortSuffix string `json:"cohort_suffix" yaml:"cohort_suffix"`

	// CohortSeparator terminates a cohort block.
	CohortSeparator string `json:"cohort_separator" yaml:"cohort_separator"`

	// NoDataPhrases mark a cohort block with no rows.
	NoDataPhrases []string `json:"no_data_phrases" yaml:"no_data_phrases"`

	// ArtifactToken marks a trailing series summary line ("Name: count, dtype: int64").
	ArtifactToken string `json:"artifact_token" yaml:"artifact_token"`
}

// DefaultMarkers returns version 1 of the contract, matching the layout
// written by the analysis stage.
func DefaultMarkers() Markers {
	return Markers{
		Version: MarkersVersion,
		BasicStats: []BasicStatField{
			{Name: "總影像數", Pattern: `總影像數: (\d+)`},
			{Name: "總病患數", Pattern: `總病患數: (\d+)`},
			{Name: "病患平均年齡", Pattern: `病患平均年齡: ([\d\.]+) 歲`},
			{Name: "男性數量", Pattern: `男女數量: 男性 (\d+),`},
			{Name: "女性數量", Pattern: `男女數量: .*女性 (\d+)`},
			{Name: "男女比率 (男:女)", Pattern: `男女比率 \(男:女\): ([\d\.:\sNA/]+)`},
		},
		PrevalenceCounts:  "各疾病數量統計:",
		PrevalencePercent: "各疾病盛行率 (%):",
		GenderHeader:      "--- (3)",
		GenderTable:       "各疾病中的性別分佈 (按案例數排序):",
		AgeHeader:         "--- (4)",
		AgeTable:          "各疾病的年齡分佈統計 (按案例數排序):",
		EvolutionHeader:   "--- (5)",
		EvolutionSection:  "--- (5) 初始疾病演變分析 ---",
		CohortPrefix:      "--- 初始診斷為 '",
		CohortSuffix:      "' 的後續疾病分析 ---",
		CohortSeparator:   strings.Repeat("=", 50),
		NoDataPhrases:     []string{"沒有找到", "未發現", "沒有後續追蹤紀錄"},
		ArtifactToken:     "Name:",
	}
}

// Validate reports the first required marker that is empty.
func (m Markers) Validate() error {
	if m.Version == "" {
		return fmt.Errorf("markers: version is required")
	}
	required := []struct {
		key, value string
	}{
		{"prevalence_counts", m.PrevalenceCounts},
		{"prevalence_percent", m.PrevalencePercent},
		{"gender_header", m.GenderHeader},
		{"gender_table", m.GenderTable},
		{"age_header", m.AgeHeader},
		{"age_table", m.AgeTable},
		{"evolution_header", m.EvolutionHeader},
		{"evolution_section", m.EvolutionSection},
		{"cohort_prefix", m.CohortPrefix},
		{"cohort_suffix", m.CohortSuffix},
		{"cohort_separator", m.CohortSeparator},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("markers: %s is required", r.key)
		}
	}
	for i, f := range m.BasicStats {
		if f.Name == "" || f.Pattern == "" {
			return fmt.Errorf("markers: basic_stats[%d] needs a name and a pattern", i)
		}
	}
	return nil
}

// LoadMarkers reads a markers YAML file. Keys absent from the file keep
// their DefaultMarkers value.
func LoadMarkers(path string) (Markers, error) {
	m := DefaultMarkers()
	data, err := os.ReadFile(path)
	if err != nil {
		return Markers{}, fmt.Errorf("reading markers file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Markers{}, fmt.Errorf("parsing markers file %s: %w", path, err)
	}
	if err := m.Validate(); err != nil {
		return Markers{}, err
	}
	return m, nil
}
