package types

// ExtractionConfig holds settings for one report-to-table run.
type ExtractionConfig struct {
	// ReportPath is the analysis report to read (default "analysis_report.txt").
	ReportPath string `json:"report" yaml:"report"`

	// OutputDir is the directory that receives one CSV file per table (default ".").
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// MarkersPath is an optional YAML file overriding the default section markers.
	MarkersPath string `json:"markers,omitempty" yaml:"markers,omitempty"`

	// WriteSummary controls whether report_summary.yaml is written to OutputDir.
	WriteSummary bool `json:"summary" yaml:"summary"`

	// ArchivePath is an optional SQLite database that also receives every written table.
	ArchivePath string `json:"archive,omitempty" yaml:"archive,omitempty"`
}

// Defaults fills unset fields with their default values.
func (c ExtractionConfig) Defaults() ExtractionConfig {
	if c.ReportPath == "" {
		c.ReportPath = "analysis_report.txt"
	}
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	return c
}

// LoadMarkers returns the markers named by MarkersPath, or DefaultMarkers
// when no file is configured.
func (c ExtractionConfig) LoadMarkers() (Markers, error) {
	if c.MarkersPath == "" {
		return DefaultMarkers(), nil
	}
	return LoadMarkers(c.MarkersPath)
}
