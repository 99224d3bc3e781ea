// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline reads an analysis report once and runs every table
// assembler against it. A failing assembler is recorded as a skip and the
// run continues; only an unreadable report stops the pipeline.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/pdiddy/report-extract/internal/assemble"
	"github.com/pdiddy/report-extract/internal/tableio"
	"github.com/pdiddy/report-extract/pkg/types"
)

// SummaryFile is the run summary written to the output directory.
const SummaryFile = "report_summary.yaml"

// ErrReportUnavailable is returned when the report cannot be read at all.
var ErrReportUnavailable = errors.New("report unavailable")

// Archive receives every written table and every skip. Implemented by
// store.Recorder.
type Archive interface {
	SaveTable(ctx context.Context, t *types.Table) error
	SaveSkip(ctx context.Context, name, reason string) error
}

// Written describes one table file produced by a run.
type Written struct {
	Name    string `yaml:"name"`
	Path    string `yaml:"path"`
	Rows    int    `yaml:"rows"`
	Dropped int    `yaml:"dropped_lines,omitempty"`

	EmptyCohorts []string `yaml:"empty_cohorts,omitempty"`
}

// Skipped describes a table that was not produced and why.
type Skipped struct {
	Name   string `yaml:"name"`
	Reason string `yaml:"reason"`
}

// Summary lists the outcome of every assembler in run order.
type Summary struct {
	Report         string    `yaml:"report"`
	MarkersVersion string    `yaml:"markers_version"`
	Written        []Written `yaml:"written,omitempty"`
	Skipped        []Skipped `yaml:"skipped,omitempty"`
}

// Complete reports whether every table was written.
func (s Summary) Complete() bool {
	return len(s.Skipped) == 0
}

// ReadReport loads the whole report. A leading UTF-8 byte order mark is
// removed.
func ReadReport(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrReportUnavailable, err)
	}
	defer f.Close()

	r := transform.NewReader(f, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %w", ErrReportUnavailable, path, err)
	}
	return string(data), nil
}

// Run reads cfg.ReportPath and writes one CSV file per assembled table to
// cfg.OutputDir, logging each outcome to w. archive may be nil.
func Run(ctx context.Context, cfg types.ExtractionConfig, markers types.Markers, assemblers []assemble.Assembler, archive Archive, w io.Writer) (Summary, error) {
	cfg = cfg.Defaults()

	report, err := ReadReport(cfg.ReportPath)
	if err != nil {
		return Summary{}, err
	}
	fmt.Fprintf(w, "parsing %s\n", cfg.ReportPath)

	summary := Summary{Report: cfg.ReportPath, MarkersVersion: markers.Version}

	for _, a := range assemblers {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		out, err := safeAssemble(a, report)
		if err != nil {
			summary.skip(ctx, archive, w, a.Name(), err.Error())
			continue
		}

		path, err := tableio.WriteFile(cfg.OutputDir, out.Table)
		if err != nil {
			summary.skip(ctx, archive, w, a.Name(), "write error: "+err.Error())
			continue
		}

		if archive != nil {
			if err := archive.SaveTable(ctx, out.Table); err != nil {
				fmt.Fprintf(w, "warning: archiving %s failed: %v\n", a.Name(), err)
			}
		}

		summary.Written = append(summary.Written, Written{
			Name:         a.Name(),
			Path:         path,
			Rows:         out.Table.Len(),
			Dropped:      len(out.Dropped),
			EmptyCohorts: out.EmptyCohorts,
		})
		fmt.Fprintf(w, "wrote   %s (%d rows)\n", filepath.Base(path), out.Table.Len())
		for _, m := range out.Dropped {
			fmt.Fprintf(w, "  dropped %s\n", m.Error())
		}
		for _, label := range out.EmptyCohorts {
			fmt.Fprintf(w, "  no follow-up data for %q\n", label)
		}
	}

	fmt.Fprintf(w, "\nwritten: %d, skipped: %d\n", len(summary.Written), len(summary.Skipped))

	if cfg.WriteSummary {
		if err := WriteSummary(filepath.Join(cfg.OutputDir, SummaryFile), summary); err != nil {
			fmt.Fprintf(w, "warning: %s write failed: %v\n", SummaryFile, err)
		}
	}

	return summary, nil
}

func (s *Summary) skip(ctx context.Context, archive Archive, w io.Writer, name, reason string) {
	s.Skipped = append(s.Skipped, Skipped{Name: name, Reason: reason})
	fmt.Fprintf(w, "skipped %s: %s\n", name, reason)
	if archive != nil {
		if err := archive.SaveSkip(ctx, name, reason); err != nil {
			fmt.Fprintf(w, "warning: archiving skip of %s failed: %v\n", name, err)
		}
	}
}

// safeAssemble runs a and turns a panic into an error so one broken
// section cannot abort the run.
func safeAssemble(a assemble.Assembler, report string) (out assemble.Output, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("assembler panicked: %v", r)
		}
	}()

	out, err = a.Assemble(report)
	if err == nil && out.Table == nil {
		err = fmt.Errorf("%s: %w", a.Name(), assemble.ErrNoData)
	}
	return out, err
}

// WriteSummary marshals the summary to a YAML file.
func WriteSummary(path string, s Summary) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling summary: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
