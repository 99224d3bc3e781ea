// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/report-extract/internal/assemble"
	"github.com/pdiddy/report-extract/internal/pipeline"
	"github.com/pdiddy/report-extract/internal/store"
	"github.com/pdiddy/report-extract/pkg/types"
)

// extractionConfig resolves flags, environment and config file into one
// ExtractionConfig.
func extractionConfig() types.ExtractionConfig {
	return types.ExtractionConfig{
		ReportPath:   viper.GetString("report"),
		OutputDir:    viper.GetString("output_dir"),
		MarkersPath:  viper.GetString("markers"),
		WriteSummary: viper.GetBool("summary"),
		ArchivePath:  viper.GetString("archive"),
	}.Defaults()
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := extractionConfig()

	markers, err := cfg.LoadMarkers()
	if err != nil {
		return err
	}
	assemblers, err := assemble.All(markers)
	if err != nil {
		return err
	}

	var archive pipeline.Archive
	if cfg.ArchivePath != "" {
		s, err := store.Open(cfg.ArchivePath)
		if err != nil {
			return err
		}
		defer s.Close()

		rec, err := s.BeginRun(ctx, cfg.ReportPath, markers.Version)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Archiving run %s to %s\n", rec.RunID(), cfg.ArchivePath)
		archive = rec
	}

	summary, err := pipeline.Run(ctx, cfg, markers, assemblers, archive, cmd.OutOrStdout())
	if errors.Is(err, pipeline.ErrReportUnavailable) {
		return fmt.Errorf("%w (run the analysis stage first to produce it)", err)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if summary.Complete() {
		fmt.Fprintln(out, "All report sections converted to CSV.")
	} else {
		fmt.Fprintln(out, "Some report sections were not converted:")
		for _, s := range summary.Skipped {
			fmt.Fprintf(out, "  %s: %s\n", assemble.Destination(s.Name), s.Reason)
		}
	}
	return nil
}
