// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the report-extract CLI. Run without
// arguments it converts analysis_report.txt in the working directory into
// one CSV file per report section.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the report-extract CLI.
var rootCmd = &cobra.Command{
	Use:   "report-extract",
	Short: "Convert the chest X-ray analysis report into CSV tables",
	Long: `report-extract reads the text report written by the analysis stage and
recovers five tables from it: basic statistics, disease prevalence, disease and
gender, disease and age, and disease evolution by initial diagnosis.

Each table is written to its own UTF-8 CSV file (with byte order mark) in the
output directory. A section that is missing or unparseable is reported and
skipped; the command fails only when the report itself cannot be read.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runExtract,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./report-extract.yaml or ~/.config/report-extract/report-extract.yaml)")

	rootCmd.Flags().String("report", "analysis_report.txt", "analysis report to parse")
	rootCmd.Flags().String("output-dir", ".", "directory for the CSV tables")
	rootCmd.Flags().String("markers", "", "YAML file overriding the section markers")
	rootCmd.Flags().Bool("summary", false, "also write report_summary.yaml to the output directory")
	rootCmd.Flags().String("archive", "", "SQLite database that archives every written table")

	for key, flag := range map[string]string{
		"report":     "report",
		"output_dir": "output-dir",
		"markers":    "markers",
		"summary":    "summary",
		"archive":    "archive",
	} {
		if err := viper.BindPFlag(key, rootCmd.Flags().Lookup(flag)); err != nil {
			panic(err)
		}
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("report-extract")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "report-extract"))
		}
	}

	viper.SetEnvPrefix("REPORT_EXTRACT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
