//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// reportFile is the analysis stage output that Extract converts.
const reportFile = "analysis_report.txt"

// Extract builds the CLI and converts analysis_report.txt in the working
// directory into CSV tables plus a run summary.
func Extract() error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "--report", reportFile, "--output-dir", ".", "--summary")
}

// Archive is Extract with every written table also stored in
// output/archive.db.
func Archive() error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "--report", reportFile, "--output-dir", ".", "--summary",
		"--archive", "output/archive.db")
}
