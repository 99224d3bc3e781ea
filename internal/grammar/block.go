// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package grammar

import (
	"strings"

	"github.com/pdiddy/report-extract/pkg/types"
)

// BlockOptions controls how ParseBlock treats a section body.
type BlockOptions struct {
	// SkipHeader drops the first non-blank line (the column header row).
	SkipHeader bool

	// Sentinels are "no data" phrases. A block containing any of them
	// yields no records and is reported as Empty.
	Sentinels []string

	// Exclude drops data rows whose text contains any of these tokens.
	// Excluded rows are not mismatches.
	Exclude []string
}

// BlockResult is the outcome of parsing one block.
type BlockResult struct {
	Records    []types.Record
	Mismatches []Mismatch

	// Empty is set when a sentinel phrase short-circuited the block.
	Empty    bool
	Sentinel string
}

// ParseBlock applies g to every line of block independently. Blank lines are
// ignored; lines that do not fit g are collected as mismatches.
func ParseBlock(g Grammar, block string, opts BlockOptions) BlockResult {
	if s, ok := findSentinel(block, opts.Sentinels); ok {
		return BlockResult{Empty: true, Sentinel: s}
	}

	var res BlockResult
	headerSkipped := !opts.SkipHeader

	for n, line := range strings.Split(block, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if !headerSkipped {
			headerSkipped = true
			continue
		}
		if containsAny(trimmed, opts.Exclude) {
			continue
		}

		rec, err := g.ParseLine(trimmed)
		if err != nil {
			res.Mismatches = append(res.Mismatches, Mismatch{
				Line:   n + 1,
				Text:   trimmed,
				Reason: err.Error(),
			})
			continue
		}
		res.Records = append(res.Records, rec)
	}
	return res
}

// HasSentinel reports whether text contains one of the phrases.
func HasSentinel(text string, phrases []string) bool {
	_, ok := findSentinel(text, phrases)
	return ok
}

func findSentinel(text string, phrases []string) (string, bool) {
	for _, p := range phrases {
		if p != "" && strings.Contains(text, p) {
			return p, true
		}
	}
	return "", false
}

func containsAny(text string, tokens []string) bool {
	for _, t := range tokens {
		if t != "" && strings.Contains(text, t) {
			return true
		}
	}
	return false
}
