// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package section splits analysis report text into marker-delimited spans.
// Every function is a pure substring operation on its input.
package section

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrSectionNotFound is returned when a start marker does not occur in the text.
var ErrSectionNotFound = errors.New("section not found")

// Between returns the text strictly between start and end. The end marker
// is searched only after the start marker, so a header that recurs earlier
// in the report cannot close the section. An empty or absent end marker
// extends the section to end-of-text.
func Between(text, start, end string) (string, error) {
	i := strings.Index(text, start)
	if i < 0 {
		return "", fmt.Errorf("%w: marker %q", ErrSectionNotFound, start)
	}
	rest := text[i+len(start):]
	if end == "" {
		return rest, nil
	}
	if j := strings.Index(rest, end); j >= 0 {
		return rest[:j], nil
	}
	return rest, nil
}

// After returns everything following start. It is Between for the last
// section of a report.
func After(text, start string) (string, error) {
	return Between(text, start, "")
}

// Cut returns text up to the first occurrence of terminator, or all of
// text when the terminator is absent.
func Cut(text, terminator string) string {
	if terminator == "" {
		return text
	}
	before, _, _ := strings.Cut(text, terminator)
	return before
}

// Block is one repeating sub-section, introduced by a marker whose capture
// group is the block label.
type Block struct {
	Label string
	Body  string
}

// Blocks splits text at every match of marker and returns the blocks in the
// order they appear. Text before the first marker is discarded. marker must
// have one capture group; its first submatch becomes the label.
func Blocks(text string, marker *regexp.Regexp) []Block {
	locs := marker.FindAllStringSubmatchIndex(text, -1)
	blocks := make([]Block, 0, len(locs))
	for n, loc := range locs {
		label := ""
		if len(loc) >= 4 && loc[2] >= 0 {
			label = text[loc[2]:loc[3]]
		}
		end := len(text)
		if n+1 < len(locs) {
			end = locs[n+1][0]
		}
		blocks = append(blocks, Block{Label: label, Body: text[loc[1]:end]})
	}
	return blocks
}

// MarkerPattern builds a block marker regexp from the literal text around
// the label. The label is matched lazily and may not span lines.
func MarkerPattern(prefix, suffix string) *regexp.Regexp {
	return regexp.MustCompile(regexp.QuoteMeta(prefix) + `(.+?)` + regexp.QuoteMeta(suffix))
}
