// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tableio writes tables as comma-separated files with a UTF-8 byte
// order mark, so spreadsheet applications detect the encoding.
package tableio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/pdiddy/report-extract/pkg/types"
)

// Encode writes t to w: a BOM, the header row, then one line per record.
func Encode(w io.Writer, t *types.Table) error {
	bw := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())

	cw := csv.NewWriter(bw)
	if err := cw.Write(t.Header()); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i := range t.Records {
		if err := cw.Write(t.Row(i)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return bw.Close()
}

// WriteFile writes t to dir/t.Destination and returns the path. A file left
// incomplete by a failed write is removed.
func WriteFile(dir string, t *types.Table) (_ string, err error) {
	if t.Destination == "" {
		return "", fmt.Errorf("table %s has no destination", t.Name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(dir, t.Destination)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	if err := Encode(f, t); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
