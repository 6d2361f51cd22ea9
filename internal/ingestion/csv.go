package ingestion

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrEmptyFile is returned for a CSV file without a header row.
var ErrEmptyFile = errors.New("csv file has no header")

// Table is a parsed CSV file.
type Table struct {
	Header []string
	Rows   [][]string
}

// ReadTable reads a CSV file with a header row. Every record must have as
// many fields as the header.
func ReadTable(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	return &Table{Header: header, Rows: rows}, nil
}

// Column returns the index of the first header matching any of names,
// case-insensitively, or -1.
func (t *Table) Column(names ...string) int {
	for i, h := range t.Header {
		for _, n := range names {
			if strings.EqualFold(h, n) {
				return i
			}
		}
	}
	return -1
}

var missingTokens = map[string]struct{}{
	"": {}, "nan": {}, "-nan": {}, "na": {}, "n/a": {}, "null": {}, "none": {}, "<na>": {},
}

// ParseValue parses a numeric cell. Empty and NA-like cells are missing and
// yield NaN.
func ParseValue(cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	if _, ok := missingTokens[strings.ToLower(cell)]; ok {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, fmt.Errorf("parse value %q: %w", cell, err)
	}
	return v, nil
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
}

// ParseTimestamp parses a timestamp cell. Values without a zone are UTC.
// Fractional seconds are accepted after the seconds field.
func ParseTimestamp(cell string) (time.Time, error) {
	cell = strings.TrimSpace(cell)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, cell); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", cell)
}

// TickerFromPath derives a ticker from a file name minus its extension.
func TickerFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// CSVFiles lists the .csv files directly under dir, sorted by name.
func CSVFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// FileError records a file that could not be loaded.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}
