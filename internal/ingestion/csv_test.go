package ingestion

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseTimestamp_Layouts(t *testing.T) {
	cases := map[string]time.Time{
		"2024-03-04":                    time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		"2024-03-04 14:30:05":           time.Date(2024, 3, 4, 14, 30, 5, 0, time.UTC),
		"2024-03-04T14:30:05":           time.Date(2024, 3, 4, 14, 30, 5, 0, time.UTC),
		"2024-03-04T14:30:05Z":          time.Date(2024, 3, 4, 14, 30, 5, 0, time.UTC),
		"2024-03-04 14:30:05.250":       time.Date(2024, 3, 4, 14, 30, 5, 250e6, time.UTC),
		"2024-03-04 09:30:05-05:00":     time.Date(2024, 3, 4, 14, 30, 5, 0, time.UTC),
		"2024-03-04T09:30:05.5-05:00":   time.Date(2024, 3, 4, 14, 30, 5, 500e6, time.UTC),
		"  2024-03-04 14:30  ":          time.Date(2024, 3, 4, 14, 30, 0, 0, time.UTC),
		"2024/03/04":                    time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
	}
	for in, want := range cases {
		got, err := ParseTimestamp(in)
		if err != nil {
			t.Errorf("ParseTimestamp(%q) failed: %v", in, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("ParseTimestamp(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := ParseTimestamp("yesterday"); err == nil {
		t.Error("Expected error for unparseable timestamp")
	}
}

func TestParseValue(t *testing.T) {
	for _, missing := range []string{"", "nan", "NaN", "NA", "null", "None", " "} {
		v, err := ParseValue(missing)
		if err != nil || !math.IsNaN(v) {
			t.Errorf("ParseValue(%q) = %v, %v; want NaN", missing, v, err)
		}
	}

	v, err := ParseValue(" 101.25 ")
	if err != nil || v != 101.25 {
		t.Errorf("ParseValue = %v, %v; want 101.25", v, err)
	}

	if _, err := ParseValue("abc"); err == nil {
		t.Error("Expected error for non-numeric cell")
	}
}

func TestReadTable_Empty(t *testing.T) {
	_, err := ReadTable(strings.NewReader(""))
	if !errors.Is(err, ErrEmptyFile) {
		t.Errorf("Expected ErrEmptyFile, got %v", err)
	}
}

func TestReadTable_ColumnLookup(t *testing.T) {
	table, err := ReadTable(strings.NewReader("\ufeffDate, Mid\n2024-01-02,1\n"))
	if err != nil {
		t.Fatalf("ReadTable failed: %v", err)
	}
	if table.Column("date") != 0 || table.Column("MID") != 1 || table.Column("ticker") != -1 {
		t.Errorf("Unexpected column lookup on header %q", table.Header)
	}
	if len(table.Rows) != 1 {
		t.Errorf("Expected 1 row, got %d", len(table.Rows))
	}
}

func TestCSVFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.csv", "a.CSV", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.csv"), 0o755); err != nil {
		t.Fatal(err)
	}

	files, err := CSVFiles(dir)
	if err != nil {
		t.Fatalf("CSVFiles failed: %v", err)
	}
	if len(files) != 2 || filepath.Base(files[0]) != "a.CSV" || filepath.Base(files[1]) != "b.csv" {
		t.Errorf("Unexpected files: %v", files)
	}
}

func TestTickerFromPath(t *testing.T) {
	if got := TickerFromPath("/data/quandl_cpd_21lbw/CME_ES.csv"); got != "CME_ES" {
		t.Errorf("Expected CME_ES, got %s", got)
	}
}
