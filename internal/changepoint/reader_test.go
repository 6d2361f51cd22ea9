package changepoint

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"momentum-feature-lab/internal/ingestion"
)

var day0 = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

func TestRead_RoundTrip(t *testing.T) {
	const L = 21
	var b strings.Builder
	b.WriteString("date,t,cp_location,cp_score,cp_location_norm\n")
	type rec struct{ t, loc, score float64 }
	want := []rec{{10, 3, 0.10}, {11, 3, 0.25}, {12, 9.5, 0.80}, {13, 12, 0.05}}
	for i, r := range want {
		fmt.Fprintf(&b, "%s,%g,%g,%g,%g\n", day0.AddDate(0, 0, i).Format("2006-01-02"), r.t, r.loc, r.score, (r.t-r.loc)/L)
	}

	got, err := Read(strings.NewReader(b.String()), "CME_ES", L)
	require.NoError(t, err)
	require.Len(t, got, len(want))

	for i, r := range want {
		assert.Equal(t, "CME_ES", got[i].Ticker)
		assert.Equal(t, day0.AddDate(0, 0, i), got[i].Date)
		assert.Equal(t, r.loc, got[i].Location)
		assert.Equal(t, r.score, got[i].Score)
		assert.InDelta(t, (r.t-r.loc)/L, got[i].LocationNorm, 1e-12)
		assert.Equal(t, L, got[i].LookbackWindow)
	}
}

func TestRead_FillThenRecompute(t *testing.T) {
	const L = 10
	// t=4 has no detection; its stored norm is the stale value of t=3.
	in := "date,t,cp_location,cp_score,cp_location_norm\n" +
		"2020-01-01,1,0.5,0.9,0.05\n" +
		"2020-01-02,2,1.0,0.8,0.1\n" +
		"2020-01-03,3,2.0,0.7,0.1\n" +
		"2020-01-04,4,,,0.1\n"

	got, err := Read(strings.NewReader(in), "X", L)
	require.NoError(t, err)
	require.Len(t, got, 4)

	last := got[3]
	assert.Equal(t, 4.0, last.T)
	assert.Equal(t, got[2].Location, last.Location)
	assert.Equal(t, got[2].Score, last.Score)
	assert.InDelta(t, (4-2.0)/L, last.LocationNorm, 1e-12)
	assert.NotEqual(t, got[2].LocationNorm, last.LocationNorm)
}

func TestRead_LeadingMissingDropped(t *testing.T) {
	in := "date,t,cp_location,cp_score\n" +
		"2020-01-01,1,,\n" +
		"2020-01-02,2,nan,NaN\n" +
		"2020-01-03,3,1,0.4\n" +
		"2020-01-04,4,,0.6\n"

	got, err := Read(strings.NewReader(in), "X", 21)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, day0.AddDate(0, 0, 2), got[0].Date)
	assert.Equal(t, 1.0, got[1].Location, "location filled independently of score")
	assert.Equal(t, 0.6, got[1].Score)
}

func TestRead_Errors(t *testing.T) {
	_, err := Read(strings.NewReader("date,t,cp_location\n2020-01-01,1,1\n"), "X", 21)
	assert.ErrorIs(t, err, ingestion.ErrMissingColumn)

	_, err = Read(strings.NewReader("date,t,cp_location,cp_score\nnot-a-date,1,1,1\n"), "X", 21)
	assert.ErrorContains(t, err, "line 2")

	_, err = Read(strings.NewReader("date,t,cp_location,cp_score\n"), "X", 0)
	assert.ErrorIs(t, err, ErrInvalidLookback)
}

func TestReadFile_TickerFromName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ICE_SB.csv")
	require.NoError(t, os.WriteFile(path, []byte("date,t,cp_location,cp_score\n2020-01-01,1,0,1\n"), 0o644))

	got, err := ReadFile(path, 21)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ICE_SB", got[0].Ticker)
}
