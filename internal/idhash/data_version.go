// Package idhash computes deterministic content hashes.
package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"

	"momentum-feature-lab/internal/domain"
)

// ShortVersionLen is the length of the abbreviated data version.
const ShortVersionLen = 12

// DataVersion computes a deterministic version of a feature table using SHA256.
// Formula: SHA256 over one line per row, in row order:
// ticker|date_unix_nano|mid|srs|...|cp windows
// Returns hex-encoded hash (64 characters).
func DataVersion(rows []*domain.FeatureRow) string {
	h := sha256.New()
	buf := make([]byte, 0, 512)
	for _, r := range rows {
		buf = appendRow(buf[:0], r)
		h.Write(buf)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ShortDataVersion returns the first ShortVersionLen characters of DataVersion.
func ShortDataVersion(rows []*domain.FeatureRow) string {
	return DataVersion(rows)[:ShortVersionLen]
}

func appendRow(buf []byte, r *domain.FeatureRow) []byte {
	buf = append(buf, r.Ticker...)
	buf = append(buf, '|')
	buf = strconv.AppendInt(buf, r.Date.UnixNano(), 10)
	for _, v := range []float64{r.Mid, r.Srs, r.SecondReturns, r.SecondVol, r.TargetReturns} {
		buf = appendFloat(buf, v)
	}
	for _, v := range r.NormReturns {
		buf = appendFloat(buf, v)
	}
	for _, v := range r.TrendSignals {
		buf = appendFloat(buf, v)
	}
	for _, cp := range r.Changepoints {
		buf = fmt.Appendf(buf, "|cp%d", cp.LookbackWindow)
		buf = appendFloat(buf, cp.Location)
		buf = appendFloat(buf, cp.Score)
	}
	return append(buf, '\n')
}

func appendFloat(buf []byte, v float64) []byte {
	buf = append(buf, '|')
	return strconv.AppendFloat(buf, v, 'g', -1, 64)
}
