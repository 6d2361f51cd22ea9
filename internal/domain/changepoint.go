package domain

import "time"

// ChangepointRecord is one row of change-point detection output for an asset.
type ChangepointRecord struct {
	Ticker         string
	Date           time.Time // timestamp index of the detector output
	T              float64   // time index the detector evaluated
	Location       float64   // cp_location
	Score          float64   // cp_score
	LocationNorm   float64   // (T - Location) / lookback window length
	LookbackWindow int
}
