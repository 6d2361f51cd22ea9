package domain

import "time"

// PriceTick is one raw observation for a ticker as read from an input source.
// Mid is nil when the source row carried no price.
type PriceTick struct {
	Ticker    string    // asset identifier
	Timestamp time.Time // observation time
	Mid       *float64  // mid price, NULL if missing
}

// PricePoint is a single (timestamp, mid) observation inside a PriceSeries.
// Missing prices are represented as NaN.
type PricePoint struct {
	Timestamp time.Time
	Mid       float64
}

// PriceSeries is the ordered price history of one ticker.
// Timestamps are strictly increasing; sampling may contain gaps.
type PriceSeries struct {
	Ticker string
	Points []PricePoint
}

// Len returns the number of observations.
func (s *PriceSeries) Len() int {
	return len(s.Points)
}

// Timestamps returns the series index.
func (s *PriceSeries) Timestamps() []time.Time {
	out := make([]time.Time, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Timestamp
	}
	return out
}

// Mids returns the price column.
func (s *PriceSeries) Mids() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Mid
	}
	return out
}
