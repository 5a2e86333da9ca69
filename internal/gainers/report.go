package gainers

import "time"

// Report is the externally visible result for one ranked ticker.
// Immutable; created by the Engine and handed to the caller by value.
type Report struct {
	Ticker        string    `json:"ticker"`
	Name          string    `json:"name"`
	Price         float64   `json:"current_price"`
	AvgPrice      float64   `json:"avg_price,omitempty"`
	Volume        int64     `json:"volume"`
	WindowGainPct float64   `json:"gain_window"`
	DayGainPct    float64   `json:"gain_day"`
	Timestamp     time.Time `json:"timestamp"`
}

// candidate is a ticker provisionally selected for bar/name enrichment.
// Pipeline-internal, never persisted.
type candidate struct {
	ticker  string
	price   float64
	volume  int64
	dayGain float64
}
