package polygon

import "time"

// Bar is a single fixed-duration OHLCV sample (here: 1 minute).
// Immutable once constructed; only this package produces Bars.
type Bar struct {
	Ticker    string    `json:"ticker"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
	Timestamp time.Time `json:"timestamp"`
	VWAP      float64   `json:"vwap,omitempty"`
}

// TickerSnapshot is Polygon's current aggregate view of one ticker's session.
// Field names follow the /v2/snapshot wire format.
type TickerSnapshot struct {
	Ticker           string        `json:"ticker"`
	TodaysChange     float64       `json:"todaysChange"`
	TodaysChangePerc float64       `json:"todaysChangePerc"`
	Updated          int64         `json:"updated"`
	Day              SnapshotAgg   `json:"day"`
	Min              SnapshotAgg   `json:"min"`
	PrevDay          SnapshotAgg   `json:"prevDay"`
	LastTrade        SnapshotTrade `json:"lastTrade"`
}

// SnapshotAgg is one aggregate window inside a snapshot (day, min, prevDay)
type SnapshotAgg struct {
	Open   float64 `json:"o"`
	High   float64 `json:"h"`
	Low    float64 `json:"l"`
	Close  float64 `json:"c"`
	Volume float64 `json:"v"`
	VWAP   float64 `json:"vw"`
}

// SnapshotTrade is the last trade inside a snapshot
type SnapshotTrade struct {
	Price     float64 `json:"p"`
	Size      float64 `json:"s"`
	Timestamp int64   `json:"t"`
}

// GroupedBar is one ticker's daily bar from the grouped-daily endpoint
type GroupedBar struct {
	Ticker    string  `json:"T"`
	Open      float64 `json:"o"`
	High      float64 `json:"h"`
	Low       float64 `json:"l"`
	Close     float64 `json:"c"`
	Volume    float64 `json:"v"`
	VWAP      float64 `json:"vw"`
	Timestamp int64   `json:"t"`
}

// Wire-level response envelopes

type snapshotResponse struct {
	Status  string           `json:"status"`
	Count   int              `json:"count"`
	Tickers []TickerSnapshot `json:"tickers"`
}

type aggsResponse struct {
	Ticker       string   `json:"ticker"`
	Status       string   `json:"status"`
	QueryCount   int      `json:"queryCount"`
	ResultsCount int      `json:"resultsCount"`
	Results      []aggBar `json:"results"`
}

type aggBar struct {
	Volume    float64 `json:"v"`
	VWAP      float64 `json:"vw"`
	Open      float64 `json:"o"`
	Close     float64 `json:"c"`
	High      float64 `json:"h"`
	Low       float64 `json:"l"`
	Timestamp int64   `json:"t"` // ms epoch, start of the bar
	Trades    int     `json:"n"`
}

type groupedResponse struct {
	Status       string       `json:"status"`
	ResultsCount int          `json:"resultsCount"`
	Results      []GroupedBar `json:"results"`
}

type referenceResponse struct {
	Status  string            `json:"status"`
	Count   int               `json:"count"`
	Results []referenceTicker `json:"results"`
}

type referenceTicker struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
}

type singleReferenceResponse struct {
	Status  string          `json:"status"`
	Results referenceTicker `json:"results"`
}

// toBar converts a wire aggregate to a Bar
func (a aggBar) toBar(ticker string) Bar {
	return Bar{
		Ticker:    ticker,
		Open:      a.Open,
		High:      a.High,
		Low:       a.Low,
		Close:     a.Close,
		Volume:    int64(a.Volume),
		Timestamp: time.UnixMilli(a.Timestamp),
		VWAP:      a.VWAP,
	}
}
