package gainers

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/wonny/gainers/internal/polygon"
	"github.com/wonny/gainers/pkg/logger"
)

const (
	// The snapshot is already ordered by relevance; only this many entries
	// are considered, to cap provider load.
	candidatePool = 100

	// Candidates kept beyond TopN before the window re-rank, so reordering
	// on window gain doesn't require re-querying the market.
	candidateBuffer = 10
)

// MarketData is the provider surface the engine ranks from.
// polygon.Client satisfies it.
type MarketData interface {
	Gainers(ctx context.Context) ([]polygon.TickerSnapshot, error)
	AllTickers(ctx context.Context) ([]polygon.TickerSnapshot, error)
	RecentBars(ctx context.Context, tickers []string, minutes int, premarket bool) map[string][]polygon.Bar
	CompanyNames(ctx context.Context, tickers []string) map[string]string
}

// PriceSource selects which intraday price field takes precedence when
// reading a snapshot.
type PriceSource int

const (
	// PriceMinuteClose prefers the latest minute-bar close, then the daily
	// close, then the last trade. Default.
	PriceMinuteClose PriceSource = iota

	// PriceLastTrade prefers the last trade price, then the minute close,
	// then the daily close.
	PriceLastTrade
)

// Options configures one Engine.
type Options struct {
	TopN            int  // result size, default 20
	LookbackMinutes int  // window length in [1,30], default 10
	Premarket       bool // extended-hours bar queries

	PriceSource     PriceSource
	IncludeAvgPrice bool // also report the mean bar close over the window
}

func (o Options) withDefaults() Options {
	if o.TopN <= 0 {
		o.TopN = 20
	}
	if o.LookbackMinutes < 1 || o.LookbackMinutes > 30 {
		o.LookbackMinutes = 10
	}
	return o
}

// Engine ranks tickers by short-window momentum
// ⭐ SSOT: 게이너 랭킹 계산은 이 엔진에서만
type Engine struct {
	source MarketData
	opts   Options
	logger *logger.Logger
}

// New creates an Engine over a market data source
func New(source MarketData, opts Options, log *logger.Logger) *Engine {
	return &Engine{
		source: source,
		opts:   opts.withDefaults(),
		logger: log,
	}
}

// TopGainers ranks the market's current movers by window gain.
//
// Two-stage filter-then-refine: the daily-gain pre-filter is a cheap proxy
// that shrinks the candidate pool, so bar and name lookups (the expensive
// calls) are only issued for TopN+buffer tickers. The final re-sort on
// window gain is the ranking signal the result is ordered by.
func (e *Engine) TopGainers(ctx context.Context) ([]Report, error) {
	snapshots, err := e.source.Gainers(ctx)
	if err != nil {
		return nil, fmt.Errorf("top gainers: %w", err)
	}

	// Empty outside market hours or on restricted plans; fall back to the
	// full market snapshot before concluding there are no gainers.
	if len(snapshots) == 0 {
		e.logger.Debug("Gainers snapshot empty, falling back to all-tickers snapshot")
		snapshots, err = e.source.AllTickers(ctx)
		if err != nil {
			return nil, fmt.Errorf("top gainers fallback: %w", err)
		}
	}

	candidates := e.selectCandidates(snapshots)
	if len(candidates) == 0 {
		return []Report{}, nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].dayGain > candidates[j].dayGain
	})
	if keep := e.opts.TopN + candidateBuffer; len(candidates) > keep {
		candidates = candidates[:keep]
	}

	tickers := make([]string, len(candidates))
	for i, c := range candidates {
		tickers[i] = c.ticker
	}

	// Bars and names are independent lookups; issue them concurrently.
	// Both calls recover per-ticker failures internally.
	var (
		barsByTicker map[string][]polygon.Bar
		nameByTicker map[string]string
		wg           sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		barsByTicker = e.source.RecentBars(ctx, tickers, e.opts.LookbackMinutes, e.opts.Premarket)
	}()
	go func() {
		defer wg.Done()
		nameByTicker = e.source.CompanyNames(ctx, tickers)
	}()
	wg.Wait()

	now := time.Now()
	reports := make([]Report, 0, len(candidates))
	for _, c := range candidates {
		bars := barsByTicker[c.ticker]

		report := Report{
			Ticker:        c.ticker,
			Name:          displayName(nameByTicker, c.ticker),
			Price:         c.price,
			Volume:        c.volume,
			WindowGainPct: round2(windowGain(bars)),
			DayGainPct:    round2(c.dayGain),
			Timestamp:     now,
		}
		if e.opts.IncludeAvgPrice {
			report.AvgPrice = round4(avgClose(bars, c.price))
		}

		reports = append(reports, report)
	}

	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].WindowGainPct > reports[j].WindowGainPct
	})
	if len(reports) > e.opts.TopN {
		reports = reports[:e.opts.TopN]
	}

	return reports, nil
}

// TopGainersFast ranks using only the provider's gainers snapshot, trusting
// its todaysChangePerc as a stand-in for window gain. Lower latency and
// lower precision than TopGainers; no bar fetches at all.
func (e *Engine) TopGainersFast(ctx context.Context) ([]Report, error) {
	snapshots, err := e.source.Gainers(ctx)
	if err != nil {
		return nil, fmt.Errorf("top gainers (fast): %w", err)
	}

	candidates := e.selectCandidates(snapshots)
	if len(candidates) > e.opts.TopN {
		candidates = candidates[:e.opts.TopN]
	}
	if len(candidates) == 0 {
		return []Report{}, nil
	}

	changeByTicker := make(map[string]float64, len(snapshots))
	for _, s := range snapshots {
		changeByTicker[s.Ticker] = s.TodaysChangePerc
	}

	tickers := make([]string, len(candidates))
	for i, c := range candidates {
		tickers[i] = c.ticker
	}
	nameByTicker := e.source.CompanyNames(ctx, tickers)

	now := time.Now()
	reports := make([]Report, 0, len(candidates))
	for _, c := range candidates {
		windowGain := changeByTicker[c.ticker]
		if windowGain == 0 {
			windowGain = c.dayGain
		}

		report := Report{
			Ticker:        c.ticker,
			Name:          displayName(nameByTicker, c.ticker),
			Price:         c.price,
			Volume:        c.volume,
			WindowGainPct: round2(windowGain),
			DayGainPct:    round2(c.dayGain),
			Timestamp:     now,
		}
		if e.opts.IncludeAvgPrice {
			report.AvgPrice = round4(c.price)
		}

		reports = append(reports, report)
	}

	return reports, nil
}

// selectCandidates extracts ranked candidates from the first candidatePool
// snapshot entries. Entries without a ticker or with a non-positive price
// are discarded here and can never reach the output.
func (e *Engine) selectCandidates(snapshots []polygon.TickerSnapshot) []candidate {
	if len(snapshots) > candidatePool {
		snapshots = snapshots[:candidatePool]
	}

	candidates := make([]candidate, 0, len(snapshots))
	for _, snap := range snapshots {
		if snap.Ticker == "" {
			continue
		}

		price := e.currentPrice(snap)
		if price <= 0 {
			continue
		}

		dayGain := 0.0
		if prevClose := snap.PrevDay.Close; prevClose > 0 {
			dayGain = (price - prevClose) / prevClose * 100
		}

		candidates = append(candidates, candidate{
			ticker:  snap.Ticker,
			price:   price,
			volume:  int64(snap.Day.Volume),
			dayGain: dayGain,
		})
	}

	return candidates
}

// currentPrice reads the snapshot's price by the configured precedence
func (e *Engine) currentPrice(snap polygon.TickerSnapshot) float64 {
	var order []float64
	switch e.opts.PriceSource {
	case PriceLastTrade:
		order = []float64{snap.LastTrade.Price, snap.Min.Close, snap.Day.Close}
	default: // PriceMinuteClose
		order = []float64{snap.Min.Close, snap.Day.Close, snap.LastTrade.Price}
	}

	for _, p := range order {
		if p > 0 {
			return p
		}
	}
	return 0
}

// windowGain computes the percentage change across a bar window:
// (last close - first open) / first open. Fewer than 2 bars, or a
// non-positive base price, ranks the ticker flat instead of dropping it.
func windowGain(bars []polygon.Bar) float64 {
	if len(bars) < 2 {
		return 0
	}

	base := bars[0].Open
	if base <= 0 {
		return 0
	}

	return (bars[len(bars)-1].Close - base) / base * 100
}

// avgClose is the mean bar close over the window, defaulting to the
// current price when the window is too thin.
func avgClose(bars []polygon.Bar, fallback float64) float64 {
	if len(bars) < 2 {
		return fallback
	}

	sum := 0.0
	for _, b := range bars {
		sum += b.Close
	}
	return sum / float64(len(bars))
}

func displayName(names map[string]string, ticker string) string {
	if name, ok := names[ticker]; ok && name != "" {
		return name
	}
	return ticker
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
