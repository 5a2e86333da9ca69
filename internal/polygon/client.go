package polygon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/wonny/gainers/pkg/httputil"
	"github.com/wonny/gainers/pkg/logger"
)

const (
	// Polygon /v3/reference/tickers accepts a comma-separated filter;
	// chunks of 50 keep the URL well under length limits.
	nameBatchSize = 50

	// Extra look-back requested before the bar window so short trading
	// gaps don't starve it.
	barLeadIn = 5 * time.Minute

	defaultConcurrency = 50
)

// Client talks to the Polygon.io REST API
// ⭐ SSOT: Polygon 호출은 이 클라이언트를 통해서만
//
// One Client is scoped to one logical session: it carries the caller's API
// key and owns the session's NameCache. The shared httputil.Client owns
// connection pooling, timeouts and the outbound rate budget.
type Client struct {
	apiKey  string
	baseURL string

	http   *httputil.Client
	logger *logger.Logger
	names  *NameCache

	// Bounds concurrent in-flight bar fetches
	concurrency int
}

// New creates a Polygon client authenticated with the given API key
func New(apiKey, baseURL string, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		apiKey:      apiKey,
		baseURL:     strings.TrimRight(baseURL, "/"),
		http:        httpClient,
		logger:      log,
		names:       NewNameCache(),
		concurrency: defaultConcurrency,
	}
}

// WithConcurrency bounds the bar-fetch fan-out
func (c *Client) WithConcurrency(n int) *Client {
	if n > 0 {
		c.concurrency = n
	}
	return c
}

// Gainers fetches Polygon's current top-gainers snapshot.
// The list comes back ordered by daily change; it is empty outside market
// hours or on plans without snapshot access.
func (c *Client) Gainers(ctx context.Context) ([]TickerSnapshot, error) {
	var resp snapshotResponse
	if err := c.get(ctx, "/v2/snapshot/locale/us/markets/stocks/gainers", nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch gainers snapshot: %w", err)
	}

	return resp.Tickers, nil
}

// AllTickers fetches the snapshot of every tradable US ticker.
// Used as a fallback when the gainers endpoint returns nothing.
func (c *Client) AllTickers(ctx context.Context) ([]TickerSnapshot, error) {
	params := url.Values{}
	params.Set("include_otc", "true")

	var resp snapshotResponse
	if err := c.get(ctx, "/v2/snapshot/locale/us/markets/stocks/tickers", params, &resp); err != nil {
		return nil, fmt.Errorf("fetch all-tickers snapshot: %w", err)
	}

	return resp.Tickers, nil
}

// AggregateBars fetches 1-minute bars for a ticker covering [from, to],
// ascending. Range bounds are encoded as calendar dates normally and as
// millisecond epochs in premarket mode, which captures extended-hours bars.
func (c *Client) AggregateBars(ctx context.Context, ticker string, from, to time.Time, premarket bool) ([]Bar, error) {
	fromStr := from.Format("2006-01-02")
	toStr := to.Format("2006-01-02")
	if premarket {
		fromStr = fmt.Sprintf("%d", from.UnixMilli())
		toStr = fmt.Sprintf("%d", to.UnixMilli())
	}

	params := url.Values{}
	params.Set("adjusted", "true")
	params.Set("sort", "asc")
	params.Set("limit", "50000")

	endpoint := fmt.Sprintf("/v2/aggs/ticker/%s/range/1/minute/%s/%s", ticker, fromStr, toStr)

	var resp aggsResponse
	if err := c.get(ctx, endpoint, params, &resp); err != nil {
		return nil, fmt.Errorf("fetch bars for %s: %w", ticker, err)
	}

	bars := make([]Bar, 0, len(resp.Results))
	for _, raw := range resp.Results {
		bars = append(bars, raw.toBar(ticker))
	}
	return bars, nil
}

// RecentBars fetches 1-minute bars for every ticker over the trailing
// look-back window, ending one full minute before now so an in-progress bar
// is never included. Fetches run as a bounded unordered fan-out; a failed
// ticker resolves to an empty slice and never aborts its siblings.
func (c *Client) RecentBars(ctx context.Context, tickers []string, minutes int, premarket bool) map[string][]Bar {
	end := time.Now().Add(-1 * time.Minute).Truncate(time.Minute)
	start := end.Add(-time.Duration(minutes-1) * time.Minute)
	from := start.Add(-barLeadIn)

	result := make(map[string][]Bar, len(tickers))
	var mu sync.Mutex
	var wg sync.WaitGroup

	sem := make(chan struct{}, c.concurrency)

	for _, ticker := range tickers {
		wg.Add(1)
		go func(ticker string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			bars, err := c.AggregateBars(ctx, ticker, from, end, premarket)
			if err != nil {
				c.logger.WithError(err).WithField("ticker", ticker).Debug("Bar fetch failed, ranking flat")
				bars = nil
			}

			window := clipWindow(bars, start, end, minutes)

			mu.Lock()
			result[ticker] = window
			mu.Unlock()
		}(ticker)
	}

	wg.Wait()
	return result
}

// clipWindow keeps bars inside [start, end], at most the trailing `minutes`
func clipWindow(bars []Bar, start, end time.Time, minutes int) []Bar {
	window := make([]Bar, 0, minutes)
	for _, b := range bars {
		if b.Timestamp.Before(start) || b.Timestamp.After(end) {
			continue
		}
		window = append(window, b)
	}

	if len(window) > minutes {
		window = window[len(window)-minutes:]
	}
	return window
}

// CompanyNames resolves display names for a set of tickers, cache first,
// then the network in chunks of nameBatchSize. Every input ticker appears
// in the result; anything unresolved falls back to the symbol itself, so
// this never fails as a whole.
func (c *Client) CompanyNames(ctx context.Context, tickers []string) map[string]string {
	result := make(map[string]string, len(tickers))

	var uncached []string
	for _, t := range tickers {
		if name, ok := c.names.Get(t); ok {
			result[t] = name
		} else {
			uncached = append(uncached, t)
		}
	}

	for i := 0; i < len(uncached); i += nameBatchSize {
		chunk := uncached[i:min(i+nameBatchSize, len(uncached))]

		params := url.Values{}
		params.Set("ticker.in", strings.Join(chunk, ","))
		params.Set("limit", fmt.Sprintf("%d", len(chunk)))

		var resp referenceResponse
		if err := c.get(ctx, "/v3/reference/tickers", params, &resp); err != nil {
			c.logger.WithError(err).WithField("chunk_size", len(chunk)).Warn("Name batch lookup failed, falling back to symbols")
			continue
		}

		for _, item := range resp.Results {
			if item.Ticker == "" {
				continue
			}
			name := item.Name
			if name == "" {
				name = item.Ticker
			}
			c.names.Put(item.Ticker, name)
			result[item.Ticker] = name
		}
	}

	// Symbol fallback for anything still unresolved
	for _, t := range uncached {
		if _, ok := result[t]; !ok {
			result[t] = t
		}
	}

	return result
}

// CompanyName resolves a single ticker's display name, cache first, with
// the symbol itself as fallback.
func (c *Client) CompanyName(ctx context.Context, ticker string) string {
	if name, ok := c.names.Get(ticker); ok {
		return name
	}

	var resp singleReferenceResponse
	if err := c.get(ctx, "/v3/reference/tickers/"+ticker, nil, &resp); err != nil {
		c.logger.WithError(err).WithField("ticker", ticker).Debug("Name lookup failed, falling back to symbol")
		return ticker
	}

	name := resp.Results.Name
	if name == "" {
		return ticker
	}

	c.names.Put(ticker, name)
	return name
}

// PreviousClose fetches the previous session's daily bar for a ticker
func (c *Client) PreviousClose(ctx context.Context, ticker string) (*Bar, error) {
	var resp aggsResponse
	if err := c.get(ctx, fmt.Sprintf("/v2/aggs/ticker/%s/prev", ticker), nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch previous close for %s: %w", ticker, err)
	}

	if len(resp.Results) == 0 {
		return nil, nil
	}

	bar := resp.Results[0].toBar(ticker)
	return &bar, nil
}

// GroupedDaily fetches every ticker's daily bar for one trading date
func (c *Client) GroupedDaily(ctx context.Context, date string) ([]GroupedBar, error) {
	params := url.Values{}
	params.Set("adjusted", "true")
	params.Set("include_otc", "true")

	var resp groupedResponse
	if err := c.get(ctx, "/v2/aggs/grouped/locale/us/market/stocks/"+date, params, &resp); err != nil {
		return nil, fmt.Errorf("fetch grouped daily for %s: %w", date, err)
	}

	return resp.Results, nil
}

// get performs an authenticated GET and decodes the JSON response
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("apiKey", c.apiKey)

	resp, err := c.http.Get(ctx, c.baseURL+endpoint+"?"+params.Encode())
	if err != nil {
		return fmt.Errorf("GET %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	return nil
}
