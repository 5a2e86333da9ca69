package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/gainers/pkg/config"
	"github.com/wonny/gainers/pkg/httputil"
	"github.com/wonny/gainers/pkg/logger"
)

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// newPolygonStub serves just enough of the Polygon API for a full scan
func newPolygonStub() *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/v2/snapshot/locale/us/markets/stocks/gainers", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"OK","tickers":[{
			"ticker": "AAA",
			"todaysChangePerc": 11.11,
			"day": {"v": 5000},
			"min": {"c": 10.0},
			"prevDay": {"c": 9.0},
			"lastTrade": {"p": 10.0}
		}]}`)
	})

	mux.HandleFunc("/v3/reference/tickers", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"OK","results":[{"ticker":"AAA","name":"Triple A Corp"}]}`)
	})

	mux.HandleFunc("/v2/aggs/ticker/", func(w http.ResponseWriter, r *http.Request) {
		end := time.Now().Add(-1 * time.Minute).Truncate(time.Minute)
		fmt.Fprintf(w, `{"ticker":"AAA","status":"OK","results":[
			{"o":9.5,"c":9.5,"v":100,"t":%d},
			{"o":9.5,"c":10.45,"v":200,"t":%d}
		]}`, end.Add(-3*time.Minute).UnixMilli(), end.Add(-2*time.Minute).UnixMilli())
	})

	return httptest.NewServer(mux)
}

func newTestHandler(t *testing.T, baseURL string) *GainersHandler {
	t.Helper()

	cfg := &config.Config{
		Env: "development",
		Polygon: config.PolygonConfig{
			BaseURL:     baseURL,
			Timeout:     5 * time.Second,
			Concurrency: 4,
		},
		Scan: config.ScanConfig{TopN: 20, LookbackMinutes: 10},
	}
	log := logger.NewWriter(discard{})
	httpClient := httputil.New(cfg.Polygon.Timeout, log).DisableRetry()

	return NewGainersHandler(cfg, httpClient, log)
}

func TestGetGainers_MissingAPIKey(t *testing.T) {
	handler := newTestHandler(t, "http://127.0.0.1:0")

	req := httptest.NewRequest(http.MethodGet, "/api/gainers", nil)
	rec := httptest.NewRecorder()
	handler.GetGainers(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "apiKey is required")
}

func TestGetGainers_FullScan(t *testing.T) {
	stub := newPolygonStub()
	defer stub.Close()

	handler := newTestHandler(t, stub.URL)

	req := httptest.NewRequest(http.MethodGet, "/api/gainers?apiKey=k&n=1&minutes=10", nil)
	rec := httptest.NewRecorder()
	handler.GetGainers(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		TopN    int  `json:"top_n"`
		Minutes int  `json:"minutes"`
		Gainers []struct {
			Ticker     string  `json:"ticker"`
			Name       string  `json:"name"`
			Price      float64 `json:"current_price"`
			WindowGain float64 `json:"gain_window"`
			DayGain    float64 `json:"gain_day"`
		} `json:"gainers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, 1, resp.TopN)
	assert.Equal(t, 10, resp.Minutes)
	require.Len(t, resp.Gainers, 1)

	g := resp.Gainers[0]
	assert.Equal(t, "AAA", g.Ticker)
	assert.Equal(t, "Triple A Corp", g.Name)
	assert.Equal(t, 10.0, g.Price)
	assert.InDelta(t, 10.0, g.WindowGain, 0.001)
	assert.InDelta(t, 11.11, g.DayGain, 0.001)
}

func TestGetGainers_FastMode(t *testing.T) {
	stub := newPolygonStub()
	defer stub.Close()

	handler := newTestHandler(t, stub.URL)

	req := httptest.NewRequest(http.MethodGet, "/api/gainers?apiKey=k&fast=true", nil)
	rec := httptest.NewRecorder()
	handler.GetGainers(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"ticker":"AAA"`)
	assert.Contains(t, body, "11.11")
}

func TestGetGainers_ProviderFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "snapshot") {
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"status":"ERROR","error":"Unknown API Key"}`)
			return
		}
		fmt.Fprint(w, `{"status":"OK"}`)
	}))
	defer server.Close()

	handler := newTestHandler(t, server.URL)

	req := httptest.NewRequest(http.MethodGet, "/api/gainers?apiKey=bad", nil)
	rec := httptest.NewRecorder()
	handler.GetGainers(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unknown API Key")
}

func TestGetGainers_ClampsMinutes(t *testing.T) {
	stub := newPolygonStub()
	defer stub.Close()

	handler := newTestHandler(t, stub.URL)

	req := httptest.NewRequest(http.MethodGet, "/api/gainers?apiKey=k&minutes=90&fast=true", nil)
	rec := httptest.NewRecorder()
	handler.GetGainers(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"minutes":30`)
}
