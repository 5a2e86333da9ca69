package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/wonny/gainers/internal/gainers"
	"github.com/wonny/gainers/internal/polygon"
	"github.com/wonny/gainers/pkg/config"
	"github.com/wonny/gainers/pkg/httputil"
	"github.com/wonny/gainers/pkg/logger"
)

// GainersHandler handles the gainer-ranking API endpoint
// ⭐ SSOT: 게이너 API 핸들러는 이 구조체에서만
type GainersHandler struct {
	config     *config.Config
	httpClient *httputil.Client
	logger     *logger.Logger
}

// NewGainersHandler creates a new gainers handler
func NewGainersHandler(cfg *config.Config, httpClient *httputil.Client, log *logger.Logger) *GainersHandler {
	return &GainersHandler{
		config:     cfg,
		httpClient: httpClient,
		logger:     log,
	}
}

// gainersResponse echoes the request parameters next to the ranked reports
type gainersResponse struct {
	Time      time.Time        `json:"time"`
	TopN      int              `json:"top_n"`
	Minutes   int              `json:"minutes"`
	Premarket bool             `json:"premarket"`
	Gainers   []gainers.Report `json:"gainers"`
}

// GetGainers runs one ranking pipeline pass
// GET /api/gainers?apiKey=...&n=20&minutes=10&premarket=false&fast=false
func (h *GainersHandler) GetGainers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	apiKey := query.Get("apiKey")
	if apiKey == "" {
		apiKey = h.config.Polygon.APIKey
	}
	if apiKey == "" {
		writeError(w, http.StatusBadRequest, "apiKey is required")
		return
	}

	opts := gainers.Options{
		TopN:            h.config.Scan.TopN,
		LookbackMinutes: h.config.Scan.LookbackMinutes,
		Premarket:       h.config.Scan.Premarket,
		IncludeAvgPrice: true,
	}
	if n, err := strconv.Atoi(query.Get("n")); err == nil && n > 0 {
		opts.TopN = n
	}
	if m, err := strconv.Atoi(query.Get("minutes")); err == nil {
		opts.LookbackMinutes = clamp(m, 1, 30)
	}
	if p, err := strconv.ParseBool(query.Get("premarket")); err == nil {
		opts.Premarket = p
	}
	fast, _ := strconv.ParseBool(query.Get("fast"))

	// One client per request: the name cache is scoped to the caller's
	// session and credentials never outlive it.
	client := polygon.New(apiKey, h.config.Polygon.BaseURL, h.httpClient, h.logger).
		WithConcurrency(h.config.Polygon.Concurrency)
	engine := gainers.New(client, opts, h.logger)

	var (
		reports []gainers.Report
		err     error
	)
	if fast {
		reports, err = engine.TopGainersFast(r.Context())
	} else {
		reports, err = engine.TopGainers(r.Context())
	}
	if err != nil {
		h.logger.WithError(err).Error("Gainer scan failed")
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(gainersResponse{
		Time:      time.Now(),
		TopN:      opts.TopN,
		Minutes:   opts.LookbackMinutes,
		Premarket: opts.Premarket,
		Gainers:   reports,
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
