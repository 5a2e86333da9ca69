package handlers

import (
	_ "embed"
	"net/http"
)

//go:embed templates/dashboard.html
var dashboardHTML []byte

// Dashboard serves the single-page gainers dashboard
func Dashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(dashboardHTML)
}
