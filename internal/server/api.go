package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/JusCookin/IoT-Based-Automated-Rain-Responsive-Clothesline/internal/models"
)

// APIHandler handles HTTP API requests for the dashboard
type APIHandler struct {
	store      ReportStore
	historical HistoricalStore
	logger     zerolog.Logger
}

// NewAPIHandler creates a new API handler. historical may be nil when
// persistence is disabled.
func NewAPIHandler(store ReportStore, historical HistoricalStore, logger zerolog.Logger) *APIHandler {
	return &APIHandler{
		store:      store,
		historical: historical,
		logger:     logger,
	}
}

// HandleCurrent returns the most recent report
func (api *APIHandler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	report := api.store.Current()
	if report == nil {
		http.Error(w, "No reports available", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

// HandleHistory returns recent reports for charting
func (api *APIHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	limitStr := r.URL.Query().Get("limit")
	limit := 50 // default
	if limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	reports := api.store.Latest(limit)
	if reports == nil {
		reports = []*models.Report{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(reports)
}

// HandleStats returns memory store statistics
func (api *APIHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats := api.store.Stats()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// HandleDaily returns aggregated daily statistics from the database
func (api *APIHandler) HandleDaily(w http.ResponseWriter, r *http.Request) {
	if api.historical == nil {
		http.Error(w, "Persistence disabled", http.StatusNotFound)
		return
	}

	days := 7 // default
	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		if parsed, err := strconv.Atoi(daysStr); err == nil && parsed > 0 {
			days = parsed
		}
	}

	end := time.Now()
	start := end.AddDate(0, 0, -days)

	stats, err := api.historical.GetDailyStats(start, end)
	if err != nil {
		api.logger.Error().Err(err).Msg("Failed to query daily stats")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// DashboardData contains all data for the dashboard
type DashboardData struct {
	CurrentReport *models.Report `json:"current_report"`
	Stats         StoreStats     `json:"stats"`
	LastUpdate    time.Time      `json:"last_update"`
}

// HandleDashboardData returns combined data for the dashboard in one request
func (api *APIHandler) HandleDashboardData(w http.ResponseWriter, r *http.Request) {
	data := DashboardData{
		CurrentReport: api.store.Current(),
		Stats:         api.store.Stats(),
		LastUpdate:    time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}
