package server

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/JusCookin/IoT-Based-Automated-Rain-Responsive-Clothesline/internal/models"
	"github.com/JusCookin/IoT-Based-Automated-Rain-Responsive-Clothesline/internal/storage"
)

// LogHandler accepts the device's report GET requests. The response body must
// contain the literal "success" marker; the device treats anything else as a
// failed delivery and retries.
type LogHandler struct {
	store  ReportStore
	writer *storage.DBWriter
	hub    *Hub
	logger zerolog.Logger
}

// NewLogHandler creates a handler storing reports in memory. Persistence and
// live broadcasting are optional.
func NewLogHandler(store ReportStore, logger zerolog.Logger) *LogHandler {
	return &LogHandler{
		store:  store,
		logger: logger,
	}
}

// SetDBWriter enables async persistence of accepted reports
func (h *LogHandler) SetDBWriter(writer *storage.DBWriter) {
	h.writer = writer
}

// SetHub enables live broadcasting of accepted reports
func (h *LogHandler) SetHub(hub *Hub) {
	h.hub = hub
}

// ServeHTTP handles one report request
func (h *LogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	report, err := models.ReportFromQuery(r.URL.Query())
	if err != nil {
		h.logger.Warn().Err(err).Str("query", r.URL.RawQuery).Msg("Rejected report")
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	h.store.Add(report)
	if h.writer != nil {
		h.writer.Write(report)
	}
	if h.hub != nil {
		h.hub.Broadcast(report)
	}

	h.logger.Info().
		Int("moisture", report.MoistureRaw).
		Bool("raining", report.Raining).
		Str("cover", report.Cover).
		Msg("Report accepted")

	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprint(w, "success")
}
