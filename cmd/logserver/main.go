package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/JusCookin/IoT-Based-Automated-Rain-Responsive-Clothesline/internal/config"
	"github.com/JusCookin/IoT-Based-Automated-Rain-Responsive-Clothesline/internal/server"
	"github.com/JusCookin/IoT-Based-Automated-Rain-Responsive-Clothesline/internal/storage"
)

const version = "v0.1.0"

func main() {
	configPath := flag.String("config", "configs/logserver.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.LoadAppConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := setupLogger(cfg.Logging)

	logger.Info().
		Str("version", version).
		Int("port", cfg.Server.Port).
		Msg("Starting clothesline log server")

	store := server.NewMemoryStore(cfg.Server.RecentReports)

	var sqliteStore *storage.SQLiteStore
	var dbWriter *storage.DBWriter
	var retentionCleaner *storage.RetentionCleaner

	if cfg.Database.Enabled {
		dataDir := filepath.Dir(cfg.Database.Path)
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			logger.Fatal().Err(err).Msg("Failed to create data directory")
		}
		sqliteStore, err = storage.NewSQLiteStore(cfg.Database.Path, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to create SQLite store")
		}
		logger.Info().Str("path", cfg.Database.Path).Msg("SQLite store opened")

		dbWriter = storage.NewDBWriter(sqliteStore, storage.DBWriterConfig{
			BatchSize:   cfg.Database.BatchSize,
			FlushPeriod: cfg.Database.FlushPeriod,
			ChannelSize: cfg.Database.ChannelSize,
		}, logger)

		retentionCleaner = storage.NewRetentionCleaner(sqliteStore, storage.RetentionCleanerConfig{
			RetentionDays: cfg.Database.RetentionDays,
			CleanupPeriod: cfg.Database.CleanupPeriod,
		}, logger)
		logger.Info().
			Int("retention_days", cfg.Database.RetentionDays).
			Dur("cleanup_period", cfg.Database.CleanupPeriod).
			Msg("RetentionCleaner started")
	}

	hub := server.NewHub(logger, cfg.Server.AllowedOrigins...)

	logHandler := server.NewLogHandler(store, logger)
	if dbWriter != nil {
		logHandler.SetDBWriter(dbWriter)
	}
	logHandler.SetHub(hub)

	var apiHandler *server.APIHandler
	if sqliteStore != nil {
		apiHandler = server.NewAPIHandler(store, sqliteStore, logger)
	} else {
		apiHandler = server.NewAPIHandler(store, nil, logger)
	}

	mux := http.NewServeMux()

	// The device sends its reports to the Apps Script-shaped path; /exec is
	// the short form for local testing.
	mux.HandleFunc("/exec", logHandler.ServeHTTP)
	mux.HandleFunc("/macros/s/", logHandler.ServeHTTP)

	mux.HandleFunc("/api/current", apiHandler.HandleCurrent)
	mux.HandleFunc("/api/history", apiHandler.HandleHistory)
	mux.HandleFunc("/api/stats", apiHandler.HandleStats)
	mux.HandleFunc("/api/daily", apiHandler.HandleDaily)
	mux.HandleFunc("/api/dashboard-data", apiHandler.HandleDashboardData)

	mux.HandleFunc("/live", hub.ServeHTTP)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok","version":"%s"}`, version)
	})
	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		stats := store.Stats()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(stats)
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", httpServer.Addr).Msg("Server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info().Msg("Shutting down server...")

	hub.Close()
	if dbWriter != nil {
		dbWriter.Stop()
		logger.Info().Msg("DBWriter stopped")
	}
	if retentionCleaner != nil {
		retentionCleaner.Stop()
		logger.Info().Msg("RetentionCleaner stopped")
	}
	if sqliteStore != nil {
		sqliteStore.Close()
		logger.Info().Msg("SQLiteStore closed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown error")
	}

	logger.Info().Msg("Server stopped")
}

func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	if cfg.Format == "console" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
	return logger
}
