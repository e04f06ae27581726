package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/JusCookin/IoT-Based-Automated-Rain-Responsive-Clothesline/internal/models"
)

const timeLayout = "2006-01-02 15:04:05"

// Store defines the interface for report persistence
type Store interface {
	Close() error
	Migrate() error
	InsertReport(report *models.Report) error
	InsertBatch(reports []*models.Report) error
	GetReportsInRange(start, end time.Time, limit int) ([]*models.Report, error)
	GetLatestReport() (*models.Report, error)
	GetDailyStats(start, end time.Time) ([]DailyStat, error)
	DeleteOlderThan(days int) (int64, error)
	GetStorageStats() (*StorageStats, error)
}

// Compile-time interface check
var _ Store = (*SQLiteStore)(nil)

// SQLiteStore handles persistent storage of clothesline reports
type SQLiteStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

// DailyStat represents aggregated statistics for a single day
type DailyStat struct {
	Date           time.Time `json:"date"`
	MinTemperature float64   `json:"min_temperature"`
	MaxTemperature float64   `json:"max_temperature"`
	AvgTemperature float64   `json:"avg_temperature"`
	MinHumidity    float64   `json:"min_humidity"`
	MaxHumidity    float64   `json:"max_humidity"`
	AvgHumidity    float64   `json:"avg_humidity"`
	RainReports    int       `json:"rain_reports"`
	ReportCount    int       `json:"report_count"`
}

// StorageStats contains information about the database
type StorageStats struct {
	TotalReports int64     `json:"total_reports"`
	OldestReport time.Time `json:"oldest_report,omitempty"`
	NewestReport time.Time `json:"newest_report,omitempty"`
	RainReports  int64     `json:"rain_reports"`
}

// NewSQLiteStore creates a new SQLite store instance
func NewSQLiteStore(dbPath string, logger zerolog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Apply performance pragmas for SQLite
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=10000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	// Configure connection pool for SQLite (single writer)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	// Auto-migrate schema
	if err := store.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.Info().Str("path", dbPath).Msg("SQLite store initialized")

	return store, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Migrate creates the database schema if it doesn't exist
func (s *SQLiteStore) Migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		moisture_raw INTEGER NOT NULL,
		is_raining INTEGER NOT NULL,
		clothes_status TEXT NOT NULL,
		temperature REAL NOT NULL,
		humidity REAL NOT NULL,
		received_at DATETIME NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_reports_time ON reports(received_at DESC);
	CREATE INDEX IF NOT EXISTS idx_reports_created ON reports(created_at);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	s.logger.Debug().Msg("Database schema migrated")
	return nil
}

// InsertReport inserts a single report into the database
func (s *SQLiteStore) InsertReport(report *models.Report) error {
	query := `
		INSERT INTO reports (moisture_raw, is_raining, clothes_status, temperature, humidity, received_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		report.MoistureRaw,
		boolToInt(report.Raining),
		report.Cover,
		report.TemperatureC,
		report.HumidityPct,
		report.ReceivedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}

	return nil
}

// InsertBatch inserts multiple reports in a single transaction
func (s *SQLiteStore) InsertBatch(reports []*models.Report) error {
	if len(reports) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO reports (moisture_raw, is_raining, clothes_status, temperature, humidity, received_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, report := range reports {
		_, err := stmt.Exec(
			report.MoistureRaw,
			boolToInt(report.Raining),
			report.Cover,
			report.TemperatureC,
			report.HumidityPct,
			report.ReceivedAt.Format(timeLayout),
		)
		if err != nil {
			return fmt.Errorf("failed to insert report in batch: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Debug().Int("count", len(reports)).Msg("Batch insert completed")
	return nil
}

// GetReportsInRange returns reports within a time range, newest first
func (s *SQLiteStore) GetReportsInRange(start, end time.Time, limit int) ([]*models.Report, error) {
	query := `
		SELECT id, moisture_raw, is_raining, clothes_status, temperature, humidity, received_at
		FROM reports
		WHERE received_at BETWEEN ? AND ?
		ORDER BY received_at DESC
		LIMIT ?
	`

	rows, err := s.db.Query(query, start.Format(timeLayout), end.Format(timeLayout), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	return scanReports(rows)
}

// GetLatestReport returns the most recent report, nil if none exists
func (s *SQLiteStore) GetLatestReport() (*models.Report, error) {
	query := `
		SELECT id, moisture_raw, is_raining, clothes_status, temperature, humidity, received_at
		FROM reports
		ORDER BY received_at DESC
		LIMIT 1
	`

	report, err := scanReport(s.db.QueryRow(query))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest report: %w", err)
	}
	return report, nil
}

// GetDailyStats returns aggregated daily statistics for a time range
func (s *SQLiteStore) GetDailyStats(start, end time.Time) ([]DailyStat, error) {
	query := `
		SELECT
			date(received_at) as date,
			MIN(temperature) as min_temp,
			MAX(temperature) as max_temp,
			AVG(temperature) as avg_temp,
			MIN(humidity) as min_humidity,
			MAX(humidity) as max_humidity,
			AVG(humidity) as avg_humidity,
			SUM(is_raining) as rain_reports,
			COUNT(*) as report_count
		FROM reports
		WHERE received_at BETWEEN ? AND ?
		GROUP BY date(received_at)
		ORDER BY date DESC
	`

	rows, err := s.db.Query(query, start.Format(timeLayout), end.Format(timeLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query daily stats: %w", err)
	}
	defer rows.Close()

	var stats []DailyStat
	for rows.Next() {
		var stat DailyStat
		var dateStr string

		err := rows.Scan(
			&dateStr,
			&stat.MinTemperature,
			&stat.MaxTemperature,
			&stat.AvgTemperature,
			&stat.MinHumidity,
			&stat.MaxHumidity,
			&stat.AvgHumidity,
			&stat.RainReports,
			&stat.ReportCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily stat: %w", err)
		}

		stat.Date, err = time.Parse("2006-01-02", dateStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse date %q: %w", dateStr, err)
		}

		stats = append(stats, stat)
	}

	return stats, rows.Err()
}

// DeleteOlderThan removes reports older than the given number of days.
// Returns the number of deleted rows.
func (s *SQLiteStore) DeleteOlderThan(days int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -days)

	result, err := s.db.Exec(
		`DELETE FROM reports WHERE received_at < ?`,
		cutoff.Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old reports: %w", err)
	}

	return result.RowsAffected()
}

// GetStorageStats returns database statistics
func (s *SQLiteStore) GetStorageStats() (*StorageStats, error) {
	stats := &StorageStats{}

	row := s.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(is_raining), 0),
			COALESCE(MIN(received_at), ''), COALESCE(MAX(received_at), '')
		FROM reports
	`)

	var oldest, newest string
	if err := row.Scan(&stats.TotalReports, &stats.RainReports, &oldest, &newest); err != nil {
		return nil, fmt.Errorf("failed to query storage stats: %w", err)
	}

	if oldest != "" {
		if t, err := time.Parse(timeLayout, oldest); err == nil {
			stats.OldestReport = t
		}
	}
	if newest != "" {
		if t, err := time.Parse(timeLayout, newest); err == nil {
			stats.NewestReport = t
		}
	}

	return stats, nil
}

// scanner abstracts *sql.Row and *sql.Rows for single-report scans
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanReport(row scanner) (*models.Report, error) {
	var report models.Report
	var raining int
	var receivedAt string

	err := row.Scan(
		&report.ID,
		&report.MoistureRaw,
		&raining,
		&report.Cover,
		&report.TemperatureC,
		&report.HumidityPct,
		&receivedAt,
	)
	if err != nil {
		return nil, err
	}

	report.Raining = raining != 0
	report.ReceivedAt, err = time.Parse(timeLayout, receivedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse received_at %q: %w", receivedAt, err)
	}

	return &report, nil
}

func scanReports(rows *sql.Rows) ([]*models.Report, error) {
	var reports []*models.Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
