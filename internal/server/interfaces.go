package server

import (
	"time"

	"github.com/JusCookin/IoT-Based-Automated-Rain-Responsive-Clothesline/internal/models"
	"github.com/JusCookin/IoT-Based-Automated-Rain-Responsive-Clothesline/internal/storage"
)

// ReportStore defines the interface for real-time report storage.
// MemoryStore implements this interface.
type ReportStore interface {
	// Add adds a report to the store
	Add(report *models.Report)

	// Latest returns up to n most recent reports (newest first)
	Latest(n int) []*models.Report

	// Current returns the most recent report
	Current() *models.Report

	// Stats returns statistics about the store
	Stats() StoreStats

	// Clear removes all data from the store
	Clear()
}

// HistoricalStore defines the interface for persistent report storage.
// storage.SQLiteStore implements this interface.
type HistoricalStore interface {
	// GetReportsInRange returns reports within a time range
	GetReportsInRange(start, end time.Time, limit int) ([]*models.Report, error)

	// GetLatestReport returns the most recent persisted report
	GetLatestReport() (*models.Report, error)

	// GetDailyStats returns aggregated daily statistics
	GetDailyStats(start, end time.Time) ([]storage.DailyStat, error)

	// GetStorageStats returns database statistics
	GetStorageStats() (*storage.StorageStats, error)
}
