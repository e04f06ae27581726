package server

import (
	"sync"
	"time"

	"github.com/JusCookin/IoT-Based-Automated-Rain-Responsive-Clothesline/internal/models"
)

// MemoryStore is an in-memory ring buffer of the most recent reports,
// backing the dashboard API while SQLite holds the full history.
type MemoryStore struct {
	capacity     int
	reports      []*models.Report
	mutex        sync.RWMutex
	totalReports int64
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore(capacity int) *MemoryStore {
	return &MemoryStore{
		capacity: capacity,
		reports:  make([]*models.Report, 0, capacity),
	}
}

// Add adds a report to the store, evicting the oldest when full
func (ms *MemoryStore) Add(report *models.Report) {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	if len(ms.reports) >= ms.capacity {
		ms.reports = ms.reports[1:]
	}
	ms.reports = append(ms.reports, report)
	ms.totalReports++
}

// Latest returns up to n most recent reports, newest first
func (ms *MemoryStore) Latest(n int) []*models.Report {
	ms.mutex.RLock()
	defer ms.mutex.RUnlock()

	if len(ms.reports) == 0 {
		return nil
	}

	start := len(ms.reports) - n
	if start < 0 {
		start = 0
	}

	// Return copies, newest first
	result := make([]*models.Report, len(ms.reports)-start)
	for i, j := len(ms.reports)-1, 0; i >= start; i, j = i-1, j+1 {
		result[j] = ms.reports[i].Copy()
	}
	return result
}

// Current returns the most recent report, nil if none received yet
func (ms *MemoryStore) Current() *models.Report {
	ms.mutex.RLock()
	defer ms.mutex.RUnlock()

	if len(ms.reports) == 0 {
		return nil
	}
	return ms.reports[len(ms.reports)-1].Copy()
}

// StoreStats contains statistics about the memory store
type StoreStats struct {
	TotalReports   int64     `json:"total_reports"`
	CurrentReports int       `json:"current_reports"`
	LastReceivedAt time.Time `json:"last_received_at,omitempty"`
}

// Stats returns statistics about the store
func (ms *MemoryStore) Stats() StoreStats {
	ms.mutex.RLock()
	defer ms.mutex.RUnlock()

	stats := StoreStats{
		TotalReports:   ms.totalReports,
		CurrentReports: len(ms.reports),
	}
	if len(ms.reports) > 0 {
		stats.LastReceivedAt = ms.reports[len(ms.reports)-1].ReceivedAt
	}
	return stats
}

// Clear removes all data from the store
func (ms *MemoryStore) Clear() {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	ms.reports = make([]*models.Report, 0, ms.capacity)
	ms.totalReports = 0
}
