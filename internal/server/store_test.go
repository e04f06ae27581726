package server

import (
	"testing"
	"time"

	"github.com/JusCookin/IoT-Based-Automated-Rain-Responsive-Clothesline/internal/models"
)

func storedReport(moisture int, at time.Time) *models.Report {
	return &models.Report{
		MoistureRaw:  moisture,
		Raining:      moisture < 2000,
		Cover:        "Drying",
		TemperatureC: 23.5,
		HumidityPct:  71.0,
		ReceivedAt:   at,
	}
}

func TestMemoryStore_AddAndCurrent(t *testing.T) {
	store := NewMemoryStore(10)

	if store.Current() != nil {
		t.Error("Current() on empty store should be nil")
	}

	now := time.Now()
	store.Add(storedReport(2500, now))
	store.Add(storedReport(1800, now.Add(time.Second)))

	current := store.Current()
	if current == nil {
		t.Fatal("Current() returned nil")
	}
	if current.MoistureRaw != 1800 {
		t.Errorf("Current().MoistureRaw = %d, want 1800", current.MoistureRaw)
	}
}

func TestMemoryStore_EvictsOldest(t *testing.T) {
	store := NewMemoryStore(3)

	now := time.Now()
	for i := 0; i < 5; i++ {
		store.Add(storedReport(2000+i, now.Add(time.Duration(i)*time.Second)))
	}

	latest := store.Latest(10)
	if len(latest) != 3 {
		t.Fatalf("Latest(10) returned %d reports, want 3", len(latest))
	}
	// Newest first
	want := []int{2004, 2003, 2002}
	for i, r := range latest {
		if r.MoistureRaw != want[i] {
			t.Errorf("Latest()[%d].MoistureRaw = %d, want %d", i, r.MoistureRaw, want[i])
		}
	}

	stats := store.Stats()
	if stats.TotalReports != 5 {
		t.Errorf("TotalReports = %d, want 5", stats.TotalReports)
	}
	if stats.CurrentReports != 3 {
		t.Errorf("CurrentReports = %d, want 3", stats.CurrentReports)
	}
}

func TestMemoryStore_LatestReturnsCopies(t *testing.T) {
	store := NewMemoryStore(5)
	store.Add(storedReport(2500, time.Now()))

	latest := store.Latest(1)
	latest[0].MoistureRaw = 0

	if got := store.Current().MoistureRaw; got != 2500 {
		t.Errorf("stored report mutated through Latest() result: MoistureRaw = %d", got)
	}
}

func TestMemoryStore_Clear(t *testing.T) {
	store := NewMemoryStore(5)
	store.Add(storedReport(2500, time.Now()))
	store.Clear()

	if store.Current() != nil {
		t.Error("Current() after Clear() should be nil")
	}
	if stats := store.Stats(); stats.TotalReports != 0 || stats.CurrentReports != 0 {
		t.Errorf("Stats() after Clear() = %+v, want zeros", stats)
	}
}
