package storage

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/JusCookin/IoT-Based-Automated-Rain-Responsive-Clothesline/internal/models"
)

// DBWriter handles async batched writes to the database, so the HTTP handler
// answering the device never waits on SQLite.
type DBWriter struct {
	store       *SQLiteStore
	logger      zerolog.Logger
	writeChan   chan *models.Report
	batchSize   int
	flushPeriod time.Duration
	stopChan    chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup

	// Stats
	mu            sync.RWMutex
	totalWritten  int64
	totalBatches  int64
	totalErrors   int64
	lastWriteTime time.Time
}

// DBWriterConfig holds configuration for the async writer
type DBWriterConfig struct {
	BatchSize   int           // Number of reports to batch before writing
	FlushPeriod time.Duration // Max time between flushes
	ChannelSize int           // Size of the write channel buffer
}

// DefaultDBWriterConfig returns sensible defaults
func DefaultDBWriterConfig() DBWriterConfig {
	return DBWriterConfig{
		BatchSize:   50,
		FlushPeriod: 5 * time.Second,
		ChannelSize: 500,
	}
}

// DBWriterStats contains statistics about the writer
type DBWriterStats struct {
	TotalWritten  int64     `json:"total_written"`
	TotalBatches  int64     `json:"total_batches"`
	TotalErrors   int64     `json:"total_errors"`
	LastWriteTime time.Time `json:"last_write_time,omitempty"`
	QueueLength   int       `json:"queue_length"`
}

// NewDBWriter creates a new async database writer
func NewDBWriter(store *SQLiteStore, config DBWriterConfig, logger zerolog.Logger) *DBWriter {
	w := &DBWriter{
		store:       store,
		logger:      logger,
		writeChan:   make(chan *models.Report, config.ChannelSize),
		batchSize:   config.BatchSize,
		flushPeriod: config.FlushPeriod,
		stopChan:    make(chan struct{}),
	}

	w.wg.Add(1)
	go w.writerLoop()

	logger.Info().
		Int("batch_size", config.BatchSize).
		Dur("flush_period", config.FlushPeriod).
		Msg("DBWriter started")

	return w
}

// Write queues a report for async writing to the database
// Returns true if queued, false if dropped (channel full)
func (w *DBWriter) Write(report *models.Report) bool {
	select {
	case w.writeChan <- report:
		return true
	default:
		w.logger.Warn().Msg("DBWriter channel full, dropping report")
		return false
	}
}

// writerLoop is the background goroutine that batches and writes reports
func (w *DBWriter) writerLoop() {
	defer w.wg.Done()

	batch := make([]*models.Report, 0, w.batchSize)
	ticker := time.NewTicker(w.flushPeriod)
	defer ticker.Stop()

	for {
		select {
		case report := <-w.writeChan:
			batch = append(batch, report)
			if len(batch) >= w.batchSize {
				w.flush(batch)
				batch = make([]*models.Report, 0, w.batchSize)
			}

		case <-ticker.C:
			if len(batch) > 0 {
				w.flush(batch)
				batch = make([]*models.Report, 0, w.batchSize)
			}

		case <-w.stopChan:
			// Drain remaining reports from channel
			draining := true
			for draining {
				select {
				case report := <-w.writeChan:
					batch = append(batch, report)
				default:
					draining = false
				}
			}
			if len(batch) > 0 {
				w.flush(batch)
			}
			w.logger.Info().Msg("DBWriter stopped")
			return
		}
	}
}

// flush writes a batch to the database
func (w *DBWriter) flush(batch []*models.Report) {
	if len(batch) == 0 {
		return
	}

	err := w.store.InsertBatch(batch)

	w.mu.Lock()
	if err != nil {
		w.totalErrors++
		w.logger.Error().Err(err).Int("batch_size", len(batch)).Msg("Failed to write batch")
	} else {
		w.totalWritten += int64(len(batch))
		w.totalBatches++
		w.lastWriteTime = time.Now()
		w.logger.Debug().Int("count", len(batch)).Msg("Flushed batch")
	}
	w.mu.Unlock()
}

// Stop gracefully stops the writer, flushing any remaining data
func (w *DBWriter) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopChan)
		w.wg.Wait()
	})
}

// Stats returns current writer statistics
func (w *DBWriter) Stats() DBWriterStats {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return DBWriterStats{
		TotalWritten:  w.totalWritten,
		TotalBatches:  w.totalBatches,
		TotalErrors:   w.totalErrors,
		LastWriteTime: w.lastWriteTime,
		QueueLength:   len(w.writeChan),
	}
}
