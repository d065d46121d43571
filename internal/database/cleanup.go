package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pterm/pterm"
	"gorm.io/gorm"
)

// ErrRetentionDisabled is returned by RunOnce when DB_RETENTION_DAYS is 0
var ErrRetentionDisabled = errors.New("retention disabled (DB_RETENTION_DAYS=0)")

const cleanupBatchSize = 1000

// CleanupService deletes request records older than the retention window
type CleanupService struct {
	db              *gorm.DB
	logger          *pterm.Logger
	retentionDays   int
	cleanupInterval time.Duration

	mu             sync.Mutex
	lastRunTime    time.Time
	nextRunTime    time.Time
	recordsDeleted int64
}

// CleanupStats holds statistics about the last cleanup run
type CleanupStats struct {
	LastRunTime      time.Time `json:"last_run_time"`
	NextScheduledRun time.Time `json:"next_scheduled_run"`
	RecordsDeleted   int64     `json:"records_deleted"`
	RetentionDays    int       `json:"retention_days"`
}

// NewCleanupService creates a new cleanup service
func NewCleanupService(db *gorm.DB, logger *pterm.Logger, retentionDays int, cleanupInterval time.Duration) *CleanupService {
	if cleanupInterval <= 0 {
		cleanupInterval = 24 * time.Hour
	}
	return &CleanupService{
		db:              db,
		logger:          logger,
		retentionDays:   retentionDays,
		cleanupInterval: cleanupInterval,
	}
}

// Start runs cleanup on every interval until ctx is done
func (s *CleanupService) Start(ctx context.Context) {
	if s.retentionDays <= 0 {
		s.logger.Info("Data retention disabled (DB_RETENTION_DAYS=0), cleanup service not started")
		return
	}

	s.logger.Info("Starting database cleanup service",
		s.logger.Args("retention_days", s.retentionDays, "interval", s.cleanupInterval))

	s.scheduleNext()

	go func() {
		ticker := time.NewTicker(s.cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.logger.Debug("Cleanup service stopped")
				return
			case <-ticker.C:
				if _, err := s.RunOnce(ctx); err != nil {
					s.logger.WithCaller().Error("Cleanup failed", s.logger.Args("error", err))
				}
				s.scheduleNext()
			}
		}
	}()
}

// RunOnce deletes expired records in batches and returns how many were removed
func (s *CleanupService) RunOnce(ctx context.Context) (int64, error) {
	if s.retentionDays <= 0 {
		return 0, ErrRetentionDisabled
	}

	startTime := time.Now()
	cutoffDate := startTime.UTC().AddDate(0, 0, -s.retentionDays)

	totalDeleted, err := s.deleteOldRecords(ctx, cutoffDate)
	if err != nil {
		return totalDeleted, fmt.Errorf("delete records before %s: %w", cutoffDate.Format("2006-01-02"), err)
	}

	s.mu.Lock()
	s.lastRunTime = startTime
	s.recordsDeleted = totalDeleted
	s.mu.Unlock()

	s.logger.Info("Cleanup completed",
		s.logger.Args(
			"records_deleted", totalDeleted,
			"duration", time.Since(startTime).Round(time.Millisecond),
			"cutoff_date", cutoffDate.Format("2006-01-02"),
		))

	return totalDeleted, nil
}

// deleteOldRecords deletes records older than cutoff date in batches to avoid long locks
func (s *CleanupService) deleteOldRecords(ctx context.Context, cutoffDate time.Time) (int64, error) {
	totalDeleted := int64(0)

	for {
		result := s.db.WithContext(ctx).Exec(`
			DELETE FROM request_records
			WHERE id IN (
				SELECT id FROM request_records
				WHERE timestamp < ?
				LIMIT ?
			)
		`, cutoffDate, cleanupBatchSize)

		if result.Error != nil {
			return totalDeleted, result.Error
		}

		deleted := result.RowsAffected
		totalDeleted += deleted

		if deleted < cleanupBatchSize {
			return totalDeleted, nil
		}

		s.logger.Trace("Deleted batch",
			s.logger.Args("batch_deleted", deleted, "total_deleted", totalDeleted))
	}
}

func (s *CleanupService) scheduleNext() {
	s.mu.Lock()
	s.nextRunTime = time.Now().Add(s.cleanupInterval)
	s.mu.Unlock()
}

// GetStats returns cleanup statistics
func (s *CleanupService) GetStats() *CleanupStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return &CleanupStats{
		LastRunTime:      s.lastRunTime,
		NextScheduledRun: s.nextRunTime,
		RecordsDeleted:   s.recordsDeleted,
		RetentionDays:    s.retentionDays,
	}
}
