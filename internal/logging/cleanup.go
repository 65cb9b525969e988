package logging

import (
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/models"
	"gorm.io/gorm"
)

const SystemLogRetention = 30 * 24 * time.Hour

// StartCleanup deletes system_logs older than retention once a day until done is closed.
// Audit logs are never pruned.
func StartCleanup(db *gorm.DB, retention time.Duration, done <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				PruneSystemLogs(db, time.Now().Add(-retention))
			case <-done:
				return
			}
		}
	}()
}

// PruneSystemLogs removes entries logged before cutoff and returns how many went.
func PruneSystemLogs(db *gorm.DB, cutoff time.Time) int64 {
	result := db.Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	if result.Error != nil {
		slog.Error("log cleanup failed", "error", result.Error)
		return 0
	}
	if result.RowsAffected > 0 {
		slog.Info("log cleanup completed", "deleted", result.RowsAffected)
	}
	return result.RowsAffected
}
