package worker

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"elevatortrack/models"
)

// Magic links are worthless once used or expired; keep them a day for
// debugging, then purge.
const (
	cleanupInterval  = 1 * time.Hour
	magicLinkMaxAge  = 24 * time.Hour
	workerStartDelay = 10 * time.Second
)

// CleanupWorker periodically purges dead magic links.
type CleanupWorker struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewCleanupWorker(db *gorm.DB, logger *log.Logger) *CleanupWorker {
	return &CleanupWorker{
		DB:     db,
		Logger: logger,
	}
}

func (cw *CleanupWorker) Start(ctx context.Context) {
	// Initial delay to let the server start up
	time.Sleep(workerStartDelay)

	cw.Logger.Println("Cleanup worker started")

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			cw.Logger.Println("Cleanup worker shutting down...")
			return
		case <-ticker.C:
			cw.purgeMagicLinks()
		}
	}
}

func (cw *CleanupWorker) purgeMagicLinks() {
	cutoff := time.Now().Add(-magicLinkMaxAge)

	result := cw.DB.Where("expires_at < ? OR (used_at IS NOT NULL AND used_at < ?)", cutoff, cutoff).
		Delete(&models.MagicLink{})
	if result.Error != nil {
		cw.Logger.Printf("Error purging magic links: %v", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		cw.Logger.Printf("Purged %d dead magic links", result.RowsAffected)
	}
}
