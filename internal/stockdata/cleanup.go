package stockdata

import "github.com/rs/zerolog"

// Pruner removes expired persisted rows.
type Pruner interface {
	DeleteExpired() (int64, error)
}

// CleanupJob removes expired entries from the durable cache store.
// Scheduled via cron; the in-memory cache handles its own expiry.
type CleanupJob struct {
	pruner Pruner
	log    zerolog.Logger
}

// NewCleanupJob creates a new cache cleanup job.
func NewCleanupJob(pruner Pruner, log zerolog.Logger) *CleanupJob {
	return &CleanupJob{
		pruner: pruner,
		log:    log.With().Str("job", "stock_cache_cleanup").Logger(),
	}
}

// Run executes the cleanup job.
func (j *CleanupJob) Run() {
	deleted, err := j.pruner.DeleteExpired()
	if err != nil {
		j.log.Error().Err(err).Msg("Failed to delete expired cache rows")
		return
	}

	if deleted > 0 {
		j.log.Info().Int64("deleted", deleted).Msg("Cleaned up expired cache entries")
	}
}
