package retention

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// Pruner deletes log rows older than a cutoff.
type Pruner interface {
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Start prunes rows older than maxAge every interval until ctx is done.
// A non-positive maxAge disables pruning.
func Start(ctx context.Context, logger *log.Logger, interval, maxAge time.Duration, pruner Pruner) {
	if maxAge <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			Prune(ctx, logger, now, maxAge, pruner)
		}
	}
}

// Prune runs one retention pass relative to now.
func Prune(ctx context.Context, logger *log.Logger, now time.Time, maxAge time.Duration, pruner Pruner) {
	n, err := pruner.PruneBefore(ctx, now.Add(-maxAge))
	if err != nil {
		logger.Warn("retention cleanup failed", "error", err)
		return
	}
	if n > 0 {
		logger.Info("retention cleanup removed old log rows", "count", n)
	}
}
