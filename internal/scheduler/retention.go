package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
)

const (
	RetentionJobName = "snapshot_retention"
	retentionTimeout = 2 * time.Minute
)

// Pruner deletes all but the newest keepPerTheme snapshots of every theme.
type Pruner interface {
	PruneSnapshots(ctx context.Context, keepPerTheme int64) (int64, error)
}

// PruneSnapshots runs one retention pass.
func PruneSnapshots(ctx context.Context, pruner Pruner, keepPerTheme int) (int64, error) {
	if keepPerTheme < 1 {
		return 0, fmt.Errorf("keep per theme must be at least 1, got %d", keepPerTheme)
	}
	removed, err := pruner.PruneSnapshots(ctx, int64(keepPerTheme))
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	return removed, nil
}

// RegisterRetentionJob schedules PruneSnapshots on svc. An empty schedule
// registers nothing.
func RegisterRetentionJob(svc *Service, pruner Pruner, schedule string, keepPerTheme int) (gocron.Job, error) {
	if schedule == "" {
		log.Info().Msg("Snapshot retention disabled")
		return nil, nil
	}
	if pruner == nil {
		return nil, fmt.Errorf("retention job requires a snapshot store")
	}

	jobLogger := log.With().
		Str("component", "snapshot_retention_job").
		Int("keep_per_theme", keepPerTheme).
		Logger()

	return svc.AddJob(RetentionJobName, schedule, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), retentionTimeout)
		defer cancel()
		ctx = jobLogger.WithContext(ctx)

		removed, err := PruneSnapshots(ctx, pruner, keepPerTheme)
		if err != nil {
			return err
		}
		jobLogger.Info().Int64("removed", removed).Msg("Snapshot retention completed")
		return nil
	})
}
