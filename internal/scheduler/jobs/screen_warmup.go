package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/magicformula/internal/screening"
	"github.com/wonny/magicformula/internal/universe"
	"github.com/wonny/magicformula/pkg/logger"
)

// Screener is the part of the screening service the warm-up needs
type Screener interface {
	Sectors() []string
	Screen(ctx context.Context, req screening.ScreenRequest, progress screening.ProgressFunc) (*screening.ScreenResult, error)
}

// ScreenWarmupJob screens every sector so provider responses land in the cache
type ScreenWarmupJob struct {
	screener Screener
	schedule string
	logger   *logger.Logger
}

// NewScreenWarmupJob creates a new screen warm-up job
func NewScreenWarmupJob(screener Screener, schedule string, log *logger.Logger) *ScreenWarmupJob {
	return &ScreenWarmupJob{
		screener: screener,
		schedule: schedule,
		logger:   log.WithField("job", "screen_warmup"),
	}
}

// Name returns the job name
func (j *ScreenWarmupJob) Name() string {
	return "screen_warmup"
}

// Schedule returns the cron schedule
func (j *ScreenWarmupJob) Schedule() string {
	return j.schedule
}

// Run executes the warm-up
func (j *ScreenWarmupJob) Run(ctx context.Context) error {
	j.logger.Info("Starting screen warm-up")

	warmed, failed := 0, 0
	for _, sector := range j.screener.Sectors() {
		// All Sectors only re-reads symbols the per-sector screens already cached
		if sector == universe.AllSectors {
			continue
		}

		result, err := j.screener.Screen(ctx, screening.ScreenRequest{Sector: sector}, nil)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("screen warm-up interrupted: %w", ctx.Err())
			}
			failed++
			j.logger.WithFields(map[string]interface{}{
				"sector": sector,
				"error":  err.Error(),
			}).Warn("Sector warm-up failed")
			continue
		}

		if result.Fallback {
			failed++
			j.logger.WithFields(map[string]interface{}{
				"sector": sector,
				"reason": result.Error,
			}).Warn("Sector warm-up served fallback data")
			continue
		}

		warmed++
	}

	j.logger.WithFields(map[string]interface{}{
		"warmed": warmed,
		"failed": failed,
	}).Info("Screen warm-up completed")

	if warmed == 0 && failed > 0 {
		return fmt.Errorf("screen warm-up failed for all %d sectors", failed)
	}

	return nil
}
