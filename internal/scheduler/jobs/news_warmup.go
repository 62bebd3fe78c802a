package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/magicformula/internal/contracts"
	"github.com/wonny/magicformula/internal/recommend"
	"github.com/wonny/magicformula/pkg/logger"
)

// NewsWarmupJob refreshes the market headlines behind recommendation narratives
type NewsWarmupJob struct {
	news     contracts.NewsProvider
	schedule string
	logger   *logger.Logger
}

// NewNewsWarmupJob creates a new news warm-up job
func NewNewsWarmupJob(news contracts.NewsProvider, schedule string, log *logger.Logger) *NewsWarmupJob {
	return &NewsWarmupJob{
		news:     news,
		schedule: schedule,
		logger:   log.WithField("job", "news_warmup"),
	}
}

// Name returns the job name
func (j *NewsWarmupJob) Name() string {
	return "news_warmup"
}

// Schedule returns the cron schedule
func (j *NewsWarmupJob) Schedule() string {
	return j.schedule
}

// Run fetches the latest headlines
func (j *NewsWarmupJob) Run(ctx context.Context) error {
	headlines, err := j.news.MarketNews(ctx, recommend.MaxHeadlines)
	if err != nil {
		return fmt.Errorf("failed to refresh market news: %w", err)
	}

	j.logger.WithField("headlines", len(headlines)).Info("Market news refreshed")
	return nil
}
