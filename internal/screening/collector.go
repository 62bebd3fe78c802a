package screening

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/magicformula/internal/contracts"
	"github.com/wonny/magicformula/pkg/logger"
)

// ProgressStatus is the outcome of one symbol fetch
type ProgressStatus string

const (
	StatusFetched ProgressStatus = "fetched"
	StatusFailed  ProgressStatus = "failed"
)

// Progress is emitted after every fetch attempt
type Progress struct {
	Symbol string         `json:"symbol"`
	Index  int            `json:"index"` // 1-based
	Total  int            `json:"total"`
	Status ProgressStatus `json:"status"`
	Error  string         `json:"error,omitempty"`
}

// ProgressFunc receives progress events; it may be nil
type ProgressFunc func(Progress)

// FetchResult records one symbol fetch
type FetchResult struct {
	Symbol string
	Error  error
}

// Collector fetches securities one at a time, paced by a limiter
// ⭐ SSOT: provider calls for screening go through here only
type Collector struct {
	provider contracts.MarketDataProvider
	limiter  *rate.Limiter
	logger   *logger.Logger
}

// NewCollector creates a collector that leaves at least delay between fetches.
// A zero delay disables pacing.
func NewCollector(provider contracts.MarketDataProvider, delay time.Duration, log *logger.Logger) *Collector {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &Collector{
		provider: provider,
		limiter:  rate.NewLimiter(limit, 1),
		logger:   log.WithModule("collector"),
	}
}

// Collect fetches symbols sequentially. Per-symbol failures are logged and skipped;
// only context cancellation aborts the run.
func (c *Collector) Collect(ctx context.Context, symbols []string, progress ProgressFunc) ([]contracts.Security, []FetchResult, error) {
	securities := make([]contracts.Security, 0, len(symbols))
	results := make([]FetchResult, 0, len(symbols))

	c.logger.WithFields(map[string]interface{}{
		"provider": c.provider.Name(),
		"symbols":  symbols,
	}).Info("Starting security collection")

	for i, symbol := range symbols {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, results, fmt.Errorf("collect %s: %w", symbol, waitError(ctx, err))
		}

		event := Progress{Symbol: symbol, Index: i + 1, Total: len(symbols), Status: StatusFetched}

		sec, err := c.provider.Security(ctx, symbol)
		if err != nil {
			if ctx.Err() != nil {
				return nil, results, fmt.Errorf("collect %s: %w", symbol, ctx.Err())
			}
			c.logger.WithError(err).WithField("symbol", symbol).Warn("Failed to fetch security")
			event.Status = StatusFailed
			event.Error = err.Error()
		} else {
			securities = append(securities, *sec)
		}

		results = append(results, FetchResult{Symbol: symbol, Error: err})
		if progress != nil {
			progress(event)
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"success": len(securities),
		"failed":  len(results) - len(securities),
		"total":   len(results),
	}).Info("Security collection completed")

	return securities, results, nil
}

// waitError maps the limiter's early "would exceed deadline" refusal onto
// context.DeadlineExceeded so callers can match it with errors.Is.
func waitError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if _, ok := ctx.Deadline(); ok {
		return fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
	}
	return err
}

// lastError returns the last failure, if any
func lastError(results []FetchResult) error {
	for i := len(results) - 1; i >= 0; i-- {
		if results[i].Error != nil {
			return results[i].Error
		}
	}
	return nil
}
