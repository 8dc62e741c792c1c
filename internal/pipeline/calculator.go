package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sanspareilsmyn/windowops/internal/config"
	"github.com/sanspareilsmyn/windowops/internal/message"
	"github.com/sanspareilsmyn/windowops/rolling"
)

// Calculator aggregates incoming messages into one observation per feature
// and flush interval, and recomputes the configured rolling features over
// each feature's bounded history on every flush.
type Calculator struct {
	config config.PipelineConfig
	input  <-chan message.DynamicMessage
	output chan<- FeatureResult
	logger *zap.Logger
	now    func() time.Time

	mu          sync.Mutex
	periodStart time.Time
	series      []*featureSeries
}

// NewCalculator creates a new Calculator instance.
func NewCalculator(cfg config.PipelineConfig, features []config.FeatureConfig, input <-chan message.DynamicMessage, output chan<- FeatureResult, logger *zap.Logger) (*Calculator, error) {
	series := make([]*featureSeries, 0, len(features))
	specCount := 0
	for _, feature := range features {
		specs := make([]rolling.Spec, 0, len(feature.Statistics))
		for i, statCfg := range feature.Statistics {
			spec, err := statCfg.Spec()
			if err != nil {
				return nil, fmt.Errorf("%w: %s.statistics[%d]: %w", ErrInvalidFeatureSpec, feature.Name, i, err)
			}
			specs = append(specs, spec)
		}
		specCount += len(specs)
		series = append(series, newFeatureSeries(feature.Name, specs, cfg.HistorySize))
	}

	c := &Calculator{
		config:      cfg,
		input:       input,
		output:      output,
		logger:      logger,
		now:         time.Now,
		periodStart: time.Now(),
		series:      series,
	}
	logger.Info("Calculator initialized",
		zap.Duration("flush_interval", cfg.FlushInterval),
		zap.Int("history_size", cfg.HistorySize),
		zap.String("aggregation", cfg.Aggregation),
		zap.Int("configured_features", len(series)),
		zap.Int("configured_statistics", specCount),
	)
	return c, nil
}

// Run starts the calculator's processing loop.
func (c *Calculator) Run(ctx context.Context) error {
	sugar := c.logger.Sugar()
	sugar.Info("Starting calculator loop...")
	defer sugar.Info("Calculator loop stopped.")

	ticker := time.NewTicker(c.config.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.input:
			if !ok {
				sugar.Info("Calculator input channel closed. Flushing final period...")
				c.flush(c.now())
				return nil
			}
			c.processMessage(msg)

		case tickTime := <-ticker.C:
			c.logger.Debug("Ticker fired, flushing period", zap.Time("tick_time", tickTime))
			c.flush(tickTime)

		case <-ctx.Done():
			sugar.Info("Context cancelled, stopping calculator. Flushing final period...")
			c.flush(c.now())
			return ctx.Err()
		}
	}
}

// processMessage folds msg into the current period of every configured feature.
func (c *Calculator) processMessage(msg message.DynamicMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, s := range c.series {
		if !s.observe(msg) {
			c.logger.Warn("Non-numeric value for feature, skipping",
				zap.String("feature_name", s.name),
				zap.String("value_snippet", msg.GetFieldSnippet(s.name, 50)),
			)
		}
	}
}

// flushJob is the state one feature needs after the lock is released.
type flushJob struct {
	series  *featureSeries
	history []float64
	stats   periodStats
}

// flush closes the current period at periodEnd and emits one FeatureResult
// per configured statistic.
func (c *Calculator) flush(periodEnd time.Time) {
	periodStart, jobs := c.closePeriod(periodEnd)

	for _, job := range jobs {
		samples := len(job.history) - rolling.FirstNonMissing(job.history)
		for _, spec := range job.series.specs {
			value, err := latest(spec, job.history)
			if err != nil {
				c.logger.Error("Rolling computation failed",
					zap.String("feature_name", job.series.name),
					zap.String("statistic", spec.Name()),
					zap.Error(err),
				)
				continue
			}
			c.send(FeatureResult{
				FeatureName: job.series.name,
				Statistic:   spec.Name(),
				PeriodStart: periodStart,
				PeriodEnd:   periodEnd,
				Value:       value,
				Samples:     samples,
				Count:       job.stats.count,
				NullCount:   job.stats.nullCount,
			})
		}
	}
}

// closePeriod appends the period observation of every feature under the lock
// and returns history snapshots for computation outside it.
func (c *Calculator) closePeriod(periodEnd time.Time) (time.Time, []flushJob) {
	c.mu.Lock()
	defer c.mu.Unlock()

	periodStart := c.periodStart
	c.periodStart = periodEnd

	jobs := make([]flushJob, 0, len(c.series))
	for _, s := range c.series {
		observation, stats := s.closePeriod(c.config.Aggregation)
		if stats.invalidCount > 0 {
			c.logger.Warn("Period contained non-numeric values",
				zap.String("feature_name", s.name),
				zap.Int64("invalid_count", stats.invalidCount),
			)
		}
		c.logger.Debug("Closed period",
			zap.String("feature_name", s.name),
			zap.Time("period_end", periodEnd),
			zap.Float64("observation", observation),
			zap.Int64("count", stats.count),
			zap.Int("history_len", len(s.history)),
		)
		jobs = append(jobs, flushJob{series: s, history: s.snapshot(), stats: stats})
	}
	return periodStart, jobs
}

func (c *Calculator) send(result FeatureResult) {
	select {
	case c.output <- result:
		c.logger.Debug("Sent feature result",
			zap.String("feature_name", result.FeatureName),
			zap.String("statistic", result.Statistic),
			zap.Time("period_end", result.PeriodEnd),
		)
	default:
		c.logger.Warn("Calculator output channel full, dropping result",
			zap.String("feature_name", result.FeatureName),
			zap.String("statistic", result.Statistic),
			zap.Time("period_end", result.PeriodEnd),
		)
	}
}
