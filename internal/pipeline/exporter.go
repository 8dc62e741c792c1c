package pipeline

import (
	"context"
	"math"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/windowops/internal/config"
)

type exporterMetrics struct {
	value           *prometheus.GaugeVec
	samples         *prometheus.GaugeVec
	periodCount     *prometheus.GaugeVec
	periodNullCount *prometheus.GaugeVec
	violations      *prometheus.CounterVec
}

func newExporterMetrics(reg prometheus.Registerer) *exporterMetrics {
	factory := promauto.With(reg)
	return &exporterMetrics{
		value: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "windowops_feature_value",
				Help: "Latest value of a rolling feature; NaN while the window is warming up.",
			},
			[]string{"feature_name", "statistic"},
		),
		samples: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "windowops_feature_samples",
				Help: "Non-missing observations in the feature history.",
			},
			[]string{"feature_name"},
		),
		periodCount: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "windowops_feature_period_count",
				Help: "Messages processed for a feature in the last period.",
			},
			[]string{"feature_name"},
		),
		periodNullCount: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "windowops_feature_period_null_count",
				Help: "Messages where the feature was missing or null in the last period.",
			},
			[]string{"feature_name"},
		),
		violations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "windowops_feature_threshold_violations_total",
				Help: "Threshold violations detected for a rolling feature.",
			},
			[]string{"feature_name", "statistic", "comparison"},
		),
	}
}

// Exporter publishes feature results as Prometheus metrics and checks them
// against the configured thresholds.
type Exporter struct {
	thresholds map[string]map[string]config.Thresholds // feature -> statistic -> thresholds
	input      <-chan FeatureResult
	metrics    *exporterMetrics
	logger     *zap.Logger
}

// NewExporter creates a new Exporter registering its metrics with reg.
func NewExporter(features []config.FeatureConfig, input <-chan FeatureResult, reg prometheus.Registerer, logger *zap.Logger) *Exporter {
	thresholds := make(map[string]map[string]config.Thresholds, len(features))
	for _, feature := range features {
		byStat := make(map[string]config.Thresholds, len(feature.Statistics))
		for _, statCfg := range feature.Statistics {
			spec, err := statCfg.Spec()
			if err != nil {
				continue // rejected by config validation and by the calculator
			}
			byStat[spec.Name()] = statCfg.Thresholds
		}
		thresholds[feature.Name] = byStat
	}

	logger.Debug("Exporter initialized", zap.Int("feature_count", len(thresholds)))

	return &Exporter{
		thresholds: thresholds,
		input:      input,
		metrics:    newExporterMetrics(reg),
		logger:     logger,
	}
}

// Run consumes feature results until the input channel closes or ctx is done.
func (e *Exporter) Run(ctx context.Context) error {
	sugar := e.logger.Sugar()
	sugar.Info("Starting exporter loop...")
	defer sugar.Info("Exporter loop stopped.")

	for {
		select {
		case result, ok := <-e.input:
			if !ok {
				sugar.Info("Exporter input channel closed.")
				return nil
			}
			e.processResult(result)

		case <-ctx.Done():
			sugar.Info("Context cancelled, stopping exporter.")
			return ctx.Err()
		}
	}
}

func (e *Exporter) processResult(result FeatureResult) {
	byStat, exists := e.thresholds[result.FeatureName]
	if !exists {
		e.logger.Warn("Received result for unconfigured feature, skipping",
			zap.String("feature_name", result.FeatureName),
			zap.String("statistic", result.Statistic),
		)
		return
	}

	e.metrics.value.WithLabelValues(result.FeatureName, result.Statistic).Set(result.Value)
	e.metrics.samples.WithLabelValues(result.FeatureName).Set(float64(result.Samples))
	e.metrics.periodCount.WithLabelValues(result.FeatureName).Set(float64(result.Count))
	e.metrics.periodNullCount.WithLabelValues(result.FeatureName).Set(float64(result.NullCount))

	e.checkThresholds(result, byStat[result.Statistic])

	fields := []zap.Field{
		zap.String("feature_name", result.FeatureName),
		zap.String("statistic", result.Statistic),
		zap.Time("period_end", result.PeriodEnd),
		zap.Int("samples", result.Samples),
	}
	if !math.IsNaN(result.Value) {
		fields = append(fields, zap.Float64("value", result.Value))
	}
	e.logger.Info("Feature computed", fields...)
}

// checkThresholds logs and counts min/max violations. Warming-up (NaN)
// values never violate.
func (e *Exporter) checkThresholds(result FeatureResult, thresholds config.Thresholds) {
	if math.IsNaN(result.Value) {
		return
	}
	if thresholds.Min != nil && result.Value < *thresholds.Min {
		e.reportViolation(result, *thresholds.Min, "<")
	}
	if thresholds.Max != nil && result.Value > *thresholds.Max {
		e.reportViolation(result, *thresholds.Max, ">")
	}
}

func (e *Exporter) reportViolation(result FeatureResult, threshold float64, comparison string) {
	e.logger.Warn("Feature threshold violation",
		zap.String("feature_name", result.FeatureName),
		zap.String("statistic", result.Statistic),
		zap.Time("period_end", result.PeriodEnd),
		zap.Float64("actual", result.Value),
		zap.Float64("threshold", threshold),
		zap.String("comparison", comparison),
	)
	e.metrics.violations.WithLabelValues(result.FeatureName, result.Statistic, comparison).Inc()
}
