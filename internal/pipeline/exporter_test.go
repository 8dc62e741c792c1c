package pipeline

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/windowops/internal/config"
)

func thresholdFeatures() []config.FeatureConfig {
	return []config.FeatureConfig{{
		Name: "units",
		Statistics: []config.StatisticConfig{
			{Type: "mean", WindowSize: 7, Thresholds: config.Thresholds{Min: floatPtr(1), Max: floatPtr(10)}},
		},
	}}
}

func TestExporterSetsGaugesAndCountsViolations(t *testing.T) {
	reg := prometheus.NewRegistry()
	input := make(chan FeatureResult, 8)
	e := NewExporter(thresholdFeatures(), input, reg, zap.NewNop())

	input <- FeatureResult{FeatureName: "units", Statistic: "rolling_mean_7", Value: 12, Samples: 9, Count: 4, NullCount: 1, PeriodEnd: time.Now()}
	input <- FeatureResult{FeatureName: "units", Statistic: "rolling_mean_7", Value: 0.5, Samples: 10, Count: 3}
	input <- FeatureResult{FeatureName: "units", Statistic: "rolling_mean_7", Value: 5, Samples: 11, Count: 2}
	close(input)
	require.NoError(t, e.Run(context.Background()))

	assert.Equal(t, 5.0, testutil.ToFloat64(e.metrics.value.WithLabelValues("units", "rolling_mean_7")))
	assert.Equal(t, 11.0, testutil.ToFloat64(e.metrics.samples.WithLabelValues("units")))
	assert.Equal(t, 2.0, testutil.ToFloat64(e.metrics.periodCount.WithLabelValues("units")))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.violations.WithLabelValues("units", "rolling_mean_7", ">")))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.violations.WithLabelValues("units", "rolling_mean_7", "<")))
}

func TestExporterWarmingUpValueIsNaNAndNeverViolates(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := NewExporter(thresholdFeatures(), nil, reg, zap.NewNop())

	e.processResult(FeatureResult{FeatureName: "units", Statistic: "rolling_mean_7", Value: math.NaN()})

	assert.True(t, math.IsNaN(testutil.ToFloat64(e.metrics.value.WithLabelValues("units", "rolling_mean_7"))))
	assert.Equal(t, 0, testutil.CollectAndCount(e.metrics.violations))
}

func TestExporterSkipsUnknownFeature(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := NewExporter(thresholdFeatures(), nil, reg, zap.NewNop())

	e.processResult(FeatureResult{FeatureName: "price", Statistic: "rolling_mean_7", Value: 3})
	assert.Equal(t, 0, testutil.CollectAndCount(e.metrics.value))
}

func TestExporterStopsOnContextCancel(t *testing.T) {
	e := NewExporter(thresholdFeatures(), make(chan FeatureResult), prometheus.NewRegistry(), zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, e.Run(ctx), context.Canceled)
}
