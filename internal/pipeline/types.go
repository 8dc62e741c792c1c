package pipeline

import (
	"time"

	"github.com/sanspareilsmyn/windowops/rolling"
)

// FeatureResult holds the latest value of one rolling feature after a period
// has been flushed into the feature's history.
type FeatureResult struct {
	FeatureName string
	Statistic   string // rolling.Spec.Name()
	PeriodStart time.Time
	PeriodEnd   time.Time
	Value       float64 // NaN until the statistic has enough samples
	Samples     int     // non-missing observations in the history
	Count       int64   // messages seen during the period
	NullCount   int64   // messages where the feature was missing or null
}

// periodStats holds the running aggregates of one feature within the current period.
type periodStats struct {
	count        int64
	nullCount    int64
	invalidCount int64
	validCount   int64
	sum          float64
}

// featureSeries is the bounded observation history of one feature plus the
// rolling statistics computed over it.
type featureSeries struct {
	name     string
	specs    []rolling.Spec
	capacity int
	history  []float64
	started  bool // a non-missing observation has been recorded
	period   periodStats
}

func newFeatureSeries(name string, specs []rolling.Spec, capacity int) *featureSeries {
	return &featureSeries{
		name:     name,
		specs:    specs,
		capacity: capacity,
		history:  make([]float64, 0, capacity),
	}
}
