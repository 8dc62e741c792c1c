package rolling

import (
	"fmt"
	"strings"
)

// Statistic names a rolling computation.
type Statistic string

const (
	StatMean                 Statistic = "mean"
	StatStd                  Statistic = "std"
	StatMax                  Statistic = "max"
	StatMin                  Statistic = "min"
	StatSum                  Statistic = "sum"
	StatCorrelation          Statistic = "correlation"
	StatCV                   Statistic = "cv"
	StatMeanPositiveOnly     Statistic = "mean_positive_only"
	StatKurtosis             Statistic = "kurtosis"
	StatAverageDaysWithSales Statistic = "average_days_with_sales"
)

var kernels = map[Statistic]kernel{
	StatMean: meanKernel,
	StatStd:  stdKernel,
	StatMax:  maxKernel,
	StatMin:  minKernel,
	StatSum:  sumKernel,
}

var extended = map[Statistic]func([]float64, int) ([]float64, error){
	StatCorrelation:          Correlation,
	StatCV:                   CV,
	StatMeanPositiveOnly:     MeanPositiveOnly,
	StatKurtosis:             Kurtosis,
	StatAverageDaysWithSales: AverageDaysWithSales,
}

// ParseStatistic maps a configuration name such as "Mean" or
// " average_days_with_sales" to its Statistic.
func ParseStatistic(name string) (Statistic, error) {
	s := Statistic(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := kernels[s]; ok {
		return s, nil
	}
	if _, ok := extended[s]; ok {
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatistic, name)
}

// Extended reports whether s uses the recompute-per-window policy, which
// takes only a window size and has no seasonal variant.
func (s Statistic) Extended() bool {
	_, ok := extended[s]
	return ok
}

// Spec fully describes one rolling feature. SeasonLength values of 0 and 1
// both mean "not seasonal".
type Spec struct {
	Statistic    Statistic
	Window       Window
	SeasonLength int
}

// Validate checks s without computing anything.
func (s Spec) Validate() error {
	if s.SeasonLength < 0 {
		return fmt.Errorf("%w: season_length must not be negative, got %d", ErrInvalidParameter, s.SeasonLength)
	}
	if k, ok := kernels[s.Statistic]; ok {
		_, _, err := k.resolve(s.Window)
		return err
	}
	if _, ok := extended[s.Statistic]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStatistic, string(s.Statistic))
	}
	if s.SeasonLength > 1 {
		return fmt.Errorf("%w: %s has no seasonal variant", ErrInvalidParameter, s.Statistic)
	}
	if s.Window.MinSamples != nil {
		return fmt.Errorf("%w: %s does not accept min_samples", ErrInvalidParameter, s.Statistic)
	}
	return checkWindowSize(s.Window.Size)
}

// Compute runs the statistic over x.
func (s Spec) Compute(x []float64) ([]float64, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if k, ok := kernels[s.Statistic]; ok {
		if s.SeasonLength > 1 {
			return seasonal(k, x, s.SeasonLength, s.Window)
		}
		return k.apply(x, s.Window)
	}
	return extended[s.Statistic](x, s.Window.Size)
}

// Name returns a stable label, e.g. "rolling_mean_7" or
// "seasonal_rolling_std_4_s7".
func (s Spec) Name() string {
	var b strings.Builder
	if s.SeasonLength > 1 {
		b.WriteString("seasonal_")
	}
	fmt.Fprintf(&b, "rolling_%s_%d", s.Statistic, s.Window.Size)
	if s.Window.MinSamples != nil && *s.Window.MinSamples != s.Window.Size {
		fmt.Fprintf(&b, "_m%d", *s.Window.MinSamples)
	}
	if s.SeasonLength > 1 {
		fmt.Fprintf(&b, "_s%d", s.SeasonLength)
	}
	return b.String()
}
