package rolling

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// The statistics in this file recompute every window from the raw values.
// They do not skip leading NaNs and have no min-samples threshold. Apart from
// Correlation, positions without a full window hold 0 rather than NaN.

// Correlation computes the Pearson correlation between x[i-windowSize:i] and
// x[i-windowSize+1:i+1] for every i >= windowSize, using population moments.
// Windows where either side has zero standard deviation yield 0.
func Correlation(x []float64, windowSize int) ([]float64, error) {
	if err := checkWindowSize(windowSize); err != nil {
		return nil, err
	}
	n := len(x)
	out := nanSlice(n)
	for i := windowSize; i < n; i++ {
		lagged := x[i-windowSize : i]
		current := x[i-windowSize+1 : i+1]
		laggedMean, laggedStd := stat.PopMeanStdDev(lagged, nil)
		currentMean, currentStd := stat.PopMeanStdDev(current, nil)
		if laggedStd == 0 || currentStd == 0 {
			out[i] = 0
			continue
		}
		cov := 0.0
		for j := range lagged {
			cov += (lagged[j] - laggedMean) * (current[j] - currentMean)
		}
		cov /= float64(windowSize)
		out[i] = cov / (laggedStd * currentStd)
	}
	return out, nil
}

// CV computes the coefficient of variation (population std / mean) over each
// window ending at i. A zero mean or a constant window yields 0.
func CV(x []float64, windowSize int) ([]float64, error) {
	return perWindow(x, windowSize, func(window []float64) float64 {
		mean, std := stat.PopMeanStdDev(window, nil)
		if mean == 0 || std == 0 {
			return 0
		}
		return std / mean
	})
}

// MeanPositiveOnly averages the strictly positive values of each window,
// ignoring zero-demand periods. Windows without positive values yield 0.
func MeanPositiveOnly(x []float64, windowSize int) ([]float64, error) {
	return perWindow(x, windowSize, func(window []float64) float64 {
		sum := 0.0
		count := 0
		for _, v := range window {
			if v > 0 {
				sum += v
				count++
			}
		}
		if count == 0 {
			return 0
		}
		return sum / float64(count)
	})
}

// Kurtosis computes the excess kurtosis mean((x-m)^4)/std^4 - 3 of each
// window with the population std. Constant windows and windows containing NaN
// yield 0.
func Kurtosis(x []float64, windowSize int) ([]float64, error) {
	return perWindow(x, windowSize, func(window []float64) float64 {
		mean, std := stat.PopMeanStdDev(window, nil)
		if !(std > 0) {
			return 0
		}
		fourth := 0.0
		for _, v := range window {
			d := v - mean
			fourth += d * d * d * d
		}
		fourth /= float64(len(window))
		return fourth/math.Pow(std, 4) - 3
	})
}

// AverageDaysWithSales returns the fraction of entries in each window that
// are strictly positive.
func AverageDaysWithSales(x []float64, windowSize int) ([]float64, error) {
	return perWindow(x, windowSize, func(window []float64) float64 {
		positive := 0
		for _, v := range window {
			if v > 0 {
				positive++
			}
		}
		return float64(positive) / float64(len(window))
	})
}

// perWindow applies fn to every full window x[i-windowSize+1:i+1] and leaves
// 0 in the first windowSize-1 positions.
func perWindow(x []float64, windowSize int, fn func(window []float64) float64) ([]float64, error) {
	if err := checkWindowSize(windowSize); err != nil {
		return nil, err
	}
	out := make([]float64, len(x))
	for i := windowSize - 1; i < len(x); i++ {
		out[i] = fn(x[i-windowSize+1 : i+1])
	}
	return out, nil
}
