// Package rolling computes sliding-window statistics over []float64 series.
//
// Every function returns a newly allocated slice with the same length as its
// input and never modifies the input.
//
// # Rolling statistics
//
// Mean, Sum, Std, Max and Min skip a leading run of NaN values, produce NaN
// until Window.MinSamples samples have been seen, and afterwards aggregate the
// most recent Window.Size samples:
//
//	out, err := rolling.Mean(values, rolling.Window{Size: 7})
//
//	// start emitting after 3 samples, then use windows of 7
//	out, err = rolling.Std(values, rolling.Window{Size: 7, MinSamples: rolling.Samples(3)})
//
// An input that is entirely NaN yields an entirely NaN output, not an error.
//
// # Seasonal statistics
//
// The Seasonal* variants split the input into seasonLength interleaved
// sub-sequences (x[0], x[s], x[2s], ... and so on), apply the rolling
// statistic to each one and interleave the results:
//
//	// weekly pattern on daily data: compare each Monday with the last 4 Mondays
//	out, err := rolling.SeasonalMean(values, 7, rolling.Window{Size: 4})
//
// # Extended statistics
//
// Correlation, CV, MeanPositiveOnly, Kurtosis and AverageDaysWithSales take a
// bare window size and recompute each full window from scratch. They do not
// skip leading NaNs, and positions without a full window hold 0 (NaN for
// Correlation).
//
// # Errors
//
// Invalid parameters are reported before any work is done with an error
// wrapping ErrInvalidParameter:
//
//	if errors.Is(err, rolling.ErrInvalidParameter) { ... }
package rolling
