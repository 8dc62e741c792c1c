package rolling

import (
	"fmt"
	"math"
)

// Window holds the parameters shared by every rolling statistic.
// MinSamples is optional; nil means "same as Size".
type Window struct {
	Size       int
	MinSamples *int
}

// Samples returns a MinSamples value for use in a Window literal.
func Samples(n int) *int {
	return &n
}

// Resolve validates the window and returns concrete (size, minSamples).
func (w Window) Resolve() (size, minSamples int, err error) {
	return NormalizeWindow(w.Size, w.MinSamples)
}

// NormalizeWindow substitutes size for a nil minSamples and checks that
// 0 < minSamples <= size. Failures wrap ErrInvalidParameter.
func NormalizeWindow(size int, minSamples *int) (int, int, error) {
	if size <= 0 {
		return 0, 0, fmt.Errorf("%w: window_size must be positive, got %d", ErrInvalidParameter, size)
	}
	resolved := size
	if minSamples != nil {
		resolved = *minSamples
	}
	if resolved <= 0 {
		return 0, 0, fmt.Errorf("%w: min_samples must be positive, got %d", ErrInvalidParameter, resolved)
	}
	if resolved > size {
		return 0, 0, fmt.Errorf("%w: min_samples (%d) must be less than or equal to window_size (%d)",
			ErrInvalidParameter, resolved, size)
	}
	return size, resolved, nil
}

// FirstNonMissing returns the index of the first non-NaN value in x,
// or len(x) when every value is NaN.
func FirstNonMissing(x []float64) int {
	for i, v := range x {
		if !math.IsNaN(v) {
			return i
		}
	}
	return len(x)
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func checkWindowSize(windowSize int) error {
	if windowSize <= 0 {
		return fmt.Errorf("%w: window_size must be positive, got %d", ErrInvalidParameter, windowSize)
	}
	return nil
}
