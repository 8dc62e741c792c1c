package rolling

import (
	"fmt"
	"math"

	"github.com/gammazero/deque"
)

// kernel pairs the parameter check of a statistic with its single-pass
// implementation. run only ever sees validated, concrete parameters.
type kernel struct {
	resolve func(w Window) (size, minSamples int, err error)
	run     func(x []float64, size, minSamples int) []float64
}

func (k kernel) apply(x []float64, w Window) ([]float64, error) {
	size, minSamples, err := k.resolve(w)
	if err != nil {
		return nil, err
	}
	return k.run(x, size, minSamples), nil
}

var (
	meanKernel = kernel{resolve: Window.Resolve, run: func(x []float64, size, minSamples int) []float64 {
		return accumulate(x, size, minSamples, true)
	}}
	sumKernel = kernel{resolve: Window.Resolve, run: func(x []float64, size, minSamples int) []float64 {
		return accumulate(x, size, minSamples, false)
	}}
	stdKernel = kernel{resolve: resolveStd, run: welford}
	maxKernel = kernel{resolve: Window.Resolve, run: func(x []float64, size, minSamples int) []float64 {
		return extremum(x, size, minSamples, greater)
	}}
	minKernel = kernel{resolve: Window.Resolve, run: func(x []float64, size, minSamples int) []float64 {
		return extremum(x, size, minSamples, less)
	}}
)

// Mean computes the mean over the last w.Size non-missing samples, starting
// once w.MinSamples samples are available.
func Mean(x []float64, w Window) ([]float64, error) {
	return meanKernel.apply(x, w)
}

// Sum computes the sum over the last w.Size non-missing samples, starting
// once w.MinSamples samples are available.
func Sum(x []float64, w Window) ([]float64, error) {
	return sumKernel.apply(x, w)
}

// Std computes the sample standard deviation (ddof=1) over the last w.Size
// non-missing samples using Welford's online algorithm. The resolved
// MinSamples must be at least 2.
//
// Reference: https://en.wikipedia.org/wiki/Algorithms_for_calculating_variance#Welford's_online_algorithm
func Std(x []float64, w Window) ([]float64, error) {
	return stdKernel.apply(x, w)
}

// Max computes the maximum over the last w.Size non-missing samples.
func Max(x []float64, w Window) ([]float64, error) {
	return maxKernel.apply(x, w)
}

// Min computes the minimum over the last w.Size non-missing samples.
func Min(x []float64, w Window) ([]float64, error) {
	return minKernel.apply(x, w)
}

func resolveStd(w Window) (int, int, error) {
	size, minSamples, err := w.Resolve()
	if err != nil {
		return 0, 0, err
	}
	if minSamples < 2 {
		return 0, 0, fmt.Errorf("%w: min_samples must be greater than 1", ErrInvalidParameter)
	}
	return size, minSamples, nil
}

// accumulate is the running-sum pass shared by Mean and Sum.
func accumulate(x []float64, size, minSamples int, average bool) []float64 {
	n := len(x)
	out := nanSlice(n)
	start := FirstNonMissing(x)
	if start+minSamples > n {
		return out
	}

	accum := 0.0
	upper := min(start+size, n)
	for i := start; i < upper; i++ {
		accum += x[i]
		if i+1 >= start+minSamples {
			if average {
				out[i] = accum / float64(i-start+1)
			} else {
				out[i] = accum
			}
		}
	}

	windowSize := float64(size)
	for i := start + size; i < n; i++ {
		accum += x[i] - x[i-size]
		if average {
			out[i] = accum / windowSize
		} else {
			out[i] = accum
		}
	}
	return out
}

func welford(x []float64, size, minSamples int) []float64 {
	n := len(x)
	out := nanSlice(n)
	start := FirstNonMissing(x)
	if start+minSamples > n {
		return out
	}

	prevAvg := 0.0
	currAvg := x[start]
	m2 := 0.0
	upper := min(start+size, n)
	for i := start + 1; i < upper; i++ {
		prevAvg = currAvg
		currAvg = prevAvg + (x[i]-prevAvg)/float64(i-start+1)
		m2 += (x[i] - prevAvg) * (x[i] - currAvg)
		// rounding can push m2 slightly below zero
		m2 = math.Max(m2, 0)
		if i+1 >= start+minSamples {
			out[i] = math.Sqrt(m2 / float64(i-start))
		}
	}

	windowSize := float64(size)
	for i := start + size; i < n; i++ {
		prevAvg = currAvg
		newMinusOld := x[i] - x[i-size]
		currAvg = prevAvg + newMinusOld/windowSize
		m2 += newMinusOld * (x[i] - currAvg + x[i-size] - prevAvg)
		m2 = math.Max(m2, 0)
		out[i] = math.Sqrt(m2 / (windowSize - 1))
	}
	return out
}

type comparison func(a, b float64) bool

func greater(a, b float64) bool { return a > b }

func less(a, b float64) bool { return a < b }

// extremum keeps a deque of indices whose values are strictly ordered by
// better from front to back, so the front is always the window's pivot.
// A new value evicts every queued value it ties or beats; ties hold equal
// values, so the output matches a left-to-right scan with a strict predicate.
func extremum(x []float64, size, minSamples int, better comparison) []float64 {
	n := len(x)
	out := nanSlice(n)
	start := FirstNonMissing(x)
	if start+minSamples > n {
		return out
	}

	var candidates deque.Deque[int]
	for i := start; i < n; i++ {
		for candidates.Len() > 0 && candidates.Front() <= i-size {
			candidates.PopFront()
		}
		// until the first window fills, ties keep the earlier value
		warm := i-start < size
		for candidates.Len() > 0 {
			back := x[candidates.Back()]
			if warm && !better(x[i], back) || !warm && better(back, x[i]) {
				break
			}
			candidates.PopBack()
		}
		candidates.PushBack(i)
		if i+1 >= start+minSamples {
			out[i] = x[candidates.Front()]
		}
	}
	return out
}
