package rolling

import (
	"fmt"
	"runtime"

	"github.com/sourcegraph/conc/pool"
)

// SeasonalMean computes Mean independently over every stride-seasonLength
// sub-sequence of x and interleaves the results back into position order.
func SeasonalMean(x []float64, seasonLength int, w Window) ([]float64, error) {
	return seasonal(meanKernel, x, seasonLength, w)
}

// SeasonalSum is the seasonal variant of Sum.
func SeasonalSum(x []float64, seasonLength int, w Window) ([]float64, error) {
	return seasonal(sumKernel, x, seasonLength, w)
}

// SeasonalStd is the seasonal variant of Std.
func SeasonalStd(x []float64, seasonLength int, w Window) ([]float64, error) {
	return seasonal(stdKernel, x, seasonLength, w)
}

// SeasonalMax is the seasonal variant of Max.
func SeasonalMax(x []float64, seasonLength int, w Window) ([]float64, error) {
	return seasonal(maxKernel, x, seasonLength, w)
}

// SeasonalMin is the seasonal variant of Min.
func SeasonalMin(x []float64, seasonLength int, w Window) ([]float64, error) {
	return seasonal(minKernel, x, seasonLength, w)
}

// seasonal validates once, then runs k on each season concurrently. Seasons
// own disjoint output indices, so workers write into out without locking.
func seasonal(k kernel, x []float64, seasonLength int, w Window) ([]float64, error) {
	if seasonLength <= 0 {
		return nil, fmt.Errorf("%w: season_length must be positive, got %d", ErrInvalidParameter, seasonLength)
	}
	size, minSamples, err := k.resolve(w)
	if err != nil {
		return nil, err
	}

	out := nanSlice(len(x))
	seasons := min(seasonLength, len(x))
	if seasons == 0 {
		return out, nil
	}

	p := pool.New().WithMaxGoroutines(min(seasons, runtime.GOMAXPROCS(0)))
	for season := 0; season < seasons; season++ {
		season := season
		p.Go(func() {
			values := make([]float64, 0, (len(x)-season+seasonLength-1)/seasonLength)
			for i := season; i < len(x); i += seasonLength {
				values = append(values, x[i])
			}
			result := k.run(values, size, minSamples)
			for j, v := range result {
				out[season+j*seasonLength] = v
			}
		})
	}
	p.Wait()
	return out, nil
}
