package rolling

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const floatTolerance = 1e-9

var nan = math.NaN()

func assertSeries(t *testing.T, expected, actual []float64) {
	t.Helper()
	require.Len(t, actual, len(expected))
	for i := range expected {
		if math.IsNaN(expected[i]) {
			assert.Truef(t, math.IsNaN(actual[i]), "index %d: expected NaN, got %v", i, actual[i])
			continue
		}
		assert.InDeltaf(t, expected[i], actual[i], floatTolerance, "index %d", i)
	}
}

// bruteForce recomputes fn over x[max(start, i-size+1):i+1] at every position.
func bruteForce(x []float64, size, minSamples int, fn func([]float64) float64) []float64 {
	out := nanSlice(len(x))
	start := FirstNonMissing(x)
	for i := start; i < len(x); i++ {
		lo := max(start, i-size+1)
		if i-start+1 < minSamples {
			continue
		}
		out[i] = fn(x[lo : i+1])
	}
	return out
}

func maxOf(w []float64) float64 {
	m := w[0]
	for _, v := range w[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minOf(w []float64) float64 {
	m := w[0]
	for _, v := range w[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func sampleStd(w []float64) float64 {
	mean := 0.0
	for _, v := range w {
		mean += v
	}
	mean /= float64(len(w))
	ss := 0.0
	for _, v := range w {
		ss += (v - mean) * (v - mean)
	}
	return math.Sqrt(ss / float64(len(w)-1))
}

func TestMean(t *testing.T) {
	tests := []struct {
		name     string
		input    []float64
		window   Window
		expected []float64
	}{
		{
			name:     "full window",
			input:    []float64{1, 2, 3, 4, 5},
			window:   Window{Size: 3, MinSamples: Samples(3)},
			expected: []float64{nan, nan, 2, 3, 4},
		},
		{
			name:     "nil min samples defaults to window size",
			input:    []float64{1, 2, 3, 4, 5},
			window:   Window{Size: 3},
			expected: []float64{nan, nan, 2, 3, 4},
		},
		{
			name:     "partial windows during warm-up",
			input:    []float64{1, 2, 3, 4, 5},
			window:   Window{Size: 3, MinSamples: Samples(1)},
			expected: []float64{1, 1.5, 2, 3, 4},
		},
		{
			name:     "leading NaNs are skipped",
			input:    []float64{nan, nan, 2, 4, 6, 8},
			window:   Window{Size: 2, MinSamples: Samples(1)},
			expected: []float64{nan, nan, 2, 3, 5, 7},
		},
		{
			name:     "window larger than input",
			input:    []float64{1, 2, 3},
			window:   Window{Size: 5, MinSamples: Samples(2)},
			expected: []float64{nan, 1.5, 2},
		},
		{
			name:     "not enough samples to reach threshold",
			input:    []float64{nan, 1, 2},
			window:   Window{Size: 3},
			expected: []float64{nan, nan, nan},
		},
		{
			name:     "empty input",
			input:    []float64{},
			window:   Window{Size: 3},
			expected: []float64{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := Mean(tc.input, tc.window)
			require.NoError(t, err)
			assertSeries(t, tc.expected, actual)
		})
	}
}

func TestSum(t *testing.T) {
	actual, err := Sum([]float64{nan, 1, 2, 3, 4, 5}, Window{Size: 3, MinSamples: Samples(2)})
	require.NoError(t, err)
	assertSeries(t, []float64{nan, nan, 3, 6, 9, 12}, actual)
}

func TestSumMatchesMeanTimesWindow(t *testing.T) {
	input := []float64{nan, nan, 3.5, -1, 2.25, 8, 0, 4.75, 6, -3, 2, 9.5}
	for size := 1; size <= 5; size++ {
		for minSamples := 1; minSamples <= size; minSamples++ {
			w := Window{Size: size, MinSamples: Samples(minSamples)}
			sums, err := Sum(input, w)
			require.NoError(t, err)
			means, err := Mean(input, w)
			require.NoError(t, err)

			start := FirstNonMissing(input)
			for i := start + size - 1; i < len(input); i++ {
				assert.InDelta(t, means[i]*float64(size), sums[i], floatTolerance,
					"size=%d min=%d index=%d", size, minSamples, i)
			}
		}
	}
}

func TestStd(t *testing.T) {
	actual, err := Std([]float64{1, 2, 3, 4, 5}, Window{Size: 3, MinSamples: Samples(3)})
	require.NoError(t, err)
	assertSeries(t, []float64{nan, nan, 1, 1, 1}, actual)
}

func TestStdMatchesBruteForce(t *testing.T) {
	input := []float64{nan, 10, 12, 9, 15, 15, 15, 15, 3, 100, 101, 99, -4, 0.5}
	for size := 2; size <= 6; size++ {
		for minSamples := 2; minSamples <= size; minSamples++ {
			actual, err := Std(input, Window{Size: size, MinSamples: Samples(minSamples)})
			require.NoError(t, err)
			expected := bruteForce(input, size, minSamples, sampleStd)
			require.Len(t, actual, len(expected))
			for i := range expected {
				if math.IsNaN(expected[i]) {
					assert.True(t, math.IsNaN(actual[i]))
					continue
				}
				assert.InDelta(t, expected[i], actual[i], 1e-6, "size=%d min=%d index=%d", size, minSamples, i)
			}
		}
	}
}

func TestStdConstantWindowIsZero(t *testing.T) {
	actual, err := Std([]float64{1, 7, 7, 7, 7}, Window{Size: 3})
	require.NoError(t, err)
	assert.Equal(t, 0.0, actual[3])
	assert.Equal(t, 0.0, actual[4])
	assert.False(t, math.Signbit(actual[4]))
}

func TestStdRequiresTwoSamples(t *testing.T) {
	_, err := Std([]float64{1, 2, 3}, Window{Size: 3, MinSamples: Samples(1)})
	require.ErrorIs(t, err, ErrInvalidParameter)
	assert.Contains(t, err.Error(), "min_samples must be greater than 1")

	_, err = Std([]float64{1, 2, 3}, Window{Size: 1})
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestMaxMin(t *testing.T) {
	input := []float64{3, 1, 4, 1, 5, 9, 2, 6}
	w := Window{Size: 3, MinSamples: Samples(3)}

	maxes, err := Max(input, w)
	require.NoError(t, err)
	mins, err := Min(input, w)
	require.NoError(t, err)

	assert.Equal(t, 4.0, maxes[2])
	assert.Equal(t, 1.0, mins[2])
	assertSeries(t, []float64{nan, nan, 4, 4, 5, 9, 9, 9}, maxes)
	assertSeries(t, []float64{nan, nan, 1, 1, 1, 1, 2, 2}, mins)
}

func TestMaxMinMatchBruteForce(t *testing.T) {
	inputs := [][]float64{
		{3, 1, 4, 1, 5, 9, 2, 6},
		{nan, nan, 5, 5, 5, 2, 2, 8, 8, 1, 1, 1, 7},
		{9, 8, 7, 6, 5, 4, 3, 2, 1},
		{1, 2, 3, 4, 5, 6, 7, 8, 9},
		{-1, -1, -1, -1},
	}
	for _, input := range inputs {
		for size := 1; size <= 5; size++ {
			for minSamples := 1; minSamples <= size; minSamples++ {
				w := Window{Size: size, MinSamples: Samples(minSamples)}
				maxes, err := Max(input, w)
				require.NoError(t, err)
				mins, err := Min(input, w)
				require.NoError(t, err)
				assertSeries(t, bruteForce(input, size, minSamples, maxOf), maxes)
				assertSeries(t, bruteForce(input, size, minSamples, minOf), mins)
			}
		}
	}
}

func TestMaxMinTiesKeepEarlierValue(t *testing.T) {
	negZero := math.Copysign(0, -1)

	maxes, err := Max([]float64{negZero, 0}, Window{Size: 2})
	require.NoError(t, err)
	assert.True(t, math.Signbit(maxes[1]))

	mins, err := Min([]float64{0, negZero}, Window{Size: 2})
	require.NoError(t, err)
	assert.False(t, math.Signbit(mins[1]))
}

func TestAllMissingInput(t *testing.T) {
	input := []float64{nan, nan, nan}
	funcs := map[string]func([]float64, Window) ([]float64, error){
		"mean": Mean,
		"sum":  Sum,
		"std":  Std,
		"max":  Max,
		"min":  Min,
	}
	for name, fn := range funcs {
		t.Run(name, func(t *testing.T) {
			actual, err := fn(input, Window{Size: 2})
			require.NoError(t, err)
			assertSeries(t, []float64{nan, nan, nan}, actual)
		})
	}
}

func TestIdempotent(t *testing.T) {
	input := []float64{nan, 0.1, 0.7, 0.3, 1e9, 0.2, 1e-9, 5, 5, 4.4}
	funcs := []func([]float64, Window) ([]float64, error){Mean, Sum, Std, Max, Min}
	w := Window{Size: 4, MinSamples: Samples(2)}
	for _, fn := range funcs {
		first, err := fn(input, w)
		require.NoError(t, err)
		second, err := fn(input, w)
		require.NoError(t, err)
		for i := range first {
			assert.Equal(t, math.Float64bits(first[i]), math.Float64bits(second[i]))
		}
	}
}

func TestInputNotModified(t *testing.T) {
	input := []float64{nan, 1, 2, 3, 4}
	_, err := Mean(input, Window{Size: 2})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(input[0]))
	assert.Equal(t, []float64{1, 2, 3, 4}, input[1:])
}
