package rolling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func interleave(seasons ...[]float64) []float64 {
	n := 0
	for _, s := range seasons {
		n += len(s)
	}
	out := make([]float64, n)
	for s, values := range seasons {
		for j, v := range values {
			out[s+j*len(seasons)] = v
		}
	}
	return out
}

func TestSeasonalMean(t *testing.T) {
	w := Window{Size: 2, MinSamples: Samples(2)}
	actual, err := SeasonalMean([]float64{1, 2, 3, 4, 5, 6}, 2, w)
	require.NoError(t, err)

	even, err := Mean([]float64{1, 3, 5}, w)
	require.NoError(t, err)
	odd, err := Mean([]float64{2, 4, 6}, w)
	require.NoError(t, err)

	assertSeries(t, interleave(even, odd), actual)
	assertSeries(t, []float64{nan, nan, 2, 3, 4, 5}, actual)
}

func TestSeasonalMatchesPerSeason(t *testing.T) {
	input := []float64{nan, nan, nan, 4, 1, 7, 3, 3, 8, 2, 6, 9, 5, 0, 4, 4}
	seasonal := map[string]func([]float64, int, Window) ([]float64, error){
		"mean": SeasonalMean, "sum": SeasonalSum, "std": SeasonalStd, "max": SeasonalMax, "min": SeasonalMin,
	}
	base := map[string]func([]float64, Window) ([]float64, error){
		"mean": Mean, "sum": Sum, "std": Std, "max": Max, "min": Min,
	}
	w := Window{Size: 3, MinSamples: Samples(2)}

	for name, fn := range seasonal {
		for seasonLength := 1; seasonLength <= 5; seasonLength++ {
			actual, err := fn(input, seasonLength, w)
			require.NoError(t, err)

			parts := make([][]float64, seasonLength)
			for s := range parts {
				var values []float64
				for i := s; i < len(input); i += seasonLength {
					values = append(values, input[i])
				}
				parts[s], err = base[name](values, w)
				require.NoError(t, err)
			}
			assertSeries(t, interleave(parts...), actual)
		}
	}
}

func TestSeasonalLongerThanInput(t *testing.T) {
	actual, err := SeasonalMax([]float64{1, 2, 3}, 7, Window{Size: 1})
	require.NoError(t, err)
	assertSeries(t, []float64{1, 2, 3}, actual)

	actual, err = SeasonalMean(nil, 7, Window{Size: 1})
	require.NoError(t, err)
	assert.Empty(t, actual)
}

func TestSeasonalInvalidParameters(t *testing.T) {
	_, err := SeasonalMean([]float64{1, 2}, 0, Window{Size: 1})
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = SeasonalSum([]float64{1, 2}, 2, Window{Size: 0})
	assert.ErrorIs(t, err, ErrInvalidParameter)

	out, err := SeasonalStd([]float64{1, 2, 3, 4}, 2, Window{Size: 2, MinSamples: Samples(1)})
	assert.ErrorIs(t, err, ErrInvalidParameter)
	assert.Nil(t, out)
}

func TestSeasonalAllMissing(t *testing.T) {
	actual, err := SeasonalStd([]float64{nan, nan, nan, nan}, 2, Window{Size: 2})
	require.NoError(t, err)
	assertSeries(t, []float64{nan, nan, nan, nan}, actual)
}
