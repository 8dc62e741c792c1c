package pipeline

import (
	"math"

	"github.com/sanspareilsmyn/windowops/internal/config"
	"github.com/sanspareilsmyn/windowops/internal/message"
	"github.com/sanspareilsmyn/windowops/rolling"
)

// observe folds one message into the current period. It returns false when
// the feature carried a non-null value that is not a finite number.
func (s *featureSeries) observe(msg message.DynamicMessage) bool {
	s.period.count++
	if !msg.HasNonNull(s.name) {
		s.period.nullCount++
		return true
	}
	value, ok := msg.GetFloat64(s.name)
	if !ok {
		s.period.invalidCount++
		return false
	}
	s.period.validCount++
	s.period.sum += value
	return true
}

// closePeriod turns the current period into one observation, appends it to
// the history and resets the period. Until the first value arrives the
// observation is NaN, building the leading missing run the rolling functions
// skip. Afterwards an empty period is 0 for sum aggregation and repeats the
// previous observation for mean aggregation, so no NaN follows a value.
func (s *featureSeries) closePeriod(aggregation string) (observation float64, stats periodStats) {
	stats = s.period
	s.period = periodStats{}

	switch {
	case stats.validCount > 0:
		s.started = true
		observation = stats.sum
		if aggregation == config.AggregationMean {
			observation = stats.sum / float64(stats.validCount)
		}
	case !s.started:
		observation = math.NaN()
	case aggregation == config.AggregationMean:
		observation = s.history[len(s.history)-1]
	default:
		observation = 0
	}

	if len(s.history) == s.capacity {
		copy(s.history, s.history[1:])
		s.history[len(s.history)-1] = observation
	} else {
		s.history = append(s.history, observation)
	}
	return observation, stats
}

// snapshot copies the history so it can be used outside the calculator lock.
func (s *featureSeries) snapshot() []float64 {
	return append([]float64(nil), s.history...)
}

// latest computes spec over history and returns its last element.
func latest(spec rolling.Spec, history []float64) (float64, error) {
	out, err := spec.Compute(history)
	if err != nil {
		return math.NaN(), err
	}
	if len(out) == 0 {
		return math.NaN(), nil
	}
	return out[len(out)-1], nil
}
