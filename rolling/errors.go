package rolling

import "errors"

var (
	ErrInvalidParameter = errors.New("invalid rolling parameter")
	ErrUnknownStatistic = errors.New("unknown statistic")
)
