package config

import "errors"

var (
	ErrReadingConfigFile        = errors.New("failed to read config file")
	ErrUnmarshallingConfig      = errors.New("failed to unmarshal config")
	ErrEmptyKafkaBrokers        = errors.New("kafka brokers list cannot be empty")
	ErrEmptyKafkaTopic          = errors.New("kafka topic cannot be empty")
	ErrEmptyKafkaGroupID        = errors.New("kafka groupID cannot be empty")
	ErrInvalidFlushInterval     = errors.New("pipeline flushInterval must be positive")
	ErrInvalidHistorySize       = errors.New("pipeline historySize must be positive")
	ErrUnknownAggregation       = errors.New("pipeline aggregation must be one of: sum, mean")
	ErrNoFeatures               = errors.New("at least one feature must be configured")
	ErrEmptyFeatureName         = errors.New("feature name cannot be empty")
	ErrDuplicateFeature         = errors.New("feature configured more than once")
	ErrNoStatistics             = errors.New("feature has no statistics configured")
	ErrInvalidStatistic         = errors.New("invalid feature statistic")
	ErrDuplicateStatistic       = errors.New("statistic configured more than once for a feature")
	ErrHistoryShorterThanWindow = errors.New("pipeline historySize is shorter than a configured window")
	ErrEmptyMetricsAddress      = errors.New("metrics address cannot be empty when metrics are enabled")
	ErrConfigFileMissing        = errors.New("config file not found")
)
