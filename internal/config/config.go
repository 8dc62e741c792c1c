package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sanspareilsmyn/windowops/rolling"
)

const (
	defaultKafkaGroupID          = "windowops-default-group"
	defaultPipelineFlushInterval = 1 * time.Minute
	defaultPipelineHistorySize   = 512
	defaultPipelineAggregation   = AggregationSum
	defaultMetricsEnabled        = true
	defaultMetricsAddress        = ":9090"
	defaultLogLevel              = "info"
	defaultLogFormat             = "console"
	defaultLogFileEnabled        = false
	defaultLogDirectory          = "log"
	defaultLogFilename           = "windowops.log"
	defaultLogMaxSizeMB          = 100
	defaultLogMaxBackups         = 3
	defaultLogMaxAgeDays         = 7
	defaultLogCompress           = false

	// Environment variable prefix
	envPrefix = "WINDOWOPS"
)

// Period aggregations turning the raw values of one flush interval into a
// single observation of the feature series.
const (
	AggregationSum  = "sum"
	AggregationMean = "mean"
)

type Config struct {
	Kafka    KafkaConfig     `mapstructure:"kafka"`
	Pipeline PipelineConfig  `mapstructure:"pipeline"`
	Features []FeatureConfig `mapstructure:"features"`
	Metrics  MetricsConfig   `mapstructure:"metrics"`
	Log      LogConfig       `mapstructure:"log"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"groupID"`
}

type PipelineConfig struct {
	FlushInterval time.Duration `mapstructure:"flushInterval"`
	HistorySize   int           `mapstructure:"historySize"` // observations kept per feature
	Aggregation   string        `mapstructure:"aggregation"` // "sum" or "mean"
}

type FeatureConfig struct {
	Name       string            `mapstructure:"name"`
	Statistics []StatisticConfig `mapstructure:"statistics"`
}

// StatisticConfig is one rolling feature computed over a feature's history.
type StatisticConfig struct {
	Type         string     `mapstructure:"type"` // e.g., "mean", "std", "kurtosis"
	WindowSize   int        `mapstructure:"windowSize"`
	MinSamples   *int       `mapstructure:"minSamples"`   // defaults to windowSize
	SeasonLength int        `mapstructure:"seasonLength"` // 0 or 1 disables seasonal mode
	Thresholds   Thresholds `mapstructure:"thresholds"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

type LogConfig struct {
	Level              string `mapstructure:"level"`
	Format             string `mapstructure:"format"`
	FileLoggingEnabled bool   `mapstructure:"fileLoggingEnabled"`
	Directory          string `mapstructure:"directory"`
	Filename           string `mapstructure:"filename"`
	MaxSize            int    `mapstructure:"maxSize"`    // Max size in MB
	MaxBackups         int    `mapstructure:"maxBackups"` // Max backup files
	MaxAge             int    `mapstructure:"maxAge"`     // Max days to retain
	Compress           bool   `mapstructure:"compress"`   // Compress rotated files?
}

type Thresholds struct {
	Min *float64 `mapstructure:"min"`
	Max *float64 `mapstructure:"max"`
}

// Spec converts the statistic configuration into a rolling.Spec.
func (s StatisticConfig) Spec() (rolling.Spec, error) {
	stat, err := rolling.ParseStatistic(s.Type)
	if err != nil {
		return rolling.Spec{}, err
	}
	spec := rolling.Spec{
		Statistic:    stat,
		Window:       rolling.Window{Size: s.WindowSize, MinSamples: s.MinSamples},
		SeasonLength: s.SeasonLength,
	}
	if err := spec.Validate(); err != nil {
		return rolling.Spec{}, err
	}
	return spec, nil
}

// Load initializes viper, reads config, applies defaults, unmarshals, and validates.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	configureViper(v, configPath)

	setDefaults(v)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnmarshallingConfig, err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// configureViper sets up viper instance for file and environment variables.
func configureViper(v *viper.Viper, configPath string) {
	if configPath != "" {
		v.SetConfigFile(configPath)
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("kafka.groupID", defaultKafkaGroupID)
	v.SetDefault("pipeline.flushInterval", defaultPipelineFlushInterval)
	v.SetDefault("pipeline.historySize", defaultPipelineHistorySize)
	v.SetDefault("pipeline.aggregation", defaultPipelineAggregation)
	v.SetDefault("metrics.enabled", defaultMetricsEnabled)
	v.SetDefault("metrics.address", defaultMetricsAddress)
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.format", defaultLogFormat)
	v.SetDefault("log.fileLoggingEnabled", defaultLogFileEnabled)
	v.SetDefault("log.directory", defaultLogDirectory)
	v.SetDefault("log.filename", defaultLogFilename)
	v.SetDefault("log.maxSize", defaultLogMaxSizeMB)
	v.SetDefault("log.maxBackups", defaultLogMaxBackups)
	v.SetDefault("log.maxAge", defaultLogMaxAgeDays)
	v.SetDefault("log.compress", defaultLogCompress)
}

func readConfigFile(v *viper.Viper) error {
	err := v.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) || errors.Is(err, fs.ErrNotExist) {
			return ErrConfigFileMissing
		}
		return fmt.Errorf("%w: %w", ErrReadingConfigFile, err)
	}
	return nil
}

func validateConfig(cfg *Config) error {
	if len(cfg.Kafka.Brokers) == 0 {
		return ErrEmptyKafkaBrokers
	}
	if cfg.Kafka.Topic == "" {
		return ErrEmptyKafkaTopic
	}
	if cfg.Kafka.GroupID == "" {
		return ErrEmptyKafkaGroupID
	}
	if cfg.Pipeline.FlushInterval <= 0 {
		return ErrInvalidFlushInterval
	}
	if cfg.Pipeline.HistorySize <= 0 {
		return ErrInvalidHistorySize
	}
	cfg.Pipeline.Aggregation = strings.ToLower(strings.TrimSpace(cfg.Pipeline.Aggregation))
	if cfg.Pipeline.Aggregation != AggregationSum && cfg.Pipeline.Aggregation != AggregationMean {
		return fmt.Errorf("%w, got %q", ErrUnknownAggregation, cfg.Pipeline.Aggregation)
	}
	if cfg.Metrics.Enabled && cfg.Metrics.Address == "" {
		return ErrEmptyMetricsAddress
	}
	return validateFeatures(cfg.Features, cfg.Pipeline.HistorySize)
}

func validateFeatures(features []FeatureConfig, historySize int) error {
	if len(features) == 0 {
		return ErrNoFeatures
	}
	seen := make(map[string]struct{}, len(features))
	for _, feature := range features {
		if feature.Name == "" {
			return ErrEmptyFeatureName
		}
		if _, dup := seen[feature.Name]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateFeature, feature.Name)
		}
		seen[feature.Name] = struct{}{}

		if len(feature.Statistics) == 0 {
			return fmt.Errorf("%w: %s", ErrNoStatistics, feature.Name)
		}
		names := make(map[string]struct{}, len(feature.Statistics))
		for i, statCfg := range feature.Statistics {
			spec, err := statCfg.Spec()
			if err != nil {
				return fmt.Errorf("%w: %s.statistics[%d]: %w", ErrInvalidStatistic, feature.Name, i, err)
			}
			if _, dup := names[spec.Name()]; dup {
				return fmt.Errorf("%w: %s.%s", ErrDuplicateStatistic, feature.Name, spec.Name())
			}
			names[spec.Name()] = struct{}{}
			// a seasonal window spans SeasonLength observations per sample
			span := spec.Window.Size * max(1, spec.SeasonLength)
			if span > historySize {
				return fmt.Errorf("%w: %s needs %d observations, history keeps %d",
					ErrHistoryShorterThanWindow, spec.Name(), span, historySize)
			}
		}
	}
	return nil
}
