package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sanspareilsmyn/windowops/internal/config"
)

// Source delivers raw message payloads until ctx is cancelled or the source
// is exhausted. A nil return means the source ended normally.
type Source interface {
	Run(ctx context.Context, output chan<- []byte) error
}

// kafkaLogger adapts zap to kafka-go's Logger interface at a fixed level.
type kafkaLogger struct {
	log   *zap.Logger
	level zapcore.Level
}

func (l kafkaLogger) Printf(msg string, args ...interface{}) {
	l.log.Log(l.level, fmt.Sprintf(msg, args...))
}

// Consumer reads messages from a Kafka topic using kafka-go.
type Consumer struct {
	reader *kafka.Reader
	cfg    config.KafkaConfig
	logger *zap.Logger
}

// NewConsumer creates and configures a new Kafka consumer instance.
func NewConsumer(cfg config.KafkaConfig, logger *zap.Logger) (*Consumer, error) {
	if len(cfg.Brokers) == 0 || cfg.Topic == "" || cfg.GroupID == "" {
		logger.Error("Kafka configuration validation failed",
			zap.Strings("brokers", cfg.Brokers),
			zap.String("topic", cfg.Topic),
			zap.String("group_id", cfg.GroupID),
		)
		return nil, ErrInvalidKafkaConfig
	}

	readerCfg := kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		Topic:       cfg.Topic,
		Logger:      kafkaLogger{log: logger.Named("kafka-reader").WithOptions(zap.AddCallerSkip(1)), level: zapcore.DebugLevel},
		ErrorLogger: kafkaLogger{log: logger.Named("kafka-reader").WithOptions(zap.AddCallerSkip(1)), level: zapcore.ErrorLevel},
	}

	logger.Info("Kafka consumer created",
		zap.String("topic", cfg.Topic),
		zap.String("group_id", cfg.GroupID),
		zap.Strings("brokers", cfg.Brokers),
	)

	return &Consumer{
		reader: kafka.NewReader(readerCfg),
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Run fetches messages and hands their payloads to output, committing each
// offset once the payload has been accepted downstream. It blocks until ctx is
// cancelled or an unrecoverable error occurs.
func (c *Consumer) Run(ctx context.Context, output chan<- []byte) error {
	sugar := c.logger.Sugar()
	sugar.Info("Starting Kafka consumer loop...")

	defer func() {
		if err := c.reader.Close(); err != nil {
			sugar.Errorw("Failed to close Kafka reader cleanly", zap.Error(err))
		}
		sugar.Info("Kafka consumer loop stopped.")
	}()

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				c.logger.Debug("Context done, stopping consumer fetch loop.", zap.Error(err))
				return context.Canceled
			}
			return fmt.Errorf("%w: %w", ErrKafkaFetchFailed, err)
		}

		select {
		case output <- m.Value:
		case <-ctx.Done():
			c.logger.Debug("Context cancelled while sending message downstream.", zap.Error(ctx.Err()))
			return context.Canceled
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			if ctx.Err() != nil {
				return context.Canceled
			}
			return fmt.Errorf("%w: %w", ErrKafkaCommitFailed, err)
		}
	}
}
