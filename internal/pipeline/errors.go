package pipeline

import "errors"

var (
	ErrInvalidKafkaConfig     = errors.New("invalid Kafka configuration provided")
	ErrKafkaFetchFailed       = errors.New("failed to fetch message from Kafka")
	ErrKafkaCommitFailed      = errors.New("failed to commit Kafka message")
	ErrInvalidFeatureSpec     = errors.New("invalid feature statistic")
	ErrConsumerCreationFailed = errors.New("failed to create consumer")
	ErrCalculatorCreation     = errors.New("failed to create calculator")
	ErrConsumerRunFailed      = errors.New("consumer component failed")
	ErrCalculatorRunFailed    = errors.New("calculator component failed")
	ErrExporterRunFailed      = errors.New("exporter component failed")
)
