package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/windowops/internal/config"
	"github.com/sanspareilsmyn/windowops/internal/message"
)

const channelBufferSize = 100

// Pipeline orchestrates the stages: source, parsing, feature calculation, export.
type Pipeline struct {
	source     Source
	calculator *Calculator
	exporter   *Exporter
	logger     *zap.Logger

	rawMessages    chan []byte
	parsedMessages chan message.DynamicMessage
	results        chan FeatureResult
}

// New creates a pipeline reading from the configured Kafka topic and
// registering its metrics with reg.
func New(cfg *config.Config, reg prometheus.Registerer, logger *zap.Logger) (*Pipeline, error) {
	consumer, err := NewConsumer(cfg.Kafka, logger.Named("consumer"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConsumerCreationFailed, err)
	}
	return newPipeline(cfg, consumer, reg, logger)
}

func newPipeline(cfg *config.Config, source Source, reg prometheus.Registerer, logger *zap.Logger) (*Pipeline, error) {
	initLogger := logger.Named("pipeline.init")

	rawMessages := make(chan []byte, channelBufferSize)
	parsedMessages := make(chan message.DynamicMessage, channelBufferSize)
	results := make(chan FeatureResult, channelBufferSize)
	initLogger.Debug("Channels created", zap.Int("bufferSize", channelBufferSize))

	calculator, err := NewCalculator(cfg.Pipeline, cfg.Features, parsedMessages, results, logger.Named("calculator"))
	if err != nil {
		initLogger.Error("Failed to create calculator", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrCalculatorCreation, err)
	}
	exporter := NewExporter(cfg.Features, results, reg, logger.Named("exporter"))

	initLogger.Info("Pipeline instance created successfully")
	return &Pipeline{
		source:         source,
		calculator:     calculator,
		exporter:       exporter,
		logger:         logger.Named("pipeline"),
		rawMessages:    rawMessages,
		parsedMessages: parsedMessages,
		results:        results,
	}, nil
}

// Run starts all components and blocks until they finish, the context is
// cancelled, or one of them fails. The first component error is returned.
func (p *Pipeline) Run(ctx context.Context) error {
	sugar := p.logger.Sugar()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	pipelineErr := make(chan error, 3) // source, calculator, exporter

	sugar.Info("Pipeline Run: Starting components...")
	wg.Add(4)
	go p.runSource(ctx, &wg, pipelineErr)
	go p.runParser(ctx, &wg)
	go p.runCalculator(ctx, &wg, pipelineErr)
	go p.runExporter(ctx, &wg, pipelineErr)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	var firstErr error
	select {
	case <-done:
		sugar.Info("Pipeline Run: All components finished.")
	case <-ctx.Done():
		sugar.Info("Pipeline Run: Context cancelled. Waiting for components to finish...")
		firstErr = ctx.Err()
		<-done
	case err := <-pipelineErr:
		sugar.Errorw("Pipeline Run: Received error from a component, initiating shutdown...", zap.Error(err))
		firstErr = err
		cancel()
		<-done
	}

	// a component may have failed just as the others finished
	if firstErr == nil {
		select {
		case firstErr = <-pipelineErr:
		default:
		}
	}

	if firstErr != nil && !errors.Is(firstErr, context.Canceled) {
		return firstErr
	}
	return nil
}

func (p *Pipeline) runSource(ctx context.Context, wg *sync.WaitGroup, errCh chan<- error) {
	defer wg.Done()
	defer close(p.rawMessages)

	if err := p.source.Run(ctx, p.rawMessages); err != nil && !errors.Is(err, context.Canceled) {
		p.logger.Error("Source exited with error", zap.Error(err))
		errCh <- fmt.Errorf("%w: %w", ErrConsumerRunFailed, err)
		return
	}
	p.logger.Debug("Source goroutine finished")
}

func (p *Pipeline) runParser(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	defer close(p.parsedMessages)

	parserLogger := p.logger.Named("parser")
	for {
		select {
		case rawMsg, ok := <-p.rawMessages:
			if !ok {
				parserLogger.Debug("Parser finished (raw message channel closed).")
				return
			}

			parsedMsg, err := message.ParseDynamicJSON(rawMsg)
			if err != nil {
				parserLogger.Warn("Failed to parse message, skipping", zap.Error(err))
				continue
			}

			select {
			case p.parsedMessages <- parsedMsg:
			case <-ctx.Done():
				return
			}

		case <-ctx.Done():
			parserLogger.Debug("Parser context cancelled.", zap.Error(ctx.Err()))
			return
		}
	}
}

func (p *Pipeline) runCalculator(ctx context.Context, wg *sync.WaitGroup, errCh chan<- error) {
	defer wg.Done()
	defer close(p.results)

	if err := p.calculator.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		p.logger.Error("Calculator exited with error", zap.Error(err))
		errCh <- fmt.Errorf("%w: %w", ErrCalculatorRunFailed, err)
		return
	}
	p.logger.Debug("Calculator goroutine finished")
}

func (p *Pipeline) runExporter(ctx context.Context, wg *sync.WaitGroup, errCh chan<- error) {
	defer wg.Done()

	// the exporter drains results after cancellation so the final flush is published
	if err := p.exporter.Run(context.WithoutCancel(ctx)); err != nil {
		p.logger.Error("Exporter exited with error", zap.Error(err))
		errCh <- fmt.Errorf("%w: %w", ErrExporterRunFailed, err)
		return
	}
	p.logger.Debug("Exporter goroutine finished")
}
