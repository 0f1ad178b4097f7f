package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/cypherlabdev/odds-scanner-service/internal/metrics"
	"github.com/cypherlabdev/odds-scanner-service/internal/models"
	"github.com/cypherlabdev/odds-scanner-service/internal/service"
)

// messageReader is the subset of *kafka.Reader the consumer needs
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConsumer consumes pushed quote snapshots from Kafka and hands them to a processor
type KafkaConsumer struct {
	reader    messageReader
	processor service.QuoteProcessor
	metrics   *metrics.Metrics
	topic     string
	groupID   string
	backoff   time.Duration
	logger    zerolog.Logger
}

// maxRetryBackoff caps the wait between attempts on one failed batch
const maxRetryBackoff = 30 * time.Second

// KafkaConsumerConfig holds Kafka consumer configuration
type KafkaConsumerConfig struct {
	Brokers []string // e.g., ["localhost:9092"]
	Topic   string   // e.g., "normalized_quotes"
	GroupID string   // e.g., "odds-scanner"

	RetryBackoff time.Duration // First wait before reprocessing a failed batch; doubles per attempt
}

// NewKafkaConsumer creates a new Kafka consumer
func NewKafkaConsumer(
	config KafkaConsumerConfig,
	processor service.QuoteProcessor,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        config.Brokers,
		Topic:          config.Topic,
		GroupID:        config.GroupID,
		MinBytes:       1e3,  // 1KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
	})

	return newKafkaConsumer(reader, config, processor, m, logger)
}

func newKafkaConsumer(
	reader messageReader,
	config KafkaConsumerConfig,
	processor service.QuoteProcessor,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *KafkaConsumer {
	backoff := config.RetryBackoff
	if backoff <= 0 {
		backoff = time.Second
	}

	return &KafkaConsumer{
		reader:    reader,
		backoff:   backoff,
		processor: processor,
		metrics:   m,
		topic:     config.Topic,
		groupID:   config.GroupID,
		logger:    logger.With().Str("component", "kafka_consumer").Logger(),
	}
}

// Start consumes messages until ctx is done.
//
// Messages that fail to decode, or that the processor rejects as invalid, are
// committed and skipped. A message whose processing fails is retried with
// backoff before the next message is fetched, so no later commit can pass it;
// if ctx ends first it stays uncommitted and is redelivered after a restart.
func (c *KafkaConsumer) Start(ctx context.Context) error {
	c.logger.Info().
		Str("topic", c.topic).
		Str("group_id", c.groupID).
		Msg("started consuming from Kafka")

	for {
		select {
		case <-ctx.Done():
			c.logger.Info().Msg("stopping Kafka consumer")
			return nil

		default:
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return nil
				}
				c.logger.Error().Err(err).Msg("failed to fetch message")
				continue
			}

			batch, err := decodeMessage(msg)
			if err != nil {
				c.metrics.KafkaMessages.WithLabelValues("invalid").Inc()
				c.logger.Error().
					Err(err).
					Int64("offset", msg.Offset).
					Str("key", string(msg.Key)).
					Msg("skipping undecodable message")
				c.commit(ctx, msg)
				continue
			}

			if !c.process(ctx, msg, batch) {
				c.logger.Info().
					Int64("offset", msg.Offset).
					Msg("stopping Kafka consumer with message uncommitted")
				return nil
			}
			c.commit(ctx, msg)
		}
	}
}

// process hands batch to the processor until it is accepted or rejected as invalid.
// It returns false when ctx ends first.
func (c *KafkaConsumer) process(ctx context.Context, msg kafka.Message, batch *models.KafkaQuoteSnapshotMessage) bool {
	backoff := c.backoff
	for attempt := 1; ; attempt++ {
		err := c.processor.ProcessQuotes(ctx, batch)
		switch {
		case err == nil:
			c.metrics.KafkaMessages.WithLabelValues("ok").Inc()
			return true
		case errors.Is(err, service.ErrInvalidBatch):
			c.metrics.KafkaMessages.WithLabelValues("invalid").Inc()
			c.logger.Error().
				Err(err).
				Int64("offset", msg.Offset).
				Str("batch_id", batch.BatchID).
				Msg("skipping invalid batch")
			return true
		}

		c.metrics.KafkaMessages.WithLabelValues("failed").Inc()
		c.logger.Error().
			Err(err).
			Int64("offset", msg.Offset).
			Str("batch_id", batch.BatchID).
			Int("attempt", attempt).
			Dur("retry_in", backoff).
			Msg("failed to process message")

		select {
		case <-ctx.Done():
			return false
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxRetryBackoff)
	}
}

func (c *KafkaConsumer) commit(ctx context.Context, msg kafka.Message) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.logger.Error().Err(err).Int64("offset", msg.Offset).Msg("failed to commit message")
	}
}

// decodeMessage parses a quote snapshot batch
func decodeMessage(msg kafka.Message) (*models.KafkaQuoteSnapshotMessage, error) {
	var batch models.KafkaQuoteSnapshotMessage
	if err := json.Unmarshal(msg.Value, &batch); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message: %w", err)
	}
	return &batch, nil
}

// Close closes the Kafka reader
func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}
