package stream

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"pool-signal-lab/internal/observability"
)

// KafkaConfig holds Kafka consumer configuration.
type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// KafkaSource consumes decoded pool records from a Kafka topic.
type KafkaSource struct {
	reader  *kafka.Reader
	log     zerolog.Logger
	metrics *observability.Metrics
}

// NewKafkaSource creates a consumer. Offsets are committed only after a
// message has been handled.
func NewKafkaSource(cfg KafkaConfig, log zerolog.Logger) *KafkaSource {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.GroupID,
		Topic:    cfg.Topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &KafkaSource{
		reader:  reader,
		log:     log.With().Str("component", "kafka_source").Logger(),
		metrics: observability.DefaultMetrics,
	}
}

// Run consumes until the context is cancelled. Decode and handler
// failures are logged and the offending message is committed so the
// group does not wedge on a poison message.
func (s *KafkaSource) Run(ctx context.Context, handle Handler) error {
	for {
		msg, err := s.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		s.metrics.StreamMessages.Inc()

		rec, err := DecodeRecord(msg.Value)
		if err != nil {
			s.metrics.StreamDecodeErrors.Inc()
			s.log.Warn().Err(err).
				Int64("offset", msg.Offset).
				Int("partition", msg.Partition).
				Msg("undecodable payload skipped")
		} else if err := handle(ctx, rec); err != nil {
			s.log.Warn().Err(err).
				Int64("offset", msg.Offset).
				Msg("record not processed")
		}

		if err := s.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.log.Error().Err(err).Msg("offset commit failed")
		}
	}
}

// Close releases the underlying reader.
func (s *KafkaSource) Close() error {
	return s.reader.Close()
}
