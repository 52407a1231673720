package tradepublisher

import (
	"context"
	"encoding/json"

	tradev1 "github.com/propshare/exchange/internal/domain/trade/v1"
	"github.com/propshare/exchange/pkg/config"
	"github.com/propshare/exchange/pkg/errors"
	"github.com/propshare/exchange/pkg/logger"
	"github.com/segmentio/kafka-go"
)

// Publisher emits committed fills to downstream consumers. Publication
// is best-effort; it never changes the outcome of a trade.
//
//go:generate mockgen -source publisher.go -destination=mock/publisher_mock.go -package=tradepublisher_mock
type Publisher interface {
	PublishFill(ctx context.Context, fill *tradev1.Fill) error
	Close() error
}

// KafkaPublisher publishes fills to a Kafka topic, keyed by instrument
// so one instrument's fills stay ordered within a partition.
type KafkaPublisher struct {
	kafkaWriter *kafka.Writer
	logger      logger.Interface
}

var _ Publisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher creates a Kafka publisher for the trade feed.
func NewKafkaPublisher(cfg config.TradeFeedConfig, log logger.Interface) *KafkaPublisher {
	kafkaWriter := kafka.NewWriter(kafka.WriterConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.Topic,
	})

	return &KafkaPublisher{
		kafkaWriter: kafkaWriter,
		logger:      log,
	}
}

// PublishFill publishes one fill event.
func (p *KafkaPublisher) PublishFill(ctx context.Context, fill *tradev1.Fill) error {
	value, err := json.Marshal(fill)
	if err != nil {
		return errors.TracerFromError(err)
	}

	msg := kafka.Message{
		Key:   []byte(fill.InstrumentID),
		Value: value,
	}

	if err := p.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		p.logger.Error(err,
			logger.Field{Key: "fillID", Value: fill.ID},
			logger.Field{Key: "instrumentID", Value: fill.InstrumentID},
		)
		return errors.NewTracer("failed to publish fill event").Wrap(err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.kafkaWriter.Close()
}

// NopPublisher drops all fills. Used when the trade feed is disabled.
type NopPublisher struct{}

var _ Publisher = (*NopPublisher)(nil)

// PublishFill does nothing.
func (NopPublisher) PublishFill(context.Context, *tradev1.Fill) error { return nil }

// Close does nothing.
func (NopPublisher) Close() error { return nil }
