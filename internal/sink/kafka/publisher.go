package kafka

import (
	"context"
	"encoding/json"

	"github.com/muhammadchandra19/tick-extractor/internal/domain/extraction"
	pkgerrors "github.com/muhammadchandra19/tick-extractor/pkg/errors"
	"github.com/muhammadchandra19/tick-extractor/pkg/logger"
	"github.com/segmentio/kafka-go"
)

// Writer is the subset of kafka.Writer the publisher needs.
//
//go:generate mockgen -source=publisher.go -destination=mock/publisher_mock.go -package=kafka_mock
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Config holds the Kafka sink settings.
type Config struct {
	Brokers []string `env:"BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	Topic   string   `env:"TOPIC" envDefault:"ticks.extracted"`
}

// TickEvent is the wire shape of one published tick.
type TickEvent struct {
	Broker string          `json:"broker"`
	Symbol string          `json:"symbol"`
	Mode   string          `json:"mode"`
	Tick   extraction.Tick `json:"tick"`
}

// Publisher streams extracted ticks to a Kafka topic, keyed by pair so a
// partition sees one pair's ticks in order.
type Publisher struct {
	writer Writer
	logger logger.Interface
}

// NewPublisher creates a publisher over an existing writer.
func NewPublisher(writer Writer, log logger.Interface) *Publisher {
	return &Publisher{
		writer: writer,
		logger: log,
	}
}

// NewWriter builds the kafka-go writer for the configured topic.
func NewWriter(config Config) *kafka.Writer {
	return kafka.NewWriter(kafka.WriterConfig{
		Brokers: config.Brokers,
		Topic:   config.Topic,
	})
}

// PublishBatch publishes every tick of one extraction result. The whole
// batch is written in a single call so a broker hiccup fails it atomically.
func (p *Publisher) PublishBatch(ctx context.Context, key extraction.Key, mode extraction.DataMode, ticks []extraction.Tick) error {
	if len(ticks) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(ticks))
	for _, tick := range ticks {
		raw, err := json.Marshal(TickEvent{
			Broker: key.Broker,
			Symbol: key.Symbol,
			Mode:   string(mode),
			Tick:   tick,
		})
		if err != nil {
			return pkgerrors.NewErrorDetailsWithObject(
				"failed to encode tick event: "+err.Error(),
				string(pkgerrors.KafkaPublishError),
				"tick",
				key,
			)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(key.String()),
			Value: raw,
		})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		p.logger.ErrorContext(ctx, err,
			logger.NewField("pair", key.String()),
			logger.NewField("ticks", len(ticks)),
		)
		return pkgerrors.NewErrorDetailsWithObject(
			"failed to publish tick batch: "+err.Error(),
			string(pkgerrors.KafkaPublishError),
			"batch",
			key,
		)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
