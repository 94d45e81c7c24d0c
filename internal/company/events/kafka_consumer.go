package events

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Handler processes one change event. A returned error leaves the message
// uncommitted.
type Handler func(context.Context, Event) error

type KafkaReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads company change events from a topic.
type Consumer struct {
	reader  KafkaReader
	logger  *zap.Logger
	handler Handler
	commit  bool
}

// NewConsumer joins groupID on topic. An empty groupID reads the topic
// directly from the latest offset without committing.
func NewConsumer(brokers []string, groupID, topic string, handler Handler, logger *zap.Logger) *Consumer {
	cfg := kafka.ReaderConfig{
		Brokers: brokers,
		GroupID: groupID,
		Topic:   topic,
		Dialer:  kafka.DefaultDialer,
	}
	if groupID == "" {
		cfg.StartOffset = kafka.LastOffset
	}
	c := newConsumer(kafka.NewReader(cfg), handler, logger)
	c.commit = groupID != ""
	return c
}

func newConsumer(reader KafkaReader, handler Handler, logger *zap.Logger) *Consumer {
	return &Consumer{
		reader:  reader,
		logger:  logger.Named("kafka_consumer"),
		handler: handler,
		commit:  true,
	}
}

// Run delivers events to the handler until ctx is done.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, context.Canceled) {
				return nil
			}
			c.logger.Error("Failed to fetch message", zap.Error(err))
			return err
		}

		var event Event
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			c.logger.Error("Failed to parse event",
				zap.Error(err),
				zap.ByteString("value", msg.Value),
			)
			continue
		}

		if err := c.handler(ctx, event); err != nil {
			c.logger.Error("Failed to handle event",
				zap.Error(err),
				zap.String("event_type", string(event.Type)),
			)
			continue
		}

		if !c.commit {
			continue
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("Failed to commit message",
				zap.Error(err),
				zap.String("event_type", string(event.Type)),
			)
		}
	}
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.logger.Error("Failed to close Kafka reader", zap.Error(err))
	}
}
