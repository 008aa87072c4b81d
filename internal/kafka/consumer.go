package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/Domenick1991/airport/internal/logger"
	"github.com/segmentio/kafka-go"
)

type Consumer struct {
	reader *kafka.Reader
	log    *logger.Logger
}

func NewConsumer(brokers []string, groupID, topic string, log *logger.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:        brokers,
			GroupID:        groupID,
			Topic:          topic,
			MinBytes:       1,
			MaxBytes:       1 << 20,
			MaxWait:        time.Second,
			SessionTimeout: 30 * time.Second,
			StartOffset:    kafka.FirstOffset,
		}),
		log: log,
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Consume hands each message to handler and commits its offset only after
// handler succeeds, so a failed message is redelivered after a restart.
func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, kafka.Message) error) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			return err
		}

		if err := handler(ctx, msg); err != nil {
			return fmt.Errorf("handle %s/%d offset %d: %w", msg.Topic, msg.Partition, msg.Offset, err)
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			return fmt.Errorf("commit offset %d: %w", msg.Offset, err)
		}
		c.log.LogKafka("CONSUME", msg.Topic, "offset "+strconv.FormatInt(msg.Offset, 10))
	}
}

// ConsumeOrders decodes order events; malformed and unknown messages are skipped.
func (c *Consumer) ConsumeOrders(ctx context.Context, handler func(context.Context, OrderEvent) error) error {
	return c.Consume(ctx, func(ctx context.Context, msg kafka.Message) error {
		event, ok := DecodeOrderEvent(msg.Value)
		if !ok {
			c.log.Warnf("kafka", "skipping message at %s/%d offset %d", msg.Topic, msg.Partition, msg.Offset)
			return nil
		}
		return handler(ctx, event)
	})
}

func DecodeOrderEvent(data []byte) (OrderEvent, bool) {
	var event OrderEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return event, false
	}
	return event, event.Type == EventOrderCreated && event.OrderID != 0
}
