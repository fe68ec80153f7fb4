package storage

import (
	"context"
	"encoding/json"

	"foodexpress/order-svc/internal/domain"

	"github.com/segmentio/kafka-go"
)

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type KafkaPublisher struct {
	Writer MessageWriter
}

func NewKafkaPublisher(writer MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{Writer: writer}
}

// PublishOrderPlaced keys the message by tracking number so every retry of
// one order lands on the same partition.
func (p *KafkaPublisher) PublishOrderPlaced(ctx context.Context, msg domain.NotificationMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.TrackingNumber),
		Value: payload,
	})
}
