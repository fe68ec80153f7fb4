package service

import (
	"context"

	"foodexpress/notification-svc/internal/domain"
	"foodexpress/notification-svc/internal/storage"

	"github.com/segmentio/kafka-go"
)

type StoreInterface interface {
	MarkSent(ctx context.Context, trackingNumber string) (bool, error)
	Unmark(ctx context.Context, trackingNumber string) error
}

type Notifier interface {
	Send(ctx context.Context, msg domain.NotificationMessage) error
}

type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

type ConsumerInterface interface {
	Start(ctx context.Context)
	Handle(ctx context.Context, message kafka.Message) error
}

var (
	_ StoreInterface    = (*storage.Store)(nil)
	_ ConsumerInterface = (*Consumer)(nil)
	_ MessageReader     = (*kafka.Reader)(nil)
)
