package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"foodexpress/notification-svc/internal/domain"
	"foodexpress/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const readErrorBackoff = time.Second

type Consumer struct {
	Reader   MessageReader
	Store    StoreInterface
	Notifier Notifier
}

func NewConsumer(reader MessageReader, store StoreInterface, notifier Notifier) *Consumer {
	return &Consumer{
		Reader:   reader,
		Store:    store,
		Notifier: notifier,
	}
}

// Start consumes until ctx is cancelled. Offsets are committed after each
// message is handled.
func (c *Consumer) Start(ctx context.Context) {
	logger.Info("Starting notification consumer")
	for {
		message, err := c.Reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("Notification consumer stopped")
				return
			}
			logger.Warn("Error reading message", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(readErrorBackoff):
			}
			continue
		}

		if err := c.Handle(ctx, message); err != nil {
			logger.Error("Notification dropped",
				zap.String("key", string(message.Key)),
				zap.Int64("offset", message.Offset),
				zap.Error(err))
		}

		if err := c.Reader.CommitMessages(ctx, message); err != nil && ctx.Err() == nil {
			logger.Warn("Failed to commit offset", zap.Int64("offset", message.Offset), zap.Error(err))
		}
	}
}

// Handle decodes and delivers one message. Malformed and foreign messages
// are skipped; repeats of an already delivered order are ignored.
func (c *Consumer) Handle(ctx context.Context, message kafka.Message) error {
	var msg domain.NotificationMessage
	if err := json.Unmarshal(message.Value, &msg); err != nil {
		logger.Warn("Skipping malformed message", zap.Int64("offset", message.Offset), zap.Error(err))
		return nil
	}
	if msg.Type != domain.TypeOrderPlaced {
		logger.Debug("Skipping message", zap.String("type", msg.Type))
		return nil
	}
	if msg.TrackingNumber == "" {
		logger.Warn("Skipping message without tracking number", zap.Int64("offset", message.Offset))
		return nil
	}

	log := logger.With(zap.String("tracking_number", msg.TrackingNumber))

	first, err := c.Store.MarkSent(ctx, msg.TrackingNumber)
	if err != nil {
		// Without the marker a duplicate is possible, a loss is not.
		log.Warn("Dedup check failed, sending anyway", zap.Error(err))
	} else if !first {
		log.Info("Duplicate notification skipped")
		return nil
	}

	if err := c.Notifier.Send(ctx, msg); err != nil {
		if uerr := c.Store.Unmark(ctx, msg.TrackingNumber); uerr != nil {
			log.Warn("Failed to clear dedup marker", zap.Error(uerr))
		}
		return fmt.Errorf("send notification: %w", err)
	}

	log.Info("Notification sent", zap.String("user_id", msg.UserID))
	return nil
}
