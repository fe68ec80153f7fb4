package tests

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"foodexpress/notification-svc/internal/domain"
	"foodexpress/notification-svc/internal/mocks"
	"foodexpress/notification-svc/internal/service"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const placedJSON = `{"type":"order_placed","order_id":42,"tracking_number":"trk-1","user_id":"u1","restaurant_id":"r1","total_amount":"22.5","timestamp":"2024-05-10T18:30:00Z"}`

func TestConsumer_Handle(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name          string
		value         string
		setupMocks    func(store *mocks.StoreInterface, notifier *mocks.Notifier)
		expectedError bool
	}{
		{
			name:  "success",
			value: placedJSON,
			setupMocks: func(store *mocks.StoreInterface, notifier *mocks.Notifier) {
				store.On("MarkSent", ctx, "trk-1").Return(true, nil).Once()
				notifier.On("Send", ctx, mock.MatchedBy(func(m domain.NotificationMessage) bool {
					return m.OrderID == 42 && m.UserID == "u1" && m.TotalAmount.StringFixed(2) == "22.50"
				})).Return(nil).Once()
			},
		},
		{
			name:  "duplicate_skipped",
			value: placedJSON,
			setupMocks: func(store *mocks.StoreInterface, notifier *mocks.Notifier) {
				store.On("MarkSent", ctx, "trk-1").Return(false, nil).Once()
			},
		},
		{
			name:  "dedup_unavailable_still_sends",
			value: placedJSON,
			setupMocks: func(store *mocks.StoreInterface, notifier *mocks.Notifier) {
				store.On("MarkSent", ctx, "trk-1").Return(false, errors.New("redis down")).Once()
				notifier.On("Send", ctx, mock.Anything).Return(nil).Once()
			},
		},
		{
			name:  "send_failure_clears_marker",
			value: placedJSON,
			setupMocks: func(store *mocks.StoreInterface, notifier *mocks.Notifier) {
				store.On("MarkSent", ctx, "trk-1").Return(true, nil).Once()
				notifier.On("Send", ctx, mock.Anything).Return(errors.New("smtp down")).Once()
				store.On("Unmark", ctx, "trk-1").Return(nil).Once()
			},
			expectedError: true,
		},
		{
			name:       "malformed_skipped",
			value:      `Order Placed! ID: trk-1`,
			setupMocks: func(store *mocks.StoreInterface, notifier *mocks.Notifier) {},
		},
		{
			name:       "unknown_type_skipped",
			value:      `{"type":"new_review","tracking_number":"trk-1"}`,
			setupMocks: func(store *mocks.StoreInterface, notifier *mocks.Notifier) {},
		},
		{
			name:       "missing_tracking_number_skipped",
			value:      `{"type":"order_placed","order_id":1}`,
			setupMocks: func(store *mocks.StoreInterface, notifier *mocks.Notifier) {},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			store := mocks.NewStoreInterface(t)
			notifier := mocks.NewNotifier(t)
			testCase.setupMocks(store, notifier)

			consumer := &service.Consumer{Store: store, Notifier: notifier}
			err := consumer.Handle(ctx, kafka.Message{Key: []byte("trk-1"), Value: []byte(testCase.value)})

			if testCase.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// fakeReader serves queued messages, then blocks until ctx is done.
type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []int64
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		m := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) committedOffsets() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

func TestConsumer_Start_CommitsEveryMessage(t *testing.T) {
	reader := &fakeReader{queue: []kafka.Message{
		{Offset: 1, Value: []byte(placedJSON)},
		{Offset: 2, Value: []byte(`garbage`)},
		{Offset: 3, Value: []byte(placedJSON)},
	}}
	store := mocks.NewStoreInterface(t)
	notifier := mocks.NewNotifier(t)
	store.On("MarkSent", mock.Anything, "trk-1").Return(true, nil).Once()
	store.On("MarkSent", mock.Anything, "trk-1").Return(false, nil).Once()
	notifier.On("Send", mock.Anything, mock.Anything).Return(nil).Once()

	consumer := service.NewConsumer(reader, store, notifier)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		consumer.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return len(reader.committedOffsets()) == 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop")
	}
	assert.Equal(t, []int64{1, 2, 3}, reader.committedOffsets())
}

func TestLogNotifier_Send(t *testing.T) {
	err := service.LogNotifier{}.Send(context.Background(), domain.NotificationMessage{TrackingNumber: "trk-1"})
	assert.NoError(t, err)
}
