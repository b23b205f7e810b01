package notification

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compucar/backend/internal/domain/notification"
	"github.com/compucar/backend/internal/domain/order"
	"github.com/compucar/backend/internal/domain/shared"
	"github.com/compucar/backend/internal/domain/tuning"
)

type fakeRealtimePublisher struct {
	mu       sync.Mutex
	pushed   []map[string]any
	pushedTo []uuid.UUID
	err      error
}

func (p *fakeRealtimePublisher) Publish(_ context.Context, userID uuid.UUID, payload map[string]any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.pushed = append(p.pushed, payload)
	p.pushedTo = append(p.pushedTo, userID)
	return nil
}

func statusChangedEvent(ownerID uuid.UUID) *tuning.FileStatusChangedEvent {
	fileID := uuid.New()
	return &tuning.FileStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(tuning.EventTypeFileStatusChanged, tuning.AggregateTypeTuningFile, fileID),
		FileID:          fileID,
		OwnerUserID:     ownerID,
		FileName:        "stage1.bin",
		OldStatus:       tuning.StatusReceived,
		NewStatus:       tuning.StatusPending,
	}
}

func estimatedTimeEvent(ownerID uuid.UUID, minutes int) *tuning.EstimatedTimeSetEvent {
	fileID := uuid.New()
	return &tuning.EstimatedTimeSetEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(tuning.EventTypeEstimatedTimeSet, tuning.AggregateTypeTuningFile, fileID),
		FileID:           fileID,
		OwnerUserID:      ownerID,
		EstimatedMinutes: minutes,
		TimeText:         tuning.FormatEstimatedTime(minutes),
		Status:           tuning.StatusPending,
	}
}

func TestDurableHandlerEventTypes(t *testing.T) {
	h := NewDurableNotificationHandler(newFakeNotificationRepo(), nil)
	types := h.EventTypes()
	assert.Contains(t, types, tuning.EventTypeFileStatusChanged)
	assert.Contains(t, types, tuning.EventTypeEstimatedTimeSet)
	assert.Contains(t, types, tuning.EventTypePriceSet)
	assert.Contains(t, types, tuning.EventTypePaymentStatusChanged)
	assert.Contains(t, types, tuning.EventTypeModifiedFileUploaded)
	assert.Contains(t, types, order.EventTypeOrderPlaced)
	assert.Contains(t, types, order.EventTypeOrderStatusChanged)
}

func TestDurableHandlerFileEvents(t *testing.T) {
	ownerID := uuid.New()

	t.Run("status change records a high priority inbox entry", func(t *testing.T) {
		repo := newFakeNotificationRepo()
		h := NewDurableNotificationHandler(repo, nil)

		require.NoError(t, h.Handle(context.Background(), statusChangedEvent(ownerID)))

		items, err := repo.FindByUser(context.Background(), ownerID, shared.DefaultFilter())
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, notification.TypeFileStatus, items[0].Type)
		assert.Equal(t, notification.PriorityHigh, items[0].Priority)
		assert.Equal(t, "PENDING", items[0].Payload["new_status"])
		assert.False(t, items[0].Read)
	})

	t.Run("estimated time carries the human readable bucket", func(t *testing.T) {
		repo := newFakeNotificationRepo()
		h := NewDurableNotificationHandler(repo, nil)

		require.NoError(t, h.Handle(context.Background(), estimatedTimeEvent(ownerID, 240)))

		items, err := repo.FindByUser(context.Background(), ownerID, shared.DefaultFilter())
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Contains(t, items[0].Message, "4 hours")
		assert.Equal(t, 240, items[0].Payload["estimated_minutes"])
	})

	t.Run("price set lands in the payment category", func(t *testing.T) {
		repo := newFakeNotificationRepo()
		h := NewDurableNotificationHandler(repo, nil)
		fileID := uuid.New()

		event := &tuning.PriceSetEvent{
			BaseDomainEvent: shared.NewBaseDomainEvent(tuning.EventTypePriceSet, tuning.AggregateTypeTuningFile, fileID),
			FileID:          fileID,
			OwnerUserID:     ownerID,
			FileName:        "stage1.bin",
			OldPrice:        decimal.Zero,
			NewPrice:        decimal.NewFromInt(4500),
		}
		require.NoError(t, h.Handle(context.Background(), event))

		items, err := repo.FindByUser(context.Background(), ownerID, shared.DefaultFilter())
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, notification.TypePayment, items[0].Type)
		assert.Contains(t, items[0].Message, "4500.00")
	})
}

func TestDurableHandlerOrderEvents(t *testing.T) {
	customerID := uuid.New()
	repo := newFakeNotificationRepo()
	h := NewDurableNotificationHandler(repo, nil)

	orderID := uuid.New()
	event := &order.OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(order.EventTypeOrderPlaced, "Order", orderID),
		OrderID:         orderID.String(),
		CustomerID:      customerID.String(),
		ItemCount:       2,
		GrandTotal:      "15400",
		WilayaID:        31,
		ShippingCost:    "800",
	}
	require.NoError(t, h.Handle(context.Background(), event))

	items, err := repo.FindByUser(context.Background(), customerID, shared.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, notification.TypeOrder, items[0].Type)
	assert.Equal(t, orderID.String(), items[0].Payload["order_id"])
}

func TestRealtimeHandler(t *testing.T) {
	ownerID := uuid.New()

	t.Run("file status payload", func(t *testing.T) {
		pub := &fakeRealtimePublisher{}
		h := NewRealtimeNotificationHandler(pub, nil)

		require.NoError(t, h.Handle(context.Background(), statusChangedEvent(ownerID)))

		require.Len(t, pub.pushed, 1)
		assert.Equal(t, ownerID, pub.pushedTo[0])
		payload := pub.pushed[0]
		assert.Equal(t, "file_status_update", payload["type"])
		assert.Equal(t, "stage1.bin", payload["fileName"])
		assert.Equal(t, "RECEIVED", payload["oldStatus"])
		assert.Equal(t, "PENDING", payload["newStatus"])
	})

	t.Run("estimated time payload", func(t *testing.T) {
		pub := &fakeRealtimePublisher{}
		h := NewRealtimeNotificationHandler(pub, nil)

		require.NoError(t, h.Handle(context.Background(), estimatedTimeEvent(ownerID, 1440)))

		require.Len(t, pub.pushed, 1)
		payload := pub.pushed[0]
		assert.Equal(t, "estimated_time_update", payload["type"])
		assert.Equal(t, 1440, payload["estimatedTimeMinutes"])
		assert.Equal(t, "1 day", payload["estimatedTimeText"])
	})

	t.Run("publisher failure surfaces without panicking", func(t *testing.T) {
		pub := &fakeRealtimePublisher{err: errors.New("no sockets")}
		h := NewRealtimeNotificationHandler(pub, nil)

		err := h.Handle(context.Background(), statusChangedEvent(ownerID))
		assert.ErrorContains(t, err, "realtime push")
	})
}
