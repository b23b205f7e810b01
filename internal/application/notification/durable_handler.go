package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/compucar/backend/internal/domain/notification"
	"github.com/compucar/backend/internal/domain/order"
	"github.com/compucar/backend/internal/domain/shared"
	"github.com/compucar/backend/internal/domain/tuning"
)

// DurableNotificationHandler turns domain events into inbox records.
// It must be subscribed BEFORE the realtime handler: the bus dispatches
// in registration order, so the durable record exists by the time the
// push goes out.
type DurableNotificationHandler struct {
	repo   notification.Repository
	logger *zap.Logger
}

// NewDurableNotificationHandler creates the handler
func NewDurableNotificationHandler(repo notification.Repository, logger *zap.Logger) *DurableNotificationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DurableNotificationHandler{repo: repo, logger: logger}
}

var _ shared.EventHandler = (*DurableNotificationHandler)(nil)

// EventTypes lists the events that produce inbox records
func (h *DurableNotificationHandler) EventTypes() []string {
	return []string{
		tuning.EventTypeFileStatusChanged,
		tuning.EventTypeEstimatedTimeSet,
		tuning.EventTypePriceSet,
		tuning.EventTypePaymentStatusChanged,
		tuning.EventTypeModifiedFileUploaded,
		order.EventTypeOrderPlaced,
		order.EventTypeOrderStatusChanged,
	}
}

// Handle persists one inbox record per supported event
func (h *DurableNotificationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	n, err := h.build(event)
	if err != nil {
		return err
	}
	if n == nil {
		return nil
	}

	if err := h.repo.Save(ctx, n); err != nil {
		return fmt.Errorf("save notification for %s: %w", event.EventType(), err)
	}
	h.logger.Debug("inbox notification recorded",
		zap.String("event_type", event.EventType()),
		zap.String("user_id", n.UserID.String()),
	)
	return nil
}

func (h *DurableNotificationHandler) build(event shared.DomainEvent) (*notification.Notification, error) {
	switch e := event.(type) {
	case *tuning.FileStatusChangedEvent:
		return notification.New(e.OwnerUserID, notification.TypeFileStatus, notification.PriorityHigh,
			fmt.Sprintf("File %s is now %s", e.FileName, e.NewStatus),
			statusMessage(e.NewStatus, e.FileName),
			map[string]any{
				"file_id":    e.FileID.String(),
				"file_name":  e.FileName,
				"old_status": string(e.OldStatus),
				"new_status": string(e.NewStatus),
			})

	case *tuning.EstimatedTimeSetEvent:
		return notification.New(e.OwnerUserID, notification.TypeFileStatus, notification.PriorityMedium,
			"Estimated processing time set",
			fmt.Sprintf("Your file should be ready in about %s.", e.TimeText),
			map[string]any{
				"file_id":           e.FileID.String(),
				"estimated_minutes": e.EstimatedMinutes,
				"estimated_text":    e.TimeText,
				"status":            string(e.Status),
			})

	case *tuning.PriceSetEvent:
		return notification.New(e.OwnerUserID, notification.TypePayment, notification.PriorityMedium,
			fmt.Sprintf("Price set for %s", e.FileName),
			fmt.Sprintf("Processing of %s is priced at %s DZD.", e.FileName, e.NewPrice.StringFixed(2)),
			map[string]any{
				"file_id":   e.FileID.String(),
				"file_name": e.FileName,
				"new_price": e.NewPrice.String(),
			})

	case *tuning.PaymentStatusChangedEvent:
		return notification.New(e.OwnerUserID, notification.TypePayment, notification.PriorityMedium,
			fmt.Sprintf("Payment %s for %s", e.NewStatus, e.FileName),
			fmt.Sprintf("Payment status of %s changed to %s.", e.FileName, e.NewStatus),
			map[string]any{
				"file_id":        e.FileID.String(),
				"file_name":      e.FileName,
				"payment_status": string(e.NewStatus),
			})

	case *tuning.ModifiedFileUploadedEvent:
		return notification.New(e.OwnerUserID, notification.TypeFileStatus, notification.PriorityHigh,
			fmt.Sprintf("Your tuned file %s is ready", e.FileName),
			"The modified file is available for download.",
			map[string]any{
				"file_id":           e.FileID.String(),
				"file_name":         e.FileName,
				"modified_filename": e.ModifiedFilename,
			})

	case *order.OrderPlacedEvent:
		customerID, err := uuid.Parse(e.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("order placed event has bad customer id %q: %w", e.CustomerID, err)
		}
		return notification.New(customerID, notification.TypeOrder, notification.PriorityMedium,
			"Order confirmed",
			fmt.Sprintf("Your order of %d item(s) totalling %s DZD was placed.", e.ItemCount, e.GrandTotal),
			map[string]any{
				"order_id":    e.OrderID,
				"grand_total": e.GrandTotal,
			})

	case *order.OrderStatusChangedEvent:
		customerID, err := uuid.Parse(e.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("order status event has bad customer id %q: %w", e.CustomerID, err)
		}
		return notification.New(customerID, notification.TypeOrder, notification.PriorityMedium,
			fmt.Sprintf("Order %s", e.NewStatus),
			fmt.Sprintf("Your order moved from %s to %s.", e.OldStatus, e.NewStatus),
			map[string]any{
				"order_id":   e.OrderID,
				"old_status": e.OldStatus,
				"new_status": e.NewStatus,
			})
	}

	// Unsubscribed event types never reach here; ignore quietly
	return nil, nil
}

func statusMessage(status tuning.FileStatus, fileName string) string {
	switch status {
	case tuning.StatusPending:
		return fmt.Sprintf("We started working on %s.", fileName)
	case tuning.StatusReady:
		return fmt.Sprintf("%s has been processed and is ready.", fileName)
	default:
		return fmt.Sprintf("%s was received and is waiting in the queue.", fileName)
	}
}
