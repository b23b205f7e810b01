package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/compucar/backend/internal/domain/shared"
	"github.com/compucar/backend/internal/domain/tuning"
)

// RealtimeNotificationHandler pushes live updates to connected clients.
// Registered after the durable handler, so every pushed update already
// has an inbox record behind it. A push failure is reported to the bus
// but never rolls anything back.
type RealtimeNotificationHandler struct {
	publisher RealtimePublisher
	logger    *zap.Logger
}

// NewRealtimeNotificationHandler creates the handler
func NewRealtimeNotificationHandler(publisher RealtimePublisher, logger *zap.Logger) *RealtimeNotificationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RealtimeNotificationHandler{publisher: publisher, logger: logger}
}

var _ shared.EventHandler = (*RealtimeNotificationHandler)(nil)

// EventTypes lists the events pushed over the live channel
func (h *RealtimeNotificationHandler) EventTypes() []string {
	return []string{
		tuning.EventTypeFileStatusChanged,
		tuning.EventTypeEstimatedTimeSet,
	}
}

// Handle pushes a flat payload with a "type" discriminator
func (h *RealtimeNotificationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *tuning.FileStatusChangedEvent:
		return h.push(ctx, e.OwnerUserID, map[string]any{
			"type":      "file_status_update",
			"fileId":    e.FileID.String(),
			"fileName":  e.FileName,
			"oldStatus": string(e.OldStatus),
			"newStatus": string(e.NewStatus),
		}, event)

	case *tuning.EstimatedTimeSetEvent:
		return h.push(ctx, e.OwnerUserID, map[string]any{
			"type":                 "estimated_time_update",
			"fileId":               e.FileID.String(),
			"estimatedTimeMinutes": e.EstimatedMinutes,
			"estimatedTimeText":    e.TimeText,
			"status":               string(e.Status),
		}, event)
	}
	return nil
}

func (h *RealtimeNotificationHandler) push(ctx context.Context, userID uuid.UUID, payload map[string]any, event shared.DomainEvent) error {
	if err := h.publisher.Publish(ctx, userID, payload); err != nil {
		h.logger.Warn("realtime push failed",
			zap.String("event_type", event.EventType()),
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return fmt.Errorf("realtime push for %s: %w", event.EventType(), err)
	}
	return nil
}
