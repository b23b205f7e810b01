package notification

import (
	"time"

	"github.com/compucar/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Type discriminates notifications for iconography and filtering on
// the inbox; it carries no delivery semantics
type Type string

const (
	TypeFileStatus Type = "file_status"
	TypeOrder      Type = "order"
	TypePayment    Type = "payment"
	TypeSecurity   Type = "security"
	TypeSystem     Type = "system"
)

// IsValid checks if the notification type is valid
func (t Type) IsValid() bool {
	switch t {
	case TypeFileStatus, TypeOrder, TypePayment, TypeSecurity, TypeSystem:
		return true
	default:
		return false
	}
}

// Priority orders notifications on the inbox
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// IsValid checks if the priority is valid
func (p Priority) IsValid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Notification is one durable inbox record. The inbox is the source of
// truth for "has the customer been informed"; the real-time channel
// only improves perceived latency.
type Notification struct {
	shared.BaseEntity
	UserID   uuid.UUID
	Type     Type
	Priority Priority
	Title    string
	Message  string
	// Payload carries the structured event data (file ID, statuses, …)
	// for deep links on the inbox
	Payload map[string]any
	Read    bool
	ReadAt  *time.Time
}

// New creates an unread notification for a user
func New(userID uuid.UUID, notifType Type, priority Priority, title, message string, payload map[string]any) (*Notification, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Notification user ID cannot be empty")
	}
	if !notifType.IsValid() {
		return nil, shared.NewDomainError("INVALID_NOTIFICATION_TYPE", "Unknown notification type")
	}
	if !priority.IsValid() {
		return nil, shared.NewDomainError("INVALID_PRIORITY", "Unknown notification priority")
	}
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Notification title cannot be empty")
	}

	return &Notification{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		Type:       notifType,
		Priority:   priority,
		Title:      title,
		Message:    message,
		Payload:    payload,
	}, nil
}

// MarkRead marks the notification read, idempotently
func (n *Notification) MarkRead() {
	if n.Read {
		return
	}
	now := time.Now()
	n.Read = true
	n.ReadAt = &now
	n.UpdatedAt = now
}
