package notification

import (
	"context"

	"github.com/compucar/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository defines persistence for the notification inbox
type Repository interface {
	// Save creates or updates a notification
	Save(ctx context.Context, n *Notification) error

	// FindByID finds a notification by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Notification, error)

	// FindByUser lists a user's notifications, newest first
	FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]Notification, error)

	// CountByUser counts a user's notifications matching the filter
	CountByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) (int64, error)

	// CountUnreadByUser counts a user's unread notifications
	CountUnreadByUser(ctx context.Context, userID uuid.UUID) (int64, error)

	// Delete permanently removes a notification
	Delete(ctx context.Context, id uuid.UUID) error
}
