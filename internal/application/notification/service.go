package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/compucar/backend/internal/domain/notification"
	"github.com/compucar/backend/internal/domain/shared"
)

// Service exposes the notification inbox to a user. Every read and
// mutation is scoped to the requesting user; touching someone else's
// record reports ErrNotFound rather than ErrForbidden so record IDs
// are not probeable.
type Service struct {
	repo   notification.Repository
	logger *zap.Logger
}

// NewService creates a notification inbox service
func NewService(repo notification.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger}
}

// List returns a page of the user's notifications, newest first
func (s *Service) List(ctx context.Context, userID uuid.UUID, req ListNotificationsRequest) (shared.Paginated[NotificationResponse], error) {
	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	if req.UnreadOnly {
		filter.Filters["read"] = false
	}

	items, err := s.repo.FindByUser(ctx, userID, filter)
	if err != nil {
		return shared.Paginated[NotificationResponse]{}, fmt.Errorf("list notifications: %w", err)
	}
	total, err := s.repo.CountByUser(ctx, userID, filter)
	if err != nil {
		return shared.Paginated[NotificationResponse]{}, fmt.Errorf("count notifications: %w", err)
	}
	return ToNotificationListResponse(items, total, filter), nil
}

// UnreadCount returns the user's unread badge count
func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (UnreadCountResponse, error) {
	count, err := s.repo.CountUnreadByUser(ctx, userID)
	if err != nil {
		return UnreadCountResponse{}, fmt.Errorf("count unread notifications: %w", err)
	}
	return UnreadCountResponse{Unread: count}, nil
}

// MarkRead marks one of the user's notifications as read
func (s *Service) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) (NotificationResponse, error) {
	n, err := s.findOwned(ctx, userID, notificationID)
	if err != nil {
		return NotificationResponse{}, err
	}

	n.MarkRead()
	if err := s.repo.Save(ctx, n); err != nil {
		return NotificationResponse{}, fmt.Errorf("mark notification read: %w", err)
	}
	return ToNotificationResponse(n), nil
}

// MarkAllRead marks every unread notification of the user as read
func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	filter := shared.DefaultFilter()
	filter.PageSize = 200
	filter.Filters["read"] = false

	for {
		items, err := s.repo.FindByUser(ctx, userID, filter)
		if err != nil {
			return fmt.Errorf("mark all read: %w", err)
		}
		if len(items) == 0 {
			return nil
		}
		for i := range items {
			items[i].MarkRead()
			if err := s.repo.Save(ctx, &items[i]); err != nil {
				return fmt.Errorf("mark all read: %w", err)
			}
		}
		// MarkRead flips the read filter, so page 1 always holds the
		// remaining unread records
		if len(items) < filter.PageSize {
			return nil
		}
	}
}

// Delete removes one of the user's notifications
func (s *Service) Delete(ctx context.Context, userID, notificationID uuid.UUID) error {
	if _, err := s.findOwned(ctx, userID, notificationID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, notificationID); err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	return nil
}

func (s *Service) findOwned(ctx context.Context, userID, notificationID uuid.UUID) (*notification.Notification, error) {
	n, err := s.repo.FindByID(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if n.UserID != userID {
		return nil, shared.ErrNotFound
	}
	return n, nil
}
