package notification

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compucar/backend/internal/domain/notification"
	"github.com/compucar/backend/internal/domain/shared"
)

type fakeNotificationRepo struct {
	mu    sync.Mutex
	store map[uuid.UUID]*notification.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{store: make(map[uuid.UUID]*notification.Notification)}
}

func (r *fakeNotificationRepo) Save(_ context.Context, n *notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *n
	r.store[n.ID] = &cp
	return nil
}

func (r *fakeNotificationRepo) FindByID(_ context.Context, id uuid.UUID) (*notification.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.store[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *n
	return &cp, nil
}

func (r *fakeNotificationRepo) FindByUser(_ context.Context, userID uuid.UUID, filter shared.Filter) ([]notification.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []notification.Notification
	for _, n := range r.store {
		if n.UserID != userID {
			continue
		}
		if read, ok := filter.Filters["read"]; ok && n.Read != read.(bool) {
			continue
		}
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		if offset >= len(out) {
			return nil, nil
		}
		end := offset + filter.PageSize
		if end > len(out) {
			end = len(out)
		}
		out = out[offset:end]
	}
	return out, nil
}

func (r *fakeNotificationRepo) CountByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) (int64, error) {
	unpaged := filter
	unpaged.Page = 0
	unpaged.PageSize = 0
	items, err := r.FindByUser(ctx, userID, unpaged)
	return int64(len(items)), err
}

func (r *fakeNotificationRepo) CountUnreadByUser(_ context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, n := range r.store {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.store[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.store, id)
	return nil
}

func seedNotification(t *testing.T, repo *fakeNotificationRepo, userID uuid.UUID) *notification.Notification {
	t.Helper()
	n, err := notification.New(userID, notification.TypeFileStatus, notification.PriorityMedium,
		"File update", "Your file moved along.", map[string]any{"file_id": uuid.NewString()})
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), n))
	return n
}

func TestServiceList(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := NewService(repo, nil)
	userID := uuid.New()
	otherID := uuid.New()

	for i := 0; i < 3; i++ {
		seedNotification(t, repo, userID)
	}
	seedNotification(t, repo, otherID)

	t.Run("returns only the caller's records", func(t *testing.T) {
		page, err := svc.List(context.Background(), userID, ListNotificationsRequest{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.Total)
		assert.Len(t, page.Items, 3)
	})

	t.Run("paginates", func(t *testing.T) {
		page, err := svc.List(context.Background(), userID, ListNotificationsRequest{Page: 2, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.Total)
		assert.Len(t, page.Items, 1)
		assert.Equal(t, 2, page.TotalPages)
	})

	t.Run("unread only", func(t *testing.T) {
		n := seedNotification(t, repo, userID)
		resp, err := svc.MarkRead(context.Background(), userID, n.ID)
		require.NoError(t, err)
		assert.True(t, resp.Read)

		page, err := svc.List(context.Background(), userID, ListNotificationsRequest{UnreadOnly: true})
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.Total)
		for _, item := range page.Items {
			assert.False(t, item.Read)
		}
	})
}

func TestServiceUnreadCount(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := NewService(repo, nil)
	userID := uuid.New()

	first := seedNotification(t, repo, userID)
	seedNotification(t, repo, userID)

	count, err := svc.UnreadCount(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count.Unread)

	_, err = svc.MarkRead(context.Background(), userID, first.ID)
	require.NoError(t, err)

	count, err = svc.UnreadCount(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count.Unread)
}

func TestServiceMarkRead(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := NewService(repo, nil)
	userID := uuid.New()

	t.Run("owner marks read", func(t *testing.T) {
		n := seedNotification(t, repo, userID)
		resp, err := svc.MarkRead(context.Background(), userID, n.ID)
		require.NoError(t, err)
		assert.True(t, resp.Read)
		require.NotNil(t, resp.ReadAt)
	})

	t.Run("idempotent", func(t *testing.T) {
		n := seedNotification(t, repo, userID)
		first, err := svc.MarkRead(context.Background(), userID, n.ID)
		require.NoError(t, err)
		second, err := svc.MarkRead(context.Background(), userID, n.ID)
		require.NoError(t, err)
		assert.Equal(t, first.ReadAt, second.ReadAt)
	})

	t.Run("other user's record reads as not found", func(t *testing.T) {
		n := seedNotification(t, repo, userID)
		_, err := svc.MarkRead(context.Background(), uuid.New(), n.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("missing record", func(t *testing.T) {
		_, err := svc.MarkRead(context.Background(), userID, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestServiceMarkAllRead(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := NewService(repo, nil)
	userID := uuid.New()

	for i := 0; i < 5; i++ {
		seedNotification(t, repo, userID)
	}
	other := seedNotification(t, repo, uuid.New())

	require.NoError(t, svc.MarkAllRead(context.Background(), userID))

	count, err := svc.UnreadCount(context.Background(), userID)
	require.NoError(t, err)
	assert.Zero(t, count.Unread)

	kept, err := repo.FindByID(context.Background(), other.ID)
	require.NoError(t, err)
	assert.False(t, kept.Read)
}

func TestServiceDelete(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := NewService(repo, nil)
	userID := uuid.New()

	t.Run("owner deletes", func(t *testing.T) {
		n := seedNotification(t, repo, userID)
		require.NoError(t, svc.Delete(context.Background(), userID, n.ID))
		_, err := repo.FindByID(context.Background(), n.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("other user's record reads as not found", func(t *testing.T) {
		n := seedNotification(t, repo, userID)
		err := svc.Delete(context.Background(), uuid.New(), n.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		_, err = repo.FindByID(context.Background(), n.ID)
		assert.NoError(t, err)
	})
}

type failingRepo struct {
	*fakeNotificationRepo
}

func (r *failingRepo) CountUnreadByUser(context.Context, uuid.UUID) (int64, error) {
	return 0, errors.New("db down")
}

func TestServiceUnreadCountError(t *testing.T) {
	svc := NewService(&failingRepo{newFakeNotificationRepo()}, nil)
	_, err := svc.UnreadCount(context.Background(), uuid.New())
	assert.ErrorContains(t, err, "count unread notifications")
}
