package notification

import (
	"context"

	"github.com/google/uuid"
)

// RealtimePublisher pushes a payload to a user's live connections.
// Implemented by the SSE hub in the interfaces layer. Publishing to a
// user with no open connections is not an error.
type RealtimePublisher interface {
	Publish(ctx context.Context, userID uuid.UUID, payload map[string]any) error
}
