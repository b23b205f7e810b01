package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository provides access to user accounts
type UserRepository interface {
	Save(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByTelegramChatID(ctx context.Context, chatID int64) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
