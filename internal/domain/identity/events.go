package identity

import (
	"github.com/compucar/backend/internal/domain/shared"
)

const EventTypeUserRegistered = "UserRegistered"

// UserRegisteredEvent is emitted when a new account is created
type UserRegisteredEvent struct {
	shared.BaseDomainEvent
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// NewUserRegisteredEvent creates a new user registered event
func NewUserRegisteredEvent(u *User) *UserRegisteredEvent {
	return &UserRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserRegistered, "User", u.ID),
		UserID:          u.ID.String(),
		Email:           u.Email,
		Role:            string(u.Role),
	}
}
