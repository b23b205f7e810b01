package order

import (
	"context"

	"github.com/compucar/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository provides access to orders
type Repository interface {
	Save(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]*Order, error)
	FindByStatus(ctx context.Context, status OrderStatus, filter shared.Filter) ([]*Order, error)
	CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error)
}
