package user

import (
	"context"

	"marketplace-api/internal/domain"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetAddress returns the address only when it belongs to the given user.
	GetAddress(ctx context.Context, userID, addressID string) (*domain.Address, error)
}
