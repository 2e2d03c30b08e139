package product

import (
	"context"

	"marketplace-api/internal/domain"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	// GetBatch resolves active products for the given ids in one query. Ids
	// absent from the result were missing or inactive.
	GetBatch(ctx context.Context, ids []string) (map[string]domain.Product, error)
}
