package plan

import (
	"context"

	"marketplace-api/internal/domain"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Plan, error)
	List(ctx context.Context) ([]domain.Plan, error)
}
