package plan

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"marketplace-api/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Plan, error) {
	var p domain.Plan
	err := r.pool.QueryRow(ctx, `
SELECT id::text, slug, name, price_cents, max_ads, created_at
FROM plans
WHERE id = $1
`, id).Scan(&p.ID, &p.Slug, &p.Name, &p.PriceCents, &p.MaxAds, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Plan, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id::text, slug, name, price_cents, max_ads, created_at
FROM plans
ORDER BY price_cents ASC
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Plan
	for rows.Next() {
		var p domain.Plan
		if err := rows.Scan(&p.ID, &p.Slug, &p.Name, &p.PriceCents, &p.MaxAds, &p.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}
