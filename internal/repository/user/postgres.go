package user

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

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.pool.QueryRow(ctx, `
SELECT id::text, name, email, role, plan, city, state, created_at
FROM users
WHERE id = $1
`, id).Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Plan, &u.City, &u.State, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *postgresRepo) GetAddress(ctx context.Context, userID, addressID string) (*domain.Address, error) {
	var a domain.Address
	err := r.pool.QueryRow(ctx, `
SELECT id::text, user_id::text, street, city, state, postal_code
FROM addresses
WHERE id = $1 AND user_id = $2
`, addressID, userID).Scan(&a.ID, &a.UserID, &a.Street, &a.City, &a.State, &a.PostalCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}
