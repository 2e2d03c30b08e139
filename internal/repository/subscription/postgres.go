package subscription

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"marketplace-api/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const subscriptionColumns = `id::text, user_id::text, plan_id::text, status, payment_id, expires_at, created_at, updated_at`

func (r *postgresRepo) Create(ctx context.Context, in CreateInput) (*domain.Subscription, error) {
	var s domain.Subscription
	err := r.pool.QueryRow(ctx, `
INSERT INTO subscriptions (user_id, plan_id, payment_id, expires_at)
VALUES ($1, $2, $3, $4)
RETURNING `+subscriptionColumns+`
`, in.UserID, in.PlanID, in.PaymentID, in.ExpiresAt).Scan(scanTargets(&s)...)
	if err != nil {
		r.logger.Printf("subscription repo: create user_id=%s plan_id=%s error=%v", in.UserID, in.PlanID, err)
		return nil, err
	}
	return &s, nil
}

func (r *postgresRepo) GetForUser(ctx context.Context, userID, id string) (*domain.Subscription, error) {
	return r.fetchOne(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1 AND user_id = $2`, id, userID)
}

func (r *postgresRepo) FindPending(ctx context.Context, userID, planID string) (*domain.Subscription, error) {
	return r.fetchOne(ctx, `
SELECT `+subscriptionColumns+`
FROM subscriptions
WHERE user_id = $1 AND plan_id = $2 AND status = 'PENDING'
ORDER BY created_at DESC
LIMIT 1
`, userID, planID)
}

func (r *postgresRepo) LatestByUser(ctx context.Context, userID string) (*domain.Subscription, error) {
	return r.fetchOne(ctx, `
SELECT `+subscriptionColumns+`
FROM subscriptions
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT 1
`, userID)
}

func (r *postgresRepo) Activate(ctx context.Context, id, userID, planSlug string) (bool, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx, `
UPDATE subscriptions
SET status = 'ACTIVE', updated_at = now()
WHERE id = $1 AND status = 'PENDING'
`, id)
	if err != nil {
		return false, err
	}
	if ct.RowsAffected() == 0 {
		return false, nil
	}

	if _, err := tx.Exec(ctx, `UPDATE users SET plan = $2 WHERE id = $1`, userID, planSlug); err != nil {
		return false, err
	}

	siblings, err := tx.Exec(ctx, `
UPDATE subscriptions
SET status = 'CANCELLED', updated_at = now()
WHERE user_id = $1 AND status = 'ACTIVE' AND id <> $2
`, userID, id)
	if err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	r.logger.Printf("subscription repo: activated id=%s user_id=%s cancelled_siblings=%d", id, userID, siblings.RowsAffected())
	return true, nil
}

func (r *postgresRepo) Cancel(ctx context.Context, id string) (bool, error) {
	ct, err := r.pool.Exec(ctx, `
UPDATE subscriptions
SET status = 'CANCELLED', updated_at = now()
WHERE id = $1 AND status = 'PENDING'
`, id)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *postgresRepo) fetchOne(ctx context.Context, q string, args ...interface{}) (*domain.Subscription, error) {
	var s domain.Subscription
	err := r.pool.QueryRow(ctx, q, args...).Scan(scanTargets(&s)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func scanTargets(s *domain.Subscription) []interface{} {
	return []interface{}{&s.ID, &s.UserID, &s.PlanID, &s.Status, &s.PaymentID, &s.ExpiresAt, &s.CreatedAt, &s.UpdatedAt}
}
