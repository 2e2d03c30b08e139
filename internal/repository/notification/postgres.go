package notification

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"marketplace-api/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Create(ctx context.Context, n domain.Notification) (*domain.Notification, error) {
	err := r.pool.QueryRow(ctx, `
INSERT INTO notifications (user_id, type, title, message)
VALUES ($1, $2, $3, $4)
RETURNING id::text, created_at
`, n.UserID, n.Type, n.Title, n.Message).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string, onlyUnread bool) ([]domain.Notification, error) {
	q := `
SELECT id::text, user_id::text, type, title, message, is_read, created_at
FROM notifications
WHERE user_id = $1
`
	if onlyUnread {
		q += ` AND NOT is_read`
	}
	q += ` ORDER BY created_at DESC LIMIT 100`

	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

func (r *postgresRepo) MarkRead(ctx context.Context, userID, id string) error {
	ct, err := r.pool.Exec(ctx, `
UPDATE notifications
SET is_read = TRUE
WHERE id = $1 AND user_id = $2
`, id, userID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
