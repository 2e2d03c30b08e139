package notification

import (
	"context"

	"marketplace-api/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, n domain.Notification) (*domain.Notification, error)
	ListByUser(ctx context.Context, userID string, onlyUnread bool) ([]domain.Notification, error)
	MarkRead(ctx context.Context, userID, id string) error
}
