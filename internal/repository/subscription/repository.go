package subscription

import (
	"context"
	"time"

	"marketplace-api/internal/domain"
)

type CreateInput struct {
	UserID    string
	PlanID    string
	PaymentID string
	ExpiresAt *time.Time
}

type Repository interface {
	Create(ctx context.Context, in CreateInput) (*domain.Subscription, error)
	GetForUser(ctx context.Context, userID, id string) (*domain.Subscription, error)
	// FindPending returns the pending subscription for (user, plan), or
	// domain.ErrNotFound when none exists. A duplicate webhook delivery after
	// the subscription already resolved lands here.
	FindPending(ctx context.Context, userID, planID string) (*domain.Subscription, error)
	LatestByUser(ctx context.Context, userID string) (*domain.Subscription, error)
	// Activate flips the subscription from PENDING to ACTIVE, sets the user's
	// plan and cancels every other ACTIVE subscription of the user, all in one
	// transaction. It returns false without side effects when the
	// subscription was no longer pending, which makes concurrent webhook
	// deliveries converge on a single activation.
	Activate(ctx context.Context, id, userID, planSlug string) (bool, error)
	// Cancel flips PENDING to CANCELLED; false means it was not pending.
	Cancel(ctx context.Context, id string) (bool, error)
}
