package order

import (
	"context"

	"marketplace-api/internal/domain"
)

// Draft is a per-store order ready to be persisted. Item ids and timestamps
// are assigned by the store.
type Draft struct {
	BuyerID           string
	SellerID          string
	StoreID           string
	Items             []domain.OrderItem
	SubtotalCents     int64
	ShippingCents     int64
	TaxCents          int64
	DiscountCents     int64
	TotalCents        int64
	PaymentMethod     domain.PaymentMethod
	ShippingAddressID string
	Notes             string
}

type ListFilter struct {
	BuyerID       string
	SellerID      string
	StoreID       string
	Status        domain.OrderStatus
	PaymentStatus domain.PaymentStatus
	Page          int
	Limit         int
}

// UpdateStatusInput carries one state-machine transition. To may be empty when
// only tracking code or notes change. ExpectFrom guards against concurrent
// transitions: the update only applies while the order is still in that status.
type UpdateStatusInput struct {
	OrderID      string
	ExpectFrom   domain.OrderStatus
	To           domain.OrderStatus
	TrackingCode *string
	Notes        *string
}

type Repository interface {
	// CreateBatch persists every draft, its items, the inventory
	// reservations and the store sales counters in a single transaction.
	// Any failed reservation rolls back the whole batch.
	CreateBatch(ctx context.Context, drafts []Draft) ([]domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, f ListFilter) ([]domain.Order, int, error)
	// UpdateStatus applies one transition atomically, restocking every item
	// and decrementing the store sales counter when the target is CANCELLED.
	UpdateStatus(ctx context.Context, in UpdateStatusInput) (*domain.Order, error)
}
