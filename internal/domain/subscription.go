package domain

import "time"

// SubscriptionStatus is the internal state of a seller plan payment. At most
// one subscription per user may be ACTIVE; the reconciliation service cancels
// siblings when it activates a new one.
type SubscriptionStatus string

const (
	SubscriptionPending   SubscriptionStatus = "PENDING"
	SubscriptionActive    SubscriptionStatus = "ACTIVE"
	SubscriptionCancelled SubscriptionStatus = "CANCELLED"
)

type Subscription struct {
	ID        string             `json:"id"`
	UserID    string             `json:"userId"`
	PlanID    string             `json:"planId"`
	Status    SubscriptionStatus `json:"status"`
	PaymentID string             `json:"paymentId,omitempty"`
	ExpiresAt *time.Time         `json:"expiresAt,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

type Plan struct {
	ID         string    `json:"id"`
	Slug       string    `json:"slug"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"priceCents"`
	MaxAds     int       `json:"maxAds"`
	CreatedAt  time.Time `json:"createdAt"`
}
