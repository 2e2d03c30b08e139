package domain

import "time"

// Notification types emitted by the order and payment engines.
const (
	NotificationOrderCreated          = "ORDER_CREATED"
	NotificationOrderUpdated          = "ORDER_UPDATED"
	NotificationSubscriptionActive    = "SUBSCRIPTION_ACTIVATED"
	NotificationSubscriptionCancelled = "SUBSCRIPTION_CANCELLED"
)

// Notification is created only as a side effect of an order or subscription
// state change. After creation only IsRead may change.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}
