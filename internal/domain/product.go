package domain

import "time"

type Product struct {
	ID         string    `json:"id"`
	StoreID    string    `json:"storeId"`
	SellerID   string    `json:"sellerId"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"priceCents"`
	Stock      int       `json:"stock"`
	SalesCount int       `json:"salesCount"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Store is a seller's single storefront. SalesCount counts fulfilled orders,
// not units.
type Store struct {
	ID         string    `json:"id"`
	SellerID   string    `json:"sellerId"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	SalesCount int       `json:"salesCount"`
	CreatedAt  time.Time `json:"createdAt"`
}
