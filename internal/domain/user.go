package domain

import "time"

// Role identifies what a user may do across the marketplace.
type Role string

const (
	RoleBuyer  Role = "BUYER"
	RoleSeller Role = "SELLER"
	RoleAdmin  Role = "ADMIN"
)

// Actor is the authenticated identity attached to every request, as supplied
// by the session token. The engine trusts it without re-validating credentials.
type Actor struct {
	UserID string
	Role   Role
}

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Plan      string    `json:"plan,omitempty"`
	City      string    `json:"city,omitempty"`
	State     string    `json:"state,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Address stores a buyer shipping destination.
type Address struct {
	ID         string `json:"id"`
	UserID     string `json:"-"`
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
}
