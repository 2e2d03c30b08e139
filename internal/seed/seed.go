package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type planSeed struct {
	Slug       string
	Name       string
	PriceCents int64
	MaxAds     int
}

type productSeed struct {
	Name       string
	PriceCents int64
	Stock      int
}

// Apply inserts basic seed data for manual testing. It is idempotent: rows are
// upserted by their natural keys, and rows without one are guarded with
// WHERE NOT EXISTS.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	plans := []planSeed{
		{Slug: "gratuito", Name: "Gratuito", PriceCents: 0, MaxAds: 5},
		{Slug: "basico", Name: "Basico", PriceCents: 2990, MaxAds: 25},
		{Slug: "premium", Name: "Premium", PriceCents: 7990, MaxAds: 200},
	}
	for _, p := range plans {
		if err := upsertPlan(ctx, pool, p); err != nil {
			return fmt.Errorf("upsert plan %s: %w", p.Slug, err)
		}
	}

	buyerID, err := upsertUser(ctx, pool, "Demo Buyer", "buyer@example.com", "BUYER")
	if err != nil {
		return fmt.Errorf("upsert buyer: %w", err)
	}
	sellerID, err := upsertUser(ctx, pool, "Demo Seller", "seller@example.com", "SELLER")
	if err != nil {
		return fmt.Errorf("upsert seller: %w", err)
	}

	if err := ensureAddress(ctx, pool, buyerID, "Rua das Flores 100", "Sao Paulo", "SP", "01000-000"); err != nil {
		return fmt.Errorf("ensure buyer address: %w", err)
	}

	storeID, err := upsertStore(ctx, pool, sellerID, "Demo Store", "demo-store")
	if err != nil {
		return fmt.Errorf("upsert store: %w", err)
	}

	products := []productSeed{
		{Name: "Wireless Headphones", PriceCents: 19900, Stock: 40},
		{Name: "Mechanical Keyboard", PriceCents: 34900, Stock: 25},
		{Name: "USB-C Charger", PriceCents: 8900, Stock: 120},
	}
	for _, p := range products {
		if err := ensureProduct(ctx, pool, storeID, p); err != nil {
			return fmt.Errorf("ensure product %s: %w", p.Name, err)
		}
	}

	return nil
}

func upsertPlan(ctx context.Context, pool *pgxpool.Pool, p planSeed) error {
	const q = `
INSERT INTO plans (slug, name, price_cents, max_ads)
VALUES ($1, $2, $3, $4)
ON CONFLICT (slug) DO UPDATE
SET name = EXCLUDED.name,
    price_cents = EXCLUDED.price_cents,
    max_ads = EXCLUDED.max_ads
`
	_, err := pool.Exec(ctx, q, p.Slug, p.Name, p.PriceCents, p.MaxAds)
	return err
}

func upsertUser(ctx context.Context, pool *pgxpool.Pool, name, email, role string) (string, error) {
	const q = `
INSERT INTO users (name, email, role)
VALUES ($1, $2, $3)
ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, role = EXCLUDED.role
RETURNING id::text
`
	var id string
	if err := pool.QueryRow(ctx, q, name, email, role).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func ensureAddress(ctx context.Context, pool *pgxpool.Pool, userID, street, city, state, postal string) error {
	const q = `
INSERT INTO addresses (user_id, street, city, state, postal_code)
SELECT $1, $2, $3, $4, $5
WHERE NOT EXISTS (SELECT 1 FROM addresses WHERE user_id = $1 AND street = $2)
`
	_, err := pool.Exec(ctx, q, userID, street, city, state, postal)
	return err
}

func upsertStore(ctx context.Context, pool *pgxpool.Pool, sellerID, name, slug string) (string, error) {
	const q = `
INSERT INTO stores (seller_id, name, slug)
VALUES ($1, $2, $3)
ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name
RETURNING id::text
`
	var id string
	if err := pool.QueryRow(ctx, q, sellerID, name, slug).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func ensureProduct(ctx context.Context, pool *pgxpool.Pool, storeID string, p productSeed) error {
	const q = `
INSERT INTO products (store_id, name, price_cents, stock)
SELECT $1, $2, $3, $4
WHERE NOT EXISTS (SELECT 1 FROM products WHERE store_id = $1 AND name = $2)
`
	_, err := pool.Exec(ctx, q, storeID, p.Name, p.PriceCents, p.Stock)
	return err
}
