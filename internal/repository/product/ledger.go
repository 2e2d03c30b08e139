package product

import (
	"context"
	"errors"
	"log"

	"github.com/jackc/pgx/v5"

	"marketplace-api/internal/domain"
)

// Reserve atomically decrements stock and increments sales_count for one
// product inside the caller's transaction. The conditional WHERE clause makes
// it safe under concurrent checkouts for the same product: stock can never go
// negative because the decrement and the check are one statement.
func Reserve(ctx context.Context, tx pgx.Tx, productID string, quantity int) error {
	ct, err := tx.Exec(ctx, `
UPDATE products
SET stock = stock - $2, sales_count = sales_count + $2
WHERE id = $1 AND stock >= $2
`, productID, quantity)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		available, lookupErr := availableStock(ctx, tx, productID)
		if lookupErr != nil {
			if errors.Is(lookupErr, pgx.ErrNoRows) {
				return domain.ErrNotFound
			}
			return lookupErr
		}
		return &domain.InsufficientStockError{ProductID: productID, Requested: quantity, Available: available}
	}
	return nil
}

// Restock reverses a reservation inside the caller's transaction. sales_count
// is clamped at zero; a clamp means the ledger was already inconsistent and is
// logged rather than failing the cancellation.
func Restock(ctx context.Context, tx pgx.Tx, logger *log.Logger, productID string, quantity int) error {
	var before int
	err := tx.QueryRow(ctx, `SELECT sales_count FROM products WHERE id = $1 FOR UPDATE`, productID).Scan(&before)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}

	if _, err := tx.Exec(ctx, `
UPDATE products
SET stock = stock + $2, sales_count = GREATEST(sales_count - $2, 0)
WHERE id = $1
`, productID, quantity); err != nil {
		return err
	}

	if before < quantity && logger != nil {
		logger.Printf("product ledger: restock product_id=%s qty=%d sales_count %d clamped at 0", productID, quantity, before)
	}
	return nil
}

func availableStock(ctx context.Context, tx pgx.Tx, productID string) (int, error) {
	var stock int
	err := tx.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1`, productID).Scan(&stock)
	return stock, err
}
