package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"marketplace-api/internal/domain"
	productrepo "marketplace-api/internal/repository/product"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const orderColumns = `id::text, buyer_id::text, seller_id::text, store_id::text, subtotal_cents, shipping_cents, tax_cents, discount_cents, total_cents, status, payment_status, payment_method, shipping_address_id::text, tracking_code, notes, created_at, updated_at`

func (r *postgresRepo) CreateBatch(ctx context.Context, drafts []Draft) ([]domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	created := make([]domain.Order, 0, len(drafts))
	for _, d := range drafts {
		var o domain.Order
		err := tx.QueryRow(ctx, `
INSERT INTO orders (buyer_id, seller_id, store_id, subtotal_cents, shipping_cents, tax_cents, discount_cents, total_cents, payment_method, shipping_address_id, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING `+orderColumns+`
`, d.BuyerID, d.SellerID, d.StoreID, d.SubtotalCents, d.ShippingCents, d.TaxCents, d.DiscountCents, d.TotalCents, d.PaymentMethod, d.ShippingAddressID, d.Notes).Scan(scanTargets(&o)...)
		if err != nil {
			return nil, err
		}

		for _, item := range d.Items {
			if err := productrepo.Reserve(ctx, tx, item.ProductID, item.Quantity); err != nil {
				return nil, err
			}
			var it domain.OrderItem
			err := tx.QueryRow(ctx, `
INSERT INTO order_items (order_id, product_id, product_name, price_cents, quantity, total_cents)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id::text
`, o.ID, item.ProductID, item.ProductName, item.PriceCents, item.Quantity, item.TotalCents).Scan(&it.ID)
			if err != nil {
				return nil, err
			}
			it.OrderID = o.ID
			it.ProductID = item.ProductID
			it.ProductName = item.ProductName
			it.PriceCents = item.PriceCents
			it.Quantity = item.Quantity
			it.TotalCents = item.TotalCents
			o.Items = append(o.Items, it)
		}

		if _, err := tx.Exec(ctx, `UPDATE stores SET sales_count = sales_count + 1 WHERE id = $1`, d.StoreID); err != nil {
			return nil, err
		}

		created = append(created, o)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("order repo: created %d order(s) for buyer=%s", len(created), drafts[0].BuyerID)
	return created, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	err := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id).Scan(scanTargets(&o)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	items, err := r.itemsFor(ctx, []string{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	return &o, nil
}

func (r *postgresRepo) List(ctx context.Context, f ListFilter) ([]domain.Order, int, error) {
	where := []string{"TRUE"}
	args := []interface{}{}
	add := func(cond string, val interface{}) {
		args = append(args, val)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.BuyerID != "" {
		add("buyer_id = $%d", f.BuyerID)
	}
	if f.SellerID != "" {
		add("seller_id = $%d", f.SellerID)
	}
	if f.StoreID != "" {
		add("store_id = $%d", f.StoreID)
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.PaymentStatus != "" {
		add("payment_status = $%d", f.PaymentStatus)
	}
	clause := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE `+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 10
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)
	q := fmt.Sprintf(`SELECT %s FROM orders WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, orderColumns, clause, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var orders []domain.Order
	var ids []string
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(scanTargets(&o)...); err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if len(ids) > 0 {
		items, err := r.itemsFor(ctx, ids)
		if err != nil {
			return nil, 0, err
		}
		for i := range orders {
			orders[i].Items = items[orders[i].ID]
		}
	}
	return orders, total, nil
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, in UpdateStatusInput) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var o domain.Order
	err = tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, in.OrderID).Scan(scanTargets(&o)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if in.To != "" {
		// Re-check under the row lock: a concurrent transition may have won
		// between the service's permission check and this transaction.
		if o.Status != in.ExpectFrom || !domain.CanTransition(o.Status, in.To) {
			return nil, &domain.InvalidTransitionError{From: o.Status, To: in.To}
		}
		if _, err := tx.Exec(ctx, `UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`, o.ID, in.To); err != nil {
			return nil, err
		}
		o.Status = in.To

		if in.To == domain.OrderCancelled {
			items, err := r.itemsForTx(ctx, tx, o.ID)
			if err != nil {
				return nil, err
			}
			for _, item := range items {
				if err := productrepo.Restock(ctx, tx, r.logger, item.ProductID, item.Quantity); err != nil {
					return nil, err
				}
			}
			if _, err := tx.Exec(ctx, `UPDATE stores SET sales_count = GREATEST(sales_count - 1, 0) WHERE id = $1`, o.StoreID); err != nil {
				return nil, err
			}
			o.Items = items
		}
	}

	if in.TrackingCode != nil {
		if _, err := tx.Exec(ctx, `UPDATE orders SET tracking_code = $2, updated_at = now() WHERE id = $1`, o.ID, *in.TrackingCode); err != nil {
			return nil, err
		}
		o.TrackingCode = *in.TrackingCode
	}
	if in.Notes != nil {
		if _, err := tx.Exec(ctx, `UPDATE orders SET notes = $2, updated_at = now() WHERE id = $1`, o.ID, *in.Notes); err != nil {
			return nil, err
		}
		o.Notes = *in.Notes
	}

	// Items are loaded before commit so a read failure can never turn an
	// already-committed transition into an error for the caller.
	if o.Items == nil {
		items, err := r.itemsForTx(ctx, tx, o.ID)
		if err != nil {
			return nil, err
		}
		o.Items = items
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *postgresRepo) itemsFor(ctx context.Context, orderIDs []string) (map[string][]domain.OrderItem, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id::text, order_id::text, product_id::text, product_name, price_cents, quantity, total_cents
FROM order_items
WHERE order_id = ANY($1)
ORDER BY id
`, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string][]domain.OrderItem)
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.PriceCents, &it.Quantity, &it.TotalCents); err != nil {
			return nil, err
		}
		result[it.OrderID] = append(result[it.OrderID], it)
	}
	return result, rows.Err()
}

func (r *postgresRepo) itemsForTx(ctx context.Context, tx pgx.Tx, orderID string) ([]domain.OrderItem, error) {
	rows, err := tx.Query(ctx, `
SELECT id::text, order_id::text, product_id::text, product_name, price_cents, quantity, total_cents
FROM order_items
WHERE order_id = $1
`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.PriceCents, &it.Quantity, &it.TotalCents); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func scanTargets(o *domain.Order) []interface{} {
	return []interface{}{
		&o.ID, &o.BuyerID, &o.SellerID, &o.StoreID,
		&o.SubtotalCents, &o.ShippingCents, &o.TaxCents, &o.DiscountCents, &o.TotalCents,
		&o.Status, &o.PaymentStatus, &o.PaymentMethod, &o.ShippingAddressID,
		&o.TrackingCode, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
	}
}
