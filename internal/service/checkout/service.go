package checkout

import (
	"context"
	"fmt"
	"io"
	"log"

	"marketplace-api/internal/domain"
	"marketplace-api/internal/events"
	orderrepo "marketplace-api/internal/repository/order"
)

// Service splits a validated cart into one order per store. Validation is
// all-or-nothing: any bad line aborts the whole checkout before a single unit
// of inventory moves, and the per-store orders themselves are created in one
// transaction so a late reservation failure rolls everything back.
type Service struct {
	products  productRepo
	orders    orderRepo
	users     userRepo
	notifier  notifier
	publisher publisher
	pricing   Pricing
	logger    *log.Logger
}

type productRepo interface {
	GetBatch(ctx context.Context, ids []string) (map[string]domain.Product, error)
}

type orderRepo interface {
	CreateBatch(ctx context.Context, drafts []orderrepo.Draft) ([]domain.Order, error)
}

type userRepo interface {
	GetAddress(ctx context.Context, userID, addressID string) (*domain.Address, error)
}

type notifier interface {
	Dispatch(ctx context.Context, userID, typ, title, message string)
}

type publisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{})
}

// Pricing supplies shipping, tax and discount for one store's order. The
// default quotes zero for all three.
type Pricing interface {
	Quote(ctx context.Context, storeID string, subtotalCents int64, addr *domain.Address) (shipping, tax, discount int64)
}

type zeroPricing struct{}

func (zeroPricing) Quote(context.Context, string, int64, *domain.Address) (int64, int64, int64) {
	return 0, 0, 0
}

func New(products productRepo, orders orderRepo, users userRepo, notifier notifier, publisher publisher, pricing Pricing, logger *log.Logger) *Service {
	if pricing == nil {
		pricing = zeroPricing{}
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		products:  products,
		orders:    orders,
		users:     users,
		notifier:  notifier,
		publisher: publisher,
		pricing:   pricing,
		logger:    logger,
	}
}

type ItemInput struct {
	ProductID  string `json:"productId"`
	Quantity   int    `json:"quantity"`
	PriceCents int64  `json:"price"`
}

type CreateInput struct {
	Items             []ItemInput          `json:"items"`
	ShippingAddressID string               `json:"shippingAddressId"`
	PaymentMethod     domain.PaymentMethod `json:"paymentMethod"`
	Notes             string               `json:"notes,omitempty"`
}

type storeGroup struct {
	storeID  string
	sellerID string
	items    []domain.OrderItem
	subtotal int64
}

// Create validates the cart and creates one PENDING order per involved store.
func (s *Service) Create(ctx context.Context, buyerID string, in CreateInput) ([]domain.Order, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", domain.ErrValidation)
	}
	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)
		}
	}
	if !domain.ValidPaymentMethod(in.PaymentMethod) {
		return nil, fmt.Errorf("%w: unknown payment method %q", domain.ErrValidation, in.PaymentMethod)
	}

	addr, err := s.users.GetAddress(ctx, buyerID, in.ShippingAddressID)
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, fmt.Errorf("%w: invalid shipping address", domain.ErrValidation)
		}
		return nil, err
	}

	ids := make([]string, 0, len(in.Items))
	seen := make(map[string]bool, len(in.Items))
	for _, item := range in.Items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}

	products, err := s.products.GetBatch(ctx, ids)
	if err != nil {
		return nil, err
	}

	// Validate every line before touching inventory: missing product, price
	// tampering, then stock. Aborting here leaves zero orders and zero
	// decrements behind.
	need := make(map[string]int, len(ids))
	for _, item := range in.Items {
		p, ok := products[item.ProductID]
		if !ok {
			return nil, fmt.Errorf("product %s: %w", item.ProductID, domain.ErrNotFound)
		}
		if p.PriceCents != item.PriceCents {
			return nil, &domain.PriceMismatchError{ProductID: p.ID, Submitted: item.PriceCents, Current: p.PriceCents}
		}
		need[item.ProductID] += item.Quantity
	}
	// Stock is checked against the summed quantity so a product repeated
	// across cart lines cannot slip past a per-line check.
	for _, id := range ids {
		p := products[id]
		if p.Stock < need[id] {
			return nil, &domain.InsufficientStockError{ProductID: p.ID, Requested: need[id], Available: p.Stock}
		}
	}

	groups := s.groupByStore(in.Items, products)

	drafts := make([]orderrepo.Draft, 0, len(groups))
	for _, g := range groups {
		shipping, tax, discount := s.pricing.Quote(ctx, g.storeID, g.subtotal, addr)
		drafts = append(drafts, orderrepo.Draft{
			BuyerID:           buyerID,
			SellerID:          g.sellerID,
			StoreID:           g.storeID,
			Items:             g.items,
			SubtotalCents:     g.subtotal,
			ShippingCents:     shipping,
			TaxCents:          tax,
			DiscountCents:     discount,
			TotalCents:        g.subtotal + shipping + tax - discount,
			PaymentMethod:     in.PaymentMethod,
			ShippingAddressID: in.ShippingAddressID,
			Notes:             in.Notes,
		})
	}

	orders, err := s.orders.CreateBatch(ctx, drafts)
	if err != nil {
		return nil, err
	}

	for _, o := range orders {
		s.notifier.Dispatch(ctx, o.SellerID, domain.NotificationOrderCreated,
			"New order received",
			fmt.Sprintf("Order #%s is awaiting confirmation", o.Ref()))
		s.publisher.Publish(ctx, events.OrderCreated, map[string]interface{}{
			"orderId":    o.ID,
			"buyerId":    o.BuyerID,
			"storeId":    o.StoreID,
			"totalCents": o.TotalCents,
		})
	}

	s.logger.Printf("checkout: buyer=%s stores=%d items=%d", buyerID, len(orders), len(in.Items))
	return orders, nil
}

// groupByStore partitions cart lines by owning store, keeping stores in order
// of first appearance in the cart.
func (s *Service) groupByStore(items []ItemInput, products map[string]domain.Product) []*storeGroup {
	byStore := make(map[string]*storeGroup)
	var ordered []*storeGroup
	for _, item := range items {
		p := products[item.ProductID]
		g, ok := byStore[p.StoreID]
		if !ok {
			g = &storeGroup{storeID: p.StoreID, sellerID: p.SellerID}
			byStore[p.StoreID] = g
			ordered = append(ordered, g)
		}
		lineTotal := item.PriceCents * int64(item.Quantity)
		g.items = append(g.items, domain.OrderItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			PriceCents:  item.PriceCents,
			Quantity:    item.Quantity,
			TotalCents:  lineTotal,
		})
		g.subtotal += lineTotal
	}
	return ordered
}
