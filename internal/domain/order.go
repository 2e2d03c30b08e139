package domain

import "time"

// OrderStatus is the fulfillment state of a single store's order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderConfirmed  OrderStatus = "CONFIRMED"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderShipped    OrderStatus = "SHIPPED"
	OrderDelivered  OrderStatus = "DELIVERED"
	OrderCancelled  OrderStatus = "CANCELLED"
	OrderRefunded   OrderStatus = "REFUNDED"
)

var validNext = map[OrderStatus]map[OrderStatus]bool{
	OrderPending:    {OrderConfirmed: true, OrderCancelled: true},
	OrderConfirmed:  {OrderProcessing: true, OrderCancelled: true},
	OrderProcessing: {OrderShipped: true, OrderCancelled: true},
	OrderShipped:    {OrderDelivered: true},
	OrderDelivered:  {OrderRefunded: true},
	OrderCancelled:  {},
	OrderRefunded:   {},
}

// CanTransition reports whether moving an order from one status to another is
// legal. CANCELLED and REFUNDED are terminal.
func CanTransition(from, to OrderStatus) bool {
	return validNext[from][to]
}

// ValidOrderStatus reports whether s names a known status.
func ValidOrderStatus(s OrderStatus) bool {
	_, ok := validNext[s]
	return ok
}

// PaymentStatus tracks money separately from fulfillment.
type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "PENDING"
	PaymentProcessing PaymentStatus = "PROCESSING"
	PaymentPaid       PaymentStatus = "PAID"
	PaymentFailed     PaymentStatus = "FAILED"
	PaymentRefunded   PaymentStatus = "REFUNDED"
)

type PaymentMethod string

const (
	MethodCreditCard PaymentMethod = "CREDIT_CARD"
	MethodDebitCard  PaymentMethod = "DEBIT_CARD"
	MethodPix        PaymentMethod = "PIX"
	MethodBoleto     PaymentMethod = "BOLETO"
)

func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case MethodCreditCard, MethodDebitCard, MethodPix, MethodBoleto:
		return true
	}
	return false
}

type OrderItem struct {
	ID          string `json:"id"`
	OrderID     string `json:"orderId"`
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	PriceCents  int64  `json:"priceCents"`
	Quantity    int    `json:"quantity"`
	TotalCents  int64  `json:"totalCents"`
}

// Order is one store's fulfillment unit within a buyer's checkout. A
// multi-store cart yields multiple orders that share no items. Orders are
// never deleted; CANCELLED and REFUNDED are terminal statuses.
type Order struct {
	ID                string        `json:"id"`
	BuyerID           string        `json:"buyerId"`
	SellerID          string        `json:"sellerId"`
	StoreID           string        `json:"storeId"`
	Items             []OrderItem   `json:"items,omitempty"`
	SubtotalCents     int64         `json:"subtotalCents"`
	ShippingCents     int64         `json:"shippingCents"`
	TaxCents          int64         `json:"taxCents"`
	DiscountCents     int64         `json:"discountCents"`
	TotalCents        int64         `json:"totalCents"`
	Status            OrderStatus   `json:"status"`
	PaymentStatus     PaymentStatus `json:"paymentStatus"`
	PaymentMethod     PaymentMethod `json:"paymentMethod"`
	ShippingAddressID string        `json:"shippingAddressId"`
	TrackingCode      string        `json:"trackingCode,omitempty"`
	Notes             string        `json:"notes,omitempty"`
	CreatedAt         time.Time     `json:"createdAt"`
	UpdatedAt         time.Time     `json:"updatedAt"`
}

// Ref returns the short order reference used in user-facing messages.
func (o Order) Ref() string {
	if len(o.ID) <= 8 {
		return o.ID
	}
	return o.ID[len(o.ID)-8:]
}
