package order

import (
	"context"
	"fmt"
	"io"
	"log"

	"marketplace-api/internal/domain"
	"marketplace-api/internal/events"
	orderrepo "marketplace-api/internal/repository/order"
)

// Service owns the order status state machine: it checks who may request a
// transition, whether the transition is legal, and dispatches the follow-up
// notifications once the repository has committed the change.
type Service struct {
	orders    orderrepo.Repository
	notifier  notifier
	publisher publisher
	logger    *log.Logger
}

type notifier interface {
	Dispatch(ctx context.Context, userID, typ, title, message string)
}

type publisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{})
}

func New(orders orderrepo.Repository, notifier notifier, publisher publisher, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{orders: orders, notifier: notifier, publisher: publisher, logger: logger}
}

type UpdateInput struct {
	Status       *domain.OrderStatus `json:"status,omitempty"`
	TrackingCode *string             `json:"trackingCode,omitempty"`
	Notes        *string             `json:"notes,omitempty"`
}

type ListQuery struct {
	Status        domain.OrderStatus
	PaymentStatus domain.PaymentStatus
	StoreID       string
	SellerID      string
	Page          int
	Limit         int
}

// Get returns the order when the actor owns it or is an admin. Non-owners get
// ErrNotFound rather than ErrForbidden so order ids are not probeable.
func (s *Service) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ownsOrder(actor, o) {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

// List returns orders visible to the actor: buyers see their purchases,
// sellers their store's orders, admins everything.
func (s *Service) List(ctx context.Context, actor domain.Actor, q ListQuery) ([]domain.Order, int, error) {
	f := orderrepo.ListFilter{
		Status:        q.Status,
		PaymentStatus: q.PaymentStatus,
		StoreID:       q.StoreID,
		Page:          q.Page,
		Limit:         q.Limit,
	}
	switch actor.Role {
	case domain.RoleBuyer:
		f.BuyerID = actor.UserID
	case domain.RoleSeller:
		f.SellerID = actor.UserID
	case domain.RoleAdmin:
		f.SellerID = q.SellerID
	default:
		return nil, 0, domain.ErrForbidden
	}
	return s.orders.List(ctx, f)
}

// Update applies a status transition and/or tracking and notes changes.
func (s *Service) Update(ctx context.Context, actor domain.Actor, orderID string, in UpdateInput) (*domain.Order, error) {
	if in.Status == nil && in.TrackingCode == nil && in.Notes == nil {
		return nil, fmt.Errorf("%w: nothing to update", domain.ErrValidation)
	}

	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	var to domain.OrderStatus
	if in.Status != nil {
		to = *in.Status
		if !domain.ValidOrderStatus(to) {
			return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, to)
		}
	}

	if !canUpdate(actor, o, to) {
		return nil, domain.ErrForbidden
	}

	if to != "" && !domain.CanTransition(o.Status, to) {
		return nil, &domain.InvalidTransitionError{From: o.Status, To: to}
	}

	updated, err := s.orders.UpdateStatus(ctx, orderrepo.UpdateStatusInput{
		OrderID:      orderID,
		ExpectFrom:   o.Status,
		To:           to,
		TrackingCode: in.TrackingCode,
		Notes:        in.Notes,
	})
	if err != nil {
		return nil, err
	}

	if to != "" {
		s.notifyTransition(ctx, actor, updated)
		s.publisher.Publish(ctx, events.OrderStatusChanged, map[string]interface{}{
			"orderId": updated.ID,
			"from":    o.Status,
			"to":      updated.Status,
			"actor":   actor.Role,
		})
		s.logger.Printf("order: %s transitioned %s -> %s by %s", updated.Ref(), o.Status, updated.Status, actor.Role)
	}
	return updated, nil
}

// canUpdate is the single capability check for the permission matrix: admins
// may do anything, the owning seller may manage their own order, and the
// owning buyer may only cancel while the order is still pending.
func canUpdate(actor domain.Actor, o *domain.Order, to domain.OrderStatus) bool {
	switch actor.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleSeller:
		return o.SellerID == actor.UserID
	case domain.RoleBuyer:
		return o.BuyerID == actor.UserID && to == domain.OrderCancelled && o.Status == domain.OrderPending
	}
	return false
}

// notifyTransition informs the parties that did not trigger the change.
func (s *Service) notifyTransition(ctx context.Context, actor domain.Actor, o *domain.Order) {
	msg := fmt.Sprintf("Order #%s is now %s", o.Ref(), o.Status)
	if actor.UserID != o.BuyerID {
		s.notifier.Dispatch(ctx, o.BuyerID, domain.NotificationOrderUpdated, "Order status updated", msg)
	}
	if actor.UserID != o.SellerID {
		s.notifier.Dispatch(ctx, o.SellerID, domain.NotificationOrderUpdated, "Order updated", msg)
	}
}

func ownsOrder(actor domain.Actor, o *domain.Order) bool {
	switch actor.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleSeller:
		return o.SellerID == actor.UserID
	case domain.RoleBuyer:
		return o.BuyerID == actor.UserID
	}
	return false
}
