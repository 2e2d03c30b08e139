package order

import (
	"context"
	"errors"
	"testing"

	"marketplace-api/internal/domain"
	orderrepo "marketplace-api/internal/repository/order"
)

type stubRepo struct {
	order      *domain.Order
	getErr     error
	updated    *domain.Order
	updateErr  error
	lastUpdate orderrepo.UpdateStatusInput
	listOrders []domain.Order
	listTotal  int
	listErr    error
	lastFilter orderrepo.ListFilter
}

func (s *stubRepo) CreateBatch(_ context.Context, _ []orderrepo.Draft) ([]domain.Order, error) {
	return nil, errors.New("not used")
}

func (s *stubRepo) GetByID(_ context.Context, _ string) (*domain.Order, error) {
	return s.order, s.getErr
}

func (s *stubRepo) List(_ context.Context, f orderrepo.ListFilter) ([]domain.Order, int, error) {
	s.lastFilter = f
	return s.listOrders, s.listTotal, s.listErr
}

func (s *stubRepo) UpdateStatus(_ context.Context, in orderrepo.UpdateStatusInput) (*domain.Order, error) {
	s.lastUpdate = in
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	if s.updated != nil {
		return s.updated, nil
	}
	out := *s.order
	if in.To != "" {
		out.Status = in.To
	}
	return &out, nil
}

type dispatched struct {
	userID, typ string
}

type stubNotifier struct {
	calls []dispatched
}

func (s *stubNotifier) Dispatch(_ context.Context, userID, typ, _, _ string) {
	s.calls = append(s.calls, dispatched{userID, typ})
}

type stubPublisher struct {
	keys []string
}

func (s *stubPublisher) Publish(_ context.Context, routingKey string, _ interface{}) {
	s.keys = append(s.keys, routingKey)
}

func pendingOrder() *domain.Order {
	return &domain.Order{
		ID:       "3f2b6a10-9a1f-4c8e-9d2b-55f0a1b2c3d4",
		BuyerID:  "buyer1",
		SellerID: "seller1",
		StoreID:  "store1",
		Status:   domain.OrderPending,
	}
}

func statusPtr(s domain.OrderStatus) *domain.OrderStatus { return &s }

func strPtr(v string) *string { return &v }

func TestGetHidesForeignOrders(t *testing.T) {
	svc := New(&stubRepo{order: pendingOrder()}, &stubNotifier{}, &stubPublisher{}, nil)

	if _, err := svc.Get(context.Background(), domain.Actor{UserID: "buyer1", Role: domain.RoleBuyer}, "x"); err != nil {
		t.Fatalf("owner must see the order: %v", err)
	}
	if _, err := svc.Get(context.Background(), domain.Actor{UserID: "other", Role: domain.RoleBuyer}, "x"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("foreign buyer must get not found, got %v", err)
	}
	if _, err := svc.Get(context.Background(), domain.Actor{UserID: "other", Role: domain.RoleAdmin}, "x"); err != nil {
		t.Fatalf("admin must see any order: %v", err)
	}
}

func TestListScopesByRole(t *testing.T) {
	repo := &stubRepo{}
	svc := New(repo, &stubNotifier{}, &stubPublisher{}, nil)

	if _, _, err := svc.List(context.Background(), domain.Actor{UserID: "u1", Role: domain.RoleBuyer}, ListQuery{}); err != nil {
		t.Fatalf("buyer list: %v", err)
	}
	if repo.lastFilter.BuyerID != "u1" || repo.lastFilter.SellerID != "" {
		t.Fatalf("buyer filter wrong: %+v", repo.lastFilter)
	}

	if _, _, err := svc.List(context.Background(), domain.Actor{UserID: "u2", Role: domain.RoleSeller}, ListQuery{SellerID: "ignored"}); err != nil {
		t.Fatalf("seller list: %v", err)
	}
	if repo.lastFilter.SellerID != "u2" || repo.lastFilter.BuyerID != "" {
		t.Fatalf("seller filter wrong: %+v", repo.lastFilter)
	}

	if _, _, err := svc.List(context.Background(), domain.Actor{UserID: "u3", Role: domain.RoleAdmin}, ListQuery{SellerID: "someone"}); err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if repo.lastFilter.SellerID != "someone" || repo.lastFilter.BuyerID != "" {
		t.Fatalf("admin filter wrong: %+v", repo.lastFilter)
	}
}

func TestUpdatePermissionMatrix(t *testing.T) {
	cases := []struct {
		name    string
		actor   domain.Actor
		status  domain.OrderStatus
		to      domain.OrderStatus
		allowed bool
	}{
		{"admin may confirm", domain.Actor{UserID: "x", Role: domain.RoleAdmin}, domain.OrderPending, domain.OrderConfirmed, true},
		{"seller confirms own order", domain.Actor{UserID: "seller1", Role: domain.RoleSeller}, domain.OrderPending, domain.OrderConfirmed, true},
		{"foreign seller denied", domain.Actor{UserID: "seller2", Role: domain.RoleSeller}, domain.OrderPending, domain.OrderConfirmed, false},
		{"buyer cancels own pending", domain.Actor{UserID: "buyer1", Role: domain.RoleBuyer}, domain.OrderPending, domain.OrderCancelled, true},
		{"buyer cannot confirm", domain.Actor{UserID: "buyer1", Role: domain.RoleBuyer}, domain.OrderPending, domain.OrderConfirmed, false},
		{"buyer cannot cancel confirmed", domain.Actor{UserID: "buyer1", Role: domain.RoleBuyer}, domain.OrderConfirmed, domain.OrderCancelled, false},
		{"foreign buyer denied", domain.Actor{UserID: "buyer2", Role: domain.RoleBuyer}, domain.OrderPending, domain.OrderCancelled, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := pendingOrder()
			o.Status = tc.status
			svc := New(&stubRepo{order: o}, &stubNotifier{}, &stubPublisher{}, nil)

			_, err := svc.Update(context.Background(), tc.actor, o.ID, UpdateInput{Status: statusPtr(tc.to)})
			if tc.allowed && err != nil {
				t.Fatalf("expected success, got %v", err)
			}
			if !tc.allowed && !errors.Is(err, domain.ErrForbidden) {
				t.Fatalf("expected forbidden, got %v", err)
			}
		})
	}
}

func TestUpdateRejectsIllegalTransition(t *testing.T) {
	o := pendingOrder()
	o.Status = domain.OrderShipped
	svc := New(&stubRepo{order: o}, &stubNotifier{}, &stubPublisher{}, nil)

	_, err := svc.Update(context.Background(), domain.Actor{UserID: "x", Role: domain.RoleAdmin}, o.ID, UpdateInput{Status: statusPtr(domain.OrderCancelled)})
	var invalid *domain.InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	if invalid.From != domain.OrderShipped || invalid.To != domain.OrderCancelled {
		t.Fatalf("unexpected transition payload: %+v", invalid)
	}
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	svc := New(&stubRepo{order: pendingOrder()}, &stubNotifier{}, &stubPublisher{}, nil)
	_, err := svc.Update(context.Background(), domain.Actor{Role: domain.RoleAdmin}, "x", UpdateInput{Status: statusPtr("SHIPPING")})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateRejectsEmptyInput(t *testing.T) {
	svc := New(&stubRepo{order: pendingOrder()}, &stubNotifier{}, &stubPublisher{}, nil)
	_, err := svc.Update(context.Background(), domain.Actor{Role: domain.RoleAdmin}, "x", UpdateInput{})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdatePassesOptimisticGuard(t *testing.T) {
	repo := &stubRepo{order: pendingOrder()}
	svc := New(repo, &stubNotifier{}, &stubPublisher{}, nil)

	_, err := svc.Update(context.Background(), domain.Actor{UserID: "seller1", Role: domain.RoleSeller}, "x", UpdateInput{Status: statusPtr(domain.OrderConfirmed)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastUpdate.ExpectFrom != domain.OrderPending || repo.lastUpdate.To != domain.OrderConfirmed {
		t.Fatalf("guard not passed through: %+v", repo.lastUpdate)
	}
}

func TestUpdateNotifiesOtherParties(t *testing.T) {
	t.Run("seller transition notifies buyer only", func(t *testing.T) {
		notifier := &stubNotifier{}
		publisher := &stubPublisher{}
		svc := New(&stubRepo{order: pendingOrder()}, notifier, publisher, nil)

		_, err := svc.Update(context.Background(), domain.Actor{UserID: "seller1", Role: domain.RoleSeller}, "x", UpdateInput{Status: statusPtr(domain.OrderConfirmed)})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(notifier.calls) != 1 || notifier.calls[0].userID != "buyer1" {
			t.Fatalf("expected one notification to the buyer, got %+v", notifier.calls)
		}
		if len(publisher.keys) != 1 {
			t.Fatalf("expected one event, got %v", publisher.keys)
		}
	})

	t.Run("buyer cancel notifies seller only", func(t *testing.T) {
		notifier := &stubNotifier{}
		svc := New(&stubRepo{order: pendingOrder()}, notifier, &stubPublisher{}, nil)

		_, err := svc.Update(context.Background(), domain.Actor{UserID: "buyer1", Role: domain.RoleBuyer}, "x", UpdateInput{Status: statusPtr(domain.OrderCancelled)})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(notifier.calls) != 1 || notifier.calls[0].userID != "seller1" {
			t.Fatalf("expected one notification to the seller, got %+v", notifier.calls)
		}
	})
}

func TestUpdateTrackingOnlySkipsNotifications(t *testing.T) {
	notifier := &stubNotifier{}
	publisher := &stubPublisher{}
	repo := &stubRepo{order: pendingOrder()}
	svc := New(repo, notifier, publisher, nil)

	_, err := svc.Update(context.Background(), domain.Actor{UserID: "seller1", Role: domain.RoleSeller}, "x", UpdateInput{TrackingCode: strPtr("BR123")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastUpdate.TrackingCode == nil || *repo.lastUpdate.TrackingCode != "BR123" {
		t.Fatalf("tracking code not passed through: %+v", repo.lastUpdate)
	}
	if len(notifier.calls) != 0 || len(publisher.keys) != 0 {
		t.Fatal("tracking-only update must not notify or publish")
	}
}
