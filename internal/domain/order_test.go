package domain

import "testing"

func TestCanTransition(t *testing.T) {
	all := []OrderStatus{
		OrderPending, OrderConfirmed, OrderProcessing,
		OrderShipped, OrderDelivered, OrderCancelled, OrderRefunded,
	}
	allowed := map[OrderStatus][]OrderStatus{
		OrderPending:    {OrderConfirmed, OrderCancelled},
		OrderConfirmed:  {OrderProcessing, OrderCancelled},
		OrderProcessing: {OrderShipped, OrderCancelled},
		OrderShipped:    {OrderDelivered},
		OrderDelivered:  {OrderRefunded},
		OrderCancelled:  {},
		OrderRefunded:   {},
	}

	for _, from := range all {
		want := map[OrderStatus]bool{}
		for _, to := range allowed[from] {
			want[to] = true
		}
		for _, to := range all {
			if got := CanTransition(from, to); got != want[to] {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want[to])
			}
		}
	}
}

func TestCanTransitionUnknownStatus(t *testing.T) {
	if CanTransition("BOGUS", OrderConfirmed) {
		t.Fatal("transition from unknown status must be rejected")
	}
	if CanTransition(OrderPending, "BOGUS") {
		t.Fatal("transition to unknown status must be rejected")
	}
}

func TestValidOrderStatus(t *testing.T) {
	if !ValidOrderStatus(OrderShipped) {
		t.Fatal("SHIPPED should be a valid status")
	}
	if ValidOrderStatus("SHIPPING") {
		t.Fatal("SHIPPING should not be a valid status")
	}
}

func TestValidPaymentMethod(t *testing.T) {
	for _, m := range []PaymentMethod{MethodCreditCard, MethodDebitCard, MethodPix, MethodBoleto} {
		if !ValidPaymentMethod(m) {
			t.Errorf("method %s should be valid", m)
		}
	}
	if ValidPaymentMethod("CASH") {
		t.Fatal("CASH should not be a valid method")
	}
}

func TestOrderRef(t *testing.T) {
	o := Order{ID: "3f2b6a10-9a1f-4c8e-9d2b-55f0a1b2c3d4"}
	if got := o.Ref(); got != "a1b2c3d4" {
		t.Fatalf("Ref() = %q, want %q", got, "a1b2c3d4")
	}
	short := Order{ID: "abc"}
	if got := short.Ref(); got != "abc" {
		t.Fatalf("Ref() on short id = %q, want %q", got, "abc")
	}
}
