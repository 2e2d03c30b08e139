package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"marketplace-api/internal/domain"
	"marketplace-api/internal/events"
	"marketplace-api/internal/mercadopago"
	subrepo "marketplace-api/internal/repository/subscription"
)

// Service reconciles provider-side payment truth with internal subscription
// state. Webhook deliveries are at-least-once, possibly duplicated and out of
// order; every path here converges on the same end state regardless.
type Service struct {
	subs      subrepo.Repository
	plans     planRepo
	users     userRepo
	provider  provider
	notifier  notifier
	publisher publisher
	dedupe    deduper
	hookURL   string
	logger    *log.Logger
}

type planRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Plan, error)
	List(ctx context.Context) ([]domain.Plan, error)
}

type userRepo interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type provider interface {
	GetPayment(ctx context.Context, paymentID string) (*mercadopago.Payment, error)
	CreatePayment(ctx context.Context, in mercadopago.CreatePaymentInput) (*mercadopago.Payment, error)
}

type notifier interface {
	Dispatch(ctx context.Context, userID, typ, title, message string)
}

type publisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{})
}

type deduper interface {
	Seen(ctx context.Context, key string) bool
	Mark(ctx context.Context, key string)
}

func New(subs subrepo.Repository, plans planRepo, users userRepo, provider provider, notifier notifier, publisher publisher, dedupe deduper, hookURL string, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		subs:      subs,
		plans:     plans,
		users:     users,
		provider:  provider,
		notifier:  notifier,
		publisher: publisher,
		dedupe:    dedupe,
		hookURL:   hookURL,
		logger:    logger,
	}
}

// WebhookEvent is the provider's notification payload. Data.ID arrives as a
// number or a string depending on the delivery path.
type WebhookEvent struct {
	Type string `json:"type"`
	Data struct {
		ID json.Number `json:"id"`
	} `json:"data"`
}

// MapProviderStatus translates a provider payment status into the internal
// subscription status. It is pure so the webhook path and the polling path
// share it.
func MapProviderStatus(providerStatus string) domain.SubscriptionStatus {
	switch providerStatus {
	case "approved":
		return domain.SubscriptionActive
	case "rejected", "cancelled":
		return domain.SubscriptionCancelled
	default:
		return domain.SubscriptionPending
	}
}

// ParseExternalReference decodes "subscription_<userID>_<planID>". Both ids
// must be UUIDs; anything else is a malformed reference.
func ParseExternalReference(ref string) (userID, planID string, err error) {
	parts := strings.Split(ref, "_")
	if len(parts) != 3 || parts[0] != "subscription" {
		return "", "", fmt.Errorf("malformed external reference %q", ref)
	}
	if _, err := uuid.Parse(parts[1]); err != nil {
		return "", "", fmt.Errorf("malformed user id in external reference %q", ref)
	}
	if _, err := uuid.Parse(parts[2]); err != nil {
		return "", "", fmt.Errorf("malformed plan id in external reference %q", ref)
	}
	return parts[1], parts[2], nil
}

// HandleWebhook absorbs one provider notification. Business anomalies (stale
// reference, already-resolved subscription, unparseable payloads) are logged
// and acknowledged so the provider stops retrying; only provider
// unavailability is returned as an error, which tells the caller to answer
// non-2xx and let the provider redeliver later.
func (s *Service) HandleWebhook(ctx context.Context, ev WebhookEvent) error {
	if ev.Type != "payment" {
		return nil
	}
	paymentID := ev.Data.ID.String()
	if paymentID == "" {
		s.logger.Printf("payment webhook: missing payment id, acknowledging")
		return nil
	}

	info, err := s.provider.GetPayment(ctx, paymentID)
	if err != nil {
		var upstream *domain.UpstreamError
		if errors.As(err, &upstream) {
			return err
		}
		s.logger.Printf("payment webhook: payment %s lookup failed: %v", paymentID, err)
		return nil
	}

	// Dedupe on (payment, provider status): a re-delivery of the same state
	// is dropped early, while a later notification for the same payment with
	// a new status still goes through. The key is only marked once the state
	// change applied, so a transient failure leaves the redelivery path open.
	dedupeKey := "payments:webhook:" + paymentID + ":" + info.Status
	if s.dedupe != nil && s.dedupe.Seen(ctx, dedupeKey) {
		s.logger.Printf("payment webhook: payment %s status %s already processed", paymentID, info.Status)
		return nil
	}

	userID, planID, err := ParseExternalReference(info.ExternalReference)
	if err != nil {
		s.logger.Printf("payment webhook: %v, acknowledging", err)
		return nil
	}

	sub, err := s.subs.FindPending(ctx, userID, planID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Duplicate delivery after the subscription already resolved.
			s.logger.Printf("payment webhook: no pending subscription for user=%s plan=%s", userID, planID)
			if s.dedupe != nil {
				s.dedupe.Mark(ctx, dedupeKey)
			}
			return nil
		}
		s.logger.Printf("payment webhook: subscription lookup failed: %v", err)
		return nil
	}

	if s.applyProviderStatus(ctx, sub, info.Status) && s.dedupe != nil {
		s.dedupe.Mark(ctx, dedupeKey)
	}
	return nil
}

// applyProviderStatus advances one pending subscription according to the
// provider status. Already-converged states are no-ops, which is what makes
// duplicate and out-of-order deliveries safe. It reports whether the state
// converged; false means a transient failure and the delivery must stay
// replayable.
func (s *Service) applyProviderStatus(ctx context.Context, sub *domain.Subscription, providerStatus string) bool {
	switch MapProviderStatus(providerStatus) {
	case domain.SubscriptionActive:
		return s.activate(ctx, sub)
	case domain.SubscriptionCancelled:
		changed, err := s.subs.Cancel(ctx, sub.ID)
		if err != nil {
			s.logger.Printf("payment: cancel subscription %s: %v", sub.ID, err)
			return false
		}
		if changed {
			s.notifier.Dispatch(ctx, sub.UserID, domain.NotificationSubscriptionCancelled,
				"Subscription payment declined",
				"Your plan payment was not approved and the subscription was cancelled")
			s.publisher.Publish(ctx, events.SubscriptionCancelled, map[string]interface{}{
				"subscriptionId": sub.ID,
				"userId":         sub.UserID,
			})
		}
		return true
	default:
		// Still pending on the provider side; nothing to converge.
		return true
	}
}

func (s *Service) activate(ctx context.Context, sub *domain.Subscription) bool {
	plan, err := s.plans.GetByID(ctx, sub.PlanID)
	if err != nil {
		s.logger.Printf("payment: activate subscription %s: plan %s: %v", sub.ID, sub.PlanID, err)
		return false
	}

	changed, err := s.subs.Activate(ctx, sub.ID, sub.UserID, plan.Slug)
	if err != nil {
		s.logger.Printf("payment: activate subscription %s: %v", sub.ID, err)
		return false
	}
	if !changed {
		// Lost the race against a concurrent delivery; the winner already
		// notified.
		return true
	}

	s.notifier.Dispatch(ctx, sub.UserID, domain.NotificationSubscriptionActive,
		"Subscription activated",
		fmt.Sprintf("Your %s plan is now active", plan.Name))
	s.publisher.Publish(ctx, events.SubscriptionActivated, map[string]interface{}{
		"subscriptionId": sub.ID,
		"userId":         sub.UserID,
		"plan":           plan.Slug,
	})
	return true
}

// ListPlans returns the purchasable plans, cheapest first.
func (s *Service) ListPlans(ctx context.Context) ([]domain.Plan, error) {
	return s.plans.List(ctx)
}

// StatusResult pairs the stored subscription with a live provider snapshot.
type StatusResult struct {
	Subscription *domain.Subscription `json:"subscription"`
	Plan         *domain.Plan         `json:"plan,omitempty"`
	Payment      *mercadopago.Payment `json:"payment,omitempty"`
}

// Status serves on-demand polling. It reuses the webhook mapping logic, so a
// poll that observes a resolved payment converges state exactly as a webhook
// delivery would.
func (s *Service) Status(ctx context.Context, userID, subscriptionID, paymentID string) (*StatusResult, error) {
	if subscriptionID == "" && paymentID == "" {
		return nil, fmt.Errorf("%w: subscription_id or payment_id is required", domain.ErrValidation)
	}

	var sub *domain.Subscription
	var err error
	if subscriptionID != "" {
		sub, err = s.subs.GetForUser(ctx, userID, subscriptionID)
	} else {
		sub, err = s.subs.LatestByUser(ctx, userID)
	}
	if err != nil {
		return nil, err
	}

	var info *mercadopago.Payment
	if sub.PaymentID != "" {
		info, err = s.provider.GetPayment(ctx, sub.PaymentID)
		if err != nil {
			s.logger.Printf("payment status: provider lookup for %s failed: %v", sub.PaymentID, err)
			info = nil
		}
	}

	if info != nil && sub.Status == domain.SubscriptionPending {
		s.applyProviderStatus(ctx, sub, info.Status)
		if refreshed, err := s.subs.GetForUser(ctx, userID, sub.ID); err == nil {
			sub = refreshed
		}
	}

	plan, err := s.plans.GetByID(ctx, sub.PlanID)
	if err != nil {
		plan = nil
	}
	return &StatusResult{Subscription: sub, Plan: plan, Payment: info}, nil
}

// CreateResult is returned from a plan purchase.
type CreateResult struct {
	Subscription *domain.Subscription `json:"subscription"`
	Payment      *mercadopago.Payment `json:"payment,omitempty"`
}

// CreateSubscription starts a plan purchase: it registers the charge with the
// provider under an external reference encoding (user, plan) and records a
// PENDING subscription carrying the provider payment id. Free plans skip the
// provider and activate immediately.
func (s *Service) CreateSubscription(ctx context.Context, userID, planID string, method string) (*CreateResult, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}

	expires := time.Now().AddDate(0, 1, 0)

	if plan.PriceCents == 0 {
		sub, err := s.subs.Create(ctx, subrepo.CreateInput{UserID: userID, PlanID: planID, ExpiresAt: &expires})
		if err != nil {
			return nil, err
		}
		s.activate(ctx, sub)
		if refreshed, err := s.subs.GetForUser(ctx, userID, sub.ID); err == nil {
			sub = refreshed
		}
		return &CreateResult{Subscription: sub}, nil
	}

	charge, err := s.provider.CreatePayment(ctx, mercadopago.CreatePaymentInput{
		AmountCents:       plan.PriceCents,
		Description:       fmt.Sprintf("%s plan subscription", plan.Name),
		PaymentMethodID:   method,
		PayerEmail:        user.Email,
		ExternalReference: fmt.Sprintf("subscription_%s_%s", userID, planID),
		NotificationURL:   s.hookURL + "/api/payments/webhook",
	})
	if err != nil {
		return nil, err
	}

	sub, err := s.subs.Create(ctx, subrepo.CreateInput{
		UserID:    userID,
		PlanID:    planID,
		PaymentID: charge.ID.String(),
		ExpiresAt: &expires,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Printf("payment: created charge %s for user=%s plan=%s", charge.ID, userID, plan.Slug)
	return &CreateResult{Subscription: sub, Payment: charge}, nil
}
