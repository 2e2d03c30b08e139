package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace-api/internal/domain"
	paymentsvc "marketplace-api/internal/service/payment"
)

type createPaymentRequest struct {
	PlanID        string `json:"planId" binding:"required"`
	PaymentMethod string `json:"paymentMethod" binding:"required"`
}

func (h *handlers) createPayment(c *gin.Context) {
	actor := actorFrom(c)
	if actor.Role != domain.RoleSeller && actor.Role != domain.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	var req createPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.deps.PaymentSvc.CreateSubscription(c.Request.Context(), actor.UserID, req.PlanID, req.PaymentMethod)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *handlers) listPlans(c *gin.Context) {
	plans, err := h.deps.PaymentSvc.ListPlans(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

func (h *handlers) paymentStatus(c *gin.Context) {
	actor := actorFrom(c)
	result, err := h.deps.PaymentSvc.Status(c.Request.Context(), actor.UserID, c.Query("subscription_id"), c.Query("payment_id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// paymentWebhook absorbs provider notifications. Business anomalies are
// acknowledged with 200 so the provider stops retrying; only provider
// unavailability answers non-2xx, which schedules a redelivery.
func (h *handlers) paymentWebhook(c *gin.Context) {
	var ev paymentsvc.WebhookEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		webhookEventsTotal.WithLabelValues("malformed").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "invalid payload"})
		return
	}

	if err := h.deps.PaymentSvc.HandleWebhook(c.Request.Context(), ev); err != nil {
		var upstream *domain.UpstreamError
		if errors.As(err, &upstream) {
			webhookEventsTotal.WithLabelValues("retry").Inc()
			c.JSON(http.StatusBadGateway, gin.H{"error": "payment provider unavailable"})
			return
		}
		h.logger.Printf("payment webhook: %v", err)
	}

	webhookEventsTotal.WithLabelValues("received").Inc()
	c.JSON(http.StatusOK, gin.H{"received": true})
}
