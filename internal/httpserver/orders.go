package httpserver

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"marketplace-api/internal/domain"
	checkoutsvc "marketplace-api/internal/service/checkout"
	ordersvc "marketplace-api/internal/service/order"
)

func (h *handlers) createOrder(c *gin.Context) {
	actor := actorFrom(c)
	if actor.Role != domain.RoleBuyer {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	var in checkoutsvc.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	orders, err := h.deps.CheckoutSvc.Create(c.Request.Context(), actor.UserID, in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	ordersCreatedTotal.Add(float64(len(orders)))
	c.JSON(http.StatusCreated, gin.H{
		"orders":  orders,
		"message": fmt.Sprintf("%d order(s) created", len(orders)),
	})
}

func (h *handlers) listOrders(c *gin.Context) {
	actor := actorFrom(c)

	q := ordersvc.ListQuery{
		Status:        domain.OrderStatus(c.Query("status")),
		PaymentStatus: domain.PaymentStatus(c.Query("paymentStatus")),
		StoreID:       c.Query("storeId"),
		SellerID:      c.Query("sellerId"),
		Page:          intQuery(c, "page", 1),
		Limit:         intQuery(c, "limit", 10),
	}

	orders, total, err := h.deps.OrderSvc.List(c.Request.Context(), actor, q)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	totalPages := (total + q.Limit - 1) / q.Limit
	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"pagination": gin.H{
			"page":       q.Page,
			"limit":      q.Limit,
			"total":      total,
			"totalPages": totalPages,
		},
	})
}

func (h *handlers) getOrder(c *gin.Context) {
	actor := actorFrom(c)
	order, err := h.deps.OrderSvc.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *handlers) updateOrder(c *gin.Context) {
	actor := actorFrom(c)

	var in ordersvc.UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.deps.OrderSvc.Update(c.Request.Context(), actor, c.Param("id"), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	if in.Status != nil {
		orderTransitionsTotal.WithLabelValues(string(*in.Status)).Inc()
	}
	c.JSON(http.StatusOK, order)
}

func intQuery(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
