package httpserver

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"marketplace-api/internal/domain"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", fmt.Errorf("%w: bad input", domain.ErrValidation), http.StatusBadRequest},
		{"not found", domain.ErrNotFound, http.StatusNotFound},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden},
		{"insufficient stock", &domain.InsufficientStockError{ProductID: "p1", Requested: 3, Available: 1}, http.StatusBadRequest},
		{"price mismatch", &domain.PriceMismatchError{ProductID: "p1", Submitted: 100, Current: 200}, http.StatusBadRequest},
		{"invalid transition", &domain.InvalidTransitionError{From: domain.OrderShipped, To: domain.OrderCancelled}, http.StatusBadRequest},
		{"upstream", &domain.UpstreamError{Op: "get payment", Err: errors.New("timeout")}, http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	gin.SetMode(gin.TestMode)
	logger := log.New(io.Discard, "", 0)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)
			writeError(c, logger, tc.err)
			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}

func TestWriteErrorHidesInternalDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)
	writeError(c, log.New(io.Discard, "", 0), errors.New("pq: secret table detail"))
	if w.Body.String() != `{"error":"internal server error"}` {
		t.Fatalf("internal detail leaked: %s", w.Body.String())
	}
}
