package httpserver

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	checkoutsvc "marketplace-api/internal/service/checkout"
	notificationsvc "marketplace-api/internal/service/notification"
	ordersvc "marketplace-api/internal/service/order"
	paymentsvc "marketplace-api/internal/service/payment"
)

// Deps carries the services the router exposes.
type Deps struct {
	CheckoutSvc     *checkoutsvc.Service
	OrderSvc        *ordersvc.Service
	PaymentSvc      *paymentsvc.Service
	NotificationSvc *notificationsvc.Service
	JWTSecret       string
	AllowedOrigins  []string
}

// Server wraps the HTTP server setup.
type Server struct {
	httpServer *http.Server
	logger     *log.Logger
	db         *pgxpool.Pool
}

// New builds a Server with all routes wired.
func New(addr string, logger *log.Logger, db *pgxpool.Pool, deps Deps) (*Server, error) {
	router := buildRouter(logger, db, deps)

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Server{
		httpServer: httpSrv,
		logger:     logger,
		db:         db,
	}, nil
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
