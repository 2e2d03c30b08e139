package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketplace-api/internal/config"
	"marketplace-api/internal/db"
	"marketplace-api/internal/events"
	"marketplace-api/internal/httpserver"
	"marketplace-api/internal/mercadopago"
	"marketplace-api/internal/redisx"
	notifrepo "marketplace-api/internal/repository/notification"
	orderrepo "marketplace-api/internal/repository/order"
	planrepo "marketplace-api/internal/repository/plan"
	productrepo "marketplace-api/internal/repository/product"
	subrepo "marketplace-api/internal/repository/subscription"
	userrepo "marketplace-api/internal/repository/user"
	checkoutsvc "marketplace-api/internal/service/checkout"
	notificationsvc "marketplace-api/internal/service/notification"
	ordersvc "marketplace-api/internal/service/order"
	paymentsvc "marketplace-api/internal/service/payment"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	// Event fan-out and webhook dedupe are optional collaborators: the engine
	// stays correct without them, so a missing broker only logs a warning.
	var publisher *events.Publisher
	if cfg.RabbitURL != "" {
		publisher, err = events.NewPublisher(cfg.RabbitURL, "orders", logger)
		if err != nil {
			logger.Printf("rabbitmq unavailable, events disabled: %v", err)
			publisher = nil
		} else {
			defer publisher.Close()
		}
	}

	var dedupe *redisx.Deduper
	if cfg.RedisAddr != "" {
		dedupe = redisx.NewDeduper(redisx.New(cfg.RedisAddr), 24*time.Hour)
	}

	productRepo := productrepo.NewPostgres(dbpool, logger)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)
	subscriptionRepo := subrepo.NewPostgres(dbpool, logger)
	notificationRepo := notifrepo.NewPostgres(dbpool)
	planRepo := planrepo.NewPostgres(dbpool)
	userRepo := userrepo.NewPostgres(dbpool)

	providerClient := mercadopago.New(cfg.ProviderBaseURL, cfg.ProviderAccessToken, logger)

	notificationService := notificationsvc.New(notificationRepo, logger)
	checkoutService := checkoutsvc.New(productRepo, orderRepo, userRepo, notificationService, publisher, nil, logger)
	orderService := ordersvc.New(orderRepo, notificationService, publisher, logger)
	paymentService := paymentsvc.New(subscriptionRepo, planRepo, userRepo, providerClient, notificationService, publisher, dedupe, cfg.WebhookBaseURL, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		CheckoutSvc:     checkoutService,
		OrderSvc:        orderService,
		PaymentSvc:      paymentService,
		NotificationSvc: notificationService,
		JWTSecret:       cfg.JWTSecret,
		AllowedOrigins:  cfg.AllowedOrigins,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
