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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/kaanchinar/petshop-storefront/internal/cart"
	"github.com/kaanchinar/petshop-storefront/internal/checkout"
	"github.com/kaanchinar/petshop-storefront/internal/client"
	"github.com/kaanchinar/petshop-storefront/internal/config"
	"github.com/kaanchinar/petshop-storefront/internal/formstate"
	h "github.com/kaanchinar/petshop-storefront/internal/http"
	"github.com/kaanchinar/petshop-storefront/internal/orders"
)

func main() {
	cfg := config.Load()

	// Clients for the remote resources
	cartClient := client.NewCartClient(cfg.CartAPIBaseURL, cfg.RequestTimeout)
	orderClient := client.NewOrderClient(cfg.OrderAPIBaseURL, cfg.RequestTimeout)
	productClient := client.NewProductClient(cfg.ProductAPIBaseURL, cfg.RequestTimeout)

	// Redis holds the persisted checkout form state
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Redis connection failed:", err)
	}
	log.Printf("Redis ping succeeded")

	forms := formstate.NewRedisStore(redisClient)

	// Postgres holds the local order history
	creds := &orders.Credentials{
		Host:              cfg.PostgresHost,
		Port:              cfg.PostgresPort,
		User:              cfg.PostgresUser,
		Password:          cfg.PostgresPassword,
		DBName:            cfg.PostgresDB,
		MigrationsDirPath: cfg.MigrationsDirPath,
	}
	history, err := orders.NewPostgresRepository(creds)
	if err != nil {
		log.Fatalf("Failed to connect to postgres: %v", err)
	}
	defer history.Close()
	if err := history.RunMigrations(creds); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Printf("Connected to postgres at %s:%d", cfg.PostgresHost, cfg.PostgresPort)

	// Coordinator wiring
	mirrors := cart.NewRegistry(cartClient)
	wizard := checkout.NewWizard(forms)
	submitter := checkout.NewSubmitter(orderClient, history, forms)

	cartHandler := h.NewCartHandler(mirrors, productClient, cfg.RequestTimeout)
	checkoutHandler := h.NewCheckoutHandler(wizard, submitter, mirrors, cfg.RequestTimeout)
	productHandler := h.NewProductHandler(productClient, cfg.RequestTimeout)
	ordersHandler := h.NewOrdersHandler(history, cfg.RequestTimeout)

	// Setup router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(h.RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(h.MockAuthMiddleware)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
			r.Delete("/", cartHandler.ClearCart)
		})
		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", checkoutHandler.GetState)
			r.Post("/shipping", checkoutHandler.SubmitShipping)
			r.Post("/billing", checkoutHandler.SubmitBilling)
			r.Post("/payment", checkoutHandler.SubmitPayment)
			r.Get("/review", checkoutHandler.Review)
			r.Post("/confirm", checkoutHandler.Confirm)
		})
		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.ListProducts)
			r.Get("/{product_id}", productHandler.GetProduct)
		})
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordersHandler.ListOrders)
			r.Get("/{order_id}", ordersHandler.GetOrder)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Storefront starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}
