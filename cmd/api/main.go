package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/atelierhq/storefront_api/internal/cache"
	"github.com/atelierhq/storefront_api/internal/config"
	"github.com/atelierhq/storefront_api/internal/database"
	"github.com/atelierhq/storefront_api/internal/handler"
	"github.com/atelierhq/storefront_api/internal/middleware"
	"github.com/atelierhq/storefront_api/internal/repository"
	"github.com/atelierhq/storefront_api/internal/service"
	"github.com/atelierhq/storefront_api/internal/sse"
	"github.com/atelierhq/storefront_api/internal/utils"
	"github.com/atelierhq/storefront_api/internal/worker"
)

// main is the application entrypoint for the storefront API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting storefront api")
	utils.SetJWTSecret(cfg.JWTSecret, cfg.JWTTTL)

	// 3. Connect Postgres (orders, admin users)
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		fatal("database connection failed", err)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := runMigrations(db.DB, cfg.MigrationsPath); err != nil {
		fatal("migration failed", err)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect Mongo (product catalog)
	mongoClient, mongoDB, err := database.ConnectMongo(&cfg.Mongo)
	if err != nil {
		fatal("mongo connection failed", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(ctx)
	}()
	indexCtx, indexCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := database.EnsureProductIndexes(indexCtx, mongoDB, cfg.Mongo.ProductCollection); err != nil {
		log.Warn().Err(err).Msg("failed to ensure product indexes")
	}
	indexCancel()

	// 3c. Connect Redis
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		fatal("redis connection failed", err)
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected successfully")

	// 4. Initialize repositories
	productRepo := repository.NewProductRepository(mongoDB, cfg.Mongo.ProductCollection)
	orderRepo := repository.NewOrderRepository(db)
	adminRepo := repository.NewAdminUserRepository(db)

	// 5. Product cache; a zero TTL disables it
	var productCache service.ProductCache
	if cfg.Redis.ProductCacheTTL > 0 {
		productCache = cache.NewProductCache(redisClient, cfg.Redis.ProductCacheTTL)
	} else {
		log.Info().Msg("product cache disabled")
	}

	// 6. Initialize SSE hub and services
	hub := sse.NewHub()
	notifier := sse.NewHubNotifier(hub, cfg.Stock.LowThreshold)

	productSvc := service.NewProductService(productRepo, productCache)
	productMgmtSvc := service.NewProductManagementService(productRepo, productCache)
	ledgerSvc := service.NewStockLedgerService(productRepo, productCache, notifier, cfg.Stock.PreventOversell)
	orderSvc := service.NewOrderService(orderRepo, productSvc, ledgerSvc, notifier, cfg.Stock.PreventOversell)
	adminAuthSvc := service.NewAdminAuthService(adminRepo)

	if cfg.Admin.BootstrapEmail != "" {
		if _, err := adminAuthSvc.EnsureAdmin(cfg.Admin.BootstrapEmail, cfg.Admin.BootstrapPassword, "Administrator"); err != nil {
			fatal("admin bootstrap failed", err)
		}
	}

	// 7. Initialize handlers
	handlers := &Handlers{
		Health: handler.NewHealthHandler(map[string]handler.Check{
			"postgres": db.PingContext,
			"mongo":    productRepo.Ping,
			"redis":    redisClient.Ping,
		}),
		Product:           handler.NewProductHandler(productSvc),
		ProductManagement: handler.NewProductManagementHandler(productMgmtSvc),
		Order:             handler.NewOrderHandler(orderSvc),
		Auth:              handler.NewAuthHandler(adminAuthSvc),
		SSE:               handler.NewSSEHandler(hub),
	}

	// 8. Initialize middleware
	jwtMw := middleware.NewJWTMiddleware()
	loginLimiter := middleware.NewInvalidAuthRateLimiter(5, time.Minute)
	defer loginLimiter.Stop()

	// 9. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.CORSAllowedHosts))
	router.Use(middleware.LoggingMiddleware())
	setupRoutes(router, handlers, jwtMw, loginLimiter)

	// 10. Start workers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.Worker.PendingOrderTTL > 0 {
		go worker.NewOrderExpiryWorker(orderSvc, cfg.Worker.PendingOrderTTL, cfg.Worker.ExpiryInterval, 100).Start(ctx)
	}

	// 11. Start HTTP server. WriteTimeout stays unset for the SSE stream.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 12. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 13. Cancel context to stop workers
	cancel()

	// 14. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health            *handler.HealthHandler
	Product           *handler.ProductHandler
	ProductManagement *handler.ProductManagementHandler
	Order             *handler.OrderHandler
	Auth              *handler.AuthHandler
	SSE               *handler.SSEHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, jwtMiddleware *middleware.JWTMiddleware, loginLimiter *middleware.InvalidAuthRateLimiter) {
	router.GET("/v1/health", handlers.Health.GetHealth)

	// Storefront routes
	v1 := router.Group("/v1")
	{
		v1.GET("/products", handlers.Product.GetProducts)
		v1.GET("/products/:id", handlers.Product.GetProduct)
		v1.POST("/products/:id/quote", handlers.Product.Quote)
		v1.POST("/orders", handlers.Order.CreateOrder)
		v1.GET("/orders/:id", handlers.Order.GetOrder)
	}

	// Admin auth (public, rate limited on failures)
	router.POST("/v1/admin/auth/login", loginLimiter.Handle(), handlers.Auth.Login)

	// SSE authenticates via query token, so it sits outside the JWT group
	router.GET("/v1/admin/sse", handlers.SSE.Stream)

	// Admin routes
	admin := router.Group("/v1/admin")
	admin.Use(jwtMiddleware.Handle())
	{
		// Product Management
		admin.GET("/products", handlers.ProductManagement.ListProducts)
		admin.POST("/products", handlers.ProductManagement.CreateProduct)
		admin.GET("/products/:id", handlers.ProductManagement.GetProduct)
		admin.PUT("/products/:id", handlers.ProductManagement.UpdateProduct)
		admin.DELETE("/products/:id", handlers.ProductManagement.DeleteProduct)

		// Order Management
		admin.GET("/orders", handlers.Order.ListOrders)
		admin.GET("/orders/:id", handlers.Order.GetOrder)
		admin.POST("/orders/:id/pay", handlers.Order.MarkPaid)
		admin.POST("/orders/:id/deliver", handlers.Order.MarkDelivered)
		admin.POST("/orders/:id/cancel", handlers.Order.CancelOrder)
	}
}

// runMigrations runs database migrations using golang-migrate.
func runMigrations(db *sql.DB, source string) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func fatal(msg string, err error) {
	log.Error().Err(err).Msg(msg)
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}
