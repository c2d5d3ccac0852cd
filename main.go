// main.go
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

	"storefront/config"
	"storefront/controllers"
	"storefront/middleware"
	"storefront/repository"
	"storefront/routes"
	"storefront/services"
	"storefront/utils"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const tokenTTL = 24 * time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	logger, err := utils.NewLogger(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatal("Failed to build logger: ", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to MongoDB
	client, err := utils.ConnectDB(ctx, cfg.DatabaseURL, cfg.StoreTimeout)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error("Failed to disconnect from database", zap.Error(err))
		}
	}()
	db := client.Database(cfg.DatabaseName)

	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	if err := cartRepo.EnsureIndexes(ctx); err != nil {
		logger.Fatal("Failed to create cart indexes", zap.Error(err))
	}
	if err := orderRepo.EnsureIndexes(ctx); err != nil {
		logger.Fatal("Failed to create order indexes", zap.Error(err))
	}

	cartService := services.NewCartService(cartRepo, cfg.StoreTimeout, logger.Named("cart"))
	orderService := services.NewOrderService(orderRepo, cartService, services.OrderConfig{
		StoreTimeout:  cfg.StoreTimeout,
		ClearAttempts: cfg.OrderClearAttempts,
		ClearBackoff:  cfg.OrderClearBackoff,
	}, logger.Named("order"))

	resolved, err := orderService.ReconcilePendingClears(ctx, cfg.ReconcileLimit)
	if err != nil {
		logger.Warn("Pending cart clears not reconciled", zap.Error(err))
	} else if resolved > 0 {
		logger.Info("Pending cart clears reconciled", zap.Int("orders", resolved))
	}

	var tokens *utils.TokenIssuer
	if cfg.JWTSecret != "" {
		tokens = utils.NewTokenIssuer(cfg.JWTSecret, tokenTTL)
	} else if cfg.AuthRequired {
		logger.Fatal("AUTH_REQUIRED is set but JWT_SECRET is empty")
	}

	var notifier controllers.OrderNotifier
	if mailer := utils.NewMailer(cfg.PostmarkAPIToken, cfg.SendGridAPIKey, cfg.EmailSender); mailer != nil {
		notifier = controllers.NewEmailNotifier(db, orderService, mailer)
	} else {
		logger.Info("No mail provider configured; order confirmations disabled")
	}

	// Set up the router
	router := mux.NewRouter()
	routes.RegisterRoutes(router, routes.Controllers{
		Health:   controllers.NewHealthController(db, cfg.StoreTimeout),
		User:     controllers.NewUserController(db, tokens, cfg.StoreTimeout, logger),
		Product:  controllers.NewProductController(db, cfg.StoreTimeout, logger),
		Wishlist: controllers.NewWishlistController(db, cfg.StoreTimeout, logger),
		Cart:     controllers.NewCartController(cartService, logger),
		Order:    controllers.NewOrderController(orderService, notifier, logger),
		Chat:     controllers.NewChatController(db, cfg.StoreTimeout, logger),
	})
	router.Use(middleware.RequestLogger(logger.Named("http")))
	router.Use(middleware.Authenticate(tokens, cfg.AuthRequired))

	handler := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", middleware.RequestIDHeader}),
	)(router)
	handler = handlers.RecoveryHandler(handlers.RecoveryLogger(zap.NewStdLog(logger)))(handler)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server is running", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", zap.Error(err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
}
