// main.go
package main

import (
	"context"
	"errors"
	"go-storefront/controllers"
	"go-storefront/middleware"
	"go-storefront/pricing"
	"go-storefront/repository"
	"go-storefront/routes"
	"go-storefront/session"
	"go-storefront/snapshot"
	"go-storefront/utils"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := utils.NewLogger(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// Set the JWT secret key
	utils.JwtKey = []byte(cfg.JWTSecret)

	ctx := context.Background()

	// Connect to MongoDB
	mongoDB, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	logger.Info("connected to MongoDB", zap.String("database", cfg.MongoDBName))

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("redis connection failed", zap.Error(err))
	}
	logger.Info("redis ping succeeded", zap.String("addr", cfg.RedisAddr))

	emailClient, err := utils.NewEmailClient(cfg.MailProvider, cfg.SendGridAPIKey, cfg.PostmarkToken)
	if err != nil {
		logger.Fatal("failed to set up mail provider", zap.Error(err))
	}
	emailService := utils.NewEmailService(emailClient, cfg.EmailSender, cfg.OrderInbox, cfg.BaseURL, logger)

	snapshots := snapshot.NewStore(snapshot.NewRedisStorage(redisClient, cfg.SnapshotTTL), logger)
	sessions := session.NewManager(snapshots, logger)

	products := repository.NewMongoProductRepository(mongoDB)
	users := repository.NewMongoUserRepository(mongoDB)
	orders := repository.NewMongoOrderRepository(mongoDB)
	shipping := pricing.NewTable(cfg.StandardFee, cfg.RemoteFee)

	// Set up the router
	router := mux.NewRouter()
	router.Use(middleware.SessionMiddleware(cfg.SnapshotTTL, cfg.AppEnv == "production"))
	router.Use(middleware.RequestLogger(logger))

	routes.RegisterRoutes(router, routes.Controllers{
		State:    controllers.NewStateController(sessions, logger),
		Cart:     controllers.NewCartController(sessions, products, cfg.RequestTimeout, logger),
		Checkout: controllers.NewCheckoutController(sessions, orders, emailService, shipping, cfg.RequestTimeout, logger),
		Product:  controllers.NewProductController(products, sessions, cfg.RequestTimeout, logger),
		User:     controllers.NewUserController(users, orders, sessions, emailService, cfg.RequestTimeout, logger),
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server is running", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	if err := mongoDB.Client().Disconnect(shutdownCtx); err != nil {
		logger.Error("mongo disconnect failed", zap.Error(err))
	}
	logger.Info("server stopped")
}
