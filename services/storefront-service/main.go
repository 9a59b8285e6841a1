package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/common/database"
	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/common/logger"
	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/common/middleware"
	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/common/models"
	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/common/stripeclient"
	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/storefront-service/config"
	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/storefront-service/controllers"
	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/storefront-service/repository"
	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/storefront-service/routes"
	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/storefront-service/services"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("[StorefrontService] Failed to load config: ", err)
	}

	zlog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatal("[StorefrontService] Failed to initialize logger: ", err)
	}
	defer zlog.Sync()

	var migrations []interface{}
	if cfg.Env != "production" {
		migrations = []interface{}{&models.User{}, &models.Product{}, &models.Order{}, &models.OrderItem{}}
	}
	db, err := database.ConnectPostgres(migrations...)
	if err != nil {
		zlog.Fatal("Database connection failed", zap.Error(err))
	}
	defer database.Close(db)

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	stripeSvc := stripeclient.New(cfg.StripeSecretKey, "")

	userRepo := repository.NewGormUserRepository(db)
	productRepo := repository.NewGormProductRepository(db)

	syncSvc := services.NewUserSyncService(userRepo, stripeSvc, zlog)
	cache := services.NewRedisProductCache(redisClient, zlog)

	pc := controllers.NewProductController(productRepo, cache, zlog)
	cc, err := controllers.NewClerkWebhookController(cfg.ClerkWebhookSecret, syncSvc, zlog)
	if err != nil {
		zlog.Fatal("Invalid Clerk webhook secret", zap.Error(err))
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(zlog))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	routes.RegisterStorefrontRoutes(r, pc, cc)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		zlog.Info("Storefront Service started", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("Server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zlog.Fatal("Server forced to shutdown", zap.Error(err))
	}
	zlog.Info("Server exited cleanly")
}
