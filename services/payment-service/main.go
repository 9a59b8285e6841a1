package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/common/database"
	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/common/logger"
	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/common/middleware"
	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/common/models"
	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/common/stripeclient"
	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/payment-service/config"
	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/payment-service/controllers"
	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/payment-service/repository"
	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/payment-service/routes"
	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/payment-service/services"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("[PaymentService] Failed to load config: ", err)
	}

	zlog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatal("[PaymentService] Failed to initialize logger: ", err)
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

	clerk.SetKey(cfg.ClerkSecretKey)
	stripeSvc := stripeclient.New(cfg.StripeSecretKey, cfg.StripeWebhookSecret)

	userRepo := repository.NewGormUserRepository(db)
	orderRepo := repository.NewGormOrderRepository(db)

	pc := &controllers.PaymentController{
		Checkout:  services.NewCheckoutService(userRepo, orderRepo, stripeSvc, cfg.FrontendURL, zlog),
		Reconcile: services.NewReconcileService(orderRepo, zlog),
		Webhooks:  stripeSvc,
		Logger:    zlog,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(zlog))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	routes.RegisterPaymentRoutes(r, pc)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		zlog.Info("Payment Service started", zap.String("port", cfg.Port))
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
