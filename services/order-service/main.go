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
	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/order-service/config"
	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/order-service/controllers"
	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/order-service/repository"
	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/order-service/routes"
	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/order-service/services"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("[OrderService] Failed to load config: ", err)
	}

	zlog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatal("[OrderService] Failed to initialize logger: ", err)
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

	orderSvc := services.NewOrderService(
		repository.NewGormOrderRepository(db),
		repository.NewGormUserRepository(db),
		zlog,
	)
	oc := controllers.NewOrderController(orderSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(zlog))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	routes.RegisterOrderRoutes(r, oc)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		zlog.Info("Order Service started", zap.String("port", cfg.Port))
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
