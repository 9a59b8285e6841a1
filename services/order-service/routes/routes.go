package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/common/auth"
	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/order-service/controllers"
)

func RegisterOrderRoutes(r *gin.Engine, oc *controllers.OrderController) {
	orderRoutes := r.Group("/orders")
	orderRoutes.Use(auth.Middleware())
	orderRoutes.GET("/", oc.GetOrders)
	orderRoutes.GET("/:id", oc.GetOrderByID)
}
