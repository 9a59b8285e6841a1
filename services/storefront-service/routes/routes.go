package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/storefront-service/controllers"
)

func RegisterStorefrontRoutes(r *gin.Engine, pc *controllers.ProductController, cc *controllers.ClerkWebhookController) {
	// The catalog is public, no bearer token required.
	r.GET("/products", pc.ListProducts)

	// Clerk webhook authenticates via svix signature headers.
	r.POST("/webhooks/clerk", cc.HandleClerkWebhook)
}
