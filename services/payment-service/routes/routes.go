package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/common/auth"
	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/payment-service/controllers"
)

func RegisterPaymentRoutes(r *gin.Engine, pc *controllers.PaymentController) {
	payment := r.Group("/payment")

	payment.POST("/checkout", auth.Middleware(), pc.CreateCheckout)

	// Stripe webhook authenticates via its signature header, not a bearer token.
	payment.POST("/webhook", pc.StripeWebhook)
}
