package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"

	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/common/auth"
	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/common/httperr"
	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/payment-service/services"
)

// WebhookParser verifies a raw Stripe webhook payload against its signature
// header and decodes it.
type WebhookParser interface {
	ParseWebhook(payload []byte, sigHeader string) (stripe.Event, error)
}

type PaymentController struct {
	Checkout  *services.CheckoutService
	Reconcile *services.ReconcileService
	Webhooks  WebhookParser
	Logger    *zap.Logger
}

// CreateCheckout handles POST /payment/checkout.
func (pc *PaymentController) CreateCheckout(c *gin.Context) {
	clerkID, err := auth.GetClerkID(c)
	if err != nil {
		httperr.Respond(c, httperr.ErrUnauthorized)
		return
	}

	var req services.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	resp, svcErr := pc.Checkout.Checkout(c.Request.Context(), clerkID, &req)
	if svcErr != nil {
		httperr.Respond(c, svcErr)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// StripeWebhook handles POST /payment/webhook. A delivery that fails
// signature verification is rejected with no state change. Once verified, the
// delivery is always acknowledged, even when internal processing fails, so
// the sender does not retry-storm on our transient errors.
func (pc *PaymentController) StripeWebhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable payload"})
		return
	}

	event, err := pc.Webhooks.ParseWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		pc.Logger.Warn("Stripe webhook verification failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook signature"})
		return
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		pc.applySessionEvent(c, event, pc.Reconcile.MarkSessionCompleted)
	case stripe.EventTypeCheckoutSessionExpired:
		pc.applySessionEvent(c, event, pc.Reconcile.MarkSessionExpired)
	default:
		pc.Logger.Debug("Ignoring Stripe event", zap.String("type", string(event.Type)))
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (pc *PaymentController) applySessionEvent(c *gin.Context, event stripe.Event, apply func(context.Context, string) error) {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		pc.Logger.Error("Failed to decode checkout session payload",
			zap.String("event_id", event.ID), zap.Error(err))
		return
	}
	if session.ClientReferenceID == "" {
		pc.Logger.Warn("Checkout session event without order reference",
			zap.String("event_id", event.ID))
		return
	}
	if err := apply(c.Request.Context(), session.ClientReferenceID); err != nil {
		// Logged in the service, the delivery is still acknowledged.
		return
	}
}
