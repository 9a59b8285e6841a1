package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	svix "github.com/svix/svix-webhooks/go"
	"go.uber.org/zap"
)

// UserSyncAPI is implemented by the user sync service.
type UserSyncAPI interface {
	SyncUser(ctx context.Context, clerkID, email, name string) error
}

// clerkEvent is the slice of a Clerk webhook payload this handler reads.
type clerkEvent struct {
	Type string `json:"type"`
	Data struct {
		ID             string `json:"id"`
		FirstName      string `json:"first_name"`
		LastName       string `json:"last_name"`
		EmailAddresses []struct {
			EmailAddress string `json:"email_address"`
		} `json:"email_addresses"`
	} `json:"data"`
}

type ClerkWebhookController struct {
	webhook *svix.Webhook
	sync    UserSyncAPI
	logger  *zap.Logger
}

// NewClerkWebhookController builds the identity webhook handler. An empty
// secret leaves the verifier unset and the endpoint answers 500 until the
// configuration is fixed.
func NewClerkWebhookController(webhookSecret string, sync UserSyncAPI, logger *zap.Logger) (*ClerkWebhookController, error) {
	cc := &ClerkWebhookController{sync: sync, logger: logger}
	if webhookSecret != "" {
		wh, err := svix.NewWebhook(webhookSecret)
		if err != nil {
			return nil, err
		}
		cc.webhook = wh
	}
	return cc, nil
}

// HandleClerkWebhook handles POST /webhooks/clerk. Verification failures are
// rejected with no state change; once the delivery is verified it is always
// answered 200, even when processing fails, the sender must not retry-storm
// on our internal errors.
func (cc *ClerkWebhookController) HandleClerkWebhook(c *gin.Context) {
	if cc.webhook == nil {
		cc.logger.Error("Clerk webhook secret not configured")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Configuration error"})
		return
	}

	if c.GetHeader("svix-id") == "" ||
		c.GetHeader("svix-timestamp") == "" ||
		c.GetHeader("svix-signature") == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing svix headers"})
		return
	}

	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable payload"})
		return
	}

	if err := cc.webhook.Verify(payload, c.Request.Header); err != nil {
		cc.logger.Warn("Clerk webhook verification failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Webhook verification failed"})
		return
	}

	var event clerkEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		cc.logger.Error("Failed to decode Clerk event", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"message": "Webhook processed"})
		return
	}

	switch event.Type {
	case "user.created", "user.updated":
		cc.processUserEvent(c.Request.Context(), event)
	default:
		cc.logger.Debug("Ignoring Clerk event", zap.String("type", event.Type))
	}

	c.JSON(http.StatusOK, gin.H{"message": "Webhook processed"})
}

func (cc *ClerkWebhookController) processUserEvent(ctx context.Context, event clerkEvent) {
	if len(event.Data.EmailAddresses) == 0 {
		cc.logger.Warn("Clerk user event without email address",
			zap.String("clerk_id", event.Data.ID))
		return
	}

	email := event.Data.EmailAddresses[0].EmailAddress
	name := strings.TrimSpace(event.Data.FirstName + " " + event.Data.LastName)

	if err := cc.sync.SyncUser(ctx, event.Data.ID, email, name); err != nil {
		// Already logged in the service, the delivery is still acknowledged.
		cc.logger.Warn("User sync failed for verified delivery",
			zap.String("clerk_id", event.Data.ID))
	}
}
