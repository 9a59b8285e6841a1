package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/common/httperr"
	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/common/models"
	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/common/stripeclient"
	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/payment-service/repository"
)

const sessionExpiry = 30 * time.Minute

// CartItem is one client-submitted cart line. Price is in major currency
// units and is trusted as submitted.
type CartItem struct {
	ProductID uuid.UUID `json:"id" binding:"required"`
	Name      string    `json:"name" binding:"required"`
	Price     int64     `json:"price" binding:"required,min=1"`
	Quantity  int64     `json:"quantity" binding:"required,min=1"`
}

type CheckoutRequest struct {
	Items       []CartItem `json:"items" binding:"required,min=1,dive"`
	FrontendURL string     `json:"frontend_url"`
}

type CheckoutResponse struct {
	URL string `json:"url"`
}

// PaymentGateway is the slice of the Stripe client that checkout needs.
type PaymentGateway interface {
	FindCustomerByEmail(ctx context.Context, email string) (string, error)
	CreateCustomer(ctx context.Context, email, name, clerkID string) (string, error)
	CreateCheckoutSession(ctx context.Context, p stripeclient.SessionParams) (string, string, error)
}

type CheckoutService struct {
	users       repository.UserRepository
	orders      repository.OrderRepository
	gateway     PaymentGateway
	frontendURL string
	logger      *zap.Logger
}

func NewCheckoutService(users repository.UserRepository, orders repository.OrderRepository, gateway PaymentGateway, frontendURL string, logger *zap.Logger) *CheckoutService {
	return &CheckoutService{
		users:       users,
		orders:      orders,
		gateway:     gateway,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

// Checkout creates a PENDING order for the cart and opens a hosted checkout
// session for it. A failure after order creation leaves the PENDING order in
// place without a session reference, cleanup is out of band.
func (s *CheckoutService) Checkout(ctx context.Context, clerkID string, req *CheckoutRequest) (*CheckoutResponse, *httperr.Error) {
	user, err := s.users.FindByClerkID(ctx, clerkID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.New(http.StatusNotFound, "User not found", err)
		}
		s.logger.Error("Failed to resolve user", zap.String("clerk_id", clerkID), zap.Error(err))
		return nil, httperr.New(http.StatusInternalServerError, "Failed to resolve user", err)
	}

	customerID, svcErr := s.ensureStripeCustomer(ctx, user)
	if svcErr != nil {
		return nil, svcErr
	}

	var total int64
	for _, item := range req.Items {
		total += item.Price * item.Quantity
	}

	order := &models.Order{
		UserID: user.ID,
		Total:  total,
		Status: models.OrderStatusPending,
	}
	for _, item := range req.Items {
		order.OrderItems = append(order.OrderItems, models.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	if err := s.orders.Create(ctx, order); err != nil {
		s.logger.Error("Failed to create order", zap.String("user_id", user.ID.String()), zap.Error(err))
		return nil, httperr.New(http.StatusInternalServerError, "Failed to create order", err)
	}

	frontendURL := req.FrontendURL
	if frontendURL == "" {
		frontendURL = s.frontendURL
	}

	sessionItems := make([]stripeclient.SessionItem, 0, len(req.Items))
	for _, item := range req.Items {
		sessionItems = append(sessionItems, stripeclient.SessionItem{
			Name:       item.Name,
			UnitAmount: item.Price * 100,
			Quantity:   item.Quantity,
		})
	}

	sessionID, sessionURL, err := s.gateway.CreateCheckoutSession(ctx, stripeclient.SessionParams{
		CustomerID:        customerID,
		Items:             sessionItems,
		ClientReferenceID: order.ID.String(),
		SuccessURL:        frontendURL + "/success",
		CancelURL:         frontendURL + "/cancel",
		ExpiresAt:         time.Now().Add(sessionExpiry).Unix(),
	})
	if err != nil {
		// The PENDING order stays behind without a session reference.
		s.logger.Error("Failed to create checkout session",
			zap.String("order_id", order.ID.String()), zap.Error(err))
		return nil, httperr.New(http.StatusBadGateway, "Payment provider unavailable", err)
	}

	if err := s.orders.AttachSession(ctx, order.ID, sessionID, sessionURL); err != nil {
		s.logger.Error("Failed to attach session to order",
			zap.String("order_id", order.ID.String()),
			zap.String("session_id", sessionID),
			zap.Error(err))
		return nil, httperr.New(http.StatusInternalServerError, "Failed to save checkout session", err)
	}

	s.logger.Info("Checkout session created",
		zap.String("order_id", order.ID.String()),
		zap.String("session_id", sessionID),
		zap.Int64("total", total))

	return &CheckoutResponse{URL: sessionURL}, nil
}

// ensureStripeCustomer returns the user's Stripe customer id, creating or
// adopting one if the user has none. Already-linked users make no external
// call. Concurrent first checkouts for the same user may race to create two
// remote customers, the guarded setter keeps local linkage consistent.
func (s *CheckoutService) ensureStripeCustomer(ctx context.Context, user *models.User) (string, *httperr.Error) {
	if user.StripeCustomerID != nil {
		return *user.StripeCustomerID, nil
	}

	customerID, err := s.gateway.FindCustomerByEmail(ctx, user.Email)
	if err != nil {
		s.logger.Error("Stripe customer lookup failed", zap.String("email", user.Email), zap.Error(err))
		return "", httperr.New(http.StatusBadGateway, "Payment provider unavailable", err)
	}

	if customerID == "" {
		customerID, err = s.gateway.CreateCustomer(ctx, user.Email, user.Name, user.ClerkID)
		if err != nil {
			s.logger.Error("Stripe customer creation failed", zap.String("email", user.Email), zap.Error(err))
			return "", httperr.New(http.StatusBadGateway, "Payment provider unavailable", err)
		}
		s.logger.Info("Created new Stripe customer during checkout", zap.String("customer_id", customerID))
	} else {
		s.logger.Info("Linked existing Stripe customer during checkout", zap.String("customer_id", customerID))
	}

	if err := s.users.SetStripeCustomerID(ctx, user.ID, customerID); err != nil {
		if errors.Is(err, repository.ErrCustomerConflict) {
			s.logger.Warn("User already linked to another Stripe customer",
				zap.String("user_id", user.ID.String()),
				zap.String("customer_id", customerID))
			return "", httperr.New(http.StatusConflict, "Billing account conflict", err)
		}
		s.logger.Error("Failed to persist Stripe customer id", zap.Error(err))
		return "", httperr.New(http.StatusInternalServerError, "Failed to link billing account", err)
	}

	return customerID, nil
}
