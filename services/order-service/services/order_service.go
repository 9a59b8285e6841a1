package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/common/httperr"
	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/common/models"
	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/order-service/repository"
)

type OrderResponse struct {
	Orders []models.Order `json:"orders"`
	Meta   MetaData       `json:"meta"`
}

type MetaData struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	TotalOrders int64 `json:"total_orders"`
	TotalPages  int64 `json:"total_pages"`
	HasMore     bool  `json:"has_more"`
}

type OrderService struct {
	orders repository.OrderRepository
	users  repository.UserRepository
	logger *zap.Logger
}

func NewOrderService(orders repository.OrderRepository, users repository.UserRepository, logger *zap.Logger) *OrderService {
	return &OrderService{
		orders: orders,
		users:  users,
		logger: logger,
	}
}

// GetUserOrders retrieves paginated orders for the verified identity.
func (s *OrderService) GetUserOrders(ctx context.Context, clerkID string, page, limit int) (*OrderResponse, *httperr.Error) {
	user, svcErr := s.resolveUser(ctx, clerkID)
	if svcErr != nil {
		return nil, svcErr
	}

	orders, total, err := s.orders.FindByUserID(ctx, user.ID, page, limit)
	if err != nil {
		s.logger.Error("Failed to fetch orders", zap.String("user_id", user.ID.String()), zap.Error(err))
		return nil, httperr.New(http.StatusInternalServerError, "Failed to fetch orders", err)
	}

	return &OrderResponse{
		Orders: orders,
		Meta: MetaData{
			Page:        page,
			Limit:       limit,
			TotalOrders: total,
			TotalPages:  calculateTotalPages(total, limit),
			HasMore:     total > int64(page*limit),
		},
	}, nil
}

// GetOrderByID retrieves a specific order owned by the verified identity.
func (s *OrderService) GetOrderByID(ctx context.Context, clerkID string, orderID uuid.UUID) (*models.Order, *httperr.Error) {
	user, svcErr := s.resolveUser(ctx, clerkID)
	if svcErr != nil {
		return nil, svcErr
	}

	order, err := s.orders.FindByIDAndUserID(ctx, orderID, user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.New(http.StatusNotFound, "Order not found", err)
		}
		s.logger.Error("Failed to fetch order",
			zap.String("order_id", orderID.String()),
			zap.String("user_id", user.ID.String()),
			zap.Error(err))
		return nil, httperr.New(http.StatusInternalServerError, "Failed to fetch order", err)
	}

	return order, nil
}

func (s *OrderService) resolveUser(ctx context.Context, clerkID string) (*models.User, *httperr.Error) {
	user, err := s.users.FindByClerkID(ctx, clerkID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.New(http.StatusNotFound, "User not found", err)
		}
		s.logger.Error("Failed to resolve user", zap.String("clerk_id", clerkID), zap.Error(err))
		return nil, httperr.New(http.StatusInternalServerError, "Failed to resolve user", err)
	}
	return user, nil
}

func calculateTotalPages(total int64, limit int) int64 {
	if limit == 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}
