package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/common/models"
	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/payment-service/repository"
)

// ReconcileService applies order state transitions driven by Stripe webhook
// deliveries. Deliveries are at-least-once and may arrive out of order, every
// transition is a conditional write from PENDING so redelivery and stale
// events are no-ops.
type ReconcileService struct {
	orders repository.OrderRepository
	logger *zap.Logger
}

func NewReconcileService(orders repository.OrderRepository, logger *zap.Logger) *ReconcileService {
	return &ReconcileService{orders: orders, logger: logger}
}

// MarkSessionCompleted transitions the referenced order to PAID.
func (s *ReconcileService) MarkSessionCompleted(ctx context.Context, orderRef string) error {
	return s.transition(ctx, orderRef, models.OrderStatusPaid)
}

// MarkSessionExpired transitions the referenced order to CANCELLED.
func (s *ReconcileService) MarkSessionExpired(ctx context.Context, orderRef string) error {
	return s.transition(ctx, orderRef, models.OrderStatusCancelled)
}

func (s *ReconcileService) transition(ctx context.Context, orderRef string, next models.OrderStatus) error {
	orderID, err := uuid.Parse(orderRef)
	if err != nil {
		s.logger.Warn("Webhook carried an unparseable order reference",
			zap.String("order_ref", orderRef))
		return nil
	}

	ok, err := s.orders.TransitionFromPending(ctx, orderID, next)
	if err != nil {
		s.logger.Error("Order transition failed",
			zap.String("order_id", orderID.String()),
			zap.String("next", string(next)),
			zap.Error(err))
		return err
	}

	if !ok {
		current, statusErr := s.orders.GetStatus(ctx, orderID)
		if statusErr != nil {
			s.logger.Warn("Webhook referenced an unknown order",
				zap.String("order_id", orderID.String()),
				zap.String("next", string(next)))
			return nil
		}
		s.logger.Warn("Skipping transition on non-pending order",
			zap.String("order_id", orderID.String()),
			zap.String("current", string(current)),
			zap.String("next", string(next)))
		return nil
	}

	s.logger.Info("Order status updated",
		zap.String("order_id", orderID.String()),
		zap.String("status", string(next)))
	return nil
}
