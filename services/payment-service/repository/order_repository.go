package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/common/models"
)

// OrderRepository is the write-side order store used by checkout and webhook
// reconciliation.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	AttachSession(ctx context.Context, orderID uuid.UUID, sessionID, sessionURL string) error
	// TransitionFromPending moves the order to next only if it is still
	// PENDING. Returns false when no row changed (terminal or unknown order).
	TransitionFromPending(ctx context.Context, orderID uuid.UUID, next models.OrderStatus) (bool, error)
	GetStatus(ctx context.Context, orderID uuid.UUID) (models.OrderStatus, error)
}

type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) OrderRepository {
	return &GormOrderRepository{db: db}
}

// Create persists the order together with its items in one transaction, the
// order is never visible with a partial item set.
func (r *GormOrderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *GormOrderRepository) AttachSession(ctx context.Context, orderID uuid.UUID, sessionID, sessionURL string) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"stripe_session_id":  sessionID,
			"stripe_session_url": sessionURL,
		}).Error
}

func (r *GormOrderRepository) TransitionFromPending(ctx context.Context, orderID uuid.UUID, next models.OrderStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, models.OrderStatusPending).
		Update("status", next)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *GormOrderRepository) GetStatus(ctx context.Context, orderID uuid.UUID) (models.OrderStatus, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Select("status").
		Where("id = ?", orderID).
		First(&order).Error; err != nil {
		return "", err
	}
	return order.Status, nil
}
