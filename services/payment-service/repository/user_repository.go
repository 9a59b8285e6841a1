package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/common/models"
)

// ErrCustomerConflict is returned when a user already carries a different
// Stripe customer id. Linkage is set-once, never rewritten to a conflicting
// value.
var ErrCustomerConflict = errors.New("user already linked to a different stripe customer")

type UserRepository interface {
	FindByClerkID(ctx context.Context, clerkID string) (*models.User, error)
	SetStripeCustomerID(ctx context.Context, userID uuid.UUID, customerID string) error
}

type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) FindByClerkID(ctx context.Context, clerkID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Where("clerk_id = ?", clerkID).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormUserRepository) SetStripeCustomerID(ctx context.Context, userID uuid.UUID, customerID string) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND (stripe_customer_id IS NULL OR stripe_customer_id = ?)", userID, customerID).
		Update("stripe_customer_id", customerID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCustomerConflict
	}
	return nil
}
