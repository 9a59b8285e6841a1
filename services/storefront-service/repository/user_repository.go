package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/common/models"
)

const uniqueViolationCode = "23505"

// IsUniqueViolation reports whether err is a PostgreSQL unique-constraint
// violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

type UserRepository interface {
	FindByClerkID(ctx context.Context, clerkID string) (*models.User, error)
	// Upsert inserts the user or, when a row with the same clerk_id exists,
	// updates its synced fields in place.
	Upsert(ctx context.Context, user *models.User) error
	Create(ctx context.Context, user *models.User) error
	DeleteByEmail(ctx context.Context, email string) (int64, error)
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

func (r *GormUserRepository) Upsert(ctx context.Context, user *models.User) error {
	// Billing linkage is never cleared by a sync that arrives without one.
	columns := []string{"email", "name", "updated_at"}
	if user.StripeCustomerID != nil {
		columns = append(columns, "stripe_customer_id")
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "clerk_id"}},
			DoUpdates: clause.AssignmentColumns(columns),
		}).
		Create(user).Error
}

func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *GormUserRepository) DeleteByEmail(ctx context.Context, email string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("email = ?", email).
		Delete(&models.User{})
	return res.RowsAffected, res.Error
}
