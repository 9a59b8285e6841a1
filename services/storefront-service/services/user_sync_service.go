package services

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/common/models"
	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/storefront-service/repository"
)

// BillingGateway is the slice of the Stripe client identity sync needs.
type BillingGateway interface {
	FindCustomerByEmail(ctx context.Context, email string) (string, error)
	CreateCustomer(ctx context.Context, email, name, clerkID string) (string, error)
}

// UserSyncService mirrors identity-provider user events into the local user
// directory and keeps the Stripe customer linkage warm.
type UserSyncService struct {
	users   repository.UserRepository
	billing BillingGateway
	logger  *zap.Logger
}

func NewUserSyncService(users repository.UserRepository, billing BillingGateway, logger *zap.Logger) *UserSyncService {
	return &UserSyncService{
		users:   users,
		billing: billing,
		logger:  logger,
	}
}

// SyncUser upserts the user keyed by Clerk id. Billing-customer resolution is
// best effort: a Stripe failure is logged and the local sync proceeds, a
// later checkout repairs the missing linkage. An email uniqueness conflict is
// recovered by deleting the colliding rows and inserting fresh, converging on
// one row per identity at the cost of the colliding rows' history.
func (s *UserSyncService) SyncUser(ctx context.Context, clerkID, email, name string) error {
	customerID := s.resolveCustomerID(ctx, clerkID, email, name)

	user := &models.User{
		ClerkID:          clerkID,
		Email:            email,
		Name:             name,
		StripeCustomerID: customerID,
	}

	err := s.users.Upsert(ctx, user)
	if err == nil {
		s.logger.Info("User synced", zap.String("clerk_id", clerkID))
		return nil
	}

	if !repository.IsUniqueViolation(err) {
		s.logger.Error("User sync failed", zap.String("clerk_id", clerkID), zap.Error(err))
		return err
	}

	s.logger.Warn("Email conflict during user sync, removing colliding rows",
		zap.String("clerk_id", clerkID),
		zap.String("email", email))

	deleted, derr := s.users.DeleteByEmail(ctx, email)
	if derr != nil {
		s.logger.Error("Conflict cleanup failed", zap.String("email", email), zap.Error(derr))
		return nil
	}

	fresh := &models.User{
		ClerkID:          clerkID,
		Email:            email,
		Name:             name,
		StripeCustomerID: customerID,
	}
	if cerr := s.users.Create(ctx, fresh); cerr != nil {
		s.logger.Error("User recreation after conflict failed",
			zap.String("clerk_id", clerkID), zap.Error(cerr))
		return nil
	}

	s.logger.Info("User synced after conflict recovery",
		zap.String("clerk_id", clerkID),
		zap.Int64("rows_removed", deleted))
	return nil
}

// resolveCustomerID returns an existing local linkage, then an existing
// remote customer by email, then a freshly created one. nil means "no
// linkage yet", never a cleared linkage.
func (s *UserSyncService) resolveCustomerID(ctx context.Context, clerkID, email, name string) *string {
	existing, err := s.users.FindByClerkID(ctx, clerkID)
	if err == nil && existing.StripeCustomerID != nil {
		return existing.StripeCustomerID
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Warn("User lookup failed during sync", zap.String("clerk_id", clerkID), zap.Error(err))
	}

	customerID, err := s.billing.FindCustomerByEmail(ctx, email)
	if err != nil {
		s.logger.Warn("Stripe customer lookup failed, continuing without linkage",
			zap.String("email", email), zap.Error(err))
		return nil
	}
	if customerID != "" {
		s.logger.Info("Linked existing Stripe customer", zap.String("customer_id", customerID))
		return &customerID
	}

	customerID, err = s.billing.CreateCustomer(ctx, email, name, clerkID)
	if err != nil {
		s.logger.Warn("Stripe customer creation failed, continuing without linkage",
			zap.String("email", email), zap.Error(err))
		return nil
	}
	s.logger.Info("Created new Stripe customer", zap.String("customer_id", customerID))
	return &customerID
}
