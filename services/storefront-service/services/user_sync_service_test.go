package services

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/common/models"
)

type fakeUserStore struct {
	byClerkID map[string]*models.User

	upsertErr error
	createErr error

	upserts int
	creates int
	deletes []string
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byClerkID: make(map[string]*models.User)}
}

func (f *fakeUserStore) FindByClerkID(_ context.Context, clerkID string) (*models.User, error) {
	if u, ok := f.byClerkID[clerkID]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserStore) Upsert(_ context.Context, user *models.User) error {
	f.upserts++
	if f.upsertErr != nil {
		err := f.upsertErr
		f.upsertErr = nil
		return err
	}
	f.byClerkID[user.ClerkID] = user
	return nil
}

func (f *fakeUserStore) Create(_ context.Context, user *models.User) error {
	f.creates++
	if f.createErr != nil {
		return f.createErr
	}
	f.byClerkID[user.ClerkID] = user
	return nil
}

func (f *fakeUserStore) DeleteByEmail(_ context.Context, email string) (int64, error) {
	f.deletes = append(f.deletes, email)
	var removed int64
	for id, u := range f.byClerkID {
		if u.Email == email {
			delete(f.byClerkID, id)
			removed++
		}
	}
	return removed, nil
}

type fakeBilling struct {
	existingID string
	findErr    error
	createErr  error

	findCalls   int
	createCalls int
}

func (f *fakeBilling) FindCustomerByEmail(_ context.Context, _ string) (string, error) {
	f.findCalls++
	return f.existingID, f.findErr
}

func (f *fakeBilling) CreateCustomer(_ context.Context, _, _, _ string) (string, error) {
	f.createCalls++
	if f.createErr != nil {
		return "", f.createErr
	}
	return "cus_new", nil
}

func uniqueViolation() error {
	return &pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email"}
}

func TestSyncUser_UpsertsWithFreshCustomer(t *testing.T) {
	store := newFakeUserStore()
	billing := &fakeBilling{}
	svc := NewUserSyncService(store, billing, zap.NewNop())

	err := svc.SyncUser(context.Background(), "clerk_1", "neo@matrix.io", "Thomas Anderson")

	assert.NoError(t, err)
	assert.Equal(t, 1, billing.findCalls)
	assert.Equal(t, 1, billing.createCalls)

	user := store.byClerkID["clerk_1"]
	assert.NotNil(t, user)
	assert.Equal(t, "neo@matrix.io", user.Email)
	assert.Equal(t, "Thomas Anderson", user.Name)
	if assert.NotNil(t, user.StripeCustomerID) {
		assert.Equal(t, "cus_new", *user.StripeCustomerID)
	}
}

func TestSyncUser_AdoptsExistingCustomerByEmail(t *testing.T) {
	store := newFakeUserStore()
	billing := &fakeBilling{existingID: "cus_existing"}
	svc := NewUserSyncService(store, billing, zap.NewNop())

	err := svc.SyncUser(context.Background(), "clerk_1", "neo@matrix.io", "Neo")

	assert.NoError(t, err)
	assert.Equal(t, 0, billing.createCalls)
	if assert.NotNil(t, store.byClerkID["clerk_1"].StripeCustomerID) {
		assert.Equal(t, "cus_existing", *store.byClerkID["clerk_1"].StripeCustomerID)
	}
}

func TestSyncUser_LinkedUserMakesNoBillingCalls(t *testing.T) {
	store := newFakeUserStore()
	linked := "cus_linked"
	store.byClerkID["clerk_1"] = &models.User{ClerkID: "clerk_1", Email: "old@matrix.io", StripeCustomerID: &linked}
	billing := &fakeBilling{}
	svc := NewUserSyncService(store, billing, zap.NewNop())

	err := svc.SyncUser(context.Background(), "clerk_1", "neo@matrix.io", "Neo")

	assert.NoError(t, err)
	assert.Equal(t, 0, billing.findCalls)
	assert.Equal(t, 0, billing.createCalls)
	assert.Equal(t, "neo@matrix.io", store.byClerkID["clerk_1"].Email)
}

func TestSyncUser_BillingOutageStillSyncsLocally(t *testing.T) {
	store := newFakeUserStore()
	billing := &fakeBilling{findErr: errors.New("stripe unreachable")}
	svc := NewUserSyncService(store, billing, zap.NewNop())

	err := svc.SyncUser(context.Background(), "clerk_1", "neo@matrix.io", "Neo")

	assert.NoError(t, err)
	user := store.byClerkID["clerk_1"]
	assert.NotNil(t, user)
	assert.Nil(t, user.StripeCustomerID)
}

func TestSyncUser_EmailConflictDeletesAndRecreates(t *testing.T) {
	store := newFakeUserStore()
	// A different identity already owns the email.
	store.byClerkID["clerk_other"] = &models.User{ClerkID: "clerk_other", Email: "neo@matrix.io"}
	store.upsertErr = uniqueViolation()
	billing := &fakeBilling{}
	svc := NewUserSyncService(store, billing, zap.NewNop())

	err := svc.SyncUser(context.Background(), "clerk_1", "neo@matrix.io", "Neo")

	assert.NoError(t, err)
	assert.Equal(t, []string{"neo@matrix.io"}, store.deletes)
	assert.Equal(t, 1, store.creates)

	_, stillThere := store.byClerkID["clerk_other"]
	assert.False(t, stillThere)
	assert.NotNil(t, store.byClerkID["clerk_1"])
}

func TestSyncUser_RecreationFailureIsSwallowed(t *testing.T) {
	store := newFakeUserStore()
	store.byClerkID["clerk_other"] = &models.User{ClerkID: "clerk_other", Email: "neo@matrix.io"}
	store.upsertErr = uniqueViolation()
	store.createErr = errors.New("db down")
	svc := NewUserSyncService(store, &fakeBilling{}, zap.NewNop())

	// The delivery was verified, recovery failures must not bubble into a
	// retry storm from the sender.
	err := svc.SyncUser(context.Background(), "clerk_1", "neo@matrix.io", "Neo")
	assert.NoError(t, err)
}

func TestSyncUser_NonUniqueErrorIsReturned(t *testing.T) {
	store := newFakeUserStore()
	store.upsertErr = errors.New("connection reset")
	svc := NewUserSyncService(store, &fakeBilling{}, zap.NewNop())

	err := svc.SyncUser(context.Background(), "clerk_1", "neo@matrix.io", "Neo")
	assert.Error(t, err)
	assert.Empty(t, store.deletes)
}
