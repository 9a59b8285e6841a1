package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/common/models"
)

type fakeOrderRepo struct {
	orders     map[uuid.UUID]models.Order
	lastUserID uuid.UUID
}

func (f *fakeOrderRepo) FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Order, int64, error) {
	f.lastUserID = userID
	var out []models.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeOrderRepo) FindByIDAndUserID(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	o, ok := f.orders[orderID]
	if !ok || o.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return &o, nil
}

type fakeUserRepo struct {
	users map[string]*models.User
}

func (f *fakeUserRepo) FindByClerkID(ctx context.Context, clerkID string) (*models.User, error) {
	u, ok := f.users[clerkID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func newService(orders *fakeOrderRepo, users *fakeUserRepo) *OrderService {
	return NewOrderService(orders, users, zap.NewNop())
}

func TestGetUserOrders_ResolvesUserAndPaginates(t *testing.T) {
	userID := uuid.New()
	orders := &fakeOrderRepo{orders: map[uuid.UUID]models.Order{}}
	for i := 0; i < 3; i++ {
		id := uuid.New()
		orders.orders[id] = models.Order{ID: id, UserID: userID, Status: models.OrderStatusPaid}
	}
	users := &fakeUserRepo{users: map[string]*models.User{
		"user_123": {ID: userID, ClerkID: "user_123"},
	}}

	resp, svcErr := newService(orders, users).GetUserOrders(context.Background(), "user_123", 1, 10)
	if svcErr != nil {
		t.Fatalf("GetUserOrders returned error: %v", svcErr)
	}
	if orders.lastUserID != userID {
		t.Fatalf("orders were not scoped to the resolved user")
	}
	if len(resp.Orders) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(resp.Orders))
	}
	if resp.Meta.TotalOrders != 3 || resp.Meta.TotalPages != 1 || resp.Meta.HasMore {
		t.Fatalf("unexpected meta: %+v", resp.Meta)
	}
}

func TestGetUserOrders_UnknownIdentity(t *testing.T) {
	orders := &fakeOrderRepo{orders: map[uuid.UUID]models.Order{}}
	users := &fakeUserRepo{users: map[string]*models.User{}}

	_, svcErr := newService(orders, users).GetUserOrders(context.Background(), "user_ghost", 1, 10)
	if svcErr == nil || svcErr.Code != 404 {
		t.Fatalf("expected 404 for unknown identity, got %+v", svcErr)
	}
}

func TestGetOrderByID_EnforcesOwnership(t *testing.T) {
	ownerID := uuid.New()
	otherID := uuid.New()
	orderID := uuid.New()

	orders := &fakeOrderRepo{orders: map[uuid.UUID]models.Order{
		orderID: {ID: orderID, UserID: ownerID, Status: models.OrderStatusPending},
	}}
	users := &fakeUserRepo{users: map[string]*models.User{
		"user_owner": {ID: ownerID, ClerkID: "user_owner"},
		"user_other": {ID: otherID, ClerkID: "user_other"},
	}}
	svc := newService(orders, users)

	order, svcErr := svc.GetOrderByID(context.Background(), "user_owner", orderID)
	if svcErr != nil {
		t.Fatalf("owner lookup failed: %v", svcErr)
	}
	if order.ID != orderID {
		t.Fatalf("unexpected order returned")
	}

	// Another authenticated user must not see the order.
	_, svcErr = svc.GetOrderByID(context.Background(), "user_other", orderID)
	if svcErr == nil || svcErr.Code != 404 {
		t.Fatalf("expected 404 for foreign order, got %+v", svcErr)
	}
}

func TestCalculateTotalPages(t *testing.T) {
	cases := []struct {
		total int64
		limit int
		want  int64
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{5, 0, 0},
	}
	for _, tc := range cases {
		if got := calculateTotalPages(tc.total, tc.limit); got != tc.want {
			t.Errorf("calculateTotalPages(%d, %d) = %d, want %d", tc.total, tc.limit, got, tc.want)
		}
	}
}
