package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmtech/farm-market-api/internal/dto"
	"github.com/farmtech/farm-market-api/internal/model"
)

type mockOrderRepo struct {
	orders map[uuid.UUID]*model.Order
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{orders: make(map[uuid.UUID]*model.Order)}
}

func (m *mockOrderRepo) Create(_ context.Context, order *model.Order) error {
	order.ID = uuid.New()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	m.orders[order.ID] = order
	return nil
}

func (m *mockOrderRepo) CreateTx(ctx context.Context, _ pgx.Tx, order *model.Order) error {
	return m.Create(ctx, order)
}

func (m *mockOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	return m.orders[id], nil
}

func (m *mockOrderRepo) GetByPaymentID(_ context.Context, paymentID uuid.UUID) (*model.Order, error) {
	for _, o := range m.orders {
		if o.PaymentID == paymentID {
			return o, nil
		}
	}
	return nil, nil
}

func (m *mockOrderRepo) GetLatestByUserID(_ context.Context, userID uuid.UUID) (*model.Order, error) {
	var latest *model.Order
	for _, o := range m.orders {
		if o.UserID != userID {
			continue
		}
		if latest == nil || o.CreatedAt.After(latest.CreatedAt) {
			latest = o
		}
	}
	return latest, nil
}

func (m *mockOrderRepo) ListByUserID(_ context.Context, userID uuid.UUID) ([]model.Order, error) {
	var orders []model.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			orders = append(orders, *o)
		}
	}
	return orders, nil
}

func (m *mockOrderRepo) ListAll(_ context.Context) ([]model.Order, error) {
	var orders []model.Order
	for _, o := range m.orders {
		orders = append(orders, *o)
	}
	return orders, nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to model.OrderStatus) (bool, error) {
	o, ok := m.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	return true, nil
}

func seedOrder(repo *mockOrderRepo, userID uuid.UUID, status model.OrderStatus) *model.Order {
	order := &model.Order{
		ID: uuid.New(), OrderID: NewOrderRef(), UserID: userID, Status: status,
		TotalAmount: decimal.NewFromInt(180), CreatedAt: time.Now(),
	}
	repo.orders[order.ID] = order
	return order
}

func TestOrderService_CreateOrder_NoItems(t *testing.T) {
	svc := NewOrderService(newMockOrderRepo(), newMockUserRepo(), nil)
	_, err := svc.CreateOrder(context.Background(), dto.CreateOrderRequest{UserID: uuid.New()})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestOrderService_CreateOrder_SnapshotsUserAddress(t *testing.T) {
	orderRepo := newMockOrderRepo()
	userRepo := newMockUserRepo()
	user := &model.User{Address: "12 Farm Lane", City: "Nashik"}
	require.NoError(t, userRepo.Create(context.Background(), user))

	svc := NewOrderService(orderRepo, userRepo, nil)
	order, err := svc.CreateOrder(context.Background(), dto.CreateOrderRequest{
		UserID:      user.ID,
		Items:       []dto.LineItemRequest{{Name: "Apple", Price: decimal.NewFromInt(50), Quantity: 2}},
		TotalAmount: decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, "12 Farm Lane, Nashik", order.ShippingAddress)
	assert.NotEmpty(t, order.OrderID)
}

func TestOrderService_UpdateStatus_Sequence(t *testing.T) {
	repo := newMockOrderRepo()
	svc := NewOrderService(repo, nil, nil)
	order := seedOrder(repo, uuid.New(), model.OrderStatusProcessing)

	updated, err := svc.UpdateStatus(context.Background(), order.ID, "Shipped")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusShipped, updated.Status)

	updated, err = svc.UpdateStatus(context.Background(), order.ID, "Delivered")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusDelivered, updated.Status)
}

func TestOrderService_UpdateStatus_SkipRejected(t *testing.T) {
	repo := newMockOrderRepo()
	svc := NewOrderService(repo, nil, nil)
	order := seedOrder(repo, uuid.New(), model.OrderStatusProcessing)

	_, err := svc.UpdateStatus(context.Background(), order.ID, "Delivered")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, model.OrderStatusProcessing, repo.orders[order.ID].Status)
}

func TestOrderService_UpdateStatus_UnknownStatus(t *testing.T) {
	repo := newMockOrderRepo()
	svc := NewOrderService(repo, nil, nil)
	order := seedOrder(repo, uuid.New(), model.OrderStatusProcessing)

	_, err := svc.UpdateStatus(context.Background(), order.ID, "Lost")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestOrderService_UpdateStatus_NotFound(t *testing.T) {
	svc := NewOrderService(newMockOrderRepo(), nil, nil)
	_, err := svc.UpdateStatus(context.Background(), uuid.New(), "Shipped")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderService_Cancel(t *testing.T) {
	repo := newMockOrderRepo()
	svc := NewOrderService(repo, nil, nil)

	for _, status := range []model.OrderStatus{model.OrderStatusPending, model.OrderStatusProcessing, model.OrderStatusShipped} {
		order := seedOrder(repo, uuid.New(), status)
		cancelled, err := svc.Cancel(context.Background(), order.ID)
		require.NoError(t, err, "cancel from %s", status)
		assert.Equal(t, model.OrderStatusCancelled, cancelled.Status)
	}
}

func TestOrderService_Cancel_DeliveredConflict(t *testing.T) {
	repo := newMockOrderRepo()
	svc := NewOrderService(repo, nil, nil)
	order := seedOrder(repo, uuid.New(), model.OrderStatusDelivered)

	_, err := svc.Cancel(context.Background(), order.ID)
	assert.ErrorIs(t, err, ErrOrderDelivered)
	assert.Equal(t, model.OrderStatusDelivered, repo.orders[order.ID].Status)
}

func TestOrderService_Cancel_AlreadyCancelledNoop(t *testing.T) {
	repo := newMockOrderRepo()
	svc := NewOrderService(repo, nil, nil)
	order := seedOrder(repo, uuid.New(), model.OrderStatusCancelled)

	cancelled, err := svc.Cancel(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, cancelled.Status)
}

func TestOrderService_Latest(t *testing.T) {
	repo := newMockOrderRepo()
	svc := NewOrderService(repo, nil, nil)
	userID := uuid.New()

	older := seedOrder(repo, userID, model.OrderStatusDelivered)
	older.CreatedAt = time.Now().Add(-time.Hour)
	newest := seedOrder(repo, userID, model.OrderStatusProcessing)

	latest, err := svc.Latest(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, newest.ID, latest.ID)
}

func TestOrderService_Latest_NoOrders(t *testing.T) {
	svc := NewOrderService(newMockOrderRepo(), nil, nil)
	_, err := svc.Latest(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderService_GetByID_AccessDenied(t *testing.T) {
	repo := newMockOrderRepo()
	svc := NewOrderService(repo, nil, nil)
	order := seedOrder(repo, uuid.New(), model.OrderStatusProcessing)

	_, err := svc.GetByID(context.Background(), order.ID, uuid.New(), false)
	assert.ErrorIs(t, err, ErrOrderAccessDenied)

	got, err := svc.GetByID(context.Background(), order.ID, uuid.New(), true)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
}
