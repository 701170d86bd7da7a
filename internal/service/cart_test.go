package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmtech/farm-market-api/internal/model"
)

type mockCartRepo struct {
	carts map[uuid.UUID]*model.Cart
	items map[uuid.UUID]*model.CartItem
}

func newMockCartRepo() *mockCartRepo {
	return &mockCartRepo{carts: make(map[uuid.UUID]*model.Cart), items: make(map[uuid.UUID]*model.CartItem)}
}

func (m *mockCartRepo) GetOrCreateCart(_ context.Context, userID uuid.UUID) (*model.Cart, error) {
	for _, c := range m.carts {
		if c.UserID == userID {
			return c, nil
		}
	}
	cart := &model.Cart{ID: uuid.New(), UserID: userID}
	m.carts[cart.ID] = cart
	return cart, nil
}

func (m *mockCartRepo) GetCartWithItems(_ context.Context, cartID uuid.UUID) (*model.Cart, error) {
	cart, ok := m.carts[cartID]
	if !ok {
		return nil, nil
	}
	cart.Items = nil
	for _, item := range m.items {
		if item.CartID == cartID {
			cart.Items = append(cart.Items, *item)
		}
	}
	return cart, nil
}

func (m *mockCartRepo) AddItem(_ context.Context, item *model.CartItem) error {
	item.ID = uuid.New()
	m.items[item.ID] = item
	return nil
}

func (m *mockCartRepo) RemoveItemsByName(_ context.Context, cartID uuid.UUID, name string) (int64, error) {
	var removed int64
	for id, item := range m.items {
		if item.CartID == cartID && item.Name == name {
			delete(m.items, id)
			removed++
		}
	}
	return removed, nil
}

func (m *mockCartRepo) ClearCart(_ context.Context, cartID uuid.UUID) error {
	for id, item := range m.items {
		if item.CartID == cartID {
			delete(m.items, id)
		}
	}
	return nil
}

func (m *mockCartRepo) ClearCartTx(ctx context.Context, _ pgx.Tx, cartID uuid.UUID) error {
	return m.ClearCart(ctx, cartID)
}

// vanishingCartRepo simulates the cart row disappearing between the
// get-or-create and the item read.
type vanishingCartRepo struct{ *mockCartRepo }

func (m *vanishingCartRepo) GetCartWithItems(context.Context, uuid.UUID) (*model.Cart, error) {
	return nil, nil
}

func TestCartService_GetCart_MissingCartRow(t *testing.T) {
	svc := NewCartService(&vanishingCartRepo{newMockCartRepo()}, newMockProductRepo())
	cart, err := svc.GetCart(context.Background(), uuid.New())
	require.NoError(t, err)
	require.NotNil(t, cart)
	assert.Empty(t, cart.Items)
}

func TestCartService_AddItem_SnapshotsProduct(t *testing.T) {
	cartRepo := newMockCartRepo()
	productRepo := newMockProductRepo()
	pid := uuid.New()
	productRepo.products[pid] = &model.Product{
		ID: pid, Name: "Basmati Rice", Category: model.CategoryGrain,
		Price: decimal.NewFromInt(80), Stock: 100,
	}
	svc := NewCartService(cartRepo, productRepo)

	item, err := svc.AddItem(context.Background(), uuid.New(), pid, 2)
	require.NoError(t, err)
	assert.Equal(t, "Basmati Rice", item.Name)
	assert.Equal(t, model.CategoryGrain, item.Category)
	assert.True(t, item.Price.Equal(decimal.NewFromInt(80)))
	assert.Equal(t, 2, item.Quantity)
	assert.Len(t, cartRepo.items, 1)
}

func TestCartService_AddItem_ClampsToStock(t *testing.T) {
	cartRepo := newMockCartRepo()
	productRepo := newMockProductRepo()
	pid := uuid.New()
	productRepo.products[pid] = &model.Product{ID: pid, Name: "Apple", Stock: 3, Price: decimal.NewFromInt(50)}
	svc := NewCartService(cartRepo, productRepo)

	item, err := svc.AddItem(context.Background(), uuid.New(), pid, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, item.Quantity)
}

func TestCartService_AddItem_OutOfStock(t *testing.T) {
	cartRepo := newMockCartRepo()
	productRepo := newMockProductRepo()
	pid := uuid.New()
	productRepo.products[pid] = &model.Product{ID: pid, Name: "Apple", Stock: 0}
	svc := NewCartService(cartRepo, productRepo)

	_, err := svc.AddItem(context.Background(), uuid.New(), pid, 1)
	assert.ErrorIs(t, err, ErrOutOfStock)
}

func TestCartService_AddItem_ProductNotFound(t *testing.T) {
	svc := NewCartService(newMockCartRepo(), newMockProductRepo())
	_, err := svc.AddItem(context.Background(), uuid.New(), uuid.New(), 2)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCartService_AddItem_DuplicateAddsKeepSeparateLines(t *testing.T) {
	cartRepo := newMockCartRepo()
	productRepo := newMockProductRepo()
	pid := uuid.New()
	productRepo.products[pid] = &model.Product{ID: pid, Name: "Apple", Stock: 10, Price: decimal.NewFromInt(50)}
	svc := NewCartService(cartRepo, productRepo)
	userID := uuid.New()

	_, err := svc.AddItem(context.Background(), userID, pid, 1)
	require.NoError(t, err)
	_, err = svc.AddItem(context.Background(), userID, pid, 1)
	require.NoError(t, err)
	assert.Len(t, cartRepo.items, 2)
}

func TestCartService_RemoveItem_DeletesAllMatchingLines(t *testing.T) {
	cartRepo := newMockCartRepo()
	svc := NewCartService(cartRepo, newMockProductRepo())
	userID := uuid.New()
	cart, _ := cartRepo.GetOrCreateCart(context.Background(), userID)

	for i := 0; i < 2; i++ {
		item := &model.CartItem{ID: uuid.New(), CartID: cart.ID, Name: "Apple", Quantity: 1}
		cartRepo.items[item.ID] = item
	}
	keep := &model.CartItem{ID: uuid.New(), CartID: cart.ID, Name: "Rice", Quantity: 1}
	cartRepo.items[keep.ID] = keep

	require.NoError(t, svc.RemoveItem(context.Background(), userID, "Apple"))
	assert.Len(t, cartRepo.items, 1)
}

func TestCartService_RemoveItem_NotFound(t *testing.T) {
	svc := NewCartService(newMockCartRepo(), newMockProductRepo())
	err := svc.RemoveItem(context.Background(), uuid.New(), "Apple")
	assert.ErrorIs(t, err, ErrCartItemNotFound)
}

func TestCartService_GetCart_EmptyForNewUser(t *testing.T) {
	svc := NewCartService(newMockCartRepo(), newMockProductRepo())
	cart, err := svc.GetCart(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}
