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
	"github.com/farmtech/farm-market-api/internal/repository"
)

type mockProductRepo struct {
	products map[uuid.UUID]*model.Product
}

func newMockProductRepo() *mockProductRepo {
	return &mockProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (m *mockProductRepo) Create(_ context.Context, p *model.Product) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	m.products[p.ID] = p
	return nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	return m.products[id], nil
}

func (m *mockProductRepo) List(_ context.Context, f repository.ProductFilter) ([]model.Product, int, error) {
	var all []model.Product
	for _, p := range m.products {
		if f.Category != "" && string(p.Category) != f.Category {
			continue
		}
		all = append(all, *p)
	}
	return all, len(all), nil
}

func (m *mockProductRepo) Update(_ context.Context, p *model.Product) error {
	m.products[p.ID] = p
	return nil
}

func (m *mockProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.products[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.products, id)
	return nil
}

func TestProductService_Create(t *testing.T) {
	svc := NewProductService(newMockProductRepo(), nil)
	resp, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Name: "Alphonso Mango", Category: "fruit",
		Price: decimal.NewFromFloat(120), Stock: 40,
		Cities: []string{"Mumbai", "Pune"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Alphonso Mango", resp.Name)
	assert.Equal(t, model.CategoryFruit, resp.Category)
	assert.Equal(t, 40, resp.Stock)
	assert.Equal(t, []string{"Mumbai", "Pune"}, resp.Cities)
}

func TestProductService_GetByID_NotFound(t *testing.T) {
	svc := NewProductService(newMockProductRepo(), nil)
	_, err := svc.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductService_List_CategoryFilter(t *testing.T) {
	repo := newMockProductRepo()
	svc := NewProductService(repo, nil)
	for _, c := range []model.Category{model.CategoryFruit, model.CategoryGrain} {
		p := &model.Product{Name: string(c), Category: c, Price: decimal.NewFromInt(10), Stock: 5}
		require.NoError(t, repo.Create(context.Background(), p))
	}

	resp, err := svc.List(context.Background(), dto.ListProductsRequest{Page: 1, Limit: 20, Category: "grain"})
	require.NoError(t, err)
	require.Len(t, resp.Products, 1)
	assert.Equal(t, model.CategoryGrain, resp.Products[0].Category)
}

func TestProductService_Delete(t *testing.T) {
	repo := newMockProductRepo()
	id := uuid.New()
	repo.products[id] = &model.Product{ID: id}
	svc := NewProductService(repo, nil)
	err := svc.Delete(context.Background(), id)
	require.NoError(t, err)
	assert.Empty(t, repo.products)
}

func TestProductService_Delete_NotFound(t *testing.T) {
	svc := NewProductService(newMockProductRepo(), nil)
	err := svc.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrProductNotFound)
}
