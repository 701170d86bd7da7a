package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/farmtech/farm-market-api/internal/model"
	"github.com/farmtech/farm-market-api/internal/repository"
)

var (
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrOutOfStock       = errors.New("product out of stock")
)

type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) *CartService {
	return &CartService{cartRepo: cartRepo, productRepo: productRepo}
}

func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	cart, err := s.cartRepo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get or create cart: %w", err)
	}
	withItems, err := s.cartRepo.GetCartWithItems(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("get cart items: %w", err)
	}
	if withItems == nil {
		// cart row vanished between the two reads; an empty cart is the
		// correct answer either way
		return cart, nil
	}
	return withItems, nil
}

// AddItem appends a line snapshotting the product's name, category and price.
// The quantity is clamped to the stock available at add time.
func (s *CartService) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*model.CartItem, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if product.Stock == 0 {
		return nil, ErrOutOfStock
	}

	if quantity < 1 {
		quantity = 1
	}
	if quantity > product.Stock {
		quantity = product.Stock
	}

	cart, err := s.cartRepo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get or create cart: %w", err)
	}

	item := &model.CartItem{
		CartID:    cart.ID,
		ProductID: productID,
		Name:      product.Name,
		Category:  product.Category,
		Price:     product.Price,
		Quantity:  quantity,
	}
	if err := s.cartRepo.AddItem(ctx, item); err != nil {
		return nil, fmt.Errorf("add cart item: %w", err)
	}
	return item, nil
}

// RemoveItem deletes every cart line whose snapshotted name matches.
func (s *CartService) RemoveItem(ctx context.Context, userID uuid.UUID, name string) error {
	cart, err := s.cartRepo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return fmt.Errorf("get cart: %w", err)
	}
	removed, err := s.cartRepo.RemoveItemsByName(ctx, cart.ID, name)
	if err != nil {
		return fmt.Errorf("remove cart items: %w", err)
	}
	if removed == 0 {
		return ErrCartItemNotFound
	}
	return nil
}
