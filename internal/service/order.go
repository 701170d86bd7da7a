package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/farmtech/farm-market-api/internal/dto"
	"github.com/farmtech/farm-market-api/internal/model"
	"github.com/farmtech/farm-market-api/internal/repository"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderAccessDenied = errors.New("access denied")
	ErrInvalidStatus     = errors.New("unknown order status")
	ErrInvalidTransition = errors.New("illegal status transition")
	ErrOrderDelivered    = errors.New("order already delivered")
)

type OrderService struct {
	orderRepo repository.OrderRepository
	userRepo  repository.UserRepository
	statsRepo repository.StatsRepository
}

func NewOrderService(orderRepo repository.OrderRepository, userRepo repository.UserRepository, statsRepo repository.StatsRepository) *OrderService {
	return &OrderService{orderRepo: orderRepo, userRepo: userRepo, statsRepo: statsRepo}
}

// CreateOrder is the direct creation path used by staff. Orders created this
// way enter at Pending; verified payments create theirs at Processing.
func (s *OrderService) CreateOrder(ctx context.Context, req dto.CreateOrderRequest) (*model.Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}

	address := req.ShippingAddress
	if address == "" {
		user, err := s.userRepo.GetByID(ctx, req.UserID)
		if err != nil {
			return nil, fmt.Errorf("get user: %w", err)
		}
		if user == nil {
			return nil, ErrOrderAccessDenied
		}
		address = shippingAddress(user)
	}

	order := &model.Order{
		OrderID:         NewOrderRef(),
		UserID:          req.UserID,
		Status:          model.OrderStatusPending,
		TotalAmount:     req.TotalAmount,
		Items:           toOrderItems(req.Items),
		ShippingAddress: address,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return order, nil
}

// UpdateStatus moves an order one stage forward. The transition table in the
// model decides legality; the repository write is a compare-and-set so a
// concurrent update cannot sneak a stage past the check.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, statusStr string) (*model.Order, error) {
	next, err := model.ParseOrderStatus(statusStr)
	if err != nil {
		return nil, ErrInvalidStatus
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, ErrInvalidTransition
	}

	moved, err := s.orderRepo.UpdateStatus(ctx, orderID, order.Status, next)
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	if !moved {
		return nil, ErrInvalidTransition
	}
	order.Status = next
	return order, nil
}

// Cancel transitions to Cancelled from any non-Delivered state. Cancelling an
// already cancelled order is a no-op.
func (s *OrderService) Cancel(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status == model.OrderStatusDelivered {
		return nil, ErrOrderDelivered
	}
	if order.Status == model.OrderStatusCancelled {
		return order, nil
	}

	moved, err := s.orderRepo.UpdateStatus(ctx, orderID, order.Status, model.OrderStatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("cancel order: %w", err)
	}
	if !moved {
		return nil, ErrOrderDelivered
	}
	order.Status = model.OrderStatusCancelled
	return order, nil
}

func (s *OrderService) GetByID(ctx context.Context, orderID, userID uuid.UUID, admin bool) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if !admin && order.UserID != userID {
		return nil, ErrOrderAccessDenied
	}
	return order, nil
}

func (s *OrderService) ListByUserID(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	return s.orderRepo.ListByUserID(ctx, userID)
}

func (s *OrderService) ListAll(ctx context.Context) ([]model.Order, error) {
	return s.orderRepo.ListAll(ctx)
}

func (s *OrderService) Latest(ctx context.Context, userID uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetLatestByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get latest order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) Summary(ctx context.Context) (*model.Summary, error) {
	return s.statsRepo.Summary(ctx)
}

// NewOrderRef builds the externally visible order reference.
func NewOrderRef() string {
	return "FM-" + strings.ToUpper(uuid.NewString()[:8])
}

func shippingAddress(user *model.User) string {
	if user.Address == "" {
		return user.City
	}
	if user.City == "" {
		return user.Address
	}
	return user.Address + ", " + user.City
}

func toOrderItems(items []dto.LineItemRequest) []model.OrderItem {
	out := make([]model.OrderItem, 0, len(items))
	for _, it := range items {
		out = append(out, model.OrderItem{
			Name:     it.Name,
			Category: model.Category(it.Category),
			Price:    it.Price,
			Quantity: it.Quantity,
		})
	}
	return out
}
