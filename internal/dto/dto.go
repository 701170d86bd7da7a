package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/farmtech/farm-market-api/internal/model"
)

// --- Auth ---

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Address   string `json:"address"`
	City      string `json:"city"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
}

// --- Product ---

type CreateProductRequest struct {
	Name     string          `json:"name" binding:"required"`
	Category string          `json:"category" binding:"required,oneof=fruit vegetable grain"`
	Price    decimal.Decimal `json:"price" binding:"required"`
	Stock    int             `json:"stock" binding:"min=0"`
	Cities   []string        `json:"cities"`
}

type UpdateProductRequest struct {
	Name   *string          `json:"name"`
	Price  *decimal.Decimal `json:"price"`
	Stock  *int             `json:"stock"`
	Cities *[]string        `json:"cities"`
}

type ListProductsRequest struct {
	Page     int    `form:"page,default=1" binding:"min=1"`
	Limit    int    `form:"limit,default=20" binding:"min=1,max=100"`
	Search   string `form:"search"`
	Category string `form:"category" binding:"omitempty,oneof=fruit vegetable grain"`
	City     string `form:"city"`
	Sort     string `form:"sort,default=created_at" binding:"oneof=name price created_at"`
	Order    string `form:"order,default=desc" binding:"oneof=asc desc"`
}

type ProductResponse struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Category  model.Category  `json:"category"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	Cities    []string        `json:"cities"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
}

// --- Cart ---

type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"omitempty,min=1"`
}

type CartResponse struct {
	ID    uuid.UUID          `json:"id"`
	Items []CartItemResponse `json:"items"`
}

type CartItemResponse struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Category model.Category  `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// --- Payment ---

type LineItemRequest struct {
	Name     string          `json:"name" binding:"required"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price" binding:"required"`
	Quantity int             `json:"quantity" binding:"required,min=1"`
}

type CheckoutRequest struct {
	Amount    decimal.Decimal   `json:"amount" binding:"required"`
	CartItems []LineItemRequest `json:"cart_items" binding:"required,dive"`
}

type CheckoutResponse struct {
	OrderID   string            `json:"order_id"` // gateway intent id
	Amount    decimal.Decimal   `json:"amount"`
	Currency  string            `json:"currency"`
	CartItems []LineItemRequest `json:"cart_items"`
}

type VerifyPaymentRequest struct {
	OrderID   string            `json:"order_id" binding:"required"`
	PaymentID string            `json:"payment_id" binding:"required"`
	Signature string            `json:"signature" binding:"required"`
	Amount    decimal.Decimal   `json:"amount" binding:"required"`
	CartItems []LineItemRequest `json:"cart_items"`
}

type VerifyPaymentResponse struct {
	Success bool          `json:"success"`
	Order   OrderResponse `json:"order"`
}

// --- Order ---

type CreateOrderRequest struct {
	UserID          uuid.UUID         `json:"user_id" binding:"required"`
	Items           []LineItemRequest `json:"items" binding:"required,dive"`
	TotalAmount     decimal.Decimal   `json:"total_amount" binding:"required"`
	ShippingAddress string            `json:"shipping_address"`
}

type UpdateOrderStatusRequest struct {
	OrderStatus string `json:"order_status" binding:"required"`
}

type OrderResponse struct {
	ID              uuid.UUID           `json:"id"`
	OrderID         string              `json:"order_id"`
	UserID          uuid.UUID           `json:"user_id"`
	Status          model.OrderStatus   `json:"status"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	Items           []OrderItemResponse `json:"items"`
	ShippingAddress string              `json:"shipping_address"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

type OrderItemResponse struct {
	Name     string          `json:"name"`
	Category model.Category  `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
	Total  int             `json:"total"`
}

// --- Admin ---

type SummaryResponse struct {
	TotalProducts  int                       `json:"total_products"`
	TotalOrders    int                       `json:"total_orders"`
	OrdersByStatus map[model.OrderStatus]int `json:"orders_by_status"`
	Revenue        decimal.Decimal           `json:"revenue"`
}
