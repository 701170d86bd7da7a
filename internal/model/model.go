package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type User struct {
	ID        uuid.UUID
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
	Address   string
	City      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Category is the produce category a product belongs to.
type Category string

const (
	CategoryFruit     Category = "fruit"
	CategoryVegetable Category = "vegetable"
	CategoryGrain     Category = "grain"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryFruit, CategoryVegetable, CategoryGrain:
		return true
	}
	return false
}

type Product struct {
	ID        uuid.UUID
	Name      string
	Category  Category
	Price     decimal.Decimal
	Stock     int
	Cities    []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Cart struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Items     []CartItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CartItem snapshots the product name, category and unit price at add time.
// The name is denormalized on purpose: the line survives catalog edits.
type CartItem struct {
	ID        uuid.UUID
	CartID    uuid.UUID
	ProductID uuid.UUID
	Name      string
	Category  Category
	Price     decimal.Decimal
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LineItem is the cart snapshot carried through checkout and onto orders.
type LineItem struct {
	Name     string          `json:"name"`
	Category Category        `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

type Order struct {
	ID              uuid.UUID
	OrderID         string // externally visible reference, e.g. FM-1A2B3C4D
	UserID          uuid.UUID
	PaymentID       uuid.UUID
	Status          OrderStatus
	TotalAmount     decimal.Decimal
	Items           []OrderItem
	ShippingAddress string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type OrderItem struct {
	ID       uuid.UUID
	OrderID  uuid.UUID
	Name     string
	Category Category
	Price    decimal.Decimal
	Quantity int
}

type PaymentStatus string

const (
	PaymentStatusCreated PaymentStatus = "created"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// Payment is a single record per gateway intent. It is created when checkout
// opens the intent and transitioned to paid in place once the signed proof is
// verified, so a replayed payment id can be detected against it.
type Payment struct {
	ID               uuid.UUID
	GatewayOrderID   string
	GatewayPaymentID string
	Signature        string
	Amount           decimal.Decimal
	UserID           uuid.UUID
	Items            []LineItem
	Status           PaymentStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// PaymentMessage is published after a payment is captured and consumed by the
// reconcile worker.
type PaymentMessage struct {
	PaymentID        uuid.UUID `json:"payment_id"`
	GatewayPaymentID string    `json:"gateway_payment_id"`
	UserID           uuid.UUID `json:"user_id"`
}

// Summary aggregates storefront counters for the admin dashboard.
type Summary struct {
	TotalProducts  int
	TotalOrders    int
	OrdersByStatus map[OrderStatus]int
	Revenue        decimal.Decimal
}
