package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/farmtech/farm-market-api/internal/dto"
	"github.com/farmtech/farm-market-api/internal/model"
	"github.com/farmtech/farm-market-api/internal/repository"
)

var (
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrAmountMismatch    = errors.New("amount does not match payment intent")
	ErrPaymentNotFound   = errors.New("payment not found")
	ErrInvalidSignature  = errors.New("payment signature verification failed")
	ErrDuplicatePayment  = errors.New("payment id already consumed")
	ErrCaptureInProgress = errors.New("payment capture already in progress")
)

const captureLockTTL = 2 * time.Minute

// PaymentGateway is the slice of the gateway client the workflow needs.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amountMinor int64, currency, receipt string) (string, error)
	VerifySignature(intentID, paymentID, signature string) bool
}

type PaymentService struct {
	paymentRepo repository.PaymentRepository
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	userRepo    repository.UserRepository
	gw          PaymentGateway
	currency    string
	redisClient *redis.Client
	amqpCh      *amqp.Channel
	log         *slog.Logger
}

func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	userRepo repository.UserRepository,
	gw PaymentGateway,
	currency string,
	redisClient *redis.Client,
	amqpCh *amqp.Channel,
	log *slog.Logger,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		userRepo:    userRepo,
		gw:          gw,
		currency:    currency,
		redisClient: redisClient,
		amqpCh:      amqpCh,
		log:         log,
	}
}

// Checkout opens a payment intent with the gateway and records a single
// payment row in status created. Nothing else is persisted: a retry after a
// gateway failure is always safe.
func (s *PaymentService) Checkout(ctx context.Context, userID uuid.UUID, req dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	// The gateway wire format is integer minor units, so anything below a
	// paisa cannot be represented and is rejected rather than truncated.
	amountMinor := req.Amount.Shift(2)
	if !amountMinor.IsInteger() {
		return nil, ErrInvalidAmount
	}
	if len(req.CartItems) == 0 {
		return nil, ErrEmptyCart
	}

	receipt := NewOrderRef()
	intentID, err := s.gw.CreateIntent(ctx, amountMinor.IntPart(), s.currency, receipt)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	payment := &model.Payment{
		GatewayOrderID: intentID,
		Amount:         req.Amount,
		UserID:         userID,
		Items:          toLineItems(req.CartItems),
		Status:         model.PaymentStatusCreated,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("record payment intent: %w", err)
	}

	return &dto.CheckoutResponse{
		OrderID:   intentID,
		Amount:    req.Amount,
		Currency:  s.currency,
		CartItems: req.CartItems,
	}, nil
}

// VerifyPayment checks the signed proof of payment and, on success, marks the
// payment paid, creates the order at Processing and clears the user's cart in
// one transaction. The gateway payment id is the idempotency key: replaying a
// proof that was already captured returns the existing order.
func (s *PaymentService) VerifyPayment(ctx context.Context, userID uuid.UUID, req dto.VerifyPaymentRequest) (*model.Order, error) {
	payment, err := s.paymentRepo.GetByGatewayOrderID(ctx, req.OrderID)
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	if payment.UserID != userID {
		return nil, ErrOrderAccessDenied
	}

	// The signature gate comes before everything else, including the replay
	// branch: a consumed payment id plus a forged signature must still fail
	// authentication, not hand back the order.
	if !s.gw.VerifySignature(req.OrderID, req.PaymentID, req.Signature) {
		s.log.Warn("payment signature verification failed",
			"gateway_order_id", req.OrderID,
			"gateway_payment_id", req.PaymentID,
			"user_id", userID,
		)
		return nil, ErrInvalidSignature
	}

	if payment.Status == model.PaymentStatusPaid {
		if payment.GatewayPaymentID != req.PaymentID {
			return nil, ErrDuplicatePayment
		}
		order, err := s.orderRepo.GetByPaymentID(ctx, payment.ID)
		if err != nil {
			return nil, fmt.Errorf("get order for payment: %w", err)
		}
		if order == nil {
			return nil, ErrOrderNotFound
		}
		return order, nil
	}

	if !req.Amount.Equal(payment.Amount) {
		return nil, ErrAmountMismatch
	}

	consumed, err := s.paymentRepo.GetByGatewayPaymentID(ctx, req.PaymentID)
	if err != nil {
		return nil, fmt.Errorf("check payment id: %w", err)
	}
	if consumed != nil {
		return nil, ErrDuplicatePayment
	}

	unlock, err := s.acquireCaptureLock(ctx, req.PaymentID)
	if err != nil {
		return nil, err
	}

	order, err := s.capture(ctx, userID, payment, req)
	if err != nil {
		unlock()
		return nil, err
	}

	s.publishCaptured(ctx, payment, req.PaymentID)
	return order, nil
}

func (s *PaymentService) capture(ctx context.Context, userID uuid.UUID, payment *model.Payment, req dto.VerifyPaymentRequest) (*model.Order, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrOrderAccessDenied
	}

	items := toLineItems(req.CartItems)
	if len(items) == 0 {
		items = payment.Items
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	cart, err := s.cartRepo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	tx, err := s.paymentRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.paymentRepo.MarkPaidTx(ctx, tx, payment.ID, req.PaymentID, req.Signature); err != nil {
		return nil, fmt.Errorf("mark payment paid: %w", err)
	}

	order := &model.Order{
		OrderID:         NewOrderRef(),
		UserID:          userID,
		PaymentID:       payment.ID,
		Status:          model.OrderStatusProcessing,
		TotalAmount:     payment.Amount,
		Items:           lineItemsToOrderItems(items),
		ShippingAddress: shippingAddress(user),
	}
	if err := s.orderRepo.CreateTx(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := s.cartRepo.ClearCartTx(ctx, tx, cart.ID); err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return order, nil
}

// acquireCaptureLock serializes concurrent verifications of the same payment
// id (double click, client retry). The returned func releases the lock on
// failure; on success the key ages out on its own.
func (s *PaymentService) acquireCaptureLock(ctx context.Context, paymentID string) (func(), error) {
	if s.redisClient == nil {
		return func() {}, nil
	}
	key := "payment_capture:" + paymentID
	ok, err := s.redisClient.SetNX(ctx, key, "1", captureLockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire capture lock: %w", err)
	}
	if !ok {
		return nil, ErrCaptureInProgress
	}
	return func() { s.redisClient.Del(ctx, key) }, nil
}

func (s *PaymentService) publishCaptured(ctx context.Context, payment *model.Payment, gatewayPaymentID string) {
	if s.amqpCh == nil {
		return
	}
	msg, _ := json.Marshal(model.PaymentMessage{
		PaymentID:        payment.ID,
		GatewayPaymentID: gatewayPaymentID,
		UserID:           payment.UserID,
	})
	_ = s.amqpCh.PublishWithContext(ctx, "", "payments.captured", false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         msg,
		DeliveryMode: amqp.Persistent,
	})
}

func toLineItems(items []dto.LineItemRequest) []model.LineItem {
	out := make([]model.LineItem, 0, len(items))
	for _, it := range items {
		out = append(out, model.LineItem{
			Name:     it.Name,
			Category: model.Category(it.Category),
			Price:    it.Price,
			Quantity: it.Quantity,
		})
	}
	return out
}

func lineItemsToOrderItems(items []model.LineItem) []model.OrderItem {
	out := make([]model.OrderItem, 0, len(items))
	for _, it := range items {
		out = append(out, model.OrderItem{
			Name:     it.Name,
			Category: it.Category,
			Price:    it.Price,
			Quantity: it.Quantity,
		})
	}
	return out
}
