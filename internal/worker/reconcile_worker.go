package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/farmtech/farm-market-api/internal/model"
	"github.com/farmtech/farm-market-api/internal/repository"
	"github.com/farmtech/farm-market-api/internal/service"
)

const (
	capturedQueueName = "payments.captured"
	dlxExchange       = "payments.dlx"
	dlqQueueName      = "payments.dlq"
	idempotencyTTL    = 24 * time.Hour
)

// ReconcileWorker repairs the paid-but-dangling case: a payment marked paid
// whose order never materialized. It rebuilds the order from the payment's
// cart snapshot and clears the user's cart.
type ReconcileWorker struct {
	channel     *amqp.Channel
	paymentRepo repository.PaymentRepository
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	userRepo    repository.UserRepository
	redisClient *redis.Client
	log         *slog.Logger
	done        chan struct{}
}

func NewReconcileWorker(
	ch *amqp.Channel,
	paymentRepo repository.PaymentRepository,
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	userRepo repository.UserRepository,
	redisClient *redis.Client,
	log *slog.Logger,
) *ReconcileWorker {
	return &ReconcileWorker{
		channel:     ch,
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		userRepo:    userRepo,
		redisClient: redisClient,
		log:         log,
		done:        make(chan struct{}),
	}
}

// SetupRabbitMQ declares exchanges, queues, and bindings (DLX/DLQ).
func SetupRabbitMQ(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(dlxExchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare DLX: %w", err)
	}
	if _, err := ch.QueueDeclare(dlqQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare DLQ: %w", err)
	}
	if err := ch.QueueBind(dlqQueueName, capturedQueueName, dlxExchange, false, nil); err != nil {
		return fmt.Errorf("bind DLQ: %w", err)
	}
	if _, err := ch.QueueDeclare(capturedQueueName, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    dlxExchange,
		"x-dead-letter-routing-key": capturedQueueName,
	}); err != nil {
		return fmt.Errorf("declare captured queue: %w", err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set QoS: %w", err)
	}
	return nil
}

func (w *ReconcileWorker) Start(ctx context.Context) error {
	msgs, err := w.channel.Consume(capturedQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				w.processMessage(ctx, msg)
			case <-w.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	w.log.Info("payment reconcile worker started")
	return nil
}

func (w *ReconcileWorker) Stop() { close(w.done) }

func (w *ReconcileWorker) processMessage(ctx context.Context, msg amqp.Delivery) {
	var pm model.PaymentMessage
	if err := json.Unmarshal(msg.Body, &pm); err != nil {
		w.log.Error("unmarshal payment message", "error", err)
		_ = msg.Nack(false, false)
		return
	}

	log := w.log.With("payment_id", pm.PaymentID, "user_id", pm.UserID)

	// Idempotency check via Redis
	idempotencyKey := "payment_reconciled:" + pm.PaymentID.String()
	exists, err := w.redisClient.Exists(ctx, idempotencyKey).Result()
	if err != nil {
		log.Error("check idempotency key", "error", err)
		_ = msg.Nack(false, true)
		return
	}
	if exists > 0 {
		log.Info("payment already reconciled, skipping")
		_ = msg.Ack(false)
		return
	}

	if err := w.reconcile(ctx, pm.PaymentID); err != nil {
		log.Error("reconcile payment failed", "error", err)
		_ = msg.Nack(false, false) // to DLQ
		return
	}

	if err := w.redisClient.Set(ctx, idempotencyKey, "1", idempotencyTTL).Err(); err != nil {
		log.Error("set idempotency key", "error", err)
	}

	_ = msg.Ack(false)
	log.Info("payment reconciled")
}

func (w *ReconcileWorker) reconcile(ctx context.Context, paymentID uuid.UUID) error {
	payment, err := w.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return fmt.Errorf("get payment: %w", err)
	}
	if payment == nil {
		return fmt.Errorf("payment not found: %s", paymentID)
	}
	if payment.Status != model.PaymentStatusPaid {
		// intent was never captured; nothing to repair
		return nil
	}

	order, err := w.orderRepo.GetByPaymentID(ctx, payment.ID)
	if err != nil {
		return fmt.Errorf("get order: %w", err)
	}
	if order != nil {
		return nil
	}

	user, err := w.userRepo.GetByID(ctx, payment.UserID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	address := ""
	if user != nil {
		address = user.Address
		if user.City != "" {
			if address != "" {
				address += ", "
			}
			address += user.City
		}
	}

	cart, err := w.cartRepo.GetOrCreateCart(ctx, payment.UserID)
	if err != nil {
		return fmt.Errorf("get cart: %w", err)
	}

	items := make([]model.OrderItem, 0, len(payment.Items))
	for _, it := range payment.Items {
		items = append(items, model.OrderItem{
			Name: it.Name, Category: it.Category, Price: it.Price, Quantity: it.Quantity,
		})
	}

	tx, err := w.paymentRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	rebuilt := &model.Order{
		OrderID:         service.NewOrderRef(),
		UserID:          payment.UserID,
		PaymentID:       payment.ID,
		Status:          model.OrderStatusProcessing,
		TotalAmount:     payment.Amount,
		Items:           items,
		ShippingAddress: address,
	}
	if err := w.orderRepo.CreateTx(ctx, tx, rebuilt); err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	if err := w.cartRepo.ClearCartTx(ctx, tx, cart.ID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
