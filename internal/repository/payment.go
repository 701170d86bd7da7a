package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/farmtech/farm-market-api/internal/model"
)

type PaymentRepository interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
	Create(ctx context.Context, payment *model.Payment) error
	GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*model.Payment, error)
	GetByGatewayPaymentID(ctx context.Context, gatewayPaymentID string) (*model.Payment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	MarkPaidTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, gatewayPaymentID, signature string) error
}

type pgPaymentRepo struct{ pool *pgxpool.Pool }

func NewPaymentRepository(pool *pgxpool.Pool) PaymentRepository {
	return &pgPaymentRepo{pool: pool}
}

func (r *pgPaymentRepo) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

func (r *pgPaymentRepo) Create(ctx context.Context, payment *model.Payment) error {
	payment.ID = uuid.New()
	items, err := json.Marshal(payment.Items)
	if err != nil {
		return fmt.Errorf("marshal cart snapshot: %w", err)
	}
	err = r.pool.QueryRow(ctx,
		`INSERT INTO payments (id, gateway_order_id, gateway_payment_id, signature, amount, user_id, items, status, created_at, updated_at)
		 VALUES ($1, $2, '', '', $3, $4, $5, $6, NOW(), NOW()) RETURNING created_at, updated_at`,
		payment.ID, payment.GatewayOrderID, payment.Amount, payment.UserID, items, payment.Status,
	).Scan(&payment.CreatedAt, &payment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

const paymentColumns = `id, gateway_order_id, gateway_payment_id, signature, amount, user_id, items, status, created_at, updated_at`

func (r *pgPaymentRepo) GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*model.Payment, error) {
	return r.getOne(ctx, `SELECT `+paymentColumns+` FROM payments WHERE gateway_order_id = $1`, gatewayOrderID)
}

func (r *pgPaymentRepo) GetByGatewayPaymentID(ctx context.Context, gatewayPaymentID string) (*model.Payment, error) {
	return r.getOne(ctx, `SELECT `+paymentColumns+` FROM payments WHERE gateway_payment_id = $1`, gatewayPaymentID)
}

func (r *pgPaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	return r.getOne(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
}

func (r *pgPaymentRepo) getOne(ctx context.Context, query string, arg any) (*model.Payment, error) {
	p := &model.Payment{}
	var items []byte
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&p.ID, &p.GatewayOrderID, &p.GatewayPaymentID, &p.Signature, &p.Amount,
		&p.UserID, &items, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &p.Items); err != nil {
			return nil, fmt.Errorf("unmarshal cart snapshot: %w", err)
		}
	}
	return p, nil
}

// MarkPaidTx transitions the payment to paid inside the caller's transaction.
// The unique index on gateway_payment_id rejects a second capture that reuses
// a payment id, even under concurrent verification requests.
func (r *pgPaymentRepo) MarkPaidTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, gatewayPaymentID, signature string) error {
	ct, err := tx.Exec(ctx,
		`UPDATE payments SET gateway_payment_id = $2, signature = $3, status = $4, updated_at = NOW()
		 WHERE id = $1 AND status = $5`,
		id, gatewayPaymentID, signature, model.PaymentStatusPaid, model.PaymentStatusCreated,
	)
	if err != nil {
		return fmt.Errorf("mark payment paid: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
