package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/farmtech/farm-market-api/internal/model"
)

type StatsRepository interface {
	Summary(ctx context.Context) (*model.Summary, error)
}

type pgStatsRepo struct{ pool *pgxpool.Pool }

func NewStatsRepository(pool *pgxpool.Pool) StatsRepository {
	return &pgStatsRepo{pool: pool}
}

func (r *pgStatsRepo) Summary(ctx context.Context) (*model.Summary, error) {
	s := &model.Summary{OrdersByStatus: make(map[model.OrderStatus]int)}

	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&s.TotalProducts); err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&s.TotalOrders); err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}

	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count orders by status: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status model.OrderStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		s.OrdersByStatus[status] = count
	}

	err = r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE status <> $1`, model.OrderStatusCancelled,
	).Scan(&s.Revenue)
	if err != nil {
		return nil, fmt.Errorf("sum revenue: %w", err)
	}
	return s, nil
}
