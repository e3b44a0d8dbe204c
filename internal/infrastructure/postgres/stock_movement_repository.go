package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/pos-sync/internal/domain/entity"
	"github.com/jhoicas/pos-sync/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo persiste la auditoría de stock.
type StockMovementRepo struct {
	q Querier
}

func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO stock_movements (id, business_id, product_id, user_id, type, quantity, reason, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.ID, m.BusinessID, m.ProductID, m.UserID, m.Type, m.Quantity, m.Reason, m.CreatedAt,
	)
	return mapError("insert stock movement", err)
}

func (r *StockMovementRepo) ListByProduct(ctx context.Context, businessID, productID string) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, business_id, product_id, user_id, type, quantity, reason, created_at
		 FROM stock_movements WHERE business_id = $1 AND product_id = $2 ORDER BY seq`,
		businessID, productID)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		if err := rows.Scan(&m.ID, &m.BusinessID, &m.ProductID, &m.UserID, &m.Type, &m.Quantity, &m.Reason, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
