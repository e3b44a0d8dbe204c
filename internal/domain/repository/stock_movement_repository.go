package repository

import (
	"context"

	"github.com/jhoicas/pos-sync/internal/domain/entity"
)

// StockMovementRepository persiste la auditoría de movimientos de stock.
type StockMovementRepository interface {
	Create(ctx context.Context, m *entity.StockMovement) error
	ListByProduct(ctx context.Context, businessID, productID string) ([]*entity.StockMovement, error)
}
