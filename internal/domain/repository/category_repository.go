package repository

import (
	"context"

	"github.com/jhoicas/pos-sync/internal/domain/entity"
)

// CategoryRepository define el puerto de lectura de categorías.
type CategoryRepository interface {
	ListByBusiness(ctx context.Context, businessID string) ([]*entity.Category, error)
}
