package repository

import (
	"context"

	"github.com/jhoicas/pos-sync/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, businessID, id string) (*entity.Product, error)
	ListByBusiness(ctx context.Context, businessID string) ([]*entity.Product, error)
	// AdjustStock suma delta al stock sin verificar existencia (stock = stock + delta).
	// Devuelve domain.ErrNotFound si el producto no existe en el negocio.
	AdjustStock(ctx context.Context, businessID, id string, delta int64) error
	// DeleteByBusiness elimina todo el catálogo del negocio y devuelve cuántos productos borró.
	DeleteByBusiness(ctx context.Context, businessID string) (int64, error)
}
