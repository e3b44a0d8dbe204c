package repository

import (
	"context"
	"time"

	"github.com/jhoicas/pos-sync/internal/domain/entity"
)

// SaleRepository define el puerto de persistencia para ventas y sus líneas.
type SaleRepository interface {
	// Create inserta el encabezado. Devuelve domain.ErrDuplicate si (business_id, client_sale_id) ya existe.
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, businessID, id string) (*entity.Sale, error)
	FindByClientSaleID(ctx context.Context, businessID, clientSaleID string) (*entity.Sale, error)
	// CreateItem inserta una línea. Devuelve domain.ErrReferential si el producto no existe.
	CreateItem(ctx context.Context, item *entity.SaleItem) error
	ListItems(ctx context.Context, saleID string) ([]*entity.SaleItem, error)
	MarkCancelled(ctx context.Context, businessID, saleID, cancellationID string, at time.Time) error
	// List devuelve las ventas del negocio, más recientes primero.
	List(ctx context.Context, filter SaleFilter) ([]*entity.Sale, error)
}

// SaleFilter acota el listado de ventas. From y To limitan created_at en [From, To); nil no filtra.
type SaleFilter struct {
	BusinessID string
	Cancelled  *bool
	From       *time.Time
	To         *time.Time
	Limit      int
}
