package ports

import (
	"context"

	"github.com/jhoicas/pos-sync/internal/domain/repository"
)

// Store agrupa los repositorios atados a una misma conexión (pool o transacción).
type Store interface {
	Entities() repository.EntityRepository
	Products() repository.ProductRepository
	Categories() repository.CategoryRepository
	Users() repository.UserRepository
	Sales() repository.SaleRepository
	Movements() repository.StockMovementRepository
	Cancellations() repository.CancellationRepository
}

// Tx es un Store dentro de una transacción.
type Tx interface {
	Store
	// Savepoint ejecuta fn bajo un punto de guardado: si fn falla se deshace solo lo hecho dentro
	// y la transacción externa sigue utilizable.
	Savepoint(ctx context.Context, fn func(Store) error) error
}

// TxRunner ejecuta fn dentro de una transacción: Commit si fn devuelve nil, Rollback en otro caso.
type TxRunner interface {
	Run(ctx context.Context, fn func(tx Tx) error) error
}
