package postgres

import (
	"github.com/jhoicas/pos-sync/internal/application/ports"
	"github.com/jhoicas/pos-sync/internal/domain/repository"
)

var _ ports.Store = (*Store)(nil)

// Store entrega los repositorios atados a un mismo Querier (pool o tx).
type Store struct {
	q Querier
}

// NewStore construye el Store. Fuera de una transacción se le pasa el pool.
func NewStore(q Querier) *Store {
	return &Store{q: q}
}

func (s *Store) Entities() repository.EntityRepository { return NewEntityRepository(s.q) }
func (s *Store) Products() repository.ProductRepository { return NewProductRepository(s.q) }
func (s *Store) Categories() repository.CategoryRepository { return NewCategoryRepository(s.q) }
func (s *Store) Users() repository.UserRepository { return NewUserRepository(s.q) }
func (s *Store) Sales() repository.SaleRepository { return NewSaleRepository(s.q) }
func (s *Store) Movements() repository.StockMovementRepository { return NewStockMovementRepository(s.q) }
func (s *Store) Cancellations() repository.CancellationRepository { return NewCancellationRepository(s.q) }
