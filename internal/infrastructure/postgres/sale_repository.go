package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pos-sync/internal/domain"
	"github.com/jhoicas/pos-sync/internal/domain/entity"
	"github.com/jhoicas/pos-sync/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

const saleColumns = `id, business_id, user_id, client_sale_id, total, payment_method, status, cancelled, cancelled_at, cancellation_id, created_at`

// SaleRepo persiste encabezados y líneas de venta.
type SaleRepo struct {
	q Querier
}

func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create inserta el encabezado. La unicidad (business_id, client_sale_id) la garantiza la DB.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	query := `INSERT INTO sales (` + saleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.BusinessID, s.UserID, s.ClientSaleID, s.Total, s.PaymentMethod, s.Status,
		s.Cancelled, s.CancelledAt, s.CancellationID, s.CreatedAt,
	)
	return mapError("insert sale", err)
}

func (r *SaleRepo) GetByID(ctx context.Context, businessID, id string) (*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE id = $1 AND business_id = $2`
	return r.getOne(ctx, query, id, businessID)
}

// FindByClientSaleID busca la venta ya registrada con esa clave de idempotencia.
func (r *SaleRepo) FindByClientSaleID(ctx context.Context, businessID, clientSaleID string) (*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE business_id = $1 AND client_sale_id = $2`
	return r.getOne(ctx, query, businessID, clientSaleID)
}

func (r *SaleRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Sale, error) {
	var s entity.Sale
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&s.ID, &s.BusinessID, &s.UserID, &s.ClientSaleID, &s.Total, &s.PaymentMethod, &s.Status,
		&s.Cancelled, &s.CancelledAt, &s.CancellationID, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	return &s, nil
}

func (r *SaleRepo) CreateItem(ctx context.Context, it *entity.SaleItem) error {
	query := `INSERT INTO sale_items (id, sale_id, product_id, product_name, quantity, price, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		it.ID, it.SaleID, it.ProductID, it.ProductName, it.Quantity, it.UnitPrice, it.Subtotal,
	)
	return mapError("insert sale item", err)
}

// ListItems devuelve las líneas en el orden en que se insertaron.
func (r *SaleRepo) ListItems(ctx context.Context, saleID string) ([]*entity.SaleItem, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, sale_id, product_id, product_name, quantity, price, subtotal
		 FROM sale_items WHERE sale_id = $1 ORDER BY seq`, saleID)
	if err != nil {
		return nil, fmt.Errorf("list sale items: %w", err)
	}
	defer rows.Close()
	var list []*entity.SaleItem
	for rows.Next() {
		var it entity.SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice, &it.Subtotal); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

func (r *SaleRepo) MarkCancelled(ctx context.Context, businessID, saleID, cancellationID string, at time.Time) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE sales SET cancelled = true, status = $3, cancelled_at = $4, cancellation_id = $5
		 WHERE id = $1 AND business_id = $2`,
		saleID, businessID, entity.SaleStatusCancelled, at, cancellationID,
	)
	if err != nil {
		return mapError("cancel sale", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List aplica los filtros con parámetros nulos: un filtro nil no restringe.
func (r *SaleRepo) List(ctx context.Context, f repository.SaleFilter) ([]*entity.Sale, error) {
	var limit *int
	if f.Limit > 0 {
		limit = &f.Limit
	}
	rows, err := r.q.Query(ctx,
		`SELECT `+saleColumns+` FROM sales
		 WHERE business_id = $1
		   AND ($2::boolean IS NULL OR cancelled = $2)
		   AND ($3::timestamptz IS NULL OR created_at >= $3)
		   AND ($4::timestamptz IS NULL OR created_at < $4)
		 ORDER BY created_at DESC, id DESC
		 LIMIT $5`,
		f.BusinessID, f.Cancelled, f.From, f.To, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()
	var list []*entity.Sale
	for rows.Next() {
		var s entity.Sale
		if err := rows.Scan(
			&s.ID, &s.BusinessID, &s.UserID, &s.ClientSaleID, &s.Total, &s.PaymentMethod, &s.Status,
			&s.Cancelled, &s.CancelledAt, &s.CancellationID, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}
