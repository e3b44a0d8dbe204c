package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pos-sync/internal/domain"
	"github.com/jhoicas/pos-sync/internal/domain/entity"
	"github.com/jhoicas/pos-sync/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, business_id, name, barcode, price, cost, stock, min_stock, category_id, image, type, active, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un producto conservando el ID recibido.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.BusinessID, p.Name, p.Barcode, p.Price, p.Cost, p.Stock, p.MinStock,
		p.CategoryID, p.Image, p.Type, p.Active, p.CreatedAt, p.UpdatedAt,
	)
	return mapError("insert product", err)
}

// GetByID obtiene un producto del negocio. Devuelve nil, nil si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, businessID, id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND business_id = $2`
	p, err := scanProduct(r.q.QueryRow(ctx, query, id, businessID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// ListByBusiness lista el catálogo completo del negocio ordenado por nombre.
func (r *ProductRepo) ListByBusiness(ctx context.Context, businessID string) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE business_id = $1 ORDER BY name, id`
	rows, err := r.q.Query(ctx, query, businessID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// AdjustStock aplica stock = stock + delta sin verificar existencia.
func (r *ProductRepo) AdjustStock(ctx context.Context, businessID, id string, delta int64) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE products SET stock = stock + $3, updated_at = now() WHERE id = $1 AND business_id = $2`,
		id, businessID, delta,
	)
	if err != nil {
		return mapError("adjust stock", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteByBusiness borra todos los productos del negocio.
func (r *ProductRepo) DeleteByBusiness(ctx context.Context, businessID string) (int64, error) {
	cmd, err := r.q.Exec(ctx, `DELETE FROM products WHERE business_id = $1`, businessID)
	if err != nil {
		return 0, mapError("delete products", err)
	}
	return cmd.RowsAffected(), nil
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.BusinessID, &p.Name, &p.Barcode, &p.Price, &p.Cost, &p.Stock, &p.MinStock,
		&p.CategoryID, &p.Image, &p.Type, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
