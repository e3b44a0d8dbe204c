package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-sync/internal/application/ports"
	"github.com/jhoicas/pos-sync/internal/domain"
	"github.com/jhoicas/pos-sync/internal/domain/entity"
)

// FullReplaceResult resultado del reemplazo total del catálogo.
type FullReplaceResult struct {
	Count   int
	Deleted int64
	Failed  []ProductFailure
}

// ProductFailure producto del lote que no se pudo insertar.
type ProductFailure struct {
	Index int
	ID    string
	Err   error
}

// FullReplaceReconciler reemplaza todo el catálogo de un negocio. El dispositivo es la fuente
// de verdad: sus ids se conservan tal cual.
type FullReplaceReconciler struct {
	tx  ports.TxRunner
	log zerolog.Logger
	now func() time.Time
}

// NewFullReplaceReconciler construye el reconciliador.
func NewFullReplaceReconciler(tx ports.TxRunner, log zerolog.Logger) *FullReplaceReconciler {
	return &FullReplaceReconciler{tx: tx, log: log, now: time.Now}
}

// Replace borra los productos del negocio e inserta los recibidos dentro de una transacción.
// Cada insert corre en su propio savepoint: un producto inválido se registra y se omite.
func (r *FullReplaceReconciler) Replace(ctx context.Context, businessID string, products []map[string]any) (*FullReplaceResult, error) {
	if businessID == "" {
		return nil, fmt.Errorf("%w: businessId requerido", domain.ErrInvalidInput)
	}
	now := r.now().UTC()

	var res *FullReplaceResult
	err := r.tx.Run(ctx, func(tx ports.Tx) error {
		res = &FullReplaceResult{}
		deleted, err := tx.Products().DeleteByBusiness(ctx, businessID)
		if err != nil {
			return fmt.Errorf("vaciar catálogo: %w", err)
		}
		res.Deleted = deleted

		for i, raw := range products {
			p, err := productFromPayload(businessID, raw, now)
			if err == nil {
				err = tx.Savepoint(ctx, func(s ports.Store) error {
					return s.Products().Create(ctx, p)
				})
			}
			if err != nil {
				id, _ := asString(raw["id"])
				res.Failed = append(res.Failed, ProductFailure{Index: i, ID: id, Err: err})
				r.log.Warn().Err(err).Int("index", i).Str("product_id", id).Msg("producto omitido en reemplazo total")
				continue
			}
			res.Count++
		}
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}
	r.log.Info().
		Str("business_id", businessID).
		Int64("deleted", res.Deleted).
		Int("inserted", res.Count).
		Int("failed", len(res.Failed)).
		Msg("catálogo reemplazado")
	return res, nil
}

// productFromPayload aplica defaults: cost=0, stock=0, min_stock=5, active=true, timestamps=now.
func productFromPayload(businessID string, m map[string]any, now time.Time) (*entity.Product, error) {
	if m == nil {
		return nil, errors.New("producto vacío")
	}
	p := &entity.Product{
		BusinessID: businessID,
		Cost:       decimal.Zero,
		MinStock:   entity.DefaultMinStock,
		Type:       entity.DefaultProductType,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	var err error

	id, ok := asString(m["id"])
	if !ok {
		id = uuid.NewString()
	}
	p.ID = id

	name, ok := asString(m["name"])
	if !ok {
		return nil, errors.New("falta name")
	}
	p.Name = name

	if v, ok := m["price"]; ok && v != nil {
		if p.Price, err = asDecimal(v); err != nil {
			return nil, fmt.Errorf("price: %v", err)
		}
	}
	if v, ok := m["cost"]; ok && v != nil {
		if p.Cost, err = asDecimal(v); err != nil {
			return nil, fmt.Errorf("cost: %v", err)
		}
	}
	if v, ok := m["stock"]; ok && v != nil {
		if p.Stock, err = asInt(v); err != nil {
			return nil, fmt.Errorf("stock: %v", err)
		}
	}
	if v, ok := firstOf(m, "min_stock", "minStock"); ok && v != nil {
		if p.MinStock, err = asInt(v); err != nil {
			return nil, fmt.Errorf("min_stock: %v", err)
		}
	}
	if v, ok := m["active"]; ok && v != nil {
		if p.Active, err = asBool(v); err != nil {
			return nil, fmt.Errorf("active: %v", err)
		}
	}
	if s, ok := asString(m["barcode"]); ok {
		p.Barcode = &s
	}
	if v, _ := firstOf(m, "category_id", "categoryId"); v != nil {
		if s, ok := asString(v); ok {
			p.CategoryID = &s
		}
	}
	if s, ok := asString(m["image"]); ok {
		p.Image = &s
	}
	if s, ok := asString(m["type"]); ok {
		p.Type = s
	}
	if v, ok := firstOf(m, "created_at", "createdAt"); ok && v != nil {
		if p.CreatedAt, err = asTime(v); err != nil {
			return nil, fmt.Errorf("created_at: %v", err)
		}
	}
	if v, ok := firstOf(m, "updated_at", "updatedAt"); ok && v != nil {
		if p.UpdatedAt, err = asTime(v); err != nil {
			return nil, fmt.Errorf("updated_at: %v", err)
		}
	}
	return p, nil
}
