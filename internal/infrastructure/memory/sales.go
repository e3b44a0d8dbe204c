package memory

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/jhoicas/pos-sync/internal/domain"
	"github.com/jhoicas/pos-sync/internal/domain/entity"
	"github.com/jhoicas/pos-sync/internal/domain/repository"
)

type saleRepo struct{ view }

func (r saleRepo) Create(_ context.Context, s *entity.Sale) error {
	return r.exec(func(st *state) error {
		if _, exists := st.tables[tableSales][s.ID]; exists {
			return domain.ErrDuplicate
		}
		if s.ClientSaleID != nil && clientSaleTaken(st, s.BusinessID, *s.ClientSaleID, s.ID) {
			return domain.ErrDuplicate
		}
		st.put(tableSales, s.ID, saleRow(s))
		return nil
	})
}

func (r saleRepo) GetByID(_ context.Context, businessID, id string) (*entity.Sale, error) {
	var out *entity.Sale
	err := r.exec(func(st *state) error {
		if rec, ok := st.tables[tableSales][id]; ok && str(rec.row, "business_id") == businessID {
			out = saleFromRow(rec.row)
		}
		return nil
	})
	return out, err
}

func (r saleRepo) FindByClientSaleID(_ context.Context, businessID, clientSaleID string) (*entity.Sale, error) {
	var out *entity.Sale
	err := r.exec(func(st *state) error {
		rows := st.scan(tableSales, func(row repository.Row) bool {
			return str(row, "business_id") == businessID && str(row, "client_sale_id") == clientSaleID
		})
		if len(rows) > 0 {
			out = saleFromRow(rows[0])
		}
		return nil
	})
	return out, err
}

func (r saleRepo) CreateItem(_ context.Context, it *entity.SaleItem) error {
	return r.exec(func(st *state) error {
		if _, ok := st.tables[tableSales][it.SaleID]; !ok {
			return domain.ErrReferential
		}
		if it.ProductID != nil {
			if _, ok := st.tables[tableProducts][*it.ProductID]; !ok {
				return domain.ErrReferential
			}
		}
		if _, exists := st.tables[tableSaleItems][it.ID]; exists {
			return domain.ErrDuplicate
		}
		st.put(tableSaleItems, it.ID, saleItemRow(it))
		return nil
	})
}

func (r saleRepo) ListItems(_ context.Context, saleID string) ([]*entity.SaleItem, error) {
	var out []*entity.SaleItem
	err := r.exec(func(st *state) error {
		for _, row := range st.scan(tableSaleItems, func(row repository.Row) bool { return str(row, "sale_id") == saleID }) {
			out = append(out, saleItemFromRow(row))
		}
		return nil
	})
	return out, err
}

func (r saleRepo) MarkCancelled(_ context.Context, businessID, saleID, cancellationID string, at time.Time) error {
	return r.exec(func(st *state) error {
		rec, ok := st.tables[tableSales][saleID]
		if !ok || str(rec.row, "business_id") != businessID {
			return domain.ErrNotFound
		}
		rec.row["cancelled"] = true
		rec.row["status"] = entity.SaleStatusCancelled
		rec.row["cancelled_at"] = at
		rec.row["cancellation_id"] = cancellationID
		return nil
	})
}

func (r saleRepo) List(_ context.Context, f repository.SaleFilter) ([]*entity.Sale, error) {
	var out []*entity.Sale
	err := r.exec(func(st *state) error {
		for _, row := range st.scan(tableSales, byBusiness(f.BusinessID)) {
			s := saleFromRow(row)
			if f.Cancelled != nil && s.Cancelled != *f.Cancelled {
				continue
			}
			if !inRange(s.CreatedAt, f.From, f.To) {
				continue
			}
			out = append(out, s)
		}
		return nil
	})
	// scan entrega orden de inserción: a igual fecha queda primero la última insertada.
	slices.Reverse(out)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, err
}

func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	return to == nil || t.Before(*to)
}
