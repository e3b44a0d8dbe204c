package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/pos-sync/internal/domain"
	"github.com/jhoicas/pos-sync/internal/domain/entity"
	"github.com/jhoicas/pos-sync/internal/domain/repository"
)

type productRepo struct{ view }

func (r productRepo) Create(_ context.Context, p *entity.Product) error {
	return r.exec(func(st *state) error {
		if _, exists := st.tables[tableProducts][p.ID]; exists {
			return domain.ErrDuplicate
		}
		st.put(tableProducts, p.ID, productRow(p))
		return nil
	})
}

func (r productRepo) GetByID(_ context.Context, businessID, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.exec(func(st *state) error {
		if rec, ok := st.tables[tableProducts][id]; ok && str(rec.row, "business_id") == businessID {
			out = productFromRow(rec.row)
		}
		return nil
	})
	return out, err
}

func (r productRepo) ListByBusiness(_ context.Context, businessID string) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.exec(func(st *state) error {
		for _, row := range st.scan(tableProducts, byBusiness(businessID)) {
			out = append(out, productFromRow(row))
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

func (r productRepo) AdjustStock(_ context.Context, businessID, id string, delta int64) error {
	return r.exec(func(st *state) error {
		rec, ok := st.tables[tableProducts][id]
		if !ok || str(rec.row, "business_id") != businessID {
			return domain.ErrNotFound
		}
		rec.row["stock"] = i64(rec.row, "stock") + delta
		rec.row["updated_at"] = time.Now().UTC()
		return nil
	})
}

func (r productRepo) DeleteByBusiness(_ context.Context, businessID string) (int64, error) {
	var n int64
	err := r.exec(func(st *state) error {
		for id, rec := range st.tables[tableProducts] {
			if str(rec.row, "business_id") == businessID {
				deleteRow(st, tableProducts, id)
				n++
			}
		}
		return nil
	})
	return n, err
}

func byBusiness(businessID string) func(repository.Row) bool {
	return func(row repository.Row) bool { return str(row, "business_id") == businessID }
}
