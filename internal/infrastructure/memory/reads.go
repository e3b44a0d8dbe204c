package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/pos-sync/internal/domain"
	"github.com/jhoicas/pos-sync/internal/domain/entity"
	"github.com/jhoicas/pos-sync/internal/domain/repository"
)

type categoryRepo struct{ view }

func (r categoryRepo) ListByBusiness(_ context.Context, businessID string) ([]*entity.Category, error) {
	var out []*entity.Category
	err := r.exec(func(st *state) error {
		for _, row := range st.scan(tableCategories, byBusiness(businessID)) {
			out = append(out, categoryFromRow(row))
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

type userRepo struct{ view }

func (r userRepo) ListByBusiness(_ context.Context, businessID string) ([]*entity.User, error) {
	var out []*entity.User
	err := r.exec(func(st *state) error {
		for _, row := range st.scan(tableUsers, byBusiness(businessID)) {
			out = append(out, userFromRow(row))
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

type movementRepo struct{ view }

func (r movementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	return r.exec(func(st *state) error {
		if m.ProductID != nil {
			if _, ok := st.tables[tableProducts][*m.ProductID]; !ok {
				return domain.ErrReferential
			}
		}
		st.put(tableMovements, m.ID, movementRow(m))
		return nil
	})
}

func (r movementRepo) ListByProduct(_ context.Context, businessID, productID string) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	err := r.exec(func(st *state) error {
		rows := st.scan(tableMovements, func(row repository.Row) bool {
			return str(row, "business_id") == businessID && str(row, "product_id") == productID
		})
		for _, row := range rows {
			out = append(out, movementFromRow(row))
		}
		return nil
	})
	return out, err
}
