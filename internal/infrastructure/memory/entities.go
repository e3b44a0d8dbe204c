package memory

import (
	"context"
	"fmt"

	"github.com/jhoicas/pos-sync/internal/domain"
	"github.com/jhoicas/pos-sync/internal/domain/repository"
)

type entityRepo struct{ view }

func (r entityRepo) Insert(_ context.Context, table string, row repository.Row) error {
	required, ok := genericTables[table]
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownEntity, table)
	}
	id, _ := row["id"].(string)
	if id == "" {
		return fmt.Errorf("%w: %s.id no puede ser nulo", domain.ErrPersistence, table)
	}
	for _, c := range required {
		if row[c] == nil {
			return fmt.Errorf("%w: %s.%s no puede ser nulo", domain.ErrPersistence, table, c)
		}
	}
	return r.exec(func(st *state) error {
		if _, exists := st.tables[table][id]; exists {
			return domain.ErrDuplicate
		}
		if table == tableSales && clientSaleTaken(st, str(row, "business_id"), str(row, "client_sale_id"), id) {
			return domain.ErrDuplicate
		}
		cp := make(repository.Row, len(row))
		for k, v := range row {
			cp[k] = v
		}
		st.put(table, id, cp)
		return nil
	})
}

func (r entityRepo) Update(_ context.Context, table, businessID, id string, row repository.Row) error {
	if _, ok := genericTables[table]; !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownEntity, table)
	}
	return r.exec(func(st *state) error {
		rec, ok := st.tables[table][id]
		if !ok || str(rec.row, "business_id") != businessID {
			return domain.ErrNotFound
		}
		for k, v := range row {
			if k == "id" || k == "business_id" {
				continue
			}
			rec.row[k] = v
		}
		return nil
	})
}

func (r entityRepo) Delete(_ context.Context, table, businessID, id string) error {
	if _, ok := genericTables[table]; !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownEntity, table)
	}
	return r.exec(func(st *state) error {
		rec, ok := st.tables[table][id]
		if !ok || str(rec.row, "business_id") != businessID {
			return nil
		}
		deleteRow(st, table, id)
		return nil
	})
}

// deleteRow borra la fila y aplica las acciones ON DELETE del esquema.
func deleteRow(st *state, table, id string) {
	delete(st.tables[table], id)
	switch table {
	case tableSales:
		for itemID, rec := range st.tables[tableSaleItems] {
			if str(rec.row, "sale_id") == id {
				delete(st.tables[tableSaleItems], itemID)
			}
		}
	case tableProducts:
		for _, t := range []string{tableSaleItems, tableMovements} {
			for _, rec := range st.tables[t] {
				if str(rec.row, "product_id") == id {
					rec.row["product_id"] = nil
				}
			}
		}
	}
}

func clientSaleTaken(st *state, businessID, clientSaleID, exceptID string) bool {
	if clientSaleID == "" {
		return false
	}
	for id, rec := range st.tables[tableSales] {
		if id != exceptID && str(rec.row, "business_id") == businessID && str(rec.row, "client_sale_id") == clientSaleID {
			return true
		}
	}
	return false
}
