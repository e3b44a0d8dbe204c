package reconcile

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/pos-sync/internal/domain"
	"github.com/jhoicas/pos-sync/internal/domain/entity"
	"github.com/jhoicas/pos-sync/internal/domain/repository"
)

type valueKind int

const (
	kindText valueKind = iota
	kindInt
	kindDecimal
	kindBool
	kindTime
	kindSecret  // texto plano que se guarda como hash bcrypt
	kindPayment // vocabulario de pago del dispositivo
)

// field es una columna mutable y los nombres con que puede llegar desde el dispositivo.
type field struct {
	column string
	names  []string
	kind   valueKind
	ref    string // colección referenciada; el id local se traduce con el IDMap del lote
}

func col(column string, kind valueKind, names ...string) field {
	return field{column: column, names: append([]string{column}, names...), kind: kind}
}

func (f field) refs(entityName string) field {
	f.ref = entityName
	return f
}

// entitySchema lista permitida de una colección sincronizable.
type entitySchema struct {
	table      string
	event      string
	fields     []field
	hasCreated bool
	hasUpdated bool
	defaults   func() repository.Row
}

var schemas = map[string]entitySchema{
	"products": {
		table: "products",
		event: "product",
		fields: []field{
			col("name", kindText),
			col("barcode", kindText),
			col("price", kindDecimal),
			col("cost", kindDecimal),
			col("stock", kindInt),
			col("min_stock", kindInt, "minStock"),
			col("category_id", kindText, "categoryId").refs("categories"),
			col("image", kindText),
			col("type", kindText),
			col("active", kindBool),
			col("created_at", kindTime, "createdAt"),
			col("updated_at", kindTime, "updatedAt"),
		},
		hasCreated: true,
		hasUpdated: true,
		defaults: func() repository.Row {
			return repository.Row{
				"cost":      decimal.Zero,
				"stock":     int64(0),
				"min_stock": entity.DefaultMinStock,
				"type":      entity.DefaultProductType,
				"active":    true,
			}
		},
	},
	"categories": {
		table: "categories",
		event: "category",
		fields: []field{
			col("name", kindText),
			col("color", kindText),
			col("icon", kindText),
			col("active", kindBool),
			col("created_at", kindTime, "createdAt"),
			col("updated_at", kindTime, "updatedAt"),
		},
		hasCreated: true,
		hasUpdated: true,
		defaults: func() repository.Row {
			return repository.Row{"active": true}
		},
	},
	"users": {
		table: "users",
		event: "user",
		fields: []field{
			col("name", kindText),
			col("email", kindText),
			col("role", kindText),
			col("phone", kindText),
			col("avatar", kindText),
			col("avatar_type", kindText, "avatarType"),
			col("active", kindBool),
			{column: "password_hash", names: []string{"password"}, kind: kindSecret},
			{column: "pin_hash", names: []string{"pin"}, kind: kindSecret},
			col("created_at", kindTime, "createdAt"),
			col("updated_at", kindTime, "updatedAt"),
		},
		hasCreated: true,
		hasUpdated: true,
		defaults: func() repository.Row {
			return repository.Row{
				"role":        entity.RoleCashier,
				"avatar_type": "initials",
				"active":      true,
			}
		},
	},
	"sales": {
		table: "sales",
		event: "sale",
		fields: []field{
			col("user_id", kindText, "userId").refs("users"),
			col("client_sale_id", kindText, "clientSaleId"),
			col("total", kindDecimal),
			col("payment_method", kindPayment, "paymentMethod", "payment_type", "paymentType"),
			col("status", kindText),
			col("created_at", kindTime, "createdAt", "date"),
		},
		hasCreated: true,
		defaults: func() repository.Row {
			return repository.Row{
				"status":         entity.SaleStatusCompleted,
				"payment_method": entity.PaymentOther,
			}
		},
	},
	"cash_sessions": {
		table: "cash_sessions",
		event: "cash",
		fields: []field{
			col("user_id", kindText, "userId").refs("users"),
			col("opening_amount", kindDecimal, "openingAmount"),
			col("closing_amount", kindDecimal, "closingAmount"),
			col("expected_amount", kindDecimal, "expectedAmount"),
			col("status", kindText),
			col("notes", kindText),
			col("opened_at", kindTime, "openedAt"),
			col("closed_at", kindTime, "closedAt"),
		},
		defaults: func() repository.Row {
			return repository.Row{"status": "open"}
		},
	},
}

// lookupSchema devuelve la lista permitida de la colección.
func lookupSchema(entityName string) (entitySchema, error) {
	s, ok := schemas[entityName]
	if !ok {
		return entitySchema{}, fmt.Errorf("%w: %q", domain.ErrUnknownEntity, entityName)
	}
	return s, nil
}

// project filtra el payload contra la lista permitida y convierte cada valor al tipo de su columna.
// Las claves desconocidas (incluidas id y business_id) se descartan.
func (s entitySchema) project(payload map[string]any, ids *IDMap) (repository.Row, error) {
	row := repository.Row{}
	for _, f := range s.fields {
		name, v, ok := f.lookup(payload)
		if !ok {
			continue
		}
		if v == nil {
			if f.kind != kindSecret {
				row[f.column] = nil
			}
			continue
		}
		val, err := f.convert(v)
		if err != nil {
			return nil, fmt.Errorf("%w: campo %s: %v", domain.ErrInvalidInput, name, err)
		}
		if f.ref != "" {
			if id, ok := val.(string); ok {
				val = ids.Resolve(f.ref, id)
			}
		}
		row[f.column] = val
	}
	return row, nil
}

func (f field) lookup(payload map[string]any) (string, any, bool) {
	for _, n := range f.names {
		if v, ok := payload[n]; ok {
			return n, v, true
		}
	}
	return "", nil, false
}

func (f field) convert(v any) (any, error) {
	switch f.kind {
	case kindInt:
		return asInt(v)
	case kindDecimal:
		return asDecimal(v)
	case kindBool:
		return asBool(v)
	case kindTime:
		return asTime(v)
	case kindPayment:
		s, _ := asString(v)
		return NormalizePaymentMethod(s), nil
	case kindSecret:
		s, ok := asString(v)
		if !ok {
			return nil, fmt.Errorf("valor vacío")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(s), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		return string(hash), nil
	default:
		s, ok := v.(string)
		if !ok {
			if str, ok := asString(v); ok {
				return str, nil
			}
			return nil, fmt.Errorf("se esperaba texto, llegó %T", v)
		}
		return s, nil
	}
}

// stamp completa defaults y marcas de tiempo de un CREATE sin pisar lo que envió el dispositivo.
func (s entitySchema) stamp(row repository.Row, now time.Time) {
	if s.defaults != nil {
		for k, v := range s.defaults() {
			if _, set := row[k]; !set {
				row[k] = v
			}
		}
	}
	if s.hasCreated {
		if _, set := row["created_at"]; !set {
			row["created_at"] = now
		}
	}
	if s.hasUpdated {
		if _, set := row["updated_at"]; !set {
			row["updated_at"] = now
		}
	}
}
