package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/pos-sync/internal/application/ports"
	"github.com/jhoicas/pos-sync/internal/domain"
)

// Actor negocio y usuario autenticados que envían el lote.
type Actor struct {
	BusinessID string
	UserID     string
}

// Outcome resultado de aplicar un registro.
type Outcome struct {
	ID         string
	LocalID    string
	Duplicate  bool
	Items      int
	ProductIDs []string
}

// EntityReconciler aplica CREATE/UPDATE/DELETE de una sola fila sobre cualquier colección sincronizable.
type EntityReconciler struct {
	store ports.Store
	now   func() time.Time
}

// NewEntityReconciler construye el reconciliador genérico.
func NewEntityReconciler(store ports.Store) *EntityReconciler {
	return &EntityReconciler{store: store, now: time.Now}
}

// Apply ejecuta el registro. Los errores salen tipificados como domain.ErrPersistence.
func (r *EntityReconciler) Apply(ctx context.Context, actor Actor, rec ChangeRecord, ids *IDMap) (Outcome, error) {
	schema, err := lookupSchema(rec.EntityName)
	if err != nil {
		return Outcome{}, classify(err)
	}
	switch rec.Operation {
	case OpCreate:
		return r.create(ctx, actor, schema, rec, ids)
	case OpUpdate:
		return r.update(ctx, actor, schema, rec, ids)
	case OpDelete:
		id := ids.Resolve(rec.EntityName, rec.ID())
		if err := r.store.Entities().Delete(ctx, schema.table, actor.BusinessID, id); err != nil {
			return Outcome{}, classify(err)
		}
		return Outcome{ID: id}, nil
	}
	return Outcome{}, malformed(fmt.Sprintf("operación desconocida %q", rec.Operation))
}

func (r *EntityReconciler) create(ctx context.Context, actor Actor, schema entitySchema, rec ChangeRecord, ids *IDMap) (Outcome, error) {
	row, err := schema.project(rec.Payload, ids)
	if err != nil {
		return Outcome{}, classify(err)
	}
	schema.stamp(row, r.now().UTC())

	// El id local del dispositivo nunca se persiste.
	id := uuid.NewString()
	row["id"] = id
	row["business_id"] = actor.BusinessID

	if err := r.store.Entities().Insert(ctx, schema.table, row); err != nil {
		return Outcome{}, classify(err)
	}
	local := rec.ID()
	ids.Bind(rec.EntityName, local, id)
	return Outcome{ID: id, LocalID: local}, nil
}

func (r *EntityReconciler) update(ctx context.Context, actor Actor, schema entitySchema, rec ChangeRecord, ids *IDMap) (Outcome, error) {
	row, err := schema.project(rec.Payload, ids)
	if err != nil {
		return Outcome{}, classify(err)
	}
	if schema.hasUpdated {
		if _, set := row["updated_at"]; !set {
			row["updated_at"] = r.now().UTC()
		}
	}
	if len(row) == 0 {
		return Outcome{}, classify(fmt.Errorf("%w: sin campos actualizables", domain.ErrInvalidInput))
	}

	id := ids.Resolve(rec.EntityName, rec.ID())
	if err := r.store.Entities().Update(ctx, schema.table, actor.BusinessID, id, row); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return Outcome{}, classify(fmt.Errorf("%s %s: %w", rec.EntityName, id, err))
		}
		return Outcome{}, classify(err)
	}
	return Outcome{ID: id}, nil
}
