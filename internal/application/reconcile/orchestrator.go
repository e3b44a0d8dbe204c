package reconcile

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/pos-sync/internal/application/dto"
	"github.com/jhoicas/pos-sync/internal/application/ports"
	"github.com/jhoicas/pos-sync/internal/domain"
)

// DefaultMaxBatchSize límite de entradas por push cuando no se configura otro.
const DefaultMaxBatchSize = 500

// Orchestrator es la entrada de un push: aplica las entradas en orden, una tras otra,
// y acumula éxito o fallo por registro sin abortar el lote.
type Orchestrator struct {
	entities *EntityReconciler
	sales    *SaleReconciler
	notifier ports.Notifier
	log      zerolog.Logger
	maxBatch int
	now      func() time.Time
}

// NewOrchestrator construye el orquestador. maxBatch <= 0 usa DefaultMaxBatchSize.
func NewOrchestrator(entities *EntityReconciler, sales *SaleReconciler, notifier ports.Notifier, log zerolog.Logger, maxBatch int) *Orchestrator {
	if notifier == nil {
		notifier = ports.NopNotifier{}
	}
	if maxBatch <= 0 {
		maxBatch = DefaultMaxBatchSize
	}
	return &Orchestrator{
		entities: entities,
		sales:    sales,
		notifier: notifier,
		log:      log,
		maxBatch: maxBatch,
		now:      time.Now,
	}
}

// MaxBatchSize devuelve el límite configurado.
func (o *Orchestrator) MaxBatchSize() int { return o.maxBatch }

// Push procesa el lote. Solo devuelve error si el lote completo se rechaza (tamaño excedido);
// los fallos individuales quedan en BatchResult.Errors.
func (o *Orchestrator) Push(ctx context.Context, actor Actor, entries []json.RawMessage) (*dto.BatchResult, error) {
	if len(entries) > o.maxBatch {
		return nil, fmt.Errorf("%w: el lote trae %d cambios, máximo %d", domain.ErrInvalidInput, len(entries), o.maxBatch)
	}
	started := o.now()
	res := &dto.BatchResult{
		Errors:  []dto.FailedChange{},
		Applied: []dto.AppliedChange{},
	}
	ids := NewIDMap()

	for i, raw := range entries {
		rec, out, err := o.applyOne(ctx, actor, raw, ids)
		if err != nil {
			res.Failed++
			res.Errors = append(res.Errors, dto.FailedChange{
				Index:     i,
				Operation: raw,
				Code:      ErrorCode(err),
				Error:     err.Error(),
			})
			o.log.Warn().Err(err).
				Str("business_id", actor.BusinessID).
				Int("index", i).
				Str("entity", rec.EntityName).
				Str("operation", string(rec.Operation)).
				Msg("cambio rechazado")
			continue
		}
		res.Success++
		res.Applied = append(res.Applied, dto.AppliedChange{
			Index:      i,
			EntityName: rec.EntityName,
			Operation:  string(rec.Operation),
			ID:         out.ID,
			LocalID:    localIfRemapped(out),
			Duplicate:  out.Duplicate,
			Items:      out.Items,
		})
		if !out.Duplicate {
			o.publish(actor.BusinessID, rec, out)
		}
	}

	o.log.Info().
		Str("business_id", actor.BusinessID).
		Int("changes", len(entries)).
		Int("success", res.Success).
		Int("failed", res.Failed).
		Dur("elapsed", o.now().Sub(started)).
		Msg("lote de sincronización procesado")
	return res, nil
}

func (o *Orchestrator) applyOne(ctx context.Context, actor Actor, raw json.RawMessage, ids *IDMap) (ChangeRecord, Outcome, error) {
	rec, err := ParseChange(raw)
	if err != nil {
		return rec, Outcome{}, err
	}
	var out Outcome
	if rec.IsSale() {
		out, err = o.sales.Apply(ctx, actor, rec, ids)
	} else {
		out, err = o.entities.Apply(ctx, actor, rec, ids)
	}
	return rec, out, err
}

func localIfRemapped(out Outcome) string {
	if out.LocalID == "" || out.LocalID == out.ID {
		return ""
	}
	return out.LocalID
}

// publish avisa a los demás dispositivos del negocio. Nunca bloquea ni falla.
func (o *Orchestrator) publish(businessID string, rec ChangeRecord, out Outcome) {
	at := o.now().UTC()
	event := rec.EntityName
	if s, ok := schemas[rec.EntityName]; ok {
		event = s.event
	}
	o.notifier.Notify(ports.Event{
		BusinessID: businessID,
		Name:       event + ":" + pastTense(rec.Operation),
		Data:       map[string]any{"id": out.ID},
		At:         at,
	})
	if rec.IsSale() && len(out.ProductIDs) > 0 {
		o.notifier.Notify(ports.Event{
			BusinessID: businessID,
			Name:       "stock:updated",
			Data:       map[string]any{"product_ids": out.ProductIDs, "sale_id": out.ID},
			At:         at,
		})
	}
}

func pastTense(op Operation) string {
	switch op {
	case OpCreate:
		return "created"
	case OpUpdate:
		return "updated"
	case OpDelete:
		return "deleted"
	}
	return strings.ToLower(string(op))
}
