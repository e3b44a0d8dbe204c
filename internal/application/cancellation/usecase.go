// Package cancellation anula ventas ya sincronizadas: devuelve el stock, deja bitácora
// y, si aplica, registra el reembolso.
package cancellation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-sync/internal/application/dto"
	"github.com/jhoicas/pos-sync/internal/application/ports"
	"github.com/jhoicas/pos-sync/internal/domain"
	"github.com/jhoicas/pos-sync/internal/domain/entity"
)

// UseCase casos de uso de cancelación y reembolso.
type UseCase struct {
	store    ports.Store
	tx       ports.TxRunner
	notifier ports.Notifier
	log      zerolog.Logger
	now      func() time.Time
}

// NewUseCase construye el caso de uso. notifier puede ser nil.
func NewUseCase(store ports.Store, tx ports.TxRunner, notifier ports.Notifier, log zerolog.Logger) *UseCase {
	if notifier == nil {
		notifier = ports.NopNotifier{}
	}
	return &UseCase{store: store, tx: tx, notifier: notifier, log: log, now: time.Now}
}

// Cancel anula la venta y reintegra al inventario cada línea, todo en una transacción.
//
// Retorna:
//   - domain.ErrInvalidInput         si faltan datos o el motivo SAT no existe.
//   - domain.ErrNotFound             si la venta no es del negocio.
//   - domain.ErrAlreadyCancelled     si ya estaba cancelada.
//   - domain.ErrCancellationExpired  si pasaron más de 90 días (edad exacta, no días redondeados).
func (uc *UseCase) Cancel(ctx context.Context, businessID, userID string, in dto.CancelSaleRequest) (*dto.CancellationResponse, error) {
	in.SaleID = strings.TrimSpace(in.SaleID)
	if in.SaleID == "" || in.ReasonCode == "" {
		return nil, fmt.Errorf("%w: sale_id y reason_code son obligatorios", domain.ErrInvalidInput)
	}
	reasonText, ok := entity.CancellationReasons[in.ReasonCode]
	if !ok {
		return nil, fmt.Errorf("%w: motivo SAT inválido %q (01, 02, 03, 04)", domain.ErrInvalidInput, in.ReasonCode)
	}
	if in.RefundMethod != nil && *in.RefundMethod != "" && !entity.ValidRefundMethod(*in.RefundMethod) {
		return nil, fmt.Errorf("%w: método de reembolso inválido %q", domain.ErrInvalidInput, *in.RefundMethod)
	}

	now := uc.now().UTC()
	c := &entity.Cancellation{
		ID:             uuid.NewString(),
		BusinessID:     businessID,
		SaleID:         in.SaleID,
		CancelledBy:    userID,
		ReasonCode:     in.ReasonCode,
		ReasonText:     reasonText,
		Observations:   in.Observations,
		RequiresRefund: in.RequiresRefund,
		RefundStatus:   entity.RefundStatusNone,
		CancelledAt:    now,
	}
	if in.RequiresRefund {
		c.RefundMethod = in.RefundMethod
		c.RefundStatus = entity.RefundStatusPending
	}

	var restored []string
	err := uc.tx.Run(ctx, func(tx ports.Tx) error {
		sale, err := tx.Sales().GetByID(ctx, businessID, in.SaleID)
		if err != nil {
			return fmt.Errorf("cancelación: obtener venta: %w", err)
		}
		if sale == nil {
			return domain.ErrNotFound
		}
		if sale.Cancelled {
			return domain.ErrAlreadyCancelled
		}
		if sale.Age(now) > entity.CancellationWindow {
			return fmt.Errorf("%w: han pasado %d días", domain.ErrCancellationExpired, sale.DaysSince(now))
		}
		if in.RequiresRefund {
			c.RefundAmount = sale.Total
		}

		items, err := tx.Sales().ListItems(ctx, sale.ID)
		if err != nil {
			return fmt.Errorf("cancelación: obtener líneas: %w", err)
		}
		if err := tx.Cancellations().Create(ctx, c); err != nil {
			return err
		}
		if err := tx.Sales().MarkCancelled(ctx, businessID, sale.ID, c.ID, now); err != nil {
			return err
		}

		restored, err = uc.restoreStock(ctx, tx, businessID, userID, sale.ID, reasonText, items, now)
		if err != nil {
			return err
		}

		return tx.Cancellations().AddAudit(ctx, &entity.CancellationAudit{
			ID:             uuid.NewString(),
			CancellationID: c.ID,
			Action:         entity.AuditActionCreated,
			PerformedBy:    userID,
			Details: details(map[string]any{
				"reason_code":     in.ReasonCode,
				"requires_refund": in.RequiresRefund,
				"sale_total":      c.RefundAmount,
				"items_count":     len(items),
			}),
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	uc.notifier.Notify(ports.Event{BusinessID: businessID, Name: "sale:cancelled", Data: map[string]any{"id": in.SaleID}, At: now})
	if len(restored) > 0 {
		uc.notifier.Notify(ports.Event{BusinessID: businessID, Name: "stock:updated", Data: map[string]any{"product_ids": restored}, At: now})
	}
	uc.log.Info().Str("business_id", businessID).Str("sale_id", in.SaleID).Str("cancellation_id", c.ID).
		Int("restored_items", len(restored)).Msg("venta cancelada")

	resp := toCancellationResponse(c)
	resp.RestoredItems = len(restored)
	return &resp, nil
}

// restoreStock aplica stock = stock + q por línea y un movimiento "return". Las líneas cuyo
// producto ya no existe se omiten.
func (uc *UseCase) restoreStock(ctx context.Context, tx ports.Tx, businessID, userID, saleID, reason string, items []*entity.SaleItem, now time.Time) ([]string, error) {
	var restored []string
	var actor *string
	if userID != "" {
		actor = &userID
	}
	for _, it := range items {
		if it.ProductID == nil {
			continue
		}
		productID := *it.ProductID
		if err := tx.Products().AdjustStock(ctx, businessID, productID, it.Quantity); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				uc.log.Warn().Str("sale_id", saleID).Str("product_id", productID).Msg("producto eliminado, no se reintegra stock")
				continue
			}
			return nil, fmt.Errorf("cancelación: reintegrar stock: %w", err)
		}
		if err := tx.Movements().Create(ctx, &entity.StockMovement{
			ID:         uuid.NewString(),
			BusinessID: businessID,
			ProductID:  &productID,
			UserID:     actor,
			Type:       entity.MovementTypeReturn,
			Quantity:   it.Quantity,
			Reason:     fmt.Sprintf("Cancelación de venta #%s - %s", saleID, reason),
			CreatedAt:  now,
		}); err != nil {
			return nil, err
		}
		restored = append(restored, productID)
	}
	return restored, nil
}

// ProcessRefund registra el reembolso pendiente de una cancelación.
func (uc *UseCase) ProcessRefund(ctx context.Context, businessID, userID, cancellationID string, in dto.RefundRequest) (*dto.RefundResponse, error) {
	if in.Method == "" {
		return nil, fmt.Errorf("%w: method es obligatorio", domain.ErrInvalidInput)
	}
	if !entity.ValidRefundMethod(in.Method) {
		return nil, fmt.Errorf("%w: método de reembolso inválido %q (cash, transfer, credit)", domain.ErrInvalidInput, in.Method)
	}

	now := uc.now().UTC()
	var refund *entity.Refund
	err := uc.tx.Run(ctx, func(tx ports.Tx) error {
		c, err := tx.Cancellations().GetByID(ctx, businessID, cancellationID)
		if err != nil {
			return fmt.Errorf("reembolso: obtener cancelación: %w", err)
		}
		if c == nil {
			return domain.ErrNotFound
		}
		if !c.RequiresRefund {
			return domain.ErrRefundNotRequired
		}
		if c.RefundStatus == entity.RefundStatusCompleted {
			return domain.ErrRefundAlreadyProcessed
		}

		refund = &entity.Refund{
			ID:             uuid.NewString(),
			CancellationID: c.ID,
			Amount:         c.RefundAmount,
			Method:         in.Method,
			Reference:      in.Reference,
			BankAccount:    in.BankAccount,
			Notes:          in.Notes,
			ProcessedBy:    userID,
			ProcessedAt:    now,
		}
		if err := tx.Cancellations().CreateRefund(ctx, refund); err != nil {
			return err
		}
		if err := tx.Cancellations().MarkRefunded(ctx, c.ID, userID, now); err != nil {
			return err
		}
		return tx.Cancellations().AddAudit(ctx, &entity.CancellationAudit{
			ID:             uuid.NewString(),
			CancellationID: c.ID,
			Action:         entity.AuditActionRefundProcessed,
			PerformedBy:    userID,
			Details:        details(map[string]any{"method": in.Method, "amount": c.RefundAmount}),
			CreatedAt:      now,
		})
	})
	if err != nil {
		return nil, err
	}
	resp := toRefundResponse(refund)
	return &resp, nil
}

// Get devuelve la cancelación con su reembolso (si hay) y la bitácora.
func (uc *UseCase) Get(ctx context.Context, businessID, id string) (*dto.CancellationDetailResponse, error) {
	c, err := uc.store.Cancellations().GetByID(ctx, businessID, id)
	if err != nil {
		return nil, fmt.Errorf("obtener cancelación: %w", err)
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	out := &dto.CancellationDetailResponse{Cancellation: toCancellationResponse(c), Audit: []dto.AuditEntryResponse{}}

	refund, err := uc.store.Cancellations().GetRefund(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("obtener reembolso: %w", err)
	}
	if refund != nil {
		r := toRefundResponse(refund)
		out.Refund = &r
	}

	audit, err := uc.store.Cancellations().ListAudit(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("obtener bitácora: %w", err)
	}
	for _, a := range audit {
		out.Audit = append(out.Audit, dto.AuditEntryResponse{
			Action:      a.Action,
			PerformedBy: a.PerformedBy,
			Details:     a.Details,
			CreatedAt:   a.CreatedAt.Format(time.RFC3339),
		})
	}
	return out, nil
}

func details(m map[string]any) string {
	for k, v := range m {
		if d, ok := v.(decimal.Decimal); ok {
			m[k] = d.String()
		}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func toCancellationResponse(c *entity.Cancellation) dto.CancellationResponse {
	return dto.CancellationResponse{
		ID:             c.ID,
		SaleID:         c.SaleID,
		ReasonCode:     c.ReasonCode,
		ReasonText:     c.ReasonText,
		Observations:   c.Observations,
		RequiresRefund: c.RequiresRefund,
		RefundMethod:   c.RefundMethod,
		RefundStatus:   c.RefundStatus,
		RefundAmount:   c.RefundAmount,
		CancelledBy:    c.CancelledBy,
		CancelledAt:    c.CancelledAt.Format(time.RFC3339),
	}
}

func toRefundResponse(r *entity.Refund) dto.RefundResponse {
	return dto.RefundResponse{
		ID:             r.ID,
		CancellationID: r.CancellationID,
		Amount:         r.Amount,
		Method:         r.Method,
		Reference:      r.Reference,
		ProcessedBy:    r.ProcessedBy,
		ProcessedAt:    r.ProcessedAt.Format(time.RFC3339),
	}
}
