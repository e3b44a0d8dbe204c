package cancellation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/pos-sync/internal/application/dto"
	"github.com/jhoicas/pos-sync/internal/domain"
	"github.com/jhoicas/pos-sync/internal/domain/entity"
	"github.com/jhoicas/pos-sync/internal/domain/repository"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
	dateLayout       = "2006-01-02"
)

// List devuelve las ventas del negocio con su cancelación (si hay) y si todavía pueden cancelarse.
//
// Retorna domain.ErrInvalidInput si status, fechas o limit no son válidos.
func (uc *UseCase) List(ctx context.Context, businessID string, q dto.CancellableSalesQuery) (*dto.CancellableSalesResponse, error) {
	filter := repository.SaleFilter{BusinessID: businessID, Limit: q.Limit}
	switch strings.TrimSpace(q.Status) {
	case "":
	case "cancelled":
		filter.Cancelled = boolPtr(true)
	case "active":
		filter.Cancelled = boolPtr(false)
	default:
		return nil, fmt.Errorf("%w: status debe ser cancelled o active", domain.ErrInvalidInput)
	}
	switch {
	case filter.Limit == 0:
		filter.Limit = defaultListLimit
	case filter.Limit < 0 || filter.Limit > maxListLimit:
		return nil, fmt.Errorf("%w: limit debe estar entre 1 y %d", domain.ErrInvalidInput, maxListLimit)
	}
	var err error
	if filter.From, filter.To, err = dateRange(q.StartDate, q.EndDate); err != nil {
		return nil, err
	}

	sales, err := uc.store.Sales().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listar ventas: %w", err)
	}

	var cancelledIDs []string
	for _, s := range sales {
		if s.Cancelled {
			cancelledIDs = append(cancelledIDs, s.ID)
		}
	}
	bySale := make(map[string]*entity.Cancellation, len(cancelledIDs))
	if len(cancelledIDs) > 0 {
		list, err := uc.store.Cancellations().ListBySales(ctx, businessID, cancelledIDs)
		if err != nil {
			return nil, fmt.Errorf("listar cancelaciones: %w", err)
		}
		for _, c := range list {
			bySale[c.SaleID] = c
		}
	}

	users, err := uc.store.Users().ListByBusiness(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("listar usuarios: %w", err)
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}

	now := uc.now().UTC()
	out := &dto.CancellableSalesResponse{Sales: make([]dto.CancellableSaleResponse, 0, len(sales))}
	for _, s := range sales {
		item := dto.CancellableSaleResponse{
			ID:            s.ID,
			ClientSaleID:  s.ClientSaleID,
			UserID:        s.UserID,
			Total:         s.Total,
			PaymentMethod: s.PaymentMethod,
			Status:        s.Status,
			Cancelled:     s.Cancelled,
			CreatedAt:     s.CreatedAt.UTC().Format(time.RFC3339),
			DaysSinceSale: s.DaysSince(now),
			CanCancel:     s.CanCancel(now),
			DaysRemaining: s.CancellationDaysRemaining(now),
		}
		if s.UserID != nil {
			if name, ok := names[*s.UserID]; ok {
				item.CashierName = &name
			}
		}
		if c, ok := bySale[s.ID]; ok {
			at := c.CancelledAt.UTC().Format(time.RFC3339)
			item.CancellationID = &c.ID
			item.CancellationReasonCode = &c.ReasonCode
			item.CancellationReasonText = &c.ReasonText
			item.CancelledAt = &at
			item.RefundStatus = &c.RefundStatus
		}
		out.Sales = append(out.Sales, item)
	}
	return out, nil
}

// Report resume las cancelaciones del negocio por motivo SAT, con el total general.
func (uc *UseCase) Report(ctx context.Context, businessID string, q dto.CancellationReportQuery) (*dto.CancellationReportResponse, error) {
	from, to, err := dateRange(q.StartDate, q.EndDate)
	if err != nil {
		return nil, err
	}
	rows, err := uc.store.Cancellations().Summary(ctx, businessID, from, to)
	if err != nil {
		return nil, fmt.Errorf("reporte de cancelaciones: %w", err)
	}
	out := &dto.CancellationReportResponse{Summary: make([]dto.CancellationSummaryResponse, 0, len(rows))}
	for _, r := range rows {
		out.Summary = append(out.Summary, dto.CancellationSummaryResponse{
			ReasonCode:         r.ReasonCode,
			ReasonText:         entity.CancellationReasons[r.ReasonCode],
			TotalCancellations: r.Total,
			RefundsRequired:    r.RefundsRequired,
			RefundsCompleted:   r.RefundsCompleted,
			RefundsPending:     r.RefundsPending,
			TotalRefundAmount:  r.TotalRefundAmount,
		})
		out.Totals.TotalCancellations += r.Total
		out.Totals.RefundsRequired += r.RefundsRequired
		out.Totals.RefundsCompleted += r.RefundsCompleted
		out.Totals.RefundsPending += r.RefundsPending
		out.Totals.TotalRefundAmount = out.Totals.TotalRefundAmount.Add(r.TotalRefundAmount)
	}
	return out, nil
}

// dateRange convierte fechas YYYY-MM-DD (UTC) en [desde, hasta+1 día). Vacío no filtra.
func dateRange(start, end string) (from, to *time.Time, err error) {
	if start = strings.TrimSpace(start); start != "" {
		t, err := time.Parse(dateLayout, start)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: startDate debe tener formato YYYY-MM-DD", domain.ErrInvalidInput)
		}
		from = &t
	}
	if end = strings.TrimSpace(end); end != "" {
		t, err := time.Parse(dateLayout, end)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: endDate debe tener formato YYYY-MM-DD", domain.ErrInvalidInput)
		}
		t = t.AddDate(0, 0, 1)
		to = &t
	}
	if from != nil && to != nil && !from.Before(*to) {
		return nil, nil, fmt.Errorf("%w: startDate posterior a endDate", domain.ErrInvalidInput)
	}
	return from, to, nil
}

func boolPtr(b bool) *bool { return &b }
