package dto

import "github.com/shopspring/decimal"

// CancelSaleRequest cuerpo de POST /api/cancellations.
type CancelSaleRequest struct {
	SaleID         string  `json:"sale_id"`
	ReasonCode     string  `json:"reason_code"`
	Observations   *string `json:"observations"`
	RequiresRefund bool    `json:"requires_refund"`
	RefundMethod   *string `json:"refund_method"`
}

// RefundRequest cuerpo de POST /api/cancellations/:id/refund.
type RefundRequest struct {
	Method      string  `json:"method"`
	Reference   *string `json:"reference"`
	BankAccount *string `json:"bank_account"`
	Notes       *string `json:"notes"`
}

// CancellationResponse cancelación registrada.
type CancellationResponse struct {
	ID             string          `json:"id"`
	SaleID         string          `json:"sale_id"`
	ReasonCode     string          `json:"reason_code"`
	ReasonText     string          `json:"reason_text"`
	Observations   *string         `json:"observations"`
	RequiresRefund bool            `json:"requires_refund"`
	RefundMethod   *string         `json:"refund_method"`
	RefundStatus   string          `json:"refund_status"`
	RefundAmount   decimal.Decimal `json:"refund_amount"`
	CancelledBy    string          `json:"cancelled_by"`
	CancelledAt    string          `json:"cancelled_at"`
	RestoredItems  int             `json:"restored_items,omitempty"`
}

// RefundResponse reembolso procesado.
type RefundResponse struct {
	ID             string          `json:"id"`
	CancellationID string          `json:"cancellation_id"`
	Amount         decimal.Decimal `json:"amount"`
	Method         string          `json:"method"`
	Reference      *string         `json:"reference"`
	ProcessedBy    string          `json:"processed_by"`
	ProcessedAt    string          `json:"processed_at"`
}

// AuditEntryResponse entrada de bitácora.
type AuditEntryResponse struct {
	Action      string `json:"action"`
	PerformedBy string `json:"performed_by"`
	Details     string `json:"details"`
	CreatedAt   string `json:"created_at"`
}

// CancellationDetailResponse cancelación con reembolso y bitácora.
type CancellationDetailResponse struct {
	Cancellation CancellationResponse `json:"cancellation"`
	Refund       *RefundResponse      `json:"refund"`
	Audit        []AuditEntryResponse `json:"audit"`
}

// CancellableSalesQuery filtros de GET /api/cancellations. Fechas en formato YYYY-MM-DD.
type CancellableSalesQuery struct {
	Status    string `query:"status"` // "cancelled" | "active" | vacío
	StartDate string `query:"startDate"`
	EndDate   string `query:"endDate"`
	Limit     int    `query:"limit"`
}

// CancellableSaleResponse venta con su estado de cancelación y elegibilidad.
type CancellableSaleResponse struct {
	ID                     string          `json:"id"`
	ClientSaleID           *string         `json:"client_sale_id"`
	UserID                 *string         `json:"user_id"`
	CashierName            *string         `json:"cashier_name"`
	Total                  decimal.Decimal `json:"total"`
	PaymentMethod          string          `json:"payment_method"`
	Status                 string          `json:"status"`
	Cancelled              bool            `json:"cancelled"`
	CreatedAt              string          `json:"created_at"`
	CancellationID         *string         `json:"cancellation_id"`
	CancellationReasonCode *string         `json:"cancellation_reason_code"`
	CancellationReasonText *string         `json:"cancellation_reason_text"`
	CancelledAt            *string         `json:"cancelled_at"`
	RefundStatus           *string         `json:"refund_status"`
	DaysSinceSale          int             `json:"days_since_sale"`
	CanCancel              bool            `json:"can_cancel"`
	DaysRemaining          int             `json:"days_remaining"`
}

// CancellableSalesResponse respuesta de GET /api/cancellations.
type CancellableSalesResponse struct {
	Sales []CancellableSaleResponse `json:"sales"`
}

// CancellationReportQuery rango de GET /api/cancellations/report/summary (YYYY-MM-DD, ambos opcionales).
type CancellationReportQuery struct {
	StartDate string `query:"startDate"`
	EndDate   string `query:"endDate"`
}

// CancellationSummaryResponse totales de cancelación. ReasonCode vacío en el total general.
type CancellationSummaryResponse struct {
	ReasonCode         string          `json:"cancellation_reason_code,omitempty"`
	ReasonText         string          `json:"reason_text,omitempty"`
	TotalCancellations int64           `json:"total_cancellations"`
	RefundsRequired    int64           `json:"refunds_required"`
	RefundsCompleted   int64           `json:"refunds_completed"`
	RefundsPending     int64           `json:"refunds_pending"`
	TotalRefundAmount  decimal.Decimal `json:"total_refund_amount"`
}

// CancellationReportResponse respuesta de GET /api/cancellations/report/summary.
type CancellationReportResponse struct {
	Summary []CancellationSummaryResponse `json:"summary"`
	Totals  CancellationSummaryResponse   `json:"totals"`
}
