package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Motivos de cancelación del SAT.
var CancellationReasons = map[string]string{
	"01": "Comprobante emitido con errores con relación",
	"02": "Comprobante emitido con errores sin relación",
	"03": "No se llevó a cabo la operación",
	"04": "Operación nominativa relacionada en una factura global",
}

// Estados de reembolso.
const (
	RefundStatusNone      = "none" // la cancelación no requiere reembolso
	RefundStatusPending   = "pending"
	RefundStatusCompleted = "completed"
)

// Métodos de reembolso válidos.
const (
	RefundMethodCash     = "cash"
	RefundMethodTransfer = "transfer"
	RefundMethodCredit   = "credit"
)

// Acciones registradas en la auditoría de cancelaciones.
const (
	AuditActionCreated         = "created"
	AuditActionRefundProcessed = "refund_processed"
)

// CancellationWindowDays plazo máximo para cancelar una venta.
const CancellationWindowDays = 90

// CancellationWindow el mismo plazo como duración; se compara contra la edad exacta de la venta.
const CancellationWindow = CancellationWindowDays * 24 * time.Hour

// ValidRefundMethod indica si m es un método de reembolso aceptado.
func ValidRefundMethod(m string) bool {
	switch m {
	case RefundMethodCash, RefundMethodTransfer, RefundMethodCredit:
		return true
	}
	return false
}

// Cancellation registra la anulación de una venta.
type Cancellation struct {
	ID                string
	BusinessID        string
	SaleID            string
	CancelledBy       string
	ReasonCode        string
	ReasonText        string
	Observations      *string
	RequiresRefund    bool
	RefundMethod      *string
	RefundStatus      string
	RefundAmount      decimal.Decimal
	RefundProcessedAt *time.Time
	RefundProcessedBy *string
	CancelledAt       time.Time
}

// Refund es el reembolso efectivamente entregado por una cancelación.
type Refund struct {
	ID             string
	CancellationID string
	Amount         decimal.Decimal
	Method         string
	Reference      *string
	BankAccount    *string
	Notes          *string
	ProcessedBy    string
	ProcessedAt    time.Time
}

// CancellationAudit es una entrada de la bitácora de una cancelación.
type CancellationAudit struct {
	ID             string
	CancellationID string
	Action         string
	PerformedBy    string
	Details        string
	CreatedAt      time.Time
}

// CancellationSummary totales de cancelaciones de un motivo.
type CancellationSummary struct {
	ReasonCode        string
	Total             int64
	RefundsRequired   int64
	RefundsCompleted  int64
	RefundsPending    int64
	TotalRefundAmount decimal.Decimal
}
