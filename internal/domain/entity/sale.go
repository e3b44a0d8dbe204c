package entity

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Métodos de pago aceptados por el servidor.
const (
	PaymentCash     = "cash"
	PaymentCard     = "card"
	PaymentTransfer = "transfer"
	PaymentOther    = "other"
)

// Estados de venta.
const (
	SaleStatusCompleted = "completed"
	SaleStatusCancelled = "cancelled"
)

// Sale es el encabezado de una venta. Total se guarda tal como lo envió el cliente.
type Sale struct {
	ID             string
	BusinessID     string
	UserID         *string
	ClientSaleID   *string // clave de idempotencia generada en el dispositivo
	Total          decimal.Decimal
	PaymentMethod  string
	Status         string
	Cancelled      bool
	CancelledAt    *time.Time
	CancellationID *string
	CreatedAt      time.Time
}

// SaleItem es una línea de venta. ProductName conserva el nombre al momento de la venta.
type SaleItem struct {
	ID          string
	SaleID      string
	ProductID   *string
	ProductName string
	Quantity    int64
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
}

// Age devuelve el tiempo transcurrido desde la venta hasta now.
func (s *Sale) Age(now time.Time) time.Duration {
	return now.Sub(s.CreatedAt)
}

// CanCancel indica si la venta sigue activa y dentro del plazo de cancelación.
func (s *Sale) CanCancel(now time.Time) bool {
	return !s.Cancelled && s.Age(now) <= CancellationWindow
}

// DaysSince días completos transcurridos desde la venta.
func (s *Sale) DaysSince(now time.Time) int {
	return int(math.Floor(s.Age(now).Hours() / 24))
}

// CancellationDaysRemaining días completos que quedan del plazo; 0 si ya venció.
func (s *Sale) CancellationDaysRemaining(now time.Time) int {
	return max(0, CancellationWindowDays-s.DaysSince(now))
}
