package entity

import "time"

// Tipos de movimiento de stock.
const (
	MovementTypeSale   = "sale"   // salida por venta
	MovementTypeReturn = "return" // reingreso por cancelación
	MovementTypeAdjust = "adjust" // ajuste manual
)

// StockMovement es la fila de auditoría de cada cambio de stock.
// ProductID queda nil si el producto se elimina después (p. ej. en un reemplazo total del catálogo).
type StockMovement struct {
	ID         string
	BusinessID string
	ProductID  *string
	UserID     *string
	Type       string
	Quantity   int64 // negativo para salidas
	Reason     string
	CreatedAt  time.Time
}
