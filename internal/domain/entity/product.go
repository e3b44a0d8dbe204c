package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Valores por defecto de un producto cuando el cliente no los envía.
const (
	DefaultMinStock    int64 = 5
	DefaultProductType       = "unit"
)

// Product representa un producto del catálogo de un negocio.
// Stock es un entero que puede quedar negativo: las ventas descuentan sin verificar existencia.
type Product struct {
	ID         string
	BusinessID string
	Name       string
	Barcode    *string
	Price      decimal.Decimal
	Cost       decimal.Decimal
	Stock      int64
	MinStock   int64
	CategoryID *string
	Image      *string
	Type       string // unit, weight
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// LowStock indica si el stock está en o por debajo del mínimo configurado.
func (p *Product) LowStock() bool {
	return p.Stock <= p.MinStock
}
