package dto

import "github.com/shopspring/decimal"

// SaleResponse encabezado de venta.
type SaleResponse struct {
	ID             string          `json:"id"`
	BusinessID     string          `json:"business_id"`
	UserID         *string         `json:"user_id"`
	ClientSaleID   *string         `json:"client_sale_id"`
	Total          decimal.Decimal `json:"total"`
	PaymentMethod  string          `json:"payment_method"`
	Status         string          `json:"status"`
	Cancelled      bool            `json:"cancelled"`
	CancelledAt    *string         `json:"cancelled_at"`
	CancellationID *string         `json:"cancellation_id"`
	CreatedAt      string          `json:"created_at"`
}

// SaleItemResponse línea de venta.
type SaleItemResponse struct {
	ID          string          `json:"id"`
	ProductID   *string         `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// SaleDetailResponse venta con sus líneas.
type SaleDetailResponse struct {
	Sale  SaleResponse       `json:"sale"`
	Items []SaleItemResponse `json:"items"`
}
