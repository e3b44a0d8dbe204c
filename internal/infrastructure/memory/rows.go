package memory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-sync/internal/domain/entity"
	"github.com/jhoicas/pos-sync/internal/domain/repository"
)

const (
	tableProducts      = "products"
	tableCategories    = "categories"
	tableUsers         = "users"
	tableSales         = "sales"
	tableSaleItems     = "sale_items"
	tableCashSessions  = "cash_sessions"
	tableMovements     = "stock_movements"
	tableCancellations = "cancellations"
	tableRefunds       = "refunds"
	tableAudit         = "cancellation_audit"
)

var knownTables = []string{
	tableProducts, tableCategories, tableUsers, tableSales, tableSaleItems,
	tableCashSessions, tableMovements, tableCancellations, tableRefunds, tableAudit,
}

// Tablas que acepta el repositorio genérico y sus columnas NOT NULL sin default.
var genericTables = map[string][]string{
	tableProducts:     {"name"},
	tableCategories:   {"name"},
	tableUsers:        {"name"},
	tableSales:        {"total"},
	tableCashSessions: {},
}

func str(r repository.Row, k string) string {
	s, _ := r[k].(string)
	return s
}

func strPtr(r repository.Row, k string) *string {
	s, ok := r[k].(string)
	if !ok {
		return nil
	}
	return &s
}

func dec(r repository.Row, k string) decimal.Decimal {
	d, _ := r[k].(decimal.Decimal)
	return d
}

func i64(r repository.Row, k string) int64 {
	n, _ := r[k].(int64)
	return n
}

func boolean(r repository.Row, k string) bool {
	b, _ := r[k].(bool)
	return b
}

func tm(r repository.Row, k string) time.Time {
	t, _ := r[k].(time.Time)
	return t
}

func tmPtr(r repository.Row, k string) *time.Time {
	t, ok := r[k].(time.Time)
	if !ok {
		return nil
	}
	return &t
}

func optional[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func productRow(p *entity.Product) repository.Row {
	return repository.Row{
		"id":          p.ID,
		"business_id": p.BusinessID,
		"name":        p.Name,
		"barcode":     optional(p.Barcode),
		"price":       p.Price,
		"cost":        p.Cost,
		"stock":       p.Stock,
		"min_stock":   p.MinStock,
		"category_id": optional(p.CategoryID),
		"image":       optional(p.Image),
		"type":        p.Type,
		"active":      p.Active,
		"created_at":  p.CreatedAt,
		"updated_at":  p.UpdatedAt,
	}
}

func productFromRow(r repository.Row) *entity.Product {
	return &entity.Product{
		ID:         str(r, "id"),
		BusinessID: str(r, "business_id"),
		Name:       str(r, "name"),
		Barcode:    strPtr(r, "barcode"),
		Price:      dec(r, "price"),
		Cost:       dec(r, "cost"),
		Stock:      i64(r, "stock"),
		MinStock:   i64(r, "min_stock"),
		CategoryID: strPtr(r, "category_id"),
		Image:      strPtr(r, "image"),
		Type:       str(r, "type"),
		Active:     boolean(r, "active"),
		CreatedAt:  tm(r, "created_at"),
		UpdatedAt:  tm(r, "updated_at"),
	}
}

func categoryFromRow(r repository.Row) *entity.Category {
	return &entity.Category{
		ID:         str(r, "id"),
		BusinessID: str(r, "business_id"),
		Name:       str(r, "name"),
		Color:      strPtr(r, "color"),
		Icon:       strPtr(r, "icon"),
		Active:     boolean(r, "active"),
		CreatedAt:  tm(r, "created_at"),
		UpdatedAt:  tm(r, "updated_at"),
	}
}

func userFromRow(r repository.Row) *entity.User {
	return &entity.User{
		ID:           str(r, "id"),
		BusinessID:   str(r, "business_id"),
		Name:         str(r, "name"),
		Email:        strPtr(r, "email"),
		PasswordHash: strPtr(r, "password_hash"),
		PinHash:      strPtr(r, "pin_hash"),
		Role:         str(r, "role"),
		Phone:        strPtr(r, "phone"),
		Avatar:       strPtr(r, "avatar"),
		AvatarType:   str(r, "avatar_type"),
		Active:       boolean(r, "active"),
		CreatedAt:    tm(r, "created_at"),
		UpdatedAt:    tm(r, "updated_at"),
	}
}

func saleRow(s *entity.Sale) repository.Row {
	return repository.Row{
		"id":              s.ID,
		"business_id":     s.BusinessID,
		"user_id":         optional(s.UserID),
		"client_sale_id":  optional(s.ClientSaleID),
		"total":           s.Total,
		"payment_method":  s.PaymentMethod,
		"status":          s.Status,
		"cancelled":       s.Cancelled,
		"cancelled_at":    optional(s.CancelledAt),
		"cancellation_id": optional(s.CancellationID),
		"created_at":      s.CreatedAt,
	}
}

func saleFromRow(r repository.Row) *entity.Sale {
	return &entity.Sale{
		ID:             str(r, "id"),
		BusinessID:     str(r, "business_id"),
		UserID:         strPtr(r, "user_id"),
		ClientSaleID:   strPtr(r, "client_sale_id"),
		Total:          dec(r, "total"),
		PaymentMethod:  str(r, "payment_method"),
		Status:         str(r, "status"),
		Cancelled:      boolean(r, "cancelled"),
		CancelledAt:    tmPtr(r, "cancelled_at"),
		CancellationID: strPtr(r, "cancellation_id"),
		CreatedAt:      tm(r, "created_at"),
	}
}

func saleItemRow(it *entity.SaleItem) repository.Row {
	return repository.Row{
		"id":           it.ID,
		"sale_id":      it.SaleID,
		"product_id":   optional(it.ProductID),
		"product_name": it.ProductName,
		"quantity":     it.Quantity,
		"price":        it.UnitPrice,
		"subtotal":     it.Subtotal,
	}
}

func saleItemFromRow(r repository.Row) *entity.SaleItem {
	return &entity.SaleItem{
		ID:          str(r, "id"),
		SaleID:      str(r, "sale_id"),
		ProductID:   strPtr(r, "product_id"),
		ProductName: str(r, "product_name"),
		Quantity:    i64(r, "quantity"),
		UnitPrice:   dec(r, "price"),
		Subtotal:    dec(r, "subtotal"),
	}
}

func movementRow(m *entity.StockMovement) repository.Row {
	return repository.Row{
		"id":          m.ID,
		"business_id": m.BusinessID,
		"product_id":  optional(m.ProductID),
		"user_id":     optional(m.UserID),
		"type":        m.Type,
		"quantity":    m.Quantity,
		"reason":      m.Reason,
		"created_at":  m.CreatedAt,
	}
}

func movementFromRow(r repository.Row) *entity.StockMovement {
	return &entity.StockMovement{
		ID:         str(r, "id"),
		BusinessID: str(r, "business_id"),
		ProductID:  strPtr(r, "product_id"),
		UserID:     strPtr(r, "user_id"),
		Type:       str(r, "type"),
		Quantity:   i64(r, "quantity"),
		Reason:     str(r, "reason"),
		CreatedAt:  tm(r, "created_at"),
	}
}

func cancellationRow(c *entity.Cancellation) repository.Row {
	return repository.Row{
		"id":                  c.ID,
		"business_id":         c.BusinessID,
		"sale_id":             c.SaleID,
		"cancelled_by":        c.CancelledBy,
		"reason_code":         c.ReasonCode,
		"reason_text":         c.ReasonText,
		"observations":        optional(c.Observations),
		"requires_refund":     c.RequiresRefund,
		"refund_method":       optional(c.RefundMethod),
		"refund_status":       c.RefundStatus,
		"refund_amount":       c.RefundAmount,
		"refund_processed_at": optional(c.RefundProcessedAt),
		"refund_processed_by": optional(c.RefundProcessedBy),
		"cancelled_at":        c.CancelledAt,
	}
}

func cancellationFromRow(r repository.Row) *entity.Cancellation {
	return &entity.Cancellation{
		ID:                str(r, "id"),
		BusinessID:        str(r, "business_id"),
		SaleID:            str(r, "sale_id"),
		CancelledBy:       str(r, "cancelled_by"),
		ReasonCode:        str(r, "reason_code"),
		ReasonText:        str(r, "reason_text"),
		Observations:      strPtr(r, "observations"),
		RequiresRefund:    boolean(r, "requires_refund"),
		RefundMethod:      strPtr(r, "refund_method"),
		RefundStatus:      str(r, "refund_status"),
		RefundAmount:      dec(r, "refund_amount"),
		RefundProcessedAt: tmPtr(r, "refund_processed_at"),
		RefundProcessedBy: strPtr(r, "refund_processed_by"),
		CancelledAt:       tm(r, "cancelled_at"),
	}
}

func refundRow(rf *entity.Refund) repository.Row {
	return repository.Row{
		"id":              rf.ID,
		"cancellation_id": rf.CancellationID,
		"amount":          rf.Amount,
		"method":          rf.Method,
		"reference":       optional(rf.Reference),
		"bank_account":    optional(rf.BankAccount),
		"notes":           optional(rf.Notes),
		"processed_by":    rf.ProcessedBy,
		"processed_at":    rf.ProcessedAt,
	}
}

func refundFromRow(r repository.Row) *entity.Refund {
	return &entity.Refund{
		ID:             str(r, "id"),
		CancellationID: str(r, "cancellation_id"),
		Amount:         dec(r, "amount"),
		Method:         str(r, "method"),
		Reference:      strPtr(r, "reference"),
		BankAccount:    strPtr(r, "bank_account"),
		Notes:          strPtr(r, "notes"),
		ProcessedBy:    str(r, "processed_by"),
		ProcessedAt:    tm(r, "processed_at"),
	}
}

func auditRow(a *entity.CancellationAudit) repository.Row {
	return repository.Row{
		"id":              a.ID,
		"cancellation_id": a.CancellationID,
		"action":          a.Action,
		"performed_by":    a.PerformedBy,
		"details":         a.Details,
		"created_at":      a.CreatedAt,
	}
}

func auditFromRow(r repository.Row) *entity.CancellationAudit {
	return &entity.CancellationAudit{
		ID:             str(r, "id"),
		CancellationID: str(r, "cancellation_id"),
		Action:         str(r, "action"),
		PerformedBy:    str(r, "performed_by"),
		Details:        str(r, "details"),
		CreatedAt:      tm(r, "created_at"),
	}
}
