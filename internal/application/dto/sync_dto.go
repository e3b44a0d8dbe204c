package dto

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// PushResponse respuesta de POST /api/sync/push.
type PushResponse struct {
	Message string       `json:"message"`
	Results *BatchResult `json:"results"`
}

// BatchResult resumen por registro de un lote de cambios.
type BatchResult struct {
	Success int             `json:"success"`
	Failed  int             `json:"failed"`
	Errors  []FailedChange  `json:"errors"`
	Applied []AppliedChange `json:"applied"`
}

// FailedChange entrada rechazada junto con su mensaje de error. Operation es la entrada original.
type FailedChange struct {
	Index     int             `json:"index"`
	Operation json.RawMessage `json:"operation"`
	Code      string          `json:"code"`
	Error     string          `json:"error"`
}

// AppliedChange entrada aplicada. LocalID es el id del dispositivo cuando el servidor asignó uno nuevo.
type AppliedChange struct {
	Index      int    `json:"index"`
	EntityName string `json:"entityName"`
	Operation  string `json:"operation"`
	ID         string `json:"id,omitempty"`
	LocalID    string `json:"localId,omitempty"`
	Duplicate  bool   `json:"duplicate,omitempty"`
	Items      int    `json:"items,omitempty"`
}

// FullSyncRequest cuerpo de POST /api/sync/products/full.
type FullSyncRequest struct {
	BusinessID string           `json:"businessId"`
	Products   []map[string]any `json:"products"`
}

// FullSyncResponse resultado del reemplazo total del catálogo.
type FullSyncResponse struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	Count   int                  `json:"count"`
	Failed  []FullSyncFailedItem `json:"failed,omitempty"`
}

// FullSyncFailedItem producto que no se pudo insertar durante el reemplazo.
type FullSyncFailedItem struct {
	Index int    `json:"index"`
	ID    string `json:"id,omitempty"`
	Error string `json:"error"`
}

// PullResponse instantánea completa del negocio para el dispositivo.
type PullResponse struct {
	Products   []ProductResponse  `json:"products"`
	Categories []CategoryResponse `json:"categories"`
	Users      []UserResponse     `json:"users"`
	Timestamp  string             `json:"timestamp"`
}

// ProductResponse producto expuesto en pull.
type ProductResponse struct {
	ID         string          `json:"id"`
	BusinessID string          `json:"business_id"`
	Name       string          `json:"name"`
	Barcode    *string         `json:"barcode"`
	Price      decimal.Decimal `json:"price"`
	Cost       decimal.Decimal `json:"cost"`
	Stock      int64           `json:"stock"`
	MinStock   int64           `json:"min_stock"`
	CategoryID *string         `json:"category_id"`
	Image      *string         `json:"image"`
	Type       string          `json:"type"`
	Active     bool            `json:"active"`
	CreatedAt  string          `json:"created_at"`
	UpdatedAt  string          `json:"updated_at"`
}

// CategoryResponse categoría expuesta en pull.
type CategoryResponse struct {
	ID         string  `json:"id"`
	BusinessID string  `json:"business_id"`
	Name       string  `json:"name"`
	Color      *string `json:"color"`
	Icon       *string `json:"icon"`
	Active     bool    `json:"active"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

// UserResponse usuario expuesto en pull (sin hashes).
type UserResponse struct {
	ID         string  `json:"id"`
	BusinessID string  `json:"business_id"`
	Name       string  `json:"name"`
	Email      *string `json:"email"`
	Role       string  `json:"role"`
	Phone      *string `json:"phone"`
	Avatar     *string `json:"avatar"`
	AvatarType string  `json:"avatar_type"`
	HasPin     bool    `json:"has_pin"`
	Active     bool    `json:"active"`
}
