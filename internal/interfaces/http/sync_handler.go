package http

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-sync/internal/application/dto"
	"github.com/jhoicas/pos-sync/internal/application/reconcile"
	"github.com/jhoicas/pos-sync/internal/domain"
)

// SyncHandler expone push, pull y el reemplazo total del catálogo.
type SyncHandler struct {
	orchestrator *reconcile.Orchestrator
	pull         *reconcile.PullUseCase
	fullReplace  *reconcile.FullReplaceReconciler
}

// NewSyncHandler construye el handler.
func NewSyncHandler(o *reconcile.Orchestrator, pull *reconcile.PullUseCase, full *reconcile.FullReplaceReconciler) *SyncHandler {
	return &SyncHandler{orchestrator: o, pull: pull, fullReplace: full}
}

type pushRequest struct {
	Changes json.RawMessage `json:"changes"`
}

// Push godoc
// @Summary      Enviar cambios offline
// @Description  Aplica en orden los cambios acumulados por el dispositivo. Un cambio fallido no detiene el lote.
// @Tags         sync
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  object  true  "{ changes: ChangeRecord[] }"
// @Success      200   {object}  dto.PushResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/sync/push [post]
func (h *SyncHandler) Push(c *fiber.Ctx) error {
	businessID := GetBusinessID(c)
	if businessID == "" {
		return unauthorized(c)
	}
	var in pushRequest
	if err := json.Unmarshal(c.Body(), &in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	var entries []json.RawMessage
	if t := bytes.TrimSpace(in.Changes); len(t) == 0 || t[0] != '[' || json.Unmarshal(t, &entries) != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_CHANGES", Message: "Invalid changes format"})
	}

	actor := reconcile.Actor{BusinessID: businessID, UserID: GetUserID(c)}
	res, err := h.orchestrator.Push(c.UserContext(), actor, entries)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "BATCH_TOO_LARGE", Message: err.Error()})
		}
		return writeError(c, err)
	}
	return c.JSON(dto.PushResponse{Message: "Sync processed", Results: res})
}

// Pull godoc
// @Summary      Descargar instantánea del negocio
// @Tags         sync
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.PullResponse
// @Router       /api/sync/pull [get]
func (h *SyncHandler) Pull(c *fiber.Ctx) error {
	businessID := GetBusinessID(c)
	if businessID == "" {
		return unauthorized(c)
	}
	out, err := h.pull.Snapshot(c.UserContext(), businessID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// FullProducts godoc
// @Summary      Reemplazar catálogo completo
// @Description  Borra los productos del negocio e inserta los enviados conservando sus ids.
// @Tags         sync
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.FullSyncRequest  true  "Catálogo"
// @Success      200   {object}  dto.FullSyncResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/sync/products/full [post]
func (h *SyncHandler) FullProducts(c *fiber.Ctx) error {
	businessID := GetBusinessID(c)
	if businessID == "" {
		return unauthorized(c)
	}
	var in dto.FullSyncRequest
	dec := json.NewDecoder(bytes.NewReader(c.Body()))
	dec.UseNumber()
	if err := dec.Decode(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.BusinessID != "" && in.BusinessID != businessID {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "businessId no corresponde al token"})
	}
	if in.Products == nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "products debe ser una lista"})
	}

	res, err := h.fullReplace.Replace(c.UserContext(), businessID, in.Products)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.FullSyncResponse{Success: true, Message: "Productos sincronizados", Count: res.Count}
	for _, f := range res.Failed {
		out.Failed = append(out.Failed, dto.FullSyncFailedItem{Index: f.Index, ID: f.ID, Error: f.Err.Error()})
	}
	return c.JSON(out)
}
