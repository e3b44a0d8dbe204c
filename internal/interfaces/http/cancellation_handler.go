package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-sync/internal/application/cancellation"
	"github.com/jhoicas/pos-sync/internal/application/dto"
)

// CancellationHandler anulación de ventas y reembolsos.
type CancellationHandler struct {
	uc *cancellation.UseCase
}

func NewCancellationHandler(uc *cancellation.UseCase) *CancellationHandler {
	return &CancellationHandler{uc: uc}
}

// Create godoc
// @Summary      Cancelar venta
// @Description  Marca la venta como cancelada, reintegra el stock y registra la bitácora. Plazo máximo 90 días.
// @Tags         cancellations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CancelSaleRequest  true  "Datos de la cancelación"
// @Success      201   {object}  dto.CancellationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/cancellations [post]
func (h *CancellationHandler) Create(c *fiber.Ctx) error {
	businessID, userID := GetBusinessID(c), GetUserID(c)
	if businessID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.CancelSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Cancel(c.UserContext(), businessID, userID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener cancelación
// @Tags         cancellations
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la cancelación"
// @Success      200  {object}  dto.CancellationDetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/cancellations/{id} [get]
func (h *CancellationHandler) GetByID(c *fiber.Ctx) error {
	businessID := GetBusinessID(c)
	if businessID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.Get(c.UserContext(), businessID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Refund godoc
// @Summary      Procesar reembolso
// @Tags         cancellations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "ID de la cancelación"
// @Param        body  body  dto.RefundRequest  true  "Datos del reembolso"
// @Success      200   {object}  dto.RefundResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/cancellations/{id}/refund [post]
func (h *CancellationHandler) Refund(c *fiber.Ctx) error {
	businessID, userID := GetBusinessID(c), GetUserID(c)
	if businessID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.RefundRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.ProcessRefund(c.UserContext(), businessID, userID, c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar ventas cancelables
// @Description  Ventas del negocio con su cancelación, can_cancel y days_remaining del plazo de 90 días.
// @Tags         cancellations
// @Security     Bearer
// @Produce      json
// @Param        status     query  string  false  "cancelled | active"
// @Param        startDate  query  string  false  "YYYY-MM-DD"
// @Param        endDate    query  string  false  "YYYY-MM-DD"
// @Param        limit      query  int     false  "máximo de ventas (50 por defecto)"
// @Success      200  {object}  dto.CancellableSalesResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/cancellations [get]
func (h *CancellationHandler) List(c *fiber.Ctx) error {
	businessID := GetBusinessID(c)
	if businessID == "" {
		return unauthorized(c)
	}
	var q dto.CancellableSalesQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	out, err := h.uc.List(c.UserContext(), businessID, q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Report godoc
// @Summary      Reporte de cancelaciones
// @Description  Totales por motivo SAT: cancelaciones, reembolsos requeridos, completados, pendientes y monto.
// @Tags         cancellations
// @Security     Bearer
// @Produce      json
// @Param        startDate  query  string  false  "YYYY-MM-DD"
// @Param        endDate    query  string  false  "YYYY-MM-DD"
// @Success      200  {object}  dto.CancellationReportResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/cancellations/report/summary [get]
func (h *CancellationHandler) Report(c *fiber.Ctx) error {
	businessID := GetBusinessID(c)
	if businessID == "" {
		return unauthorized(c)
	}
	var q dto.CancellationReportQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	out, err := h.uc.Report(c.UserContext(), businessID, q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
