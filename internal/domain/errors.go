package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")
)

// Errores de reconciliación de cambios offline.
var (
	// ErrMalformedRecord: la entrada del lote no se puede interpretar (falta entidad u operación).
	ErrMalformedRecord = errors.New("registro de cambio mal formado")
	// ErrPersistence: el almacén rechazó la lectura/escritura.
	ErrPersistence = errors.New("error de persistencia")
	// ErrReferential: un ítem de venta apunta a un producto inexistente o de otro negocio.
	ErrReferential = errors.New("referencia a producto inválida")
	// ErrUnknownEntity: colección no reconocida por el servidor.
	ErrUnknownEntity = errors.New("colección desconocida")
)

// Errores de cancelaciones y reembolsos.
var (
	ErrAlreadyCancelled       = errors.New("la venta ya fue cancelada")
	ErrCancellationExpired    = errors.New("periodo de cancelación vencido")
	ErrRefundNotRequired      = errors.New("la cancelación no requiere reembolso")
	ErrRefundAlreadyProcessed = errors.New("el reembolso ya fue procesado")
)
