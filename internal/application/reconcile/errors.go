package reconcile

import (
	"errors"
	"fmt"

	"github.com/jhoicas/pos-sync/internal/domain"
)

// Códigos de error expuestos en BatchResult.errors.
const (
	CodeMalformed   = "MALFORMED_RECORD"
	CodeReferential = "REFERENTIAL"
	CodePersistence = "PERSISTENCE"
)

func malformed(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrMalformedRecord, msg)
}

func referential(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrReferential, msg)
}

// classify deja pasar errores ya tipificados y envuelve el resto como error de persistencia.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrMalformedRecord) ||
		errors.Is(err, domain.ErrReferential) ||
		errors.Is(err, domain.ErrPersistence) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
}

// ErrorCode traduce un error de reconciliación a su código de respuesta.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrMalformedRecord):
		return CodeMalformed
	case errors.Is(err, domain.ErrReferential):
		return CodeReferential
	default:
		return CodePersistence
	}
}
