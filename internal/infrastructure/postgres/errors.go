package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/pos-sync/internal/domain"
)

// Códigos SQLSTATE que se traducen a errores de dominio.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeNotNullViolation    = "23502"
	codeUndefinedTable      = "42P01"
	codeUndefinedColumn     = "42703"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return pgCode(err) == codeUniqueViolation
}

// mapError envuelve el error de PostgreSQL con el error de dominio equivalente.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	switch pgCode(err) {
	case codeUniqueViolation:
		return fmt.Errorf("%s: %w", op, domain.ErrDuplicate)
	case codeForeignKeyViolation:
		return fmt.Errorf("%s: %w: %v", op, domain.ErrReferential, err)
	case codeUndefinedTable:
		return fmt.Errorf("%s: %w: %v", op, domain.ErrUnknownEntity, err)
	case codeNotNullViolation, codeUndefinedColumn:
		return fmt.Errorf("%s: %w: %v", op, domain.ErrPersistence, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
