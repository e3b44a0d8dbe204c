package postgres

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pos-sync/internal/domain"
	"github.com/jhoicas/pos-sync/internal/domain/repository"
)

var _ repository.EntityRepository = (*EntityRepo)(nil)

// syncTables son las colecciones que aceptan mutaciones genéricas.
var syncTables = map[string]bool{
	"products":      true,
	"categories":    true,
	"users":         true,
	"sales":         true,
	"cash_sessions": true,
}

// EntityRepo ejecuta INSERT/UPDATE/DELETE de una fila con SQL dinámico.
// Tabla y columnas se citan con pgx.Identifier; los valores siempre van como parámetros.
type EntityRepo struct {
	q Querier
}

// NewEntityRepository construye el adaptador genérico. Pasar pool o tx (Querier).
func NewEntityRepository(q Querier) *EntityRepo {
	return &EntityRepo{q: q}
}

func (r *EntityRepo) Insert(ctx context.Context, table string, row repository.Row) error {
	if err := checkTable(table); err != nil {
		return err
	}
	cols := sortedColumns(row)
	if len(cols) == 0 {
		return fmt.Errorf("insert %s: %w: fila vacía", table, domain.ErrPersistence)
	}
	names := make([]string, len(cols))
	marks := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		names[i] = pgx.Identifier{c}.Sanitize()
		marks[i] = fmt.Sprintf("$%d", i+1)
		args[i] = row[c]
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		pgx.Identifier{table}.Sanitize(), strings.Join(names, ", "), strings.Join(marks, ", "))
	_, err := r.q.Exec(ctx, query, args...)
	return mapError("insert "+table, err)
}

func (r *EntityRepo) Update(ctx context.Context, table, businessID, id string, row repository.Row) error {
	if err := checkTable(table); err != nil {
		return err
	}
	cols := sortedColumns(row)
	if len(cols) == 0 {
		return fmt.Errorf("update %s: %w: sin columnas", table, domain.ErrPersistence)
	}
	sets := make([]string, len(cols))
	args := make([]any, 0, len(cols)+2)
	for i, c := range cols {
		sets[i] = fmt.Sprintf("%s = $%d", pgx.Identifier{c}.Sanitize(), i+1)
		args = append(args, row[c])
	}
	args = append(args, id, businessID)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d AND business_id = $%d",
		pgx.Identifier{table}.Sanitize(), strings.Join(sets, ", "), len(cols)+1, len(cols)+2)
	cmd, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return mapError("update "+table, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *EntityRepo) Delete(ctx context.Context, table, businessID, id string) error {
	if err := checkTable(table); err != nil {
		return err
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1 AND business_id = $2", pgx.Identifier{table}.Sanitize())
	_, err := r.q.Exec(ctx, query, id, businessID)
	return mapError("delete "+table, err)
}

func checkTable(table string) error {
	if !syncTables[table] {
		return fmt.Errorf("%w: %s", domain.ErrUnknownEntity, table)
	}
	return nil
}

// sortedColumns da un orden estable a las columnas para que el SQL generado sea reproducible.
func sortedColumns(row repository.Row) []string {
	cols := make([]string, 0, len(row))
	for c := range row {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}
