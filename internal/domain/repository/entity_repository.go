package repository

import "context"

// Row es un conjunto columna→valor ya validado contra la lista permitida de la entidad.
type Row map[string]any

// EntityRepository aplica mutaciones genéricas de una sola fila sobre una colección del negocio.
// Las columnas deben venir proyectadas: el adaptador no filtra nombres.
type EntityRepository interface {
	// Insert crea la fila. Devuelve domain.ErrDuplicate ante violación de unicidad.
	Insert(ctx context.Context, table string, row Row) error
	// Update modifica la fila id del negocio. Devuelve domain.ErrNotFound si no hubo filas afectadas.
	Update(ctx context.Context, table, businessID, id string, row Row) error
	// Delete elimina la fila id del negocio. Es idempotente.
	Delete(ctx context.Context, table, businessID, id string) error
}
