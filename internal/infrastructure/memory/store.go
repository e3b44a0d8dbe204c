// Package memory implementa el almacén en memoria: mismo contrato que PostgreSQL
// (unicidad, llaves foráneas, transacciones y savepoints) para desarrollo local y pruebas.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/pos-sync/internal/application/ports"
	"github.com/jhoicas/pos-sync/internal/domain/repository"
)

var (
	_ ports.Store    = (*Store)(nil)
	_ ports.TxRunner = (*Store)(nil)
	_ ports.Tx       = (*txScope)(nil)
)

type record struct {
	seq uint64
	row repository.Row
}

type state struct {
	seq    uint64
	tables map[string]map[string]*record
}

func newState() *state {
	st := &state{tables: make(map[string]map[string]*record)}
	for _, t := range knownTables {
		st.tables[t] = make(map[string]*record)
	}
	return st
}

func (st *state) clone() *state {
	c := &state{seq: st.seq, tables: make(map[string]map[string]*record, len(st.tables))}
	for name, rows := range st.tables {
		cp := make(map[string]*record, len(rows))
		for id, rec := range rows {
			row := make(repository.Row, len(rec.row))
			for k, v := range rec.row {
				row[k] = v
			}
			cp[id] = &record{seq: rec.seq, row: row}
		}
		c.tables[name] = cp
	}
	return c
}

func (st *state) put(table, id string, row repository.Row) {
	st.seq++
	st.tables[table][id] = &record{seq: st.seq, row: row}
}

// scan devuelve las filas de la tabla que cumplen match, en orden de inserción.
func (st *state) scan(table string, match func(repository.Row) bool) []repository.Row {
	recs := make([]*record, 0)
	for _, rec := range st.tables[table] {
		if match == nil || match(rec.row) {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].seq < recs[j].seq })
	out := make([]repository.Row, len(recs))
	for i, rec := range recs {
		out[i] = rec.row
	}
	return out
}

// Store guarda todas las tablas en memoria. Las operaciones se serializan: una escritura fuera
// de transacción espera a que termine la transacción en curso.
type Store struct {
	txMu sync.Mutex // una transacción (u operación suelta) a la vez
	mu   sync.Mutex // protege data
	data *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{data: newState()}
}

// exec ejecuta fn sobre el estado. Dentro de una transacción txMu ya está tomado.
func (s *Store) exec(inTx bool, fn func(st *state) error) error {
	if !inTx {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

func (s *Store) snapshot() *state {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.clone()
}

func (s *Store) restore(st *state) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = st
}

// Run ejecuta fn en una transacción: si fn falla se restaura el estado previo.
func (s *Store) Run(ctx context.Context, fn func(tx ports.Tx) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	before := s.snapshot()
	if err := fn(&txScope{view: view{s: s, inTx: true}}); err != nil {
		s.restore(before)
		return err
	}
	return nil
}

func (s *Store) Entities() repository.EntityRepository { return view{s: s}.Entities() }
func (s *Store) Products() repository.ProductRepository { return view{s: s}.Products() }
func (s *Store) Categories() repository.CategoryRepository { return view{s: s}.Categories() }
func (s *Store) Users() repository.UserRepository { return view{s: s}.Users() }
func (s *Store) Sales() repository.SaleRepository { return view{s: s}.Sales() }
func (s *Store) Movements() repository.StockMovementRepository { return view{s: s}.Movements() }
func (s *Store) Cancellations() repository.CancellationRepository { return view{s: s}.Cancellations() }

// view son los repositorios sobre el almacén, dentro o fuera de una transacción.
type view struct {
	s    *Store
	inTx bool
}

func (v view) Entities() repository.EntityRepository { return entityRepo{v} }
func (v view) Products() repository.ProductRepository { return productRepo{v} }
func (v view) Categories() repository.CategoryRepository { return categoryRepo{v} }
func (v view) Users() repository.UserRepository { return userRepo{v} }
func (v view) Sales() repository.SaleRepository { return saleRepo{v} }
func (v view) Movements() repository.StockMovementRepository { return movementRepo{v} }
func (v view) Cancellations() repository.CancellationRepository { return cancellationRepo{v} }

func (v view) exec(fn func(st *state) error) error {
	return v.s.exec(v.inTx, fn)
}

type txScope struct {
	view
}

// Savepoint deshace solo lo hecho por fn si fn falla.
func (t *txScope) Savepoint(ctx context.Context, fn func(ports.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	before := t.s.snapshot()
	if err := fn(t.view); err != nil {
		t.s.restore(before)
		return err
	}
	return nil
}
