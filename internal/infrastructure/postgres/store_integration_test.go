package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-sync/internal/application/ports"
	"github.com/jhoicas/pos-sync/internal/domain"
	"github.com/jhoicas/pos-sync/internal/domain/entity"
	"github.com/jhoicas/pos-sync/internal/domain/repository"
)

// testPool abre un pool contra TEST_DATABASE_URL y aplica las migraciones.
// Sin la variable la prueba se omite.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("prueba de integración omitida en modo short")
	}
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL no definida")
	}
	ctx := context.Background()
	cfg, err := pgxpool.ParseConfig(dbURL)
	require.NoError(t, err)
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	_, err = Migrate(ctx, pool)
	require.NoError(t, err)
	return pool
}

func seedProduct(t *testing.T, s *Store, businessID, name string, stock int64) *entity.Product {
	t.Helper()
	now := time.Now().UTC()
	p := &entity.Product{
		ID: uuid.New().String(), BusinessID: businessID, Name: name,
		Price: decimal.RequireFromString("15.00"), Stock: stock, MinStock: entity.DefaultMinStock,
		Type: entity.DefaultProductType, Active: true, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, s.Products().Create(context.Background(), p))
	return p
}

func TestEntityRepo_InsertUpdateDelete(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	s := NewStore(pool)
	biz := "biz-" + uuid.New().String()
	id := uuid.New().String()
	now := time.Now().UTC()

	err := s.Entities().Insert(ctx, "categories", repository.Row{
		"id": id, "business_id": biz, "name": "Bebidas", "active": true, "created_at": now, "updated_at": now,
	})
	require.NoError(t, err)

	err = s.Entities().Update(ctx, "categories", biz, id, repository.Row{"name": "Refrescos"})
	require.NoError(t, err)

	list, err := s.Categories().ListByBusiness(ctx, biz)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Refrescos", list[0].Name)

	err = s.Entities().Update(ctx, "categories", "otro-negocio", id, repository.Row{"name": "X"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, s.Entities().Delete(ctx, "categories", biz, id))
	require.NoError(t, s.Entities().Delete(ctx, "categories", biz, id))

	err = s.Entities().Insert(ctx, "no_existe", repository.Row{"id": "x"})
	assert.ErrorIs(t, err, domain.ErrUnknownEntity)
}

func TestSaleRepo_ClientSaleIDUnico(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	s := NewStore(pool)
	biz := "biz-" + uuid.New().String()
	key := "local-" + uuid.New().String()

	mk := func() *entity.Sale {
		return &entity.Sale{
			ID: uuid.New().String(), BusinessID: biz, ClientSaleID: &key,
			Total: decimal.RequireFromString("30.50"), PaymentMethod: entity.PaymentCash,
			Status: entity.SaleStatusCompleted, CreatedAt: time.Now().UTC(),
		}
	}
	first := mk()
	require.NoError(t, s.Sales().Create(ctx, first))
	assert.ErrorIs(t, s.Sales().Create(ctx, mk()), domain.ErrDuplicate)

	found, err := s.Sales().FindByClientSaleID(ctx, biz, key)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, first.ID, found.ID)
	assert.True(t, found.Total.Equal(decimal.RequireFromString("30.50")))

	missing := "prod-" + uuid.New().String()
	err = s.Sales().CreateItem(ctx, &entity.SaleItem{
		ID: uuid.New().String(), SaleID: first.ID, ProductID: &missing, ProductName: "X", Quantity: 1,
	})
	assert.ErrorIs(t, err, domain.ErrReferential)
}

func TestTxRunner_RollbackYSavepoint(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	s := NewStore(pool)
	runner := NewTxRunner(pool)
	biz := "biz-" + uuid.New().String()
	p := seedProduct(t, s, biz, "Agua 1L", 60)

	// Rollback completo: el ajuste no persiste.
	err := runner.Run(ctx, func(tx ports.Tx) error {
		require.NoError(t, tx.Products().AdjustStock(ctx, biz, p.ID, -1))
		return domain.ErrReferential
	})
	assert.ErrorIs(t, err, domain.ErrReferential)
	got, err := s.Products().GetByID(ctx, biz, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(60), got.Stock)

	// Un savepoint fallido no aborta la transacción externa.
	err = runner.Run(ctx, func(tx ports.Tx) error {
		require.NoError(t, tx.Products().AdjustStock(ctx, biz, p.ID, -1))
		spErr := tx.Savepoint(ctx, func(st ports.Store) error {
			return st.Products().Create(ctx, &entity.Product{ID: p.ID, BusinessID: biz, Name: "dup", Type: "unit"})
		})
		assert.ErrorIs(t, spErr, domain.ErrDuplicate)
		return nil
	})
	require.NoError(t, err)
	got, err = s.Products().GetByID(ctx, biz, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(59), got.Stock)
}

func TestProductRepo_AdjustStockSinProducto(t *testing.T) {
	pool := testPool(t)
	s := NewStore(pool)
	err := s.Products().AdjustStock(context.Background(), "biz-"+uuid.New().String(), "nada", -1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSaleRepo_ListYResumenDeCancelaciones(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	s := NewStore(pool)
	biz := "biz-" + uuid.New().String()
	now := time.Now().UTC().Truncate(time.Second)

	newSale := func(id string, at time.Time) {
		require.NoError(t, s.Sales().Create(ctx, &entity.Sale{
			ID: id, BusinessID: biz, Total: decimal.NewFromInt(30), PaymentMethod: entity.PaymentCash,
			Status: entity.SaleStatusCompleted, CreatedAt: at,
		}))
	}
	oldID, newID := uuid.New().String(), uuid.New().String()
	newSale(oldID, now.AddDate(0, 0, -3))
	newSale(newID, now)

	c := &entity.Cancellation{
		ID: uuid.New().String(), BusinessID: biz, SaleID: newID, CancelledBy: "u", ReasonCode: "02",
		ReasonText: entity.CancellationReasons["02"], RequiresRefund: true, RefundStatus: entity.RefundStatusPending,
		RefundAmount: decimal.NewFromInt(30), CancelledAt: now,
	}
	require.NoError(t, s.Cancellations().Create(ctx, c))
	require.NoError(t, s.Sales().MarkCancelled(ctx, biz, newID, c.ID, now))

	all, err := s.Sales().List(ctx, repository.SaleFilter{BusinessID: biz})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, newID, all[0].ID, "más recientes primero")

	active := false
	onlyActive, err := s.Sales().List(ctx, repository.SaleFilter{BusinessID: biz, Cancelled: &active, Limit: 10})
	require.NoError(t, err)
	require.Len(t, onlyActive, 1)
	assert.Equal(t, oldID, onlyActive[0].ID)

	from := now.AddDate(0, 0, -1)
	recent, err := s.Sales().List(ctx, repository.SaleFilter{BusinessID: biz, From: &from})
	require.NoError(t, err)
	require.Len(t, recent, 1)

	bySale, err := s.Cancellations().ListBySales(ctx, biz, []string{newID, oldID})
	require.NoError(t, err)
	require.Len(t, bySale, 1)
	assert.Equal(t, c.ID, bySale[0].ID)

	summary, err := s.Cancellations().Summary(ctx, biz, nil, nil)
	require.NoError(t, err)
	require.Len(t, summary, 1)
	assert.Equal(t, "02", summary[0].ReasonCode)
	assert.Equal(t, int64(1), summary[0].Total)
	assert.Equal(t, int64(1), summary[0].RefundsPending)
	assert.True(t, summary[0].TotalRefundAmount.Equal(decimal.NewFromInt(30)))

	later := now.Add(time.Hour)
	empty, err := s.Cancellations().Summary(ctx, biz, &later, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
