package cancellation

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-sync/internal/application/dto"
	"github.com/jhoicas/pos-sync/internal/application/ports"
	"github.com/jhoicas/pos-sync/internal/domain"
	"github.com/jhoicas/pos-sync/internal/domain/entity"
	"github.com/jhoicas/pos-sync/internal/infrastructure/memory"
)

const biz = "biz-1"

type eventLog struct{ names []string }

func (e *eventLog) Notify(ev ports.Event) { e.names = append(e.names, ev.Name) }

// seedSale crea un producto con stock 46 y una venta de 2 unidades hecha at.
func seedSale(t *testing.T, store *memory.Store, at time.Time) (productID, saleID string) {
	t.Helper()
	ctx := context.Background()
	productID, saleID = "prod-1", "sale-1"
	require.NoError(t, store.Products().Create(ctx, &entity.Product{
		ID: productID, BusinessID: biz, Name: "Jugo", Price: decimal.NewFromInt(15),
		Stock: 46, MinStock: entity.DefaultMinStock, Active: true, CreatedAt: at, UpdatedAt: at,
	}))
	require.NoError(t, store.Sales().Create(ctx, &entity.Sale{
		ID: saleID, BusinessID: biz, Total: decimal.NewFromInt(30), PaymentMethod: entity.PaymentCash,
		Status: entity.SaleStatusCompleted, CreatedAt: at,
	}))
	pid := productID
	require.NoError(t, store.Sales().CreateItem(ctx, &entity.SaleItem{
		ID: "item-1", SaleID: saleID, ProductID: &pid, ProductName: "Jugo", Quantity: 2,
		UnitPrice: decimal.NewFromInt(15), Subtotal: decimal.NewFromInt(30),
	}))
	return productID, saleID
}

func newUseCase(store *memory.Store, n ports.Notifier, now time.Time) *UseCase {
	uc := NewUseCase(store, store, n, zerolog.Nop())
	uc.now = func() time.Time { return now }
	return uc
}

func stock(t *testing.T, store *memory.Store, id string) int64 {
	t.Helper()
	p, err := store.Products().GetByID(context.Background(), biz, id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Stock
}

func strPtr(s string) *string { return &s }

// ──────────────────────────────────────────────────────────────────────────────
// Cancel
// ──────────────────────────────────────────────────────────────────────────────

func TestCancel_ReintegraStockYRegistraBitacora(t *testing.T) {
	store := memory.NewStore()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	productID, saleID := seedSale(t, store, now.Add(-time.Hour))
	events := &eventLog{}
	uc := newUseCase(store, events, now)

	out, err := uc.Cancel(context.Background(), biz, "u-owner", dto.CancelSaleRequest{
		SaleID: saleID, ReasonCode: "02", RequiresRefund: true, RefundMethod: strPtr("cash"),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RefundStatusPending, out.RefundStatus)
	assert.True(t, out.RefundAmount.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, 1, out.RestoredItems)
	assert.Equal(t, int64(48), stock(t, store, productID))

	sale, err := store.Sales().GetByID(context.Background(), biz, saleID)
	require.NoError(t, err)
	assert.True(t, sale.Cancelled)
	assert.Equal(t, entity.SaleStatusCancelled, sale.Status)

	moves, err := store.Movements().ListByProduct(context.Background(), biz, productID)
	require.NoError(t, err)
	require.Len(t, moves, 1)
	assert.Equal(t, entity.MovementTypeReturn, moves[0].Type)
	assert.Equal(t, int64(2), moves[0].Quantity)

	assert.Equal(t, []string{"sale:cancelled", "stock:updated"}, events.names)

	detail, err := uc.Get(context.Background(), biz, out.ID)
	require.NoError(t, err)
	require.Len(t, detail.Audit, 1)
	assert.Equal(t, entity.AuditActionCreated, detail.Audit[0].Action)
	assert.Nil(t, detail.Refund)
}

func TestCancel_SegundaVezFalla(t *testing.T) {
	store := memory.NewStore()
	now := time.Now().UTC()
	productID, saleID := seedSale(t, store, now)
	uc := newUseCase(store, nil, now)

	in := dto.CancelSaleRequest{SaleID: saleID, ReasonCode: "01"}
	_, err := uc.Cancel(context.Background(), biz, "u", in)
	require.NoError(t, err)
	_, err = uc.Cancel(context.Background(), biz, "u", in)
	assert.ErrorIs(t, err, domain.ErrAlreadyCancelled)
	assert.Equal(t, int64(48), stock(t, store, productID))
}

func TestCancel_VentanaDe90Dias(t *testing.T) {
	store := memory.NewStore()
	soldAt := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	productID, saleID := seedSale(t, store, soldAt)
	in := dto.CancelSaleRequest{SaleID: saleID, ReasonCode: "03"}

	_, err := newUseCase(store, nil, soldAt.AddDate(0, 0, 91)).Cancel(context.Background(), biz, "u", in)
	assert.ErrorIs(t, err, domain.ErrCancellationExpired)
	assert.Equal(t, int64(46), stock(t, store, productID), "nada cambia si se rechaza")

	_, err = newUseCase(store, nil, soldAt.AddDate(0, 0, 90)).Cancel(context.Background(), biz, "u", in)
	assert.NoError(t, err, "el día 90 todavía se puede cancelar")
}

func TestCancel_FraccionDeDiaPasadoElPlazo(t *testing.T) {
	store := memory.NewStore()
	soldAt := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	productID, saleID := seedSale(t, store, soldAt)
	in := dto.CancelSaleRequest{SaleID: saleID, ReasonCode: "03"}

	_, err := newUseCase(store, nil, soldAt.Add(entity.CancellationWindow+time.Minute)).Cancel(context.Background(), biz, "u", in)
	assert.ErrorIs(t, err, domain.ErrCancellationExpired, "90 días y un minuto ya vencieron")

	_, err = newUseCase(store, nil, soldAt.Add(entity.CancellationWindow-22*time.Hour)).Cancel(context.Background(), biz, "u", in)
	require.NoError(t, err)
	assert.Equal(t, int64(48), stock(t, store, productID))
}

func TestCancel_Validaciones(t *testing.T) {
	store := memory.NewStore()
	now := time.Now().UTC()
	_, saleID := seedSale(t, store, now)
	uc := newUseCase(store, nil, now)
	ctx := context.Background()

	_, err := uc.Cancel(ctx, biz, "u", dto.CancelSaleRequest{ReasonCode: "01"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Cancel(ctx, biz, "u", dto.CancelSaleRequest{SaleID: saleID, ReasonCode: "05"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Cancel(ctx, biz, "u", dto.CancelSaleRequest{SaleID: saleID, ReasonCode: "01", RequiresRefund: true, RefundMethod: strPtr("cheque")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Cancel(ctx, "otro-negocio", "u", dto.CancelSaleRequest{SaleID: saleID, ReasonCode: "01"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCancel_ProductoBorradoNoImpide(t *testing.T) {
	store := memory.NewStore()
	now := time.Now().UTC()
	_, saleID := seedSale(t, store, now)
	_, err := store.Products().DeleteByBusiness(context.Background(), biz)
	require.NoError(t, err)

	out, err := newUseCase(store, nil, now).Cancel(context.Background(), biz, "u", dto.CancelSaleRequest{SaleID: saleID, ReasonCode: "04"})
	require.NoError(t, err)
	assert.Equal(t, 0, out.RestoredItems)
}

// ──────────────────────────────────────────────────────────────────────────────
// ProcessRefund
// ──────────────────────────────────────────────────────────────────────────────

func TestProcessRefund(t *testing.T) {
	store := memory.NewStore()
	now := time.Now().UTC()
	_, saleID := seedSale(t, store, now)
	uc := newUseCase(store, nil, now)
	ctx := context.Background()

	c, err := uc.Cancel(ctx, biz, "u", dto.CancelSaleRequest{SaleID: saleID, ReasonCode: "02", RequiresRefund: true, RefundMethod: strPtr("transfer")})
	require.NoError(t, err)

	_, err = uc.ProcessRefund(ctx, biz, "u-owner", c.ID, dto.RefundRequest{Method: "bitcoin"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.ProcessRefund(ctx, "otro", "u-owner", c.ID, dto.RefundRequest{Method: "cash"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	refund, err := uc.ProcessRefund(ctx, biz, "u-owner", c.ID, dto.RefundRequest{Method: "transfer", Reference: strPtr("SPEI-1")})
	require.NoError(t, err)
	assert.True(t, refund.Amount.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, "u-owner", refund.ProcessedBy)

	_, err = uc.ProcessRefund(ctx, biz, "u-owner", c.ID, dto.RefundRequest{Method: "transfer"})
	assert.ErrorIs(t, err, domain.ErrRefundAlreadyProcessed)

	detail, err := uc.Get(ctx, biz, c.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RefundStatusCompleted, detail.Cancellation.RefundStatus)
	require.NotNil(t, detail.Refund)
	require.Len(t, detail.Audit, 2)
	assert.Equal(t, entity.AuditActionRefundProcessed, detail.Audit[1].Action)
}

func TestProcessRefund_NoRequerido(t *testing.T) {
	store := memory.NewStore()
	now := time.Now().UTC()
	_, saleID := seedSale(t, store, now)
	uc := newUseCase(store, nil, now)

	c, err := uc.Cancel(context.Background(), biz, "u", dto.CancelSaleRequest{SaleID: saleID, ReasonCode: "01"})
	require.NoError(t, err)
	_, err = uc.ProcessRefund(context.Background(), biz, "u", c.ID, dto.RefundRequest{Method: "cash"})
	assert.ErrorIs(t, err, domain.ErrRefundNotRequired)
}
