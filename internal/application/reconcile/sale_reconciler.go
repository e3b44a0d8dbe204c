package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-sync/internal/application/ports"
	"github.com/jhoicas/pos-sync/internal/domain"
	"github.com/jhoicas/pos-sync/internal/domain/entity"
)

// SaleReconciler aplica una venta completa: encabezado, líneas y descuento de stock
// en una sola transacción. Si una línea falla no queda nada de la venta.
type SaleReconciler struct {
	store ports.Store
	tx    ports.TxRunner
	log   zerolog.Logger
	now   func() time.Time
}

// NewSaleReconciler construye el reconciliador de ventas.
func NewSaleReconciler(store ports.Store, tx ports.TxRunner, log zerolog.Logger) *SaleReconciler {
	return &SaleReconciler{store: store, tx: tx, log: log, now: time.Now}
}

type saleLine struct {
	productID string
	name      string
	quantity  int64
	unitPrice decimal.Decimal
	subtotal  decimal.Decimal
}

// Apply registra la venta. Si el clientSaleId ya existe devuelve la venta original con Duplicate=true
// sin escribir nada. En ambos casos el id local queda asociado al id del servidor.
func (r *SaleReconciler) Apply(ctx context.Context, actor Actor, rec ChangeRecord, ids *IDMap) (Outcome, error) {
	sale, lines, err := r.parse(actor, rec.Payload, ids)
	if err != nil {
		return Outcome{}, err
	}
	clientSaleID := ""
	if sale.ClientSaleID != nil {
		clientSaleID = *sale.ClientSaleID
	}

	out := Outcome{LocalID: rec.ID()}
	err = r.tx.Run(ctx, func(tx ports.Tx) error {
		existing, dup, err := CheckDuplicateSale(ctx, tx.Sales(), actor.BusinessID, clientSaleID)
		if err != nil {
			return err
		}
		if dup {
			out.ID, out.Duplicate = existing, true
			return nil
		}

		if err := tx.Sales().Create(ctx, sale); err != nil {
			return err
		}
		for i, line := range lines {
			if err := r.applyLine(ctx, tx, actor, sale, i, line); err != nil {
				return err
			}
			out.ProductIDs = append(out.ProductIDs, line.productID)
		}
		out.ID, out.Items = sale.ID, len(lines)
		return nil
	})
	if err != nil {
		// Un reintento concurrente insertó la misma venta entre la verificación y el insert.
		if errors.Is(err, domain.ErrDuplicate) && clientSaleID != "" {
			if existing, dup, cerr := CheckDuplicateSale(ctx, r.store.Sales(), actor.BusinessID, clientSaleID); cerr == nil && dup {
				out = Outcome{ID: existing, LocalID: out.LocalID, Duplicate: true}
				ids.Bind(EntitySales, out.LocalID, out.ID)
				return out, nil
			}
		}
		return Outcome{}, classify(err)
	}

	ids.Bind(EntitySales, out.LocalID, out.ID)
	if !out.Duplicate {
		r.warnTotalMismatch(sale, lines)
	}
	return out, nil
}

func (r *SaleReconciler) applyLine(ctx context.Context, tx ports.Tx, actor Actor, sale *entity.Sale, i int, line saleLine) error {
	product, err := tx.Products().GetByID(ctx, actor.BusinessID, line.productID)
	if err != nil {
		return err
	}
	if product == nil {
		return referential(fmt.Sprintf("ítem %d: el producto %s no existe en el negocio", i, line.productID))
	}
	name := line.name
	if name == "" {
		name = product.Name
	}

	productID := line.productID
	item := &entity.SaleItem{
		ID:          uuid.NewString(),
		SaleID:      sale.ID,
		ProductID:   &productID,
		ProductName: name,
		Quantity:    line.quantity,
		UnitPrice:   line.unitPrice,
		Subtotal:    line.subtotal,
	}
	if err := tx.Sales().CreateItem(ctx, item); err != nil {
		return fmt.Errorf("ítem %d: %w", i, err)
	}

	// Descuento ciego: el stock puede quedar negativo con ventas concurrentes.
	if err := tx.Products().AdjustStock(ctx, actor.BusinessID, productID, -line.quantity); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return referential(fmt.Sprintf("ítem %d: el producto %s no existe en el negocio", i, productID))
		}
		return fmt.Errorf("ítem %d: descontar stock: %w", i, err)
	}

	return tx.Movements().Create(ctx, &entity.StockMovement{
		ID:         uuid.NewString(),
		BusinessID: actor.BusinessID,
		ProductID:  &productID,
		UserID:     sale.UserID,
		Type:       entity.MovementTypeSale,
		Quantity:   -line.quantity,
		Reason:     "Venta #" + sale.ID,
		CreatedAt:  sale.CreatedAt,
	})
}

// parse transforma el encabezado: date→created_at, método de pago traducido, se descartan
// cash_received/cash_change/payment_reference y el id local. El total se conserva tal cual.
func (r *SaleReconciler) parse(actor Actor, payload map[string]any, ids *IDMap) (*entity.Sale, []saleLine, error) {
	now := r.now().UTC()
	sale := &entity.Sale{
		ID:         uuid.NewString(),
		BusinessID: actor.BusinessID,
		Status:     entity.SaleStatusCompleted,
		CreatedAt:  now,
	}

	rawTotal, ok := firstOf(payload, "total")
	if !ok || rawTotal == nil {
		return nil, nil, classify(fmt.Errorf("%w: falta total", domain.ErrInvalidInput))
	}
	total, err := asDecimal(rawTotal)
	if err != nil {
		return nil, nil, classify(fmt.Errorf("%w: total: %v", domain.ErrInvalidInput, err))
	}
	if total.IsNegative() {
		return nil, nil, classify(fmt.Errorf("%w: total negativo", domain.ErrInvalidInput))
	}
	sale.Total = total

	method := ""
	if v, ok := firstOf(payload, "payment_method", "paymentMethod", "payment_type", "paymentType"); ok {
		method, _ = asString(v)
	}
	sale.PaymentMethod = NormalizePaymentMethod(method)

	if v, ok := firstOf(payload, "date", "createdAt", "created_at"); ok && v != nil {
		ts, err := asTime(v)
		if err != nil {
			return nil, nil, classify(fmt.Errorf("%w: fecha: %v", domain.ErrInvalidInput, err))
		}
		sale.CreatedAt = ts
	}
	if v, ok := firstOf(payload, "clientSaleId", "client_sale_id"); ok {
		if s, ok := asString(v); ok {
			sale.ClientSaleID = &s
		}
	}
	userID := actor.UserID
	if v, ok := firstOf(payload, "userId", "user_id"); ok {
		if s, ok := asString(v); ok {
			userID = ids.Resolve("users", s)
		}
	}
	if userID != "" {
		sale.UserID = &userID
	}

	rawItems, ok := payload["items"].([]any)
	if !ok {
		return nil, nil, malformed("items debe ser una lista")
	}
	lines := make([]saleLine, 0, len(rawItems))
	for i, raw := range rawItems {
		line, err := parseLine(raw, ids)
		if err != nil {
			return nil, nil, malformed(fmt.Sprintf("ítem %d: %v", i, err))
		}
		lines = append(lines, line)
	}
	return sale, lines, nil
}

func parseLine(raw any, ids *IDMap) (saleLine, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return saleLine{}, errors.New("el ítem no es un objeto")
	}
	var line saleLine

	v, _ := firstOf(m, "product_id", "productId")
	pid, ok := asString(v)
	if !ok {
		return saleLine{}, errors.New("falta product_id")
	}
	line.productID = ids.Resolve("products", pid)

	v, ok = firstOf(m, "quantity")
	if !ok {
		return saleLine{}, errors.New("falta quantity")
	}
	q, err := asInt(v)
	if err != nil || q <= 0 {
		return saleLine{}, fmt.Errorf("quantity debe ser un entero mayor a 0")
	}
	line.quantity = q

	if v, ok := firstOf(m, "unit_price", "unitPrice", "price"); ok && v != nil {
		if line.unitPrice, err = asDecimal(v); err != nil {
			return saleLine{}, fmt.Errorf("unit_price: %v", err)
		}
	}
	if v, ok := firstOf(m, "subtotal"); ok && v != nil {
		if line.subtotal, err = asDecimal(v); err != nil {
			return saleLine{}, fmt.Errorf("subtotal: %v", err)
		}
	} else {
		line.subtotal = line.unitPrice.Mul(decimal.NewFromInt(q))
	}
	if v, ok := firstOf(m, "product_name", "productName", "name"); ok {
		line.name, _ = asString(v)
	}
	return line, nil
}

func (r *SaleReconciler) warnTotalMismatch(sale *entity.Sale, lines []saleLine) {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.subtotal)
	}
	if !sum.Equal(sale.Total) {
		r.log.Warn().
			Str("sale_id", sale.ID).
			Str("total", sale.Total.String()).
			Str("items_sum", sum.String()).
			Msg("el total de la venta no coincide con la suma de subtotales")
	}
}
