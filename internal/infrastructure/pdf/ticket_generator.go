// Package pdf genera el ticket de venta en ancho de impresora térmica (80 mm).
//
// Layout:
//
//	┌──────────────────────────┐
//	│  Negocio / TICKET        │
//	│  Folio + Fecha + Pago    │
//	│  ──────────────────────  │
//	│  Cant | Producto | Total │
//	│  ──────────────────────  │
//	│  TOTAL                   │
//	│  QR (id de venta)        │
//	└──────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-sync/internal/domain/entity"
)

// Ancho de rollo térmico y alto de página en mm.
const (
	ticketWidth  = 80
	ticketHeight = 297
)

var (
	colorGray = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorRed  = &props.Color{Red: 170, Green: 20, Blue: 20}
)

var paymentLabels = map[string]string{
	entity.PaymentCash:     "Efectivo",
	entity.PaymentCard:     "Tarjeta",
	entity.PaymentTransfer: "Transferencia",
	entity.PaymentOther:    "Otro",
}

// TicketGenerator arma el PDF del ticket con Maroto v2.
type TicketGenerator struct {
	title string
}

// NewTicketGenerator construye el generador; title es el encabezado (nombre del negocio o app).
func NewTicketGenerator(title string) *TicketGenerator {
	return &TicketGenerator{title: title}
}

// GenerateTicket genera el PDF y devuelve sus bytes.
func (g *TicketGenerator) GenerateTicket(_ context.Context, sale *entity.Sale, items []*entity.SaleItem) ([]byte, error) {
	cfg := config.NewBuilder().
		WithDimensions(ticketWidth, ticketHeight).
		WithLeftMargin(4).WithRightMargin(4).
		WithTopMargin(4).WithBottomMargin(4).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 7}).
		WithTitle("Ticket de venta", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRows(g.title, sale)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.2}))
	m.AddRows(itemHeaderRow())
	m.AddRows(itemRows(items)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.2}))
	m.AddRows(totalRow(sale))
	if sale.Cancelled {
		m.AddRows(row.New(6).Add(col.New(12).Add(
			text.New("VENTA CANCELADA", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Center, Color: colorRed, Top: 1}),
		)))
	}
	m.AddRows(row.New(28).Add(col.New(12).Add(code.NewQr(sale.ID, props.Rect{Percent: 90, Center: true}))))
	m.AddRows(row.New(5).Add(col.New(12).Add(
		text.New("Gracias por su compra", props.Text{Size: 7, Align: align.Center, Color: colorGray, Top: 1}),
	)))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar ticket: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRows(title string, sale *entity.Sale) []core.Row {
	folio := sale.ID
	if len(folio) > 8 {
		folio = folio[:8]
	}
	payment, ok := paymentLabels[sale.PaymentMethod]
	if !ok {
		payment = sale.PaymentMethod
	}
	return []core.Row{
		row.New(7).Add(col.New(12).Add(
			text.New(nonEmpty(title, "TICKET"), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Center, Top: 1}),
		)),
		row.New(4).Add(col.New(12).Add(
			text.New("Folio: "+strings.ToUpper(folio), props.Text{Size: 7, Align: align.Center}),
		)),
		row.New(4).Add(col.New(12).Add(
			text.New(sale.CreatedAt.Format("02/01/2006 15:04"), props.Text{Size: 7, Align: align.Center, Color: colorGray}),
		)),
		row.New(4).Add(col.New(12).Add(
			text.New("Pago: "+payment, props.Text{Size: 7, Align: align.Center, Color: colorGray}),
		)),
	}
}

func itemHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{Style: fontstyle.Bold, Size: 7, Align: a, Top: 1}))
	}
	return row.New(5).Add(
		h("Cant", 2, align.Left),
		h("Producto", 6, align.Left),
		h("Importe", 4, align.Right),
	)
}

func itemRows(items []*entity.SaleItem) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		result = append(result, row.New(5).Add(
			col.New(2).Add(text.New(fmt.Sprintf("%d", it.Quantity), props.Text{Size: 7, Top: 0.5})),
			col.New(6).Add(text.New(nonEmpty(it.ProductName, "—"), props.Text{Size: 7, Top: 0.5})),
			col.New(4).Add(text.New(formatMoney(it.Subtotal), props.Text{Size: 7, Align: align.Right, Top: 0.5})),
		))
	}
	return result
}

func totalRow(sale *entity.Sale) core.Row {
	return row.New(7).Add(
		col.New(6).Add(text.New("TOTAL", props.Text{Style: fontstyle.Bold, Size: 9, Top: 1})),
		col.New(6).Add(text.New(formatMoney(sale.Total), props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 1})),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney formatea con dos decimales y comas de miles. Ej: 1234.5 → "$1,234.50".
func formatMoney(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, frac := s[:len(s)-3], s[len(s)-3:]
	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, c)
	}
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	return sign + "$" + string(buf) + frac
}
