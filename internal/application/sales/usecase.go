// Package sales expone la consulta de ventas ya sincronizadas y su ticket.
package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/pos-sync/internal/application/dto"
	"github.com/jhoicas/pos-sync/internal/application/ports"
	"github.com/jhoicas/pos-sync/internal/domain"
	"github.com/jhoicas/pos-sync/internal/domain/entity"
)

// TicketGenerator puerto para renderizar el ticket de una venta.
type TicketGenerator interface {
	GenerateTicket(ctx context.Context, sale *entity.Sale, items []*entity.SaleItem) ([]byte, error)
}

// UseCase lectura de ventas.
type UseCase struct {
	store     ports.Store
	generator TicketGenerator
}

func NewUseCase(store ports.Store, generator TicketGenerator) *UseCase {
	return &UseCase{store: store, generator: generator}
}

func (uc *UseCase) load(ctx context.Context, businessID, saleID string) (*entity.Sale, []*entity.SaleItem, error) {
	sale, err := uc.store.Sales().GetByID(ctx, businessID, saleID)
	if err != nil {
		return nil, nil, fmt.Errorf("obtener venta: %w", err)
	}
	if sale == nil {
		return nil, nil, domain.ErrNotFound
	}
	items, err := uc.store.Sales().ListItems(ctx, sale.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("obtener líneas: %w", err)
	}
	return sale, items, nil
}

// Get devuelve la venta con sus líneas.
func (uc *UseCase) Get(ctx context.Context, businessID, saleID string) (*dto.SaleDetailResponse, error) {
	sale, items, err := uc.load(ctx, businessID, saleID)
	if err != nil {
		return nil, err
	}
	out := &dto.SaleDetailResponse{Sale: toSaleResponse(sale), Items: make([]dto.SaleItemResponse, 0, len(items))}
	for _, it := range items {
		out.Items = append(out.Items, dto.SaleItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Subtotal:    it.Subtotal,
		})
	}
	return out, nil
}

// Ticket genera el PDF del ticket. Devuelve los bytes y el nombre de archivo sugerido.
func (uc *UseCase) Ticket(ctx context.Context, businessID, saleID string) ([]byte, string, error) {
	sale, items, err := uc.load(ctx, businessID, saleID)
	if err != nil {
		return nil, "", err
	}
	pdf, err := uc.generator.GenerateTicket(ctx, sale, items)
	if err != nil {
		return nil, "", fmt.Errorf("generar ticket: %w", err)
	}
	return pdf, fmt.Sprintf("ticket-%s.pdf", sale.ID), nil
}

func toSaleResponse(s *entity.Sale) dto.SaleResponse {
	out := dto.SaleResponse{
		ID:             s.ID,
		BusinessID:     s.BusinessID,
		UserID:         s.UserID,
		ClientSaleID:   s.ClientSaleID,
		Total:          s.Total,
		PaymentMethod:  s.PaymentMethod,
		Status:         s.Status,
		Cancelled:      s.Cancelled,
		CancellationID: s.CancellationID,
		CreatedAt:      s.CreatedAt.Format(time.RFC3339),
	}
	if s.CancelledAt != nil {
		at := s.CancelledAt.Format(time.RFC3339)
		out.CancelledAt = &at
	}
	return out
}
