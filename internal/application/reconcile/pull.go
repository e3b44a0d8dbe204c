package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/pos-sync/internal/application/dto"
	"github.com/jhoicas/pos-sync/internal/application/ports"
	"github.com/jhoicas/pos-sync/internal/domain/entity"
)

// PullUseCase arma la instantánea completa del negocio (sin paginación ni cursor).
type PullUseCase struct {
	store ports.Store
	now   func() time.Time
}

// NewPullUseCase construye el caso de uso.
func NewPullUseCase(store ports.Store) *PullUseCase {
	return &PullUseCase{store: store, now: time.Now}
}

// Snapshot devuelve productos, categorías y usuarios del negocio con la hora del servidor.
func (uc *PullUseCase) Snapshot(ctx context.Context, businessID string) (*dto.PullResponse, error) {
	products, err := uc.store.Products().ListByBusiness(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("listar productos: %w", err)
	}
	categories, err := uc.store.Categories().ListByBusiness(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("listar categorías: %w", err)
	}
	users, err := uc.store.Users().ListByBusiness(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("listar usuarios: %w", err)
	}

	out := &dto.PullResponse{
		Products:   make([]dto.ProductResponse, 0, len(products)),
		Categories: make([]dto.CategoryResponse, 0, len(categories)),
		Users:      make([]dto.UserResponse, 0, len(users)),
		Timestamp:  uc.now().UTC().Format(time.RFC3339Nano),
	}
	for _, p := range products {
		out.Products = append(out.Products, toProductResponse(p))
	}
	for _, c := range categories {
		out.Categories = append(out.Categories, dto.CategoryResponse{
			ID:         c.ID,
			BusinessID: c.BusinessID,
			Name:       c.Name,
			Color:      c.Color,
			Icon:       c.Icon,
			Active:     c.Active,
			CreatedAt:  c.CreatedAt.UTC().Format(time.RFC3339),
			UpdatedAt:  c.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	for _, u := range users {
		out.Users = append(out.Users, dto.UserResponse{
			ID:         u.ID,
			BusinessID: u.BusinessID,
			Name:       u.Name,
			Email:      u.Email,
			Role:       u.Role,
			Phone:      u.Phone,
			Avatar:     u.Avatar,
			AvatarType: u.AvatarType,
			HasPin:     u.PinHash != nil,
			Active:     u.Active,
		})
	}
	return out, nil
}

func toProductResponse(p *entity.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:         p.ID,
		BusinessID: p.BusinessID,
		Name:       p.Name,
		Barcode:    p.Barcode,
		Price:      p.Price,
		Cost:       p.Cost,
		Stock:      p.Stock,
		MinStock:   p.MinStock,
		CategoryID: p.CategoryID,
		Image:      p.Image,
		Type:       p.Type,
		Active:     p.Active,
		CreatedAt:  p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
