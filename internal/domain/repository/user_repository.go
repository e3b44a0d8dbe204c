package repository

import (
	"context"

	"github.com/jhoicas/pos-sync/internal/domain/entity"
)

// UserRepository define el puerto de lectura de usuarios del negocio.
type UserRepository interface {
	ListByBusiness(ctx context.Context, businessID string) ([]*entity.User, error)
}
