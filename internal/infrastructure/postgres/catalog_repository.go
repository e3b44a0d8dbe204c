package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/pos-sync/internal/domain/entity"
	"github.com/jhoicas/pos-sync/internal/domain/repository"
)

var (
	_ repository.CategoryRepository = (*CategoryRepo)(nil)
	_ repository.UserRepository     = (*UserRepo)(nil)
)

// CategoryRepo lectura de categorías para el pull.
type CategoryRepo struct {
	q Querier
}

func NewCategoryRepository(q Querier) *CategoryRepo {
	return &CategoryRepo{q: q}
}

func (r *CategoryRepo) ListByBusiness(ctx context.Context, businessID string) ([]*entity.Category, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, business_id, name, color, icon, active, created_at, updated_at
		 FROM categories WHERE business_id = $1 ORDER BY name, id`, businessID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()
	var list []*entity.Category
	for rows.Next() {
		var c entity.Category
		if err := rows.Scan(&c.ID, &c.BusinessID, &c.Name, &c.Color, &c.Icon, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

// UserRepo lectura de usuarios para el pull. Los hashes se leen pero el DTO nunca los expone.
type UserRepo struct {
	q Querier
}

func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

func (r *UserRepo) ListByBusiness(ctx context.Context, businessID string) ([]*entity.User, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, business_id, name, email, password_hash, pin_hash, role, phone, avatar, avatar_type, active, created_at, updated_at
		 FROM users WHERE business_id = $1 ORDER BY name, id`, businessID)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	var list []*entity.User
	for rows.Next() {
		var u entity.User
		if err := rows.Scan(&u.ID, &u.BusinessID, &u.Name, &u.Email, &u.PasswordHash, &u.PinHash, &u.Role,
			&u.Phone, &u.Avatar, &u.AvatarType, &u.Active, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		list = append(list, &u)
	}
	return list, rows.Err()
}
