package entity

import "time"

// Roles válidos para User.
const (
	RoleOwner   = "owner"
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleCashier = "cashier"
)

// User representa un usuario de un negocio. PasswordHash y PinHash son bcrypt y nunca salen en respuestas.
type User struct {
	ID           string
	BusinessID   string
	Name         string
	Email        *string
	PasswordHash *string
	PinHash      *string
	Role         string
	Phone        *string
	Avatar       *string
	AvatarType   string // initials, image
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
