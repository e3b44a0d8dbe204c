package entity

import "time"

// Category agrupa productos dentro de un negocio.
type Category struct {
	ID         string
	BusinessID string
	Name       string
	Color      *string
	Icon       *string
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
