package ports

import "time"

// Event es un aviso a los demás dispositivos del negocio (ej. "product:updated", "sale:created").
type Event struct {
	BusinessID string    `json:"business_id"`
	Name       string    `json:"event"`
	Data       any       `json:"data,omitempty"`
	At         time.Time `json:"at"`
}

// Notifier publica eventos sin bloquear ni devolver error: un fallo nunca afecta la reconciliación.
type Notifier interface {
	Notify(ev Event)
}

// NopNotifier descarta todos los eventos.
type NopNotifier struct{}

// Notify no hace nada.
func (NopNotifier) Notify(Event) {}
