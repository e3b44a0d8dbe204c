// Package notify entrega los eventos de sincronización a los demás dispositivos del negocio.
// El canal de cada negocio es <prefijo><business_id> (por defecto "business_<id>").
package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jhoicas/pos-sync/internal/application/ports"
)

// DefaultChannelPrefix coincide con el nombre de sala que usan los clientes.
const DefaultChannelPrefix = "business_"

// Publisher envía un evento ya decidido. Lo usa el Dispatcher desde su goroutine.
type Publisher interface {
	Publish(ctx context.Context, ev ports.Event) error
}

// LogPublisher solo registra los eventos. Se usa cuando no hay Redis configurado.
type LogPublisher struct {
	log    zerolog.Logger
	prefix string
}

func NewLogPublisher(log zerolog.Logger, prefix string) *LogPublisher {
	if prefix == "" {
		prefix = DefaultChannelPrefix
	}
	return &LogPublisher{log: log, prefix: prefix}
}

func (p *LogPublisher) Publish(_ context.Context, ev ports.Event) error {
	p.log.Debug().
		Str("channel", p.prefix+ev.BusinessID).
		Str("event", ev.Name).
		Interface("data", ev.Data).
		Msg("evento de sincronización")
	return nil
}
