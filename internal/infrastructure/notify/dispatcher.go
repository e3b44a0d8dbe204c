package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/pos-sync/internal/application/ports"
)

var _ ports.Notifier = (*Dispatcher)(nil)

const publishTimeout = 3 * time.Second

// Dispatcher desacopla la reconciliación de la entrega de avisos: Notify encola sin bloquear
// y una goroutine publica en orden. Con la cola llena el evento se descarta.
type Dispatcher struct {
	pub    Publisher
	log    zerolog.Logger
	events chan ports.Event
	done   chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewDispatcher arranca la goroutine de entrega. buffer <= 0 usa 256.
func NewDispatcher(pub Publisher, buffer int, log zerolog.Logger) *Dispatcher {
	if buffer <= 0 {
		buffer = 256
	}
	d := &Dispatcher{
		pub:    pub,
		log:    log,
		events: make(chan ports.Event, buffer),
		done:   make(chan struct{}),
	}
	go d.loop()
	return d
}

func (d *Dispatcher) Notify(ev ports.Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}
	select {
	case d.events <- ev:
	default:
		d.log.Warn().Str("event", ev.Name).Str("business_id", ev.BusinessID).Msg("cola de avisos llena, evento descartado")
	}
}

func (d *Dispatcher) loop() {
	defer close(d.done)
	for ev := range d.events {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		if err := d.pub.Publish(ctx, ev); err != nil {
			d.log.Warn().Err(err).Str("event", ev.Name).Str("business_id", ev.BusinessID).Msg("no se pudo publicar aviso")
		}
		cancel()
	}
}

// Close deja de aceptar eventos y espera a que se entreguen los encolados.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		<-d.done
		return
	}
	d.closed = true
	close(d.events)
	d.mu.Unlock()
	<-d.done
}
