// Package app arma los componentes de la aplicación a partir de la configuración.
// Lo comparten el servidor HTTP y la herramienta de operador.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/pos-sync/internal/application/cancellation"
	"github.com/jhoicas/pos-sync/internal/application/ports"
	"github.com/jhoicas/pos-sync/internal/application/reconcile"
	"github.com/jhoicas/pos-sync/internal/application/sales"
	"github.com/jhoicas/pos-sync/internal/infrastructure/memory"
	"github.com/jhoicas/pos-sync/internal/infrastructure/notify"
	"github.com/jhoicas/pos-sync/internal/infrastructure/pdf"
	"github.com/jhoicas/pos-sync/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/pos-sync/internal/interfaces/http"
	"github.com/jhoicas/pos-sync/pkg/config"
	"github.com/jhoicas/pos-sync/pkg/jwt"
	"github.com/jhoicas/pos-sync/pkg/logger"
)

// Components casos de uso listos para usar y la función que libera sus recursos.
type Components struct {
	Store         ports.Store
	Tx            ports.TxRunner
	Pool          *pgxpool.Pool // nil con STORE_DRIVER=memory
	Orchestrator  *reconcile.Orchestrator
	Pull          *reconcile.PullUseCase
	FullReplace   *reconcile.FullReplaceReconciler
	Sales         *sales.UseCase
	Cancellations *cancellation.UseCase

	closers []func()
}

// Options controla los efectos secundarios del arranque.
type Options struct {
	Migrate bool // aplica las migraciones pendientes (solo postgres)
	Notify  bool // publica eventos (Redis si REDIS_ADDR, si no al log)
}

// Build conecta el almacén, el despachador de notificaciones y construye los casos de uso.
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger, opts Options) (*Components, error) {
	c := &Components{}

	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		m := memory.NewStore()
		c.Store, c.Tx = m, m
		log.Warn().Msg("almacén en memoria: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		c.closers = append(c.closers, pool.Close)
		if opts.Migrate {
			applied, err := postgres.Migrate(ctx, pool)
			if err != nil {
				c.Close()
				return nil, fmt.Errorf("migraciones: %w", err)
			}
			for _, name := range applied {
				log.Info().Str("migration", name).Msg("migración aplicada")
			}
		}
		c.Pool = pool
		c.Store, c.Tx = postgres.NewStore(pool), postgres.NewTxRunner(pool)
	}

	var notifier ports.Notifier = ports.NopNotifier{}
	if opts.Notify {
		d, closePub, err := newDispatcher(cfg, log)
		if err != nil {
			c.Close()
			return nil, err
		}
		// se cierra primero para drenar los eventos pendientes
		c.closers = append([]func(){d.Close, closePub}, c.closers...)
		notifier = d
	}

	syncLog := log.Component("sync")
	c.Orchestrator = reconcile.NewOrchestrator(
		reconcile.NewEntityReconciler(c.Store),
		reconcile.NewSaleReconciler(c.Store, c.Tx, syncLog),
		notifier, syncLog, cfg.Sync.MaxBatchSize,
	)
	c.Pull = reconcile.NewPullUseCase(c.Store)
	c.FullReplace = reconcile.NewFullReplaceReconciler(c.Tx, syncLog)
	c.Sales = sales.NewUseCase(c.Store, pdf.NewTicketGenerator(cfg.App.Name))
	c.Cancellations = cancellation.NewUseCase(c.Store, c.Tx, notifier, log.Component("cancellations"))
	return c, nil
}

func newDispatcher(cfg *config.Config, log *logger.Logger) (*notify.Dispatcher, func(), error) {
	notifyLog := log.Component("notify")
	var pub notify.Publisher = notify.NewLogPublisher(notifyLog, cfg.Notify.ChannelPrefix)
	closePub := func() {}
	if cfg.Redis.Addr != "" {
		rp, err := notify.NewRedisPublisher(notify.RedisConfig{
			Addr:          cfg.Redis.Addr,
			Password:      cfg.Redis.Password,
			DB:            cfg.Redis.DB,
			ChannelPrefix: cfg.Notify.ChannelPrefix,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("conexión a Redis: %w", err)
		}
		pub = rp
		closePub = func() { _ = rp.Close() }
		log.Info().Str("addr", cfg.Redis.Addr).Msg("notificaciones vía Redis")
	}
	return notify.NewDispatcher(pub, cfg.Notify.Buffer, notifyLog), closePub, nil
}

// RouterDeps dependencias del router HTTP.
func (c *Components) RouterDeps(tokens *jwt.Verifier) httpRouter.RouterDeps {
	return httpRouter.RouterDeps{
		Orchestrator:  c.Orchestrator,
		Pull:          c.Pull,
		FullReplace:   c.FullReplace,
		Sales:         c.Sales,
		Cancellations: c.Cancellations,
		Tokens:        tokens,
	}
}

// Close libera recursos en orden: notificaciones, luego el pool.
func (c *Components) Close() {
	for _, fn := range c.closers {
		fn()
	}
	c.closers = nil
}
