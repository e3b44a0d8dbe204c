package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"

	"github.com/jhoicas/pos-sync/internal/app"
	httpRouter "github.com/jhoicas/pos-sync/internal/interfaces/http"
	"github.com/jhoicas/pos-sync/pkg/config"
	"github.com/jhoicas/pos-sync/pkg/jwt"
	"github.com/jhoicas/pos-sync/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.Log.Level,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("store", cfg.Store.Driver).
		Int("max_batch", cfg.Sync.MaxBatchSize).
		Msg("iniciando aplicación")

	ctx := context.Background()
	components, err := app.Build(ctx, cfg, log, app.Options{
		Migrate: cfg.DB.AutoMigrate,
		Notify:  true,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("inicialización")
	}
	defer components.Close()

	server := httpRouter.NewApp(cfg.App.Name, components.RouterDeps(jwt.NewVerifier(cfg.JWT.Secret, cfg.JWT.Issuer)))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat("./docs/swagger.json"); err == nil {
		server.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "POS Sync API",
		}))
	}

	go func() {
		if err := server.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
