package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/pos-sync/internal/application/cancellation"
	"github.com/jhoicas/pos-sync/internal/application/reconcile"
	"github.com/jhoicas/pos-sync/internal/application/sales"
	"github.com/jhoicas/pos-sync/internal/domain/entity"
	"github.com/jhoicas/pos-sync/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Orchestrator  *reconcile.Orchestrator
	Pull          *reconcile.PullUseCase
	FullReplace   *reconcile.FullReplaceReconciler
	Sales         *sales.UseCase
	Cancellations *cancellation.UseCase
	Tokens        *jwt.Verifier
}

// NewApp crea la aplicación Fiber con recover, /health y las rutas de la API.
// El body limit admite lotes grandes de cambios offline.
func NewApp(appName string, deps RouterDeps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      appName,
		BodyLimit:    16 * 1024 * 1024,
		ReadTimeout:  time.Second * 30,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": appName})
	})

	Router(app, deps)
	return app
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.Tokens))

	// Sincronización offline
	syncGroup := api.Group("/sync")
	syncHandler := NewSyncHandler(deps.Orchestrator, deps.Pull, deps.FullReplace)
	syncGroup.Post("/push", syncHandler.Push)
	syncGroup.Get("/pull", syncHandler.Pull)
	syncGroup.Post("/products/full", syncHandler.FullProducts)

	// Ventas
	salesGroup := api.Group("/sales")
	saleHandler := NewSaleHandler(deps.Sales)
	salesGroup.Get("/:id", saleHandler.GetByID)
	salesGroup.Get("/:id/ticket", saleHandler.Ticket)

	// Cancelaciones: cancelar requiere owner/admin/manager; reembolsar y el reporte, owner/admin
	cancellations := api.Group("/cancellations")
	cancelHandler := NewCancellationHandler(deps.Cancellations)
	cancellations.Get("/", cancelHandler.List)
	cancellations.Get("/report/summary", RequireRole(entity.RoleOwner, entity.RoleAdmin), cancelHandler.Report)
	cancellations.Post("/", RequireRole(entity.RoleOwner, entity.RoleAdmin, entity.RoleManager), cancelHandler.Create)
	cancellations.Get("/:id", cancelHandler.GetByID)
	cancellations.Post("/:id/refund", RequireRole(entity.RoleOwner, entity.RoleAdmin), cancelHandler.Refund)
}
