package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Trazabilidad-api/internal/application/genealogy"
	"github.com/jhoicas/Trazabilidad-api/internal/application/lifecycle"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	RecordOutput *genealogy.RecordOutputUseCase
	Trace        *genealogy.TraceUseCase
	BatchCodes   *genealogy.BatchCodeUseCase
	Scanner      *lifecycle.Scanner
	JWTSecret    string
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	genealogyHandler := NewGenealogyHandler(deps.RecordOutput, deps.Trace, deps.BatchCodes)
	writers := RequireRole(RoleAdmin, RoleQuality, RoleOperator)

	api.Post("/production-batches/:id/outputs", writers, genealogyHandler.RecordOutput)
	api.Get("/batches/:id/trace", genealogyHandler.TraceBatch)
	api.Get("/dispatches/:id/trace", genealogyHandler.TraceDispatch)
	api.Post("/batch-codes", writers, genealogyHandler.GenerateBatchCode)

	// Escáner: disparo manual solo para admin
	lifecycleHandler := NewLifecycleHandler(deps.Scanner)
	api.Post("/lifecycle/scan", RequireRole(RoleAdmin), lifecycleHandler.RunScan)
}
