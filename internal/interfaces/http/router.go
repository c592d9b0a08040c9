package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/lotes-api/internal/application/analytics"
	"github.com/jhoicas/lotes-api/internal/application/inventory"
	"github.com/jhoicas/lotes-api/internal/application/sales"
	"github.com/jhoicas/lotes-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AppName     string
	InventoryUC *inventory.InventoryUseCase
	SalesUC     *sales.RecordSaleUseCase
	StockUC     *analytics.StockQueryUseCase
	Observer    HTTPObserver // opcional
	Metrics     http.Handler // opcional, se expone en /metrics
	JWTSecret   string       // vacío = API sin autenticación (desarrollo)
	JWTIssuer   string
	Log         *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	if deps.Observer != nil {
		app.Use(MetricsMiddleware(deps.Observer))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics))
	}

	api := app.Group("/api")
	authEnabled := deps.JWTSecret != ""
	if authEnabled {
		api.Use(AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))
	}
	roles := func(allowed ...string) fiber.Handler {
		if !authEnabled {
			return func(c *fiber.Ctx) error { return c.Next() }
		}
		return RequireRole(allowed...)
	}
	stockRoles := roles(RoleAdmin, RoleBodeguero)
	saleRoles := roles(RoleAdmin, RoleBodeguero, RoleVendedor)

	lotHandler := NewLotHandler(deps.InventoryUC, log)
	api.Get("/locations", lotHandler.Locations)

	productHandler := NewProductHandler(deps.InventoryUC, log)
	api.Get("/products", productHandler.List)
	api.Get("/products/:id", productHandler.GetByID)

	lots := api.Group("/lots")
	lots.Post("", stockRoles, lotHandler.Create)
	lots.Get("/available", lotHandler.ListAvailable)
	lots.Get("/:id", lotHandler.GetByID)
	lots.Post("/:id/transfer", stockRoles, lotHandler.Transfer)
	lots.Put("/:id/quantity", stockRoles, lotHandler.Adjust)

	saleHandler := NewSaleHandler(deps.SalesUC, log)
	salesGroup := api.Group("/sales")
	salesGroup.Post("", saleRoles, saleHandler.Create)
	salesGroup.Get("/:id", saleHandler.GetByID)

	movementHandler := NewMovementHandler(deps.InventoryUC, log)
	api.Get("/movements", movementHandler.List)

	stockHandler := NewStockHandler(deps.StockUC, log)
	stock := api.Group("/stock")
	stock.Get("/locations", stockHandler.ByLocation)
	stock.Get("/products/:id", stockHandler.ByProduct)
	stock.Get("/expiring", stockHandler.Expiring)
	stock.Get("/summary", stockHandler.Summary)
	api.Get("/dashboard", stockHandler.Dashboard)
}
