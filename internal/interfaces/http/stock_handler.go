package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/lotes-api/internal/application/analytics"
	"github.com/jhoicas/lotes-api/internal/application/dto"
	"github.com/jhoicas/lotes-api/pkg/logger"
)

// StockHandler consultas de stock, vencimientos, resumen y dashboard.
type StockHandler struct {
	uc  *analytics.StockQueryUseCase
	log *logger.Logger
	now func() time.Time
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *analytics.StockQueryUseCase, log *logger.Logger) *StockHandler {
	return &StockHandler{uc: uc, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// ByLocation godoc
// @Summary      Stock por ubicación
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.LocationStockDTO
// @Router       /api/stock/locations [get]
func (h *StockHandler) ByLocation(c *fiber.Ctx) error {
	rows, err := h.uc.StockByLocation(c.Context())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(rows)
}

// ByProduct godoc
// @Summary      Stock de un producto por ubicación
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del producto"
// @Success      200  {object}  dto.ProductStockDTO
// @Router       /api/stock/products/{id} [get]
func (h *StockHandler) ByProduct(c *fiber.Ctx) error {
	id, err := parseID("id", c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	res, err := h.uc.ProductStock(c.Context(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(res)
}

// Expiring godoc
// @Summary      Lotes vencidos o por vencer
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        days  query  int  false  "ventana en días (por defecto la configurada)"
// @Success      200  {array}   dto.ExpiringLotDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/expiring [get]
func (h *StockHandler) Expiring(c *fiber.Ctx) error {
	rows, err := h.uc.Expiring(c.Context(), c.QueryInt("days", 0))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(rows)
}

// Summary godoc
// @Summary      Resumen de un período
// @Description  Ventas, unidades vendidas y unidades ingresadas entre from y to (YYYY-MM-DD, ambos incluidos). Por defecto hoy.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        from  query  string  false  "desde"
// @Param        to    query  string  false  "hasta"
// @Success      200  {object}  dto.PeriodSummaryDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/summary [get]
func (h *StockHandler) Summary(c *fiber.Ctx) error {
	today := h.now()
	from, err := parseDateQuery(c.Query("from"), today)
	if err != nil {
		return badRequest(c, "VALIDATION", "from debe tener formato YYYY-MM-DD")
	}
	to, err := parseDateQuery(c.Query("to"), today)
	if err != nil {
		return badRequest(c, "VALIDATION", "to debe tener formato YYYY-MM-DD")
	}
	res, err := h.uc.PeriodSummary(c.Context(), from, to)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(res)
}

// Dashboard godoc
// @Summary      Dashboard de stock
// @Description  Totales por ubicación, ventas de hoy y conteo de lotes por vencer y vencidos.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DashboardDTO
// @Router       /api/dashboard [get]
func (h *StockHandler) Dashboard(c *fiber.Ctx) error {
	res, err := h.uc.Dashboard(c.Context())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(res)
}

func parseDateQuery(raw string, def time.Time) (time.Time, error) {
	if raw == "" {
		return def, nil
	}
	return time.Parse(dto.DateLayout, raw)
}
