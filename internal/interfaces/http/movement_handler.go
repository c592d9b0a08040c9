package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/lotes-api/internal/application/dto"
	"github.com/jhoicas/lotes-api/internal/application/inventory"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
	"github.com/jhoicas/lotes-api/pkg/logger"
)

// MovementHandler consulta el libro de movimientos.
type MovementHandler struct {
	uc  *inventory.InventoryUseCase
	log *logger.Logger
}

// NewMovementHandler construye el handler.
func NewMovementHandler(uc *inventory.InventoryUseCase, log *logger.Logger) *MovementHandler {
	return &MovementHandler{uc: uc, log: log}
}

// List godoc
// @Summary      Libro de movimientos
// @Description  Más recientes primero. from incluido, to excluido (RFC3339 o YYYY-MM-DD).
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        kind        query  string  false  "STOCK_IN | SALE | TRANSFER | ADJUSTMENT"
// @Param        product_id  query  string  false  "ID del producto"
// @Param        lot_id      query  string  false  "ID del lote (origen o destino)"
// @Param        from        query  string  false  "desde"
// @Param        to          query  string  false  "hasta"
// @Param        limit       query  int     false  "máximo 500, por defecto 50"
// @Param        offset      query  int     false  "desplazamiento"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	f := repository.MovementFilter{
		Kind:      c.Query("kind"),
		ProductID: c.Query("product_id"),
		LotID:     c.Query("lot_id"),
		Limit:     c.QueryInt("limit", 0),
		Offset:    c.QueryInt("offset", 0),
	}
	var err error
	if f.ProductID, err = parseOptionalID("product_id", f.ProductID); err != nil {
		return writeError(c, h.log, err)
	}
	if f.LotID, err = parseOptionalID("lot_id", f.LotID); err != nil {
		return writeError(c, h.log, err)
	}
	if f.From, err = parseTimeQuery(c.Query("from")); err != nil {
		return badRequest(c, "VALIDATION", "from inválido")
	}
	if f.To, err = parseTimeQuery(c.Query("to")); err != nil {
		return badRequest(c, "VALIDATION", "to inválido")
	}
	items, err := h.uc.ListMovements(c.Context(), f)
	if err != nil {
		return writeError(c, h.log, err)
	}
	f.Normalize()
	out := dto.MovementListResponse{
		Items: make([]dto.MovementResponse, 0, len(items)),
		Page:  dto.PageResponse{Limit: f.Limit, Offset: f.Offset, Count: len(items)},
	}
	for _, m := range items {
		out.Items = append(out.Items, toMovementResponse(m))
	}
	return c.JSON(out)
}

// parseTimeQuery acepta RFC3339 o solo fecha (medianoche UTC). Vacío devuelve nil.
func parseTimeQuery(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(dto.DateLayout, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
