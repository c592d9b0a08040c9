package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/lotes-api/internal/application/dto"
	"github.com/jhoicas/lotes-api/internal/application/inventory"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/pkg/logger"
)

// ProductHandler consulta del catálogo. El alta y edición de productos pertenecen al sistema anfitrión.
type ProductHandler struct {
	uc  *inventory.InventoryUseCase
	log *logger.Logger
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *inventory.InventoryUseCase, log *logger.Logger) *ProductHandler {
	return &ProductHandler{uc: uc, log: log}
}

// List godoc
// @Summary      Listar productos
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        all  query  bool  false  "incluir inactivos"
// @Success      200  {array}  dto.ProductResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.ListProducts(c.Context(), !c.QueryBool("all", false))
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toProductResponse(p))
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener producto
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	id, err := parseID("id", c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	p, err := h.uc.GetProduct(c.Context(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toProductResponse(p))
}

func toProductResponse(p *entity.Product) dto.ProductResponse {
	return dto.ProductResponse{ID: p.ID, Name: p.Name, Type: p.Type, BasePrice: p.BasePrice, Active: p.Active}
}
