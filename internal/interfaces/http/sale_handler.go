package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/lotes-api/internal/application/dto"
	"github.com/jhoicas/lotes-api/internal/application/sales"
	"github.com/jhoicas/lotes-api/pkg/logger"
)

// SaleHandler maneja el registro y consulta de ventas.
type SaleHandler struct {
	uc  *sales.RecordSaleUseCase
	log *logger.Logger
}

// NewSaleHandler construye el handler.
func NewSaleHandler(uc *sales.RecordSaleUseCase, log *logger.Logger) *SaleHandler {
	return &SaleHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Registrar venta
// @Description  Descuenta cada lote y registra la venta en una sola transacción: o se aplican todas las líneas o ninguna.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordSaleRequest  true  "lines[lot_id, quantity, unit_price?], payment_method, customer_name"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var req dto.RecordSaleRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	in := sales.RecordSaleInput{
		Lines:         make([]sales.SaleLineInput, 0, len(req.Lines)),
		PaymentMethod: req.PaymentMethod,
		CustomerName:  req.CustomerName,
		UserID:        GetUserID(c),
	}
	for _, l := range req.Lines {
		in.Lines = append(in.Lines, sales.SaleLineInput{LotID: l.LotID, Quantity: l.Quantity, UnitPrice: l.UnitPrice})
	}
	sale, err := h.uc.RecordSale(c.Context(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toSaleResponse(sale))
}

// GetByID godoc
// @Summary      Obtener venta con sus líneas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	id, err := parseID("id", c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	sale, err := h.uc.GetSale(c.Context(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toSaleResponse(sale))
}
