package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/lotes-api/internal/application/dto"
	"github.com/jhoicas/lotes-api/internal/application/inventory"
	"github.com/jhoicas/lotes-api/pkg/logger"
)

// LotHandler maneja lotes: entrada de stock, consulta, traspaso y ajuste.
type LotHandler struct {
	uc  *inventory.InventoryUseCase
	log *logger.Logger
}

// NewLotHandler construye el handler.
func NewLotHandler(uc *inventory.InventoryUseCase, log *logger.Logger) *LotHandler {
	return &LotHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Registrar entrada de stock
// @Description  Crea el lote (o suma al lote con el mismo producto, ubicación y vencimiento) y agrega un movimiento STOCK_IN.
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateLotRequest  true  "product_id, location, expiry_date (YYYY-MM-DD), quantity"
// @Success      201   {object}  dto.LotResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/lots [post]
func (h *LotHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateLotRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	expiry, err := time.Parse(dto.DateLayout, req.ExpiryDate)
	if err != nil {
		return badRequest(c, "VALIDATION", "expiry_date debe tener formato YYYY-MM-DD")
	}
	lot, err := h.uc.CreateLot(c.Context(), inventory.CreateLotInput{
		ProductID:  req.ProductID,
		Location:   req.Location,
		ExpiryDate: expiry,
		Quantity:   req.Quantity,
		LotNumber:  req.LotNumber,
		Note:       req.Note,
		UserID:     GetUserID(c),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toLotResponse(lot))
}

// GetByID godoc
// @Summary      Obtener lote
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del lote"
// @Success      200  {object}  dto.LotResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lots/{id} [get]
func (h *LotHandler) GetByID(c *fiber.Ctx) error {
	id, err := parseID("id", c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	lot, err := h.uc.GetLot(c.Context(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toLotResponse(lot))
}

// ListAvailable godoc
// @Summary      Lotes disponibles (FIFO)
// @Description  Lotes con stock del producto en la ubicación, del vencimiento más próximo al más lejano.
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  true  "ID del producto"
// @Param        location    query  string  true  "Código de ubicación"
// @Success      200  {array}   dto.LotResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/lots/available [get]
func (h *LotHandler) ListAvailable(c *fiber.Ctx) error {
	productID, err := parseID("product_id", c.Query("product_id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	lots, err := h.uc.ListAvailableLots(c.Context(), productID, c.Query("location"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := make([]dto.LotResponse, 0, len(lots))
	for _, l := range lots {
		out = append(out, toLotResponse(l))
	}
	return c.JSON(out)
}

// Transfer godoc
// @Summary      Traspasar unidades a otra ubicación
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID del lote origen"
// @Param        body  body  dto.TransferRequest  true  "quantity, destination"
// @Success      200   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/transfer [post]
func (h *LotHandler) Transfer(c *fiber.Ctx) error {
	id, err := parseID("id", c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	var req dto.TransferRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	res, err := h.uc.Transfer(c.Context(), inventory.TransferInput{
		LotID:       id,
		Quantity:    req.Quantity,
		Destination: req.Destination,
		UserID:      GetUserID(c),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.TransferResponse{
		Source:      toLotResponse(res.Source),
		Destination: toLotResponse(res.Destination),
		Movement:    toMovementResponse(res.Movement),
	})
}

// Adjust godoc
// @Summary      Ajustar cantidad por conteo físico
// @Description  Fija la cantidad del lote y registra un movimiento ADJUSTMENT por la diferencia (sin movimiento si no cambia).
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID del lote"
// @Param        body  body  dto.AdjustQuantityRequest  true  "new_quantity, note"
// @Success      200   {object}  dto.AdjustQuantityResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/quantity [put]
func (h *LotHandler) Adjust(c *fiber.Ctx) error {
	id, err := parseID("id", c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	var req dto.AdjustQuantityRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	res, err := h.uc.AdjustQuantity(c.Context(), inventory.AdjustInput{
		LotID:       id,
		NewQuantity: *req.NewQuantity,
		Note:        req.Note,
		UserID:      GetUserID(c),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := dto.AdjustQuantityResponse{Lot: toLotResponse(res.Lot), Delta: res.Delta}
	if res.Movement != nil {
		m := toMovementResponse(res.Movement)
		out.Movement = &m
	}
	return c.JSON(out)
}

// Locations godoc
// @Summary      Ubicaciones configuradas
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.LocationResponse
// @Router       /api/locations [get]
func (h *LotHandler) Locations(c *fiber.Ctx) error {
	locs := h.uc.Locations()
	out := make([]dto.LocationResponse, 0, len(locs))
	for _, l := range locs {
		out = append(out, dto.LocationResponse{Code: l.Code, Name: l.Name, Kind: l.Kind})
	}
	return c.JSON(out)
}
