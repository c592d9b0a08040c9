package dto

import "time"

// CreateLotRequest body para POST /api/lots.
type CreateLotRequest struct {
	ProductID  string `json:"product_id" validate:"required,uuid"`
	Location   string `json:"location" validate:"required"`
	ExpiryDate string `json:"expiry_date" validate:"required,datetime=2006-01-02"`
	Quantity   int    `json:"quantity"`
	LotNumber  string `json:"lot_number,omitempty" validate:"max=64"`
	Note       string `json:"note,omitempty" validate:"max=500"`
}

// TransferRequest body para POST /api/lots/:id/transfer.
type TransferRequest struct {
	Quantity    int    `json:"quantity"`
	Destination string `json:"destination" validate:"required"`
}

// AdjustQuantityRequest body para PUT /api/lots/:id/quantity.
type AdjustQuantityRequest struct {
	NewQuantity *int   `json:"new_quantity" validate:"required"`
	Note        string `json:"note,omitempty" validate:"max=500"`
}

// LotResponse lote en respuestas.
type LotResponse struct {
	ID         string    `json:"id"`
	ProductID  string    `json:"product_id"`
	LotNumber  string    `json:"lot_number"`
	Location   string    `json:"location"`
	ExpiryDate string    `json:"expiry_date"` // YYYY-MM-DD
	Quantity   int       `json:"quantity"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TransferResponse resultado de un traspaso.
type TransferResponse struct {
	Source      LotResponse      `json:"source"`
	Destination LotResponse      `json:"destination"`
	Movement    MovementResponse `json:"movement"`
}

// AdjustQuantityResponse resultado de un ajuste. Movement es null si la cantidad no cambió.
type AdjustQuantityResponse struct {
	Lot      LotResponse       `json:"lot"`
	Movement *MovementResponse `json:"movement"`
	Delta    int               `json:"delta"`
}

// LocationResponse ubicación configurada.
type LocationResponse struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Kind string `json:"kind"` // backroom | counter
}
