package dto

import "time"

// MovementResponse entrada del libro de movimientos.
type MovementResponse struct {
	ID               string    `json:"id"`
	LotID            string    `json:"lot_id"`
	ProductID        string    `json:"product_id"`
	Kind             string    `json:"kind"`
	Quantity         int       `json:"quantity"`
	FromLocation     *string   `json:"from_location"`
	ToLocation       *string   `json:"to_location"`
	DestinationLotID *string   `json:"destination_lot_id,omitempty"`
	TransactionID    string    `json:"transaction_id"`
	Note             string    `json:"note"`
	CreatedAt        time.Time `json:"created_at"`
	CreatedBy        string    `json:"created_by,omitempty"`
}

// MovementListResponse respuesta de GET /api/movements.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
