package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleLineRequest línea de venta. Sin unit_price se usa el precio base del producto.
type SaleLineRequest struct {
	LotID     string           `json:"lot_id" validate:"required,uuid"`
	Quantity  int              `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

// RecordSaleRequest body para POST /api/sales.
type RecordSaleRequest struct {
	Lines         []SaleLineRequest `json:"lines" validate:"required,min=1,dive"`
	PaymentMethod string            `json:"payment_method,omitempty" validate:"omitempty,oneof=efectivo tarjeta transferencia yape"`
	CustomerName  string            `json:"customer_name,omitempty" validate:"max=120"`
}

// SaleLineResponse línea de una venta registrada.
type SaleLineResponse struct {
	ID        string          `json:"id"`
	LineNo    int             `json:"line_no"`
	LotID     string          `json:"lot_id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// SaleResponse venta con sus líneas.
type SaleResponse struct {
	ID            string             `json:"id"`
	Total         decimal.Decimal    `json:"total"`
	PaymentMethod string             `json:"payment_method"`
	CustomerName  string             `json:"customer_name,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	CreatedBy     string             `json:"created_by,omitempty"`
	Lines         []SaleLineResponse `json:"lines"`
}
