package dto

import "github.com/shopspring/decimal"

// ProductResponse producto del catálogo (solo lectura).
type ProductResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	BasePrice decimal.Decimal `json:"base_price"`
	Active    bool            `json:"active"`
}
