package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Métodos de pago aceptados en caja.
const (
	PaymentCash     = "efectivo"
	PaymentCard     = "tarjeta"
	PaymentTransfer = "transferencia"
	PaymentYape     = "yape"
)

// ValidPaymentMethod indica si m es un método de pago aceptado.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer, PaymentYape:
		return true
	}
	return false
}

// Sale representa la cabecera de una venta. Total = suma exacta de los subtotales.
type Sale struct {
	ID            string
	Total         decimal.Decimal
	PaymentMethod string
	CustomerName  string
	CreatedAt     time.Time
	CreatedBy     string
	Lines         []*SaleLine
}

// SaleLine es una línea de venta. UnitPrice se copia al momento de la venta.
type SaleLine struct {
	ID        string
	SaleID    string
	LineNo    int // posición en la venta, desde 1
	LotID     string
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}
