package inventory

import "github.com/shopspring/decimal"

// CurrencyPlaces decimales de la moneda; los precios se guardan como NUMERIC(12,2).
const CurrencyPlaces = 2

// ValidUnitPrice indica si el precio es no negativo y representable sin redondeo en la moneda.
func ValidUnitPrice(price decimal.Decimal) bool {
	if price.IsNegative() {
		return false
	}
	return price.Equal(price.Round(CurrencyPlaces))
}

// LineSubtotal = cantidad × precio unitario (exacto).
func LineSubtotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}
