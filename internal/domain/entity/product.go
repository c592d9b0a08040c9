package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo. El motor de lotes solo lo lee:
// la creación y edición pertenecen al catálogo.
type Product struct {
	ID        string
	Name      string
	Type      string          // categoría libre (ej: "Pote", "Helado")
	BasePrice decimal.Decimal // precio de venta sugerido
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
