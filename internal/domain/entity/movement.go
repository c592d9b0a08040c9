package entity

import "time"

// Tipos de movimiento del libro de inventario.
const (
	MovementKindStockIn    = "STOCK_IN"   // entrada de stock (creación de lote)
	MovementKindSale       = "SALE"       // venta
	MovementKindTransfer   = "TRANSFER"   // traspaso entre ubicaciones
	MovementKindAdjustment = "ADJUSTMENT" // ajuste por conteo físico
)

// Notas de dirección para ajustes.
const (
	AdjustmentIncrease = "aumento"
	AdjustmentDecrease = "disminución"
)

// ValidMovementKind indica si kind es uno de los tipos conocidos.
func ValidMovementKind(kind string) bool {
	switch kind {
	case MovementKindStockIn, MovementKindSale, MovementKindTransfer, MovementKindAdjustment:
		return true
	}
	return false
}

// MovementEntry es un registro inmutable del libro: nunca se actualiza ni se borra.
// Quantity es siempre la magnitud (> 0); la dirección la dan Kind y From/ToLocation.
type MovementEntry struct {
	ID               string
	LotID            string
	ProductID        string
	Kind             string
	Quantity         int
	FromLocation     *string
	ToLocation       *string
	DestinationLotID *string // solo traspasos
	TransactionID    string  // agrupa los movimientos de una operación (ID de venta en ventas)
	Note             string
	CreatedAt        time.Time
	CreatedBy        string
}

// Signed devuelve el cambio con signo que el movimiento produjo sobre LotID.
func (m *MovementEntry) Signed() int {
	switch m.Kind {
	case MovementKindStockIn:
		return m.Quantity
	case MovementKindSale, MovementKindTransfer:
		return -m.Quantity
	case MovementKindAdjustment:
		if m.FromLocation != nil {
			return -m.Quantity
		}
		return m.Quantity
	}
	return 0
}
