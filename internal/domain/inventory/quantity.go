package inventory

import "math"

// MaxQuantity tope de unidades de un lote o movimiento (columnas INTEGER).
const MaxQuantity = math.MaxInt32

// ValidQuantity cantidad positiva dentro del rango almacenable.
func ValidQuantity(q int) bool {
	return q > 0 && q <= MaxQuantity
}
