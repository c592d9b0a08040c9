package inventory

import "github.com/jhoicas/lotes-api/internal/domain/entity"

// AdjustmentDelta calcula el delta de un ajuste por conteo físico.
// Devuelve delta con signo, su magnitud y la dirección (aumento/disminución; vacía si delta es 0).
func AdjustmentDelta(oldQty, newQty int) (delta, magnitude int, direction string) {
	delta = newQty - oldQty
	switch {
	case delta > 0:
		return delta, delta, entity.AdjustmentIncrease
	case delta < 0:
		return delta, -delta, entity.AdjustmentDecrease
	default:
		return 0, 0, ""
	}
}
