package inventory

import (
	"time"

	"github.com/jhoicas/lotes-api/internal/domain/entity"
)

// Estados de vencimiento de un lote.
const (
	ExpiryStatusExpired   = "vencido"
	ExpiryStatusNear      = "por_vencer"
	ExpiryStatusCurrent   = "vigente"
	DefaultNearExpiryDays = 30
)

// DaysUntilExpiry devuelve los días completos entre today y el vencimiento (negativo si ya venció).
func DaysUntilExpiry(expiry, today time.Time) int {
	return int(entity.DateOnly(expiry).Sub(entity.DateOnly(today)).Hours() / 24)
}

// ExpiryStatus clasifica un vencimiento: vencido si es anterior a hoy,
// por vencer si cae dentro de la ventana de windowDays (incluido hoy), vigente en otro caso.
func ExpiryStatus(expiry, today time.Time, windowDays int) string {
	days := DaysUntilExpiry(expiry, today)
	switch {
	case days < 0:
		return ExpiryStatusExpired
	case days <= windowDays:
		return ExpiryStatusNear
	default:
		return ExpiryStatusCurrent
	}
}

// ExpiryCutoff devuelve la última fecha incluida en la ventana de vencimiento próximo.
func ExpiryCutoff(today time.Time, windowDays int) time.Time {
	return entity.DateOnly(today).AddDate(0, 0, windowDays)
}
