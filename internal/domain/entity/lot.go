package entity

import "time"

// Lot representa un lote de un producto en una ubicación con una fecha de vencimiento.
// La cantidad nunca es negativa; un lote en 0 está agotado pero se conserva por historial.
type Lot struct {
	ID         string
	ProductID  string
	LotNumber  string
	Location   string
	ExpiryDate time.Time // solo fecha (UTC, 00:00)
	Quantity   int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Available indica si el lote tiene unidades disponibles.
func (l *Lot) Available() bool {
	return l != nil && l.Quantity > 0
}

// DateOnly trunca t a la fecha en UTC; las fechas de vencimiento no tienen hora.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
