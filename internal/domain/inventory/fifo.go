package inventory

import (
	"sort"

	"github.com/jhoicas/lotes-api/internal/domain/entity"
)

// SortFIFO ordena los lotes por vencimiento ascendente (First-Expire-First-Out).
// Empates: primero el lote creado antes y luego por ID, para que el orden sea estable entre lecturas.
func SortFIFO(lots []*entity.Lot) {
	sort.SliceStable(lots, func(i, j int) bool {
		a, b := lots[i], lots[j]
		if !a.ExpiryDate.Equal(b.ExpiryDate) {
			return a.ExpiryDate.Before(b.ExpiryDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// AvailableFIFO filtra los lotes con cantidad > 0 y los devuelve en orden FIFO.
func AvailableFIFO(lots []*entity.Lot) []*entity.Lot {
	out := make([]*entity.Lot, 0, len(lots))
	for _, l := range lots {
		if l.Available() {
			out = append(out, l)
		}
	}
	SortFIFO(out)
	return out
}
