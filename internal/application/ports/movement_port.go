package ports

import (
	"context"

	"github.com/jhoicas/lotes-api/internal/domain/entity"
)

// MovementNotifier recibe los movimientos de una operación ya confirmada (post-commit).
// Las implementaciones no deben fallar la operación: los errores se registran y se descartan.
type MovementNotifier interface {
	MovementsCommitted(ctx context.Context, movements []*entity.MovementEntry)
}

// Notifiers reparte los movimientos entre varios notificadores en orden.
type Notifiers []MovementNotifier

// MovementsCommitted implementa MovementNotifier.
func (n Notifiers) MovementsCommitted(ctx context.Context, movements []*entity.MovementEntry) {
	if len(movements) == 0 {
		return
	}
	for _, notifier := range n {
		if notifier != nil {
			notifier.MovementsCommitted(ctx, movements)
		}
	}
}
