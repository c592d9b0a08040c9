package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/inventory"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
)

// AdjustInput entrada para conciliar un lote con el conteo físico.
type AdjustInput struct {
	LotID       string
	NewQuantity int
	Note        string
	UserID      string
}

// AdjustResult lote ajustado, movimiento (nil si no hubo cambio) y diferencia aplicada.
type AdjustResult struct {
	Lot      *entity.Lot
	Movement *entity.MovementEntry
	Delta    int
}

// AdjustQuantity fija la cantidad del lote al valor contado y registra un movimiento ADJUSTMENT
// por la diferencia. Si la cantidad no cambia no se escribe nada.
func (uc *InventoryUseCase) AdjustQuantity(ctx context.Context, in AdjustInput) (*AdjustResult, error) {
	if in.NewQuantity < 0 {
		return nil, fmt.Errorf("la cantidad no puede ser negativa: %w", domain.ErrInvalidQuantity)
	}
	if in.NewQuantity > inventory.MaxQuantity {
		return nil, fmt.Errorf("cantidad %d fuera de rango: %w", in.NewQuantity, domain.ErrInvalidQuantity)
	}
	if in.LotID == "" {
		return nil, domain.ErrInvalidInput
	}

	var res *AdjustResult
	err := uc.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		movRepo repository.MovementRepository,
		_ repository.ProductRepository,
	) error {
		now := uc.now()
		lot, err := lotRepo.GetForUpdate(ctx, in.LotID)
		if err != nil {
			return err
		}
		if lot == nil {
			return fmt.Errorf("lote %s: %w", in.LotID, domain.ErrNotFound)
		}
		delta, magnitude, direction := inventory.AdjustmentDelta(lot.Quantity, in.NewQuantity)
		if delta == 0 {
			res = &AdjustResult{Lot: lot}
			return nil
		}
		if err := lotRepo.SetQuantity(ctx, lot.ID, in.NewQuantity, now); err != nil {
			return err
		}
		lot.Quantity = in.NewQuantity
		lot.UpdatedAt = now

		note := direction
		if in.Note != "" {
			note = direction + ": " + in.Note
		}
		mov := &entity.MovementEntry{
			ID:            uuid.New().String(),
			LotID:         lot.ID,
			ProductID:     lot.ProductID,
			Kind:          entity.MovementKindAdjustment,
			Quantity:      magnitude,
			TransactionID: uuid.New().String(),
			Note:          note,
			CreatedAt:     now,
			CreatedBy:     in.UserID,
		}
		if delta > 0 {
			mov.ToLocation = strPtr(lot.Location)
		} else {
			mov.FromLocation = strPtr(lot.Location)
		}
		if err := movRepo.Create(ctx, mov); err != nil {
			return err
		}
		res = &AdjustResult{Lot: lot, Movement: mov, Delta: delta}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if res.Movement != nil {
		uc.committed(ctx, res.Movement)
	}
	return res, nil
}
