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

// TransferInput entrada para traspasar unidades de un lote a otra ubicación.
type TransferInput struct {
	LotID       string
	Quantity    int
	Destination string
	UserID      string
}

// TransferResult estado de ambos lotes tras el traspaso y el movimiento registrado.
type TransferResult struct {
	Source      *entity.Lot
	Destination *entity.Lot
	Movement    *entity.MovementEntry
}

// Transfer mueve unidades de un lote a la ubicación destino. En una sola transacción:
// bloquea el lote origen, lo decrementa, busca o crea (bloqueado) el lote destino con el
// mismo producto y vencimiento, lo incrementa y agrega un movimiento TRANSFER.
func (uc *InventoryUseCase) Transfer(ctx context.Context, in TransferInput) (*TransferResult, error) {
	if !inventory.ValidQuantity(in.Quantity) {
		return nil, fmt.Errorf("cantidad %d fuera de rango: %w", in.Quantity, domain.ErrInvalidQuantity)
	}
	if in.LotID == "" {
		return nil, domain.ErrInvalidInput
	}
	destination, err := uc.locations.Resolve(in.Destination)
	if err != nil {
		return nil, err
	}

	var res *TransferResult
	err = uc.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		movRepo repository.MovementRepository,
		_ repository.ProductRepository,
	) error {
		now := uc.now()
		source, err := lotRepo.GetForUpdate(ctx, in.LotID)
		if err != nil {
			return err
		}
		if source == nil {
			return fmt.Errorf("lote %s: %w", in.LotID, domain.ErrNotFound)
		}
		if source.Location == destination {
			return fmt.Errorf("el lote ya está en %s: %w", destination, domain.ErrInvalidDestination)
		}
		if in.Quantity > source.Quantity {
			return fmt.Errorf("lote %s: solicitado %d, disponible %d: %w",
				source.ID, in.Quantity, source.Quantity, domain.ErrInsufficientStock)
		}

		target, err := lotRepo.FindMergeTargetForUpdate(ctx, source.ProductID, destination, source.ExpiryDate)
		if err != nil {
			return err
		}
		if target == nil {
			target = &entity.Lot{
				ID:         uuid.New().String(),
				ProductID:  source.ProductID,
				LotNumber:  source.LotNumber,
				Location:   destination,
				ExpiryDate: source.ExpiryDate,
				Quantity:   in.Quantity,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if err := lotRepo.Create(ctx, target); err != nil {
				return err
			}
		} else {
			if target.Quantity+in.Quantity > inventory.MaxQuantity {
				return fmt.Errorf("lote %s superaría %d unidades: %w", target.ID, inventory.MaxQuantity, domain.ErrInvalidQuantity)
			}
			if err := lotRepo.SetQuantity(ctx, target.ID, target.Quantity+in.Quantity, now); err != nil {
				return err
			}
			target.Quantity += in.Quantity
			target.UpdatedAt = now
		}

		if err := lotRepo.SetQuantity(ctx, source.ID, source.Quantity-in.Quantity, now); err != nil {
			return err
		}
		source.Quantity -= in.Quantity
		source.UpdatedAt = now

		mov := &entity.MovementEntry{
			ID:               uuid.New().String(),
			LotID:            source.ID,
			ProductID:        source.ProductID,
			Kind:             entity.MovementKindTransfer,
			Quantity:         in.Quantity,
			FromLocation:     strPtr(source.Location),
			ToLocation:       strPtr(destination),
			DestinationLotID: strPtr(target.ID),
			TransactionID:    uuid.New().String(),
			Note:             fmt.Sprintf("Traspaso de %s a %s", source.Location, destination),
			CreatedAt:        now,
			CreatedBy:        in.UserID,
		}
		if err := movRepo.Create(ctx, mov); err != nil {
			return err
		}
		res = &TransferResult{Source: source, Destination: target, Movement: mov}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.committed(ctx, res.Movement)
	return res, nil
}
