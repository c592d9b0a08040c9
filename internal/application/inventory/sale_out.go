package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
)

// RegisterSaleOutInTx descuenta quantity del lote usando los repositorios del caller (misma transacción)
// y agrega el movimiento SALE. El lote debe venir bloqueado (GetForUpdate) por el caller.
// Implementa sales.InventoryUseCase; saleID se usa como TransactionID.
func (uc *InventoryUseCase) RegisterSaleOutInTx(
	ctx context.Context,
	lotRepo repository.LotRepository,
	movRepo repository.MovementRepository,
	lot *entity.Lot,
	quantity int,
	userID, saleID string,
	now time.Time,
) (*entity.MovementEntry, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("la cantidad debe ser mayor a 0: %w", domain.ErrInvalidQuantity)
	}
	if quantity > lot.Quantity {
		return nil, fmt.Errorf("lote %s: solicitado %d, disponible %d: %w",
			lot.ID, quantity, lot.Quantity, domain.ErrInsufficientStock)
	}
	if err := lotRepo.SetQuantity(ctx, lot.ID, lot.Quantity-quantity, now); err != nil {
		return nil, err
	}
	lot.Quantity -= quantity
	lot.UpdatedAt = now

	mov := &entity.MovementEntry{
		ID:            uuid.New().String(),
		LotID:         lot.ID,
		ProductID:     lot.ProductID,
		Kind:          entity.MovementKindSale,
		Quantity:      quantity,
		FromLocation:  strPtr(lot.Location),
		TransactionID: saleID,
		Note:          "Venta",
		CreatedAt:     now,
		CreatedBy:     userID,
	}
	if err := movRepo.Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// NotifyCommitted registra y publica movimientos de una transacción ya confirmada por otro caso de uso.
func (uc *InventoryUseCase) NotifyCommitted(ctx context.Context, movements ...*entity.MovementEntry) {
	uc.committed(ctx, movements...)
}
