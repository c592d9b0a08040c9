package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/inventory"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
)

// DefaultStockInNote nota del movimiento de entrada cuando no se indica otra.
const DefaultStockInNote = "Stock agregado manualmente"

// CreateLotInput entrada para registrar stock nuevo.
type CreateLotInput struct {
	ProductID  string
	Location   string
	ExpiryDate time.Time
	Quantity   int
	LotNumber  string // opcional; por defecto AUTO-<unix ms>
	Note       string // opcional
	UserID     string
}

// CreateLot registra una entrada de stock: crea el lote (o suma al lote existente con el mismo
// producto, ubicación y vencimiento) y agrega un movimiento STOCK_IN en la misma transacción.
func (uc *InventoryUseCase) CreateLot(ctx context.Context, in CreateLotInput) (*entity.Lot, error) {
	if !inventory.ValidQuantity(in.Quantity) {
		return nil, fmt.Errorf("cantidad %d fuera de rango: %w", in.Quantity, domain.ErrInvalidQuantity)
	}
	if in.ProductID == "" || in.ExpiryDate.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	location, err := uc.locations.Resolve(in.Location)
	if err != nil {
		return nil, err
	}
	expiry := entity.DateOnly(in.ExpiryDate)
	note := in.Note
	if note == "" {
		note = DefaultStockInNote
	}

	var (
		lot *entity.Lot
		mov *entity.MovementEntry
	)
	err = uc.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
	) error {
		now := uc.now()
		product, err := productRepo.GetByID(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("producto %s: %w", in.ProductID, domain.ErrNotFound)
		}
		if !product.Active {
			return fmt.Errorf("producto %s: %w", in.ProductID, domain.ErrInactiveProduct)
		}

		existing, err := lotRepo.FindMergeTargetForUpdate(ctx, product.ID, location, expiry)
		if err != nil {
			return err
		}
		if existing != nil {
			if existing.Quantity+in.Quantity > inventory.MaxQuantity {
				return fmt.Errorf("lote %s superaría %d unidades: %w", existing.ID, inventory.MaxQuantity, domain.ErrInvalidQuantity)
			}
			if err := lotRepo.SetQuantity(ctx, existing.ID, existing.Quantity+in.Quantity, now); err != nil {
				return err
			}
			existing.Quantity += in.Quantity
			existing.UpdatedAt = now
			lot = existing
		} else {
			lotNumber := in.LotNumber
			if lotNumber == "" {
				lotNumber = fmt.Sprintf("AUTO-%d", now.UnixMilli())
			}
			lot = &entity.Lot{
				ID:         uuid.New().String(),
				ProductID:  product.ID,
				LotNumber:  lotNumber,
				Location:   location,
				ExpiryDate: expiry,
				Quantity:   in.Quantity,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if err := lotRepo.Create(ctx, lot); err != nil {
				return err
			}
		}

		mov = &entity.MovementEntry{
			ID:            uuid.New().String(),
			LotID:         lot.ID,
			ProductID:     product.ID,
			Kind:          entity.MovementKindStockIn,
			Quantity:      in.Quantity,
			ToLocation:    strPtr(location),
			TransactionID: uuid.New().String(),
			Note:          note,
			CreatedAt:     now,
			CreatedBy:     in.UserID,
		}
		return movRepo.Create(ctx, mov)
	})
	if err != nil {
		return nil, err
	}
	uc.committed(ctx, mov)
	return lot, nil
}
