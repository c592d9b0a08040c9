package sales

import (
	"context"
	"time"

	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
)

// SalesTxRunner ejecuta una función dentro de una transacción que incluye repos de inventario y ventas.
type SalesTxRunner interface {
	RunSale(ctx context.Context, fn func(
		lotRepo repository.LotRepository,
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
	) error) error
}

// InventoryUseCase interfaz para integrar ventas con el motor de lotes.
// RegisterSaleOutInTx descuenta un lote ya bloqueado usando los repositorios del caller (misma transacción).
// Si retorna error (ej: ErrInsufficientStock), el caller debe hacer rollback.
type InventoryUseCase interface {
	RegisterSaleOutInTx(
		ctx context.Context,
		lotRepo repository.LotRepository,
		movRepo repository.MovementRepository,
		lot *entity.Lot,
		quantity int,
		userID, saleID string,
		now time.Time,
	) (*entity.MovementEntry, error)
	NotifyCommitted(ctx context.Context, movements ...*entity.MovementEntry)
}
