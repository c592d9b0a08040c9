package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/lotes-api/internal/application/ports"
	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/inventory"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
	"github.com/jhoicas/lotes-api/pkg/logger"
)

// InventoryUseCase operaciones del motor de lotes: entrada de stock, traspaso, ajuste
// y consultas del libro. Toda mutación corre dentro de TxRunner.Run.
type InventoryUseCase struct {
	txRunner    TxRunner
	lotReader   repository.LotReader
	movRepo     repository.MovementRepository
	productRepo repository.ProductRepository
	locations   *entity.LocationSet
	notifier    ports.MovementNotifier
	log         *logger.Logger
	now         func() time.Time
}

// NewInventoryUseCase construye el caso de uso. notifier puede ser nil.
func NewInventoryUseCase(
	txRunner TxRunner,
	lotReader repository.LotReader,
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
	locations *entity.LocationSet,
	notifier ports.MovementNotifier,
	log *logger.Logger,
) *InventoryUseCase {
	if notifier == nil {
		notifier = ports.Notifiers(nil)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &InventoryUseCase{
		txRunner:    txRunner,
		lotReader:   lotReader,
		movRepo:     movRepo,
		productRepo: productRepo,
		locations:   locations,
		notifier:    notifier,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Locations devuelve el conjunto de ubicaciones configurado.
func (uc *InventoryUseCase) Locations() []entity.Location {
	return uc.locations.All()
}

// GetLot lee un lote por ID.
func (uc *InventoryUseCase) GetLot(ctx context.Context, lotID string) (*entity.Lot, error) {
	if lotID == "" {
		return nil, domain.ErrInvalidInput
	}
	lot, err := uc.lotReader.GetByID(ctx, lotID)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, fmt.Errorf("lote %s: %w", lotID, domain.ErrNotFound)
	}
	return lot, nil
}

// ListAvailableLots devuelve los lotes con stock del producto en la ubicación, en orden FIFO.
func (uc *InventoryUseCase) ListAvailableLots(ctx context.Context, productID, location string) ([]*entity.Lot, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	code, err := uc.locations.Resolve(location)
	if err != nil {
		return nil, err
	}
	lots, err := uc.lotReader.ListAvailable(ctx, productID, code)
	if err != nil {
		return nil, err
	}
	// el orden lo garantiza el adaptador; se reafirma para no depender de él
	return inventory.AvailableFIFO(lots), nil
}

// ListMovements consulta el libro, más recientes primero.
func (uc *InventoryUseCase) ListMovements(ctx context.Context, filter repository.MovementFilter) ([]*entity.MovementEntry, error) {
	if filter.Kind != "" && !entity.ValidMovementKind(filter.Kind) {
		return nil, fmt.Errorf("tipo de movimiento %q: %w", filter.Kind, domain.ErrInvalidInput)
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, fmt.Errorf("rango de fechas: %w", domain.ErrInvalidInput)
	}
	filter.Normalize()
	return uc.movRepo.List(ctx, filter)
}

func (uc *InventoryUseCase) committed(ctx context.Context, movements ...*entity.MovementEntry) {
	for _, m := range movements {
		uc.log.Info().
			Str("kind", m.Kind).
			Str("lot_id", m.LotID).
			Str("product_id", m.ProductID).
			Int("quantity", m.Quantity).
			Str("transaction_id", m.TransactionID).
			Msg("movimiento registrado")
	}
	uc.notifier.MovementsCommitted(ctx, movements)
}

func strPtr(s string) *string { return &s }

// ListProducts lista el catálogo; activeOnly filtra los productos inactivos.
func (uc *InventoryUseCase) ListProducts(ctx context.Context, activeOnly bool) ([]*entity.Product, error) {
	return uc.productRepo.List(ctx, activeOnly)
}

// GetProduct lee un producto del catálogo.
func (uc *InventoryUseCase) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	p, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("producto %s: %w", id, domain.ErrNotFound)
	}
	return p, nil
}
