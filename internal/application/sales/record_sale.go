package sales

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/inventory"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
	"github.com/jhoicas/lotes-api/pkg/logger"
)

// SaleLineInput línea pedida. UnitPrice nil usa el precio base del producto.
type SaleLineInput struct {
	LotID     string
	Quantity  int
	UnitPrice *decimal.Decimal
}

// RecordSaleInput entrada de una venta.
type RecordSaleInput struct {
	Lines         []SaleLineInput
	PaymentMethod string // por defecto efectivo
	CustomerName  string
	UserID        string
}

// RecordSaleUseCase registra ventas y descuenta los lotes en una sola transacción.
type RecordSaleUseCase struct {
	txRunner    SalesTxRunner
	inventoryUC InventoryUseCase
	saleRepo    repository.SaleRepository
	log         *logger.Logger
	now         func() time.Time
}

// NewRecordSaleUseCase construye el caso de uso.
func NewRecordSaleUseCase(
	txRunner SalesTxRunner,
	inventoryUC InventoryUseCase,
	saleRepo repository.SaleRepository,
	log *logger.Logger,
) *RecordSaleUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &RecordSaleUseCase{
		txRunner:    txRunner,
		inventoryUC: inventoryUC,
		saleRepo:    saleRepo,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

type pricedLine struct {
	lot       *entity.Lot
	quantity  int
	unitPrice decimal.Decimal
}

// RecordSale bloquea todos los lotes en orden ascendente de ID, valida cantidades y precios,
// descuenta cada lote y guarda cabecera y líneas: una SaleLine y un movimiento SALE por línea
// pedida, en el orden recibido. Si alguna línea falla no se persiste nada.
func (uc *RecordSaleUseCase) RecordSale(ctx context.Context, in RecordSaleInput) (*entity.Sale, error) {
	if len(in.Lines) == 0 {
		return nil, fmt.Errorf("la venta no tiene líneas: %w", domain.ErrInvalidInput)
	}
	payment := in.PaymentMethod
	if payment == "" {
		payment = entity.PaymentCash
	}
	if !entity.ValidPaymentMethod(payment) {
		return nil, fmt.Errorf("método de pago %q: %w", payment, domain.ErrInvalidInput)
	}
	lotIDs := make([]string, 0, len(in.Lines))
	requested := make(map[string]int, len(in.Lines))
	for i, l := range in.Lines {
		if l.LotID == "" {
			return nil, fmt.Errorf("línea %d sin lote: %w", i+1, domain.ErrInvalidInput)
		}
		if l.Quantity <= 0 || l.Quantity > inventory.MaxQuantity {
			return nil, fmt.Errorf("línea %d: cantidad %d fuera de rango: %w", i+1, l.Quantity, domain.ErrInvalidQuantity)
		}
		if l.UnitPrice != nil && !inventory.ValidUnitPrice(*l.UnitPrice) {
			return nil, fmt.Errorf("línea %d: precio %s: %w", i+1, l.UnitPrice.String(), domain.ErrInvalidInput)
		}
		if _, ok := requested[l.LotID]; !ok {
			lotIDs = append(lotIDs, l.LotID)
		}
		requested[l.LotID] += l.Quantity
	}
	// orden global de bloqueo para evitar interbloqueos entre ventas concurrentes
	sort.Strings(lotIDs)

	var (
		sale      *entity.Sale
		movements []*entity.MovementEntry
	)
	err := uc.txRunner.RunSale(ctx, func(
		lotRepo repository.LotRepository,
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
	) error {
		now := uc.now()
		lots := make(map[string]*entity.Lot, len(lotIDs))
		for _, id := range lotIDs {
			lot, err := lotRepo.GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if lot == nil {
				return fmt.Errorf("lote %s: %w", id, domain.ErrNotFound)
			}
			// varias líneas del mismo lote suman contra su cantidad
			if requested[id] > lot.Quantity {
				return fmt.Errorf("lote %s: solicitado %d, disponible %d: %w",
					id, requested[id], lot.Quantity, domain.ErrInsufficientStock)
			}
			lots[id] = lot
		}

		lines, err := priceLines(ctx, in.Lines, lots, productRepo)
		if err != nil {
			return err
		}

		sale = &entity.Sale{
			ID:            uuid.New().String(),
			Total:         decimal.Zero,
			PaymentMethod: payment,
			CustomerName:  in.CustomerName,
			CreatedAt:     now,
			CreatedBy:     in.UserID,
		}
		for i, l := range lines {
			subtotal := inventory.LineSubtotal(l.quantity, l.unitPrice)
			sale.Total = sale.Total.Add(subtotal)
			sale.Lines = append(sale.Lines, &entity.SaleLine{
				ID:        uuid.New().String(),
				SaleID:    sale.ID,
				LineNo:    i + 1,
				LotID:     l.lot.ID,
				ProductID: l.lot.ProductID,
				Quantity:  l.quantity,
				UnitPrice: l.unitPrice,
				Subtotal:  subtotal,
			})
		}
		if err := saleRepo.Create(ctx, sale); err != nil {
			return err
		}

		movements = movements[:0]
		for i, l := range lines {
			mov, err := uc.inventoryUC.RegisterSaleOutInTx(ctx, lotRepo, movRepo, l.lot, l.quantity, in.UserID, sale.ID, now)
			if err != nil {
				return err
			}
			movements = append(movements, mov)
			if err := saleRepo.CreateLine(ctx, sale.Lines[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("sale_id", sale.ID).
		Str("total", sale.Total.StringFixed(inventory.CurrencyPlaces)).
		Int("lines", len(sale.Lines)).
		Str("payment_method", sale.PaymentMethod).
		Msg("venta registrada")
	uc.inventoryUC.NotifyCommitted(ctx, movements...)
	return sale, nil
}

// priceLines resuelve el precio de cada línea en el orden recibido.
// Sin precio explícito se usa el precio base del producto del lote.
func priceLines(
	ctx context.Context,
	in []SaleLineInput,
	lots map[string]*entity.Lot,
	productRepo repository.ProductRepository,
) ([]*pricedLine, error) {
	products := make(map[string]*entity.Product)
	out := make([]*pricedLine, 0, len(in))
	for _, l := range in {
		lot := lots[l.LotID]
		var price decimal.Decimal
		if l.UnitPrice != nil {
			price = *l.UnitPrice
		} else {
			product, ok := products[lot.ProductID]
			if !ok {
				p, err := productRepo.GetByID(ctx, lot.ProductID)
				if err != nil {
					return nil, err
				}
				if p == nil {
					return nil, fmt.Errorf("producto %s: %w", lot.ProductID, domain.ErrNotFound)
				}
				products[lot.ProductID] = p
				product = p
			}
			price = product.BasePrice
			if !inventory.ValidUnitPrice(price) {
				return nil, fmt.Errorf("precio base de %s: %w", product.ID, domain.ErrInvalidInput)
			}
		}
		out = append(out, &pricedLine{lot: lot, quantity: l.Quantity, unitPrice: price})
	}
	return out, nil
}

// GetSale devuelve la venta con sus líneas.
func (uc *RecordSaleUseCase) GetSale(ctx context.Context, id string) (*entity.Sale, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	sale, err := uc.saleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, fmt.Errorf("venta %s: %w", id, domain.ErrNotFound)
	}
	lines, err := uc.saleRepo.GetLines(ctx, id)
	if err != nil {
		return nil, err
	}
	sale.Lines = lines
	return sale, nil
}
