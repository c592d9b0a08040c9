// Package analytics contiene las consultas de solo lectura sobre el stock por lotes:
// totales por ubicación y producto, vencimientos, resumen de período y dashboard.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jhoicas/lotes-api/internal/application/dto"
	"github.com/jhoicas/lotes-api/internal/application/ports"
	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/inventory"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
	"github.com/jhoicas/lotes-api/pkg/logger"
)

// StockQueryUseCase consultas de stock. La caché es opcional: sin ella se consulta siempre el repositorio.
type StockQueryUseCase struct {
	analyticsRepo  repository.AnalyticsRepository
	cache          ports.StockCache
	locations      *entity.LocationSet
	nearExpiryDays int
	log            *logger.Logger
	now            func() time.Time
}

// NewStockQueryUseCase construye el caso de uso. nearExpiryDays <= 0 usa 30 días.
func NewStockQueryUseCase(
	analyticsRepo repository.AnalyticsRepository,
	cache ports.StockCache,
	locations *entity.LocationSet,
	nearExpiryDays int,
	log *logger.Logger,
) *StockQueryUseCase {
	if nearExpiryDays <= 0 {
		nearExpiryDays = inventory.DefaultNearExpiryDays
	}
	if log == nil {
		log = logger.Nop()
	}
	return &StockQueryUseCase{
		analyticsRepo:  analyticsRepo,
		cache:          cache,
		locations:      locations,
		nearExpiryDays: nearExpiryDays,
		log:            log,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// WithClock fija el reloj (tests).
func (uc *StockQueryUseCase) WithClock(now func() time.Time) *StockQueryUseCase {
	uc.now = now
	return uc
}

// NearExpiryDays ventana por defecto de "por vencer".
func (uc *StockQueryUseCase) NearExpiryDays() int { return uc.nearExpiryDays }

// StockByLocation unidades por ubicación; las ubicaciones configuradas sin stock aparecen en 0.
func (uc *StockQueryUseCase) StockByLocation(ctx context.Context) ([]dto.LocationStockDTO, error) {
	var out []dto.LocationStockDTO
	err := uc.fetch(ctx, "stock:locations", &out, func(ctx context.Context) (any, error) {
		rows, err := uc.analyticsRepo.StockByLocation(ctx)
		if err != nil {
			return nil, err
		}
		return uc.withConfiguredLocations(rows), nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ProductStock stock del producto por ubicación.
func (uc *StockQueryUseCase) ProductStock(ctx context.Context, productID string) (*dto.ProductStockDTO, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	var out dto.ProductStockDTO
	err := uc.fetch(ctx, "stock:product:"+productID, &out, func(ctx context.Context) (any, error) {
		rows, err := uc.analyticsRepo.StockByProduct(ctx, productID)
		if err != nil {
			return nil, err
		}
		res := dto.ProductStockDTO{ProductID: productID, ByLocation: uc.withConfiguredLocations(rows)}
		for _, r := range res.ByLocation {
			res.Total += r.Units
		}
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Expiring lotes con stock vencidos o que vencen dentro de days días (0 = ventana por defecto).
// Ordenados por vencimiento ascendente.
func (uc *StockQueryUseCase) Expiring(ctx context.Context, days int) ([]dto.ExpiringLotDTO, error) {
	if days < 0 {
		return nil, fmt.Errorf("días %d: %w", days, domain.ErrInvalidInput)
	}
	if days == 0 {
		days = uc.nearExpiryDays
	}
	today := entity.DateOnly(uc.now())
	rows, err := uc.analyticsRepo.LotsExpiringBefore(ctx, inventory.ExpiryCutoff(today, days))
	if err != nil {
		return nil, err
	}
	out := make([]dto.ExpiringLotDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.ExpiringLotDTO{
			LotID:        r.LotID,
			LotNumber:    r.LotNumber,
			ProductID:    r.ProductID,
			ProductName:  r.ProductName,
			Location:     r.Location,
			ExpiryDate:   r.ExpiryDate.Format(dto.DateLayout),
			Quantity:     r.Quantity,
			DaysToExpiry: inventory.DaysUntilExpiry(r.ExpiryDate, today),
			Status:       inventory.ExpiryStatus(r.ExpiryDate, today, days),
		})
	}
	return out, nil
}

// PeriodSummary totales entre from y to, ambos días incluidos.
func (uc *StockQueryUseCase) PeriodSummary(ctx context.Context, from, to time.Time) (*dto.PeriodSummaryDTO, error) {
	from, to = entity.DateOnly(from), entity.DateOnly(to)
	if to.Before(from) {
		return nil, fmt.Errorf("rango de fechas: %w", domain.ErrInvalidInput)
	}
	res, err := uc.analyticsRepo.SalesSummary(ctx, from, to.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	return &dto.PeriodSummaryDTO{
		From:           from.Format(dto.DateLayout),
		To:             to.Format(dto.DateLayout),
		SalesTotal:     res.SalesTotal,
		SalesCount:     res.SalesCount,
		UnitsSold:      res.UnitsSold,
		UnitsStockedIn: res.UnitsStockedIn,
		LedgerSold:     res.LedgerSold,
	}, nil
}

// MovementsCommitted invalida la caché tras cada operación confirmada.
func (uc *StockQueryUseCase) MovementsCommitted(ctx context.Context, _ []*entity.MovementEntry) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Bump(ctx); err != nil {
		uc.log.Warn().Err(err).Msg("no se pudo invalidar la caché de stock")
	}
}

var _ ports.MovementNotifier = (*StockQueryUseCase)(nil)

// fetch lee a través de la caché. Solo un fallo de Redis cae a la consulta directa;
// el error del loader se devuelve tal cual y el loader nunca corre dos veces.
func (uc *StockQueryUseCase) fetch(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error {
	if uc.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return err
		}
		return decodeInto(value, dest)
	}

	var (
		loaded  bool
		value   any
		loadErr error
	)
	err := uc.cache.FetchJSON(ctx, key, dest, func(ctx context.Context) (any, error) {
		loaded = true
		value, loadErr = loader(ctx)
		return value, loadErr
	})
	if err == nil {
		return nil
	}
	if loadErr != nil {
		return loadErr
	}
	uc.log.Warn().Err(err).Str("key", key).Msg("caché de stock no disponible, consultando la BD")
	if !loaded {
		if value, err = loader(ctx); err != nil {
			return err
		}
	}
	return decodeInto(value, dest)
}

func decodeInto(value, dest any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

func (uc *StockQueryUseCase) withConfiguredLocations(rows []repository.LocationStockResult) []dto.LocationStockDTO {
	byCode := make(map[string]repository.LocationStockResult, len(rows))
	for _, r := range rows {
		byCode[r.Location] = r
	}
	out := make([]dto.LocationStockDTO, 0, len(rows))
	if uc.locations != nil {
		for _, loc := range uc.locations.All() {
			r := byCode[loc.Code]
			out = append(out, dto.LocationStockDTO{Location: loc.Code, Units: r.Units, Lots: r.Lots})
			delete(byCode, loc.Code)
		}
	}
	// ubicaciones que ya no están configuradas pero aún tienen stock
	for _, r := range rows {
		if _, ok := byCode[r.Location]; ok {
			out = append(out, dto.LocationStockDTO{Location: r.Location, Units: r.Units, Lots: r.Lots})
		}
	}
	return out
}
