package analytics

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/lotes-api/internal/application/dto"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/inventory"
)

// Dashboard arma las tarjetas principales en paralelo:
//  1. stock por ubicación
//  2. ventas de hoy
//  3. lotes vencidos y por vencer dentro de la ventana
func (uc *StockQueryUseCase) Dashboard(ctx context.Context) (*dto.DashboardDTO, error) {
	now := uc.now()
	today := entity.DateOnly(now)
	out := &dto.DashboardDTO{NearExpiryDays: uc.nearExpiryDays, GeneratedAt: now}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		locs, err := uc.StockByLocation(gctx)
		if err != nil {
			return err
		}
		out.Locations = locs
		for _, l := range locs {
			out.TotalUnits += l.Units
		}
		return nil
	})
	g.Go(func() error {
		res, err := uc.analyticsRepo.SalesSummary(gctx, today, today.AddDate(0, 0, 1))
		if err != nil {
			return err
		}
		out.TodaySales = res.SalesTotal
		out.TodaySalesCount = res.SalesCount
		return nil
	})
	g.Go(func() error {
		rows, err := uc.analyticsRepo.LotsExpiringBefore(gctx, inventory.ExpiryCutoff(today, uc.nearExpiryDays))
		if err != nil {
			return err
		}
		for _, r := range rows {
			if inventory.ExpiryStatus(r.ExpiryDate, today, uc.nearExpiryDays) == inventory.ExpiryStatusExpired {
				out.Expired++
			} else {
				out.ExpiringSoon++
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
