package memory

import (
	"context"
	"time"

	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
)

var (
	_ repository.LotReader           = lotReader{}
	_ repository.ProductRepository   = productReader{}
	_ repository.MovementRepository  = movementReader{}
	_ repository.SaleRepository      = saleReader{}
	_ repository.AnalyticsRepository = analyticsReader{}
)

type lotReader struct{ s *Store }

func (r lotReader) GetByID(ctx context.Context, id string) (lot *entity.Lot, err error) {
	r.s.view(func(st *state) { lot, err = (&lotRepo{st: st}).GetByID(ctx, id) })
	return
}

func (r lotReader) ListAvailable(ctx context.Context, productID, location string) (lots []*entity.Lot, err error) {
	r.s.view(func(st *state) { lots, err = (&lotRepo{st: st}).ListAvailable(ctx, productID, location) })
	return
}

type productReader struct{ s *Store }

func (r productReader) Create(ctx context.Context, p *entity.Product) (err error) {
	r.s.view(func(st *state) { err = (&productRepo{st: st}).Create(ctx, p) })
	return
}

func (r productReader) GetByID(ctx context.Context, id string) (p *entity.Product, err error) {
	r.s.view(func(st *state) { p, err = (&productRepo{st: st}).GetByID(ctx, id) })
	return
}

func (r productReader) List(ctx context.Context, activeOnly bool) (ps []*entity.Product, err error) {
	r.s.view(func(st *state) { ps, err = (&productRepo{st: st}).List(ctx, activeOnly) })
	return
}

type movementReader struct{ s *Store }

func (r movementReader) Create(ctx context.Context, m *entity.MovementEntry) (err error) {
	r.s.view(func(st *state) { err = (&movementRepo{st: st}).Create(ctx, m) })
	return
}

func (r movementReader) List(ctx context.Context, f repository.MovementFilter) (ms []*entity.MovementEntry, err error) {
	r.s.view(func(st *state) { ms, err = (&movementRepo{st: st}).List(ctx, f) })
	return
}

type saleReader struct{ s *Store }

func (r saleReader) Create(ctx context.Context, sale *entity.Sale) (err error) {
	r.s.view(func(st *state) { err = (&saleRepo{st: st}).Create(ctx, sale) })
	return
}

func (r saleReader) CreateLine(ctx context.Context, l *entity.SaleLine) (err error) {
	r.s.view(func(st *state) { err = (&saleRepo{st: st}).CreateLine(ctx, l) })
	return
}

func (r saleReader) GetByID(ctx context.Context, id string) (sale *entity.Sale, err error) {
	r.s.view(func(st *state) { sale, err = (&saleRepo{st: st}).GetByID(ctx, id) })
	return
}

func (r saleReader) GetLines(ctx context.Context, saleID string) (lines []*entity.SaleLine, err error) {
	r.s.view(func(st *state) { lines, err = (&saleRepo{st: st}).GetLines(ctx, saleID) })
	return
}

type analyticsReader struct{ s *Store }

func (r analyticsReader) StockByLocation(_ context.Context) (rows []repository.LocationStockResult, err error) {
	r.s.view(func(st *state) {
		rows = st.stockBy(func(l *entity.Lot) bool {
			p := st.products[l.ProductID]
			return p != nil && p.Active
		})
	})
	return
}

func (r analyticsReader) StockByProduct(_ context.Context, productID string) (rows []repository.LocationStockResult, err error) {
	r.s.view(func(st *state) {
		rows = st.stockBy(func(l *entity.Lot) bool { return l.ProductID == productID })
	})
	return
}

func (r analyticsReader) LotsExpiringBefore(_ context.Context, cutoff time.Time) (rows []repository.ExpiringLotResult, err error) {
	r.s.view(func(st *state) { rows = st.expiringBefore(cutoff) })
	return
}

func (r analyticsReader) SalesSummary(_ context.Context, from, to time.Time) (res repository.PeriodSummaryResult, err error) {
	r.s.view(func(st *state) { res = st.summary(from, to) })
	return
}
