package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura sobre stock, vencimientos y ventas.
type AnalyticsRepo struct {
	q Querier
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

type locationStockRow struct {
	Location string `db:"location"`
	Units    int    `db:"units"`
	Lots     int    `db:"lots"`
}

func toLocationStock(rows []locationStockRow) []repository.LocationStockResult {
	out := make([]repository.LocationStockResult, 0, len(rows))
	for _, r := range rows {
		out = append(out, repository.LocationStockResult{Location: r.Location, Units: r.Units, Lots: r.Lots})
	}
	return out
}

// StockByLocation unidades por ubicación de productos activos.
func (r *AnalyticsRepo) StockByLocation(ctx context.Context) ([]repository.LocationStockResult, error) {
	const query = `
	SELECT l.location, SUM(l.quantity)::int AS units, COUNT(*)::int AS lots
	FROM lots l
	JOIN products p ON p.id = l.product_id
	WHERE l.quantity > 0 AND p.active
	GROUP BY l.location
	ORDER BY l.location`

	var rows []locationStockRow
	if err := pgxscan.Select(ctx, r.q, &rows, query); err != nil {
		return nil, fmt.Errorf("stock by location: %w", err)
	}
	return toLocationStock(rows), nil
}

// StockByProduct unidades del producto por ubicación.
func (r *AnalyticsRepo) StockByProduct(ctx context.Context, productID string) ([]repository.LocationStockResult, error) {
	const query = `
	SELECT location, SUM(quantity)::int AS units, COUNT(*)::int AS lots
	FROM lots
	WHERE product_id = $1 AND quantity > 0
	GROUP BY location
	ORDER BY location`

	var rows []locationStockRow
	if err := pgxscan.Select(ctx, r.q, &rows, query, productID); err != nil {
		return nil, fmt.Errorf("stock by product: %w", err)
	}
	return toLocationStock(rows), nil
}

type expiringLotRow struct {
	LotID       string    `db:"lot_id"`
	LotNumber   string    `db:"lot_number"`
	ProductID   string    `db:"product_id"`
	ProductName string    `db:"product_name"`
	Location    string    `db:"location"`
	ExpiryDate  time.Time `db:"expiry_date"`
	Quantity    int       `db:"quantity"`
}

// LotsExpiringBefore lotes con stock y vencimiento <= cutoff.
func (r *AnalyticsRepo) LotsExpiringBefore(ctx context.Context, cutoff time.Time) ([]repository.ExpiringLotResult, error) {
	const query = `
	SELECT l.id::text AS lot_id, l.lot_number, l.product_id::text AS product_id, p.name AS product_name,
	       l.location, l.expiry_date, l.quantity
	FROM lots l
	JOIN products p ON p.id = l.product_id
	WHERE l.quantity > 0 AND p.active AND l.expiry_date <= $1
	ORDER BY l.expiry_date, l.location, l.id`

	var rows []expiringLotRow
	if err := pgxscan.Select(ctx, r.q, &rows, query, entity.DateOnly(cutoff)); err != nil {
		return nil, fmt.Errorf("lots expiring before: %w", err)
	}
	out := make([]repository.ExpiringLotResult, 0, len(rows))
	for _, row := range rows {
		out = append(out, repository.ExpiringLotResult{
			LotID:       row.LotID,
			LotNumber:   row.LotNumber,
			ProductID:   row.ProductID,
			ProductName: row.ProductName,
			Location:    row.Location,
			ExpiryDate:  entity.DateOnly(row.ExpiryDate),
			Quantity:    row.Quantity,
		})
	}
	return out, nil
}

type periodSummaryRow struct {
	SalesTotal     decimal.Decimal `db:"sales_total"`
	SalesCount     int             `db:"sales_count"`
	UnitsSold      int             `db:"units_sold"`
	UnitsStockedIn int             `db:"units_stocked_in"`
	LedgerSold     int             `db:"ledger_sold"`
}

// SalesSummary totales de ventas y libro en [from, to).
func (r *AnalyticsRepo) SalesSummary(ctx context.Context, from, to time.Time) (repository.PeriodSummaryResult, error) {
	const query = `
	SELECT
	    (SELECT COALESCE(SUM(total), 0) FROM sales WHERE created_at >= $1 AND created_at < $2)         AS sales_total,
	    (SELECT COUNT(*)::int FROM sales WHERE created_at >= $1 AND created_at < $2)                 AS sales_count,
	    (SELECT COALESCE(SUM(sl.quantity), 0)::int
	       FROM sale_lines sl JOIN sales s ON s.id = sl.sale_id
	      WHERE s.created_at >= $1 AND s.created_at < $2)                                           AS units_sold,
	    (SELECT COALESCE(SUM(quantity), 0)::int FROM movements
	      WHERE kind = 'STOCK_IN' AND created_at >= $1 AND created_at < $2)                         AS units_stocked_in,
	    (SELECT COALESCE(SUM(quantity), 0)::int FROM movements
	      WHERE kind = 'SALE' AND created_at >= $1 AND created_at < $2)                             AS ledger_sold`

	var row periodSummaryRow
	if err := pgxscan.Get(ctx, r.q, &row, query, from, to); err != nil {
		return repository.PeriodSummaryResult{}, fmt.Errorf("sales summary: %w", err)
	}
	return repository.PeriodSummaryResult{
		SalesTotal:     row.SalesTotal,
		SalesCount:     row.SalesCount,
		UnitsSold:      row.UnitsSold,
		UnitsStockedIn: row.UnitsStockedIn,
		LedgerSold:     row.LedgerSold,
	}, nil
}
