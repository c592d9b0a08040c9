package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// LocationStockResult unidades y lotes con stock por ubicación (solo productos activos).
type LocationStockResult struct {
	Location string
	Units    int
	Lots     int
}

// ExpiringLotResult lote con stock cuyo vencimiento es anterior o igual al corte.
type ExpiringLotResult struct {
	LotID       string
	LotNumber   string
	ProductID   string
	ProductName string
	Location    string
	ExpiryDate  time.Time
	Quantity    int
}

// PeriodSummaryResult totales de un período [from, to).
type PeriodSummaryResult struct {
	SalesTotal     decimal.Decimal
	SalesCount     int
	UnitsSold      int // por líneas de venta
	UnitsStockedIn int // por libro (STOCK_IN)
	LedgerSold     int // por libro (SALE)
}

// AnalyticsRepository consultas de solo lectura sobre lotes, libro y ventas.
type AnalyticsRepository interface {
	StockByLocation(ctx context.Context) ([]LocationStockResult, error)
	// StockByProduct devuelve el stock del producto agrupado por ubicación.
	StockByProduct(ctx context.Context, productID string) ([]LocationStockResult, error)
	// LotsExpiringBefore lotes con stock y vencimiento <= cutoff, de producto activo, por vencimiento ascendente.
	LotsExpiringBefore(ctx context.Context, cutoff time.Time) ([]ExpiringLotResult, error)
	SalesSummary(ctx context.Context, from, to time.Time) (PeriodSummaryResult, error)
}
