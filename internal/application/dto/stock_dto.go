package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// LocationStockDTO unidades y lotes con stock en una ubicación.
type LocationStockDTO struct {
	Location string `json:"location"`
	Units    int    `json:"units"`
	Lots     int    `json:"lots"`
}

// ProductStockDTO respuesta de GET /api/stock/products/:id.
type ProductStockDTO struct {
	ProductID  string             `json:"product_id"`
	Total      int                `json:"total"`
	ByLocation []LocationStockDTO `json:"by_location"`
}

// ExpiringLotDTO lote vencido o por vencer con stock.
type ExpiringLotDTO struct {
	LotID        string `json:"lot_id"`
	LotNumber    string `json:"lot_number"`
	ProductID    string `json:"product_id"`
	ProductName  string `json:"product_name"`
	Location     string `json:"location"`
	ExpiryDate   string `json:"expiry_date"`
	Quantity     int    `json:"quantity"`
	DaysToExpiry int    `json:"days_to_expiry"` // negativo si ya venció
	Status       string `json:"status"`         // vencido | por_vencer
}

// PeriodSummaryDTO respuesta de GET /api/stock/summary.
type PeriodSummaryDTO struct {
	From           string          `json:"from"`
	To             string          `json:"to"`
	SalesTotal     decimal.Decimal `json:"sales_total"`
	SalesCount     int             `json:"sales_count"`
	UnitsSold      int             `json:"units_sold"`
	UnitsStockedIn int             `json:"units_stocked_in"`
	LedgerSold     int             `json:"ledger_units_sold"`
}

// DashboardDTO respuesta de GET /api/dashboard.
type DashboardDTO struct {
	Locations       []LocationStockDTO `json:"locations"`
	TotalUnits      int                `json:"total_units"`
	TodaySales      decimal.Decimal    `json:"today_sales"`
	TodaySalesCount int                `json:"today_sales_count"`
	ExpiringSoon    int                `json:"expiring_soon"` // lotes por vencer dentro de la ventana
	Expired         int                `json:"expired"`       // lotes vencidos con stock
	NearExpiryDays  int                `json:"near_expiry_days"`
	GeneratedAt     time.Time          `json:"generated_at"`
}
