package memory

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
)

func (st *state) stockBy(include func(l *entity.Lot) bool) []repository.LocationStockResult {
	byLocation := make(map[string]*repository.LocationStockResult)
	for _, l := range st.lots {
		if l.Quantity <= 0 || !include(l) {
			continue
		}
		row, ok := byLocation[l.Location]
		if !ok {
			row = &repository.LocationStockResult{Location: l.Location}
			byLocation[l.Location] = row
		}
		row.Units += l.Quantity
		row.Lots++
	}
	out := make([]repository.LocationStockResult, 0, len(byLocation))
	for _, row := range byLocation {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Location < out[j].Location })
	return out
}

func (st *state) expiringBefore(cutoff time.Time) []repository.ExpiringLotResult {
	cutoff = entity.DateOnly(cutoff)
	out := make([]repository.ExpiringLotResult, 0)
	for _, l := range st.lots {
		p := st.products[l.ProductID]
		if l.Quantity <= 0 || p == nil || !p.Active || l.ExpiryDate.After(cutoff) {
			continue
		}
		out = append(out, repository.ExpiringLotResult{
			LotID:       l.ID,
			LotNumber:   l.LotNumber,
			ProductID:   l.ProductID,
			ProductName: p.Name,
			Location:    l.Location,
			ExpiryDate:  l.ExpiryDate,
			Quantity:    l.Quantity,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ExpiryDate.Equal(out[j].ExpiryDate) {
			return out[i].ExpiryDate.Before(out[j].ExpiryDate)
		}
		if out[i].Location != out[j].Location {
			return out[i].Location < out[j].Location
		}
		return out[i].LotID < out[j].LotID
	})
	return out
}

func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

func (st *state) summary(from, to time.Time) repository.PeriodSummaryResult {
	res := repository.PeriodSummaryResult{SalesTotal: decimal.Zero}
	inPeriod := make(map[string]bool)
	for id, s := range st.sales {
		if inRange(s.CreatedAt, from, to) {
			inPeriod[id] = true
			res.SalesTotal = res.SalesTotal.Add(s.Total)
			res.SalesCount++
		}
	}
	for _, l := range st.saleLines {
		if inPeriod[l.SaleID] {
			res.UnitsSold += l.Quantity
		}
	}
	for _, m := range st.movements {
		if !inRange(m.CreatedAt, from, to) {
			continue
		}
		switch m.Kind {
		case entity.MovementKindStockIn:
			res.UnitsStockedIn += m.Quantity
		case entity.MovementKindSale:
			res.LedgerSold += m.Quantity
		}
	}
	return res
}
