package sales_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/lotes-api/internal/application/inventory"
	"github.com/jhoicas/lotes-api/internal/application/sales"
	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
	"github.com/jhoicas/lotes-api/internal/infrastructure/memory"
)

type fixture struct {
	store   *memory.Store
	inv     *inventory.InventoryUseCase
	uc      *sales.RecordSaleUseCase
	product *entity.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	locations, err := entity.NewLocationSet([]string{"almacen"}, []string{"mostrador1"})
	require.NoError(t, err)
	product := &entity.Product{ID: "prod-1", Name: "Helado de fresa", Type: "Pote", BasePrice: decimal.RequireFromString("7.90"), Active: true}
	require.NoError(t, store.Products().Create(context.Background(), product))

	inv := inventory.NewInventoryUseCase(store, store.Lots(), store.Movements(), store.Products(), locations, nil, nil)
	uc := sales.NewRecordSaleUseCase(store, inv, store.Sales(), nil)
	return &fixture{store: store, inv: inv, uc: uc, product: product}
}

func (f *fixture) lot(t *testing.T, expiry string, qty int) *entity.Lot {
	t.Helper()
	exp, err := time.Parse("2006-01-02", expiry)
	require.NoError(t, err)
	lot, err := f.inv.CreateLot(context.Background(), inventory.CreateLotInput{
		ProductID: f.product.ID, Location: "mostrador1", ExpiryDate: exp, Quantity: qty,
	})
	require.NoError(t, err)
	return lot
}

func (f *fixture) quantity(t *testing.T, lotID string) int {
	t.Helper()
	lot, err := f.inv.GetLot(context.Background(), lotID)
	require.NoError(t, err)
	return lot.Quantity
}

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// ── RecordSale ───────────────────────────────────────────────────────────────

func TestRecordSale_DescuentaLotesYRegistraMovimientos(t *testing.T) {
	f := newFixture(t)
	a := f.lot(t, "2025-01-10", 10)
	b := f.lot(t, "2025-02-10", 10)

	sale, err := f.uc.RecordSale(context.Background(), sales.RecordSaleInput{
		Lines: []sales.SaleLineInput{
			{LotID: a.ID, Quantity: 3, UnitPrice: price("2.35")},
			{LotID: b.ID, Quantity: 2},
		},
		CustomerName: "Rosa",
		UserID:       "vendedor-1",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.PaymentCash, sale.PaymentMethod, "efectivo por defecto")
	require.Len(t, sale.Lines, 2)
	assert.True(t, sale.Lines[0].Subtotal.Equal(decimal.RequireFromString("7.05")))
	assert.True(t, sale.Lines[1].UnitPrice.Equal(f.product.BasePrice), "sin precio usa el precio base")
	assert.True(t, sale.Total.Equal(decimal.RequireFromString("22.85")), "total %s", sale.Total)

	assert.Equal(t, 7, f.quantity(t, a.ID))
	assert.Equal(t, 8, f.quantity(t, b.ID))

	movs, err := f.inv.ListMovements(context.Background(), repository.MovementFilter{Kind: entity.MovementKindSale})
	require.NoError(t, err)
	require.Len(t, movs, 2)
	for _, m := range movs {
		assert.Equal(t, sale.ID, m.TransactionID)
		require.NotNil(t, m.FromLocation)
		assert.Equal(t, "mostrador1", *m.FromLocation)
		assert.Nil(t, m.ToLocation)
	}

	stored, err := f.uc.GetSale(context.Background(), sale.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Lines, 2)
	total := decimal.Zero
	for _, l := range stored.Lines {
		total = total.Add(l.Subtotal)
	}
	assert.True(t, total.Equal(stored.Total))
}

func TestRecordSale_Escenario25De20Falla(t *testing.T) {
	f := newFixture(t)
	lot := f.lot(t, "2025-01-10", 20)

	_, err := f.uc.RecordSale(context.Background(), sales.RecordSaleInput{
		Lines: []sales.SaleLineInput{{LotID: lot.ID, Quantity: 25}},
	})
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Equal(t, 20, f.quantity(t, lot.ID))

	movs, err := f.inv.ListMovements(context.Background(), repository.MovementFilter{Kind: entity.MovementKindSale})
	require.NoError(t, err)
	assert.Empty(t, movs)
}

func TestRecordSale_AtomicaConVariasLineas(t *testing.T) {
	f := newFixture(t)
	a := f.lot(t, "2025-01-10", 10)
	b := f.lot(t, "2025-02-10", 1)

	_, err := f.uc.RecordSale(context.Background(), sales.RecordSaleInput{
		Lines: []sales.SaleLineInput{
			{LotID: a.ID, Quantity: 5},
			{LotID: b.ID, Quantity: 2},
		},
	})
	require.True(t, errors.Is(err, domain.ErrInsufficientStock))

	assert.Equal(t, 10, f.quantity(t, a.ID), "la primera línea no se aplica")
	assert.Equal(t, 1, f.quantity(t, b.ID))
	summary, err := f.store.Analytics().SalesSummary(context.Background(), time.Time{}, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, summary.SalesCount)
}

func TestRecordSale_UnaLineaYUnMovimientoPorLineaPedida(t *testing.T) {
	f := newFixture(t)
	lot := f.lot(t, "2025-01-10", 10)

	sale, err := f.uc.RecordSale(context.Background(), sales.RecordSaleInput{
		Lines: []sales.SaleLineInput{
			{LotID: lot.ID, Quantity: 2, UnitPrice: price("5.00")},
			{LotID: lot.ID, Quantity: 3, UnitPrice: price("4.00")},
		},
		PaymentMethod: entity.PaymentYape,
	})
	require.NoError(t, err)
	require.Len(t, sale.Lines, 2)
	assert.Equal(t, 2, sale.Lines[0].Quantity)
	assert.Equal(t, 3, sale.Lines[1].Quantity)
	assert.True(t, sale.Total.Equal(decimal.RequireFromString("22.00")), "total %s", sale.Total)
	assert.Equal(t, 5, f.quantity(t, lot.ID))

	stored, err := f.uc.GetSale(context.Background(), sale.ID)
	require.NoError(t, err)
	require.Len(t, stored.Lines, 2)
	for i, l := range stored.Lines {
		assert.Equal(t, i+1, l.LineNo, "orden de registro")
		assert.Equal(t, sale.Lines[i].ID, l.ID)
	}

	movs, err := f.inv.ListMovements(context.Background(), repository.MovementFilter{Kind: entity.MovementKindSale})
	require.NoError(t, err)
	require.Len(t, movs, 2)
	qtys := []int{movs[0].Quantity, movs[1].Quantity}
	assert.ElementsMatch(t, []int{2, 3}, qtys)
}

func TestRecordSale_LineasUnidasNoSuperanElLote(t *testing.T) {
	f := newFixture(t)
	lot := f.lot(t, "2025-01-10", 4)

	_, err := f.uc.RecordSale(context.Background(), sales.RecordSaleInput{
		Lines: []sales.SaleLineInput{{LotID: lot.ID, Quantity: 3}, {LotID: lot.ID, Quantity: 3}},
	})
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Equal(t, 4, f.quantity(t, lot.ID))
}

func TestRecordSale_Errores(t *testing.T) {
	f := newFixture(t)
	lot := f.lot(t, "2025-01-10", 10)
	ctx := context.Background()

	cases := []struct {
		name string
		in   sales.RecordSaleInput
		want error
	}{
		{"sin líneas", sales.RecordSaleInput{}, domain.ErrInvalidInput},
		{"cantidad cero", sales.RecordSaleInput{Lines: []sales.SaleLineInput{{LotID: lot.ID}}}, domain.ErrInvalidQuantity},
		{"precio negativo", sales.RecordSaleInput{Lines: []sales.SaleLineInput{{LotID: lot.ID, Quantity: 1, UnitPrice: price("-1")}}}, domain.ErrInvalidInput},
		{"precio con tres decimales", sales.RecordSaleInput{Lines: []sales.SaleLineInput{{LotID: lot.ID, Quantity: 1, UnitPrice: price("1.005")}}}, domain.ErrInvalidInput},
		{"método de pago desconocido", sales.RecordSaleInput{Lines: []sales.SaleLineInput{{LotID: lot.ID, Quantity: 1}}, PaymentMethod: "cheque"}, domain.ErrInvalidInput},
		{"cantidad fuera de rango", sales.RecordSaleInput{Lines: []sales.SaleLineInput{{LotID: lot.ID, Quantity: 1 << 31}}}, domain.ErrInvalidQuantity},
		{"lote inexistente", sales.RecordSaleInput{Lines: []sales.SaleLineInput{{LotID: "nope", Quantity: 1}}}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.RecordSale(ctx, tc.in)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
	assert.Equal(t, 10, f.quantity(t, lot.ID))
}

// ── Concurrencia ─────────────────────────────────────────────────────────────

func TestRecordSale_ConcurrenteNoVendeDeMas(t *testing.T) {
	f := newFixture(t)
	lot := f.lot(t, "2025-01-10", 9)

	const buyers = 12
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		ok   int
		errs []error
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.RecordSale(context.Background(), sales.RecordSaleInput{
				Lines: []sales.SaleLineInput{{LotID: lot.ID, Quantity: 1}, {LotID: lot.ID, Quantity: 1}},
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			ok++
		}()
	}
	wg.Wait()

	assert.Equal(t, 4, ok, "9 unidades alcanzan para 4 ventas de 2")
	for _, err := range errs {
		assert.True(t, errors.Is(err, domain.ErrInsufficientStock), "got %v", err)
	}
	assert.Equal(t, 1, f.quantity(t, lot.ID))

	movs, err := f.inv.ListMovements(context.Background(), repository.MovementFilter{Kind: entity.MovementKindSale, Limit: 500})
	require.NoError(t, err)
	sold := 0
	for _, m := range movs {
		sold += m.Quantity
	}
	assert.Equal(t, 8, sold)
	assert.Len(t, movs, 8)
}

func TestGetSale_NoEncontrada(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.GetSale(context.Background(), "nope")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
