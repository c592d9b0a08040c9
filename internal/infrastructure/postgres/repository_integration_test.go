package postgres_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/lotes-api/internal/application/inventory"
	"github.com/jhoicas/lotes-api/internal/application/sales"
	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/infrastructure/postgres"
	"github.com/jhoicas/lotes-api/pkg/config"
)

// Estas pruebas usan una base real: LOTES_TEST_DATABASE_URL=postgres://... go test ./internal/infrastructure/postgres/
// Sin la variable se omiten.

type pgFixture struct {
	pool    *pgxpool.Pool
	inv     *inventory.InventoryUseCase
	sales   *sales.RecordSaleUseCase
	product *entity.Product
}

func newPgFixture(t *testing.T) *pgFixture {
	t.Helper()
	dsn := os.Getenv("LOTES_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("LOTES_TEST_DATABASE_URL no definido")
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn, MaxConns: 10})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, postgres.Migrate(ctx, pool))

	// cada prueba usa su propio producto: los lotes no se cruzan entre ejecuciones
	products := postgres.NewProductRepository(pool)
	product := &entity.Product{
		ID: uuid.New().String(), Name: "Helado de prueba", Type: "Pote",
		BasePrice: decimal.RequireFromString("3.50"), Active: true,
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, products.Create(ctx, product))

	locations, err := entity.NewLocationSet([]string{"almacen"}, []string{"mostrador"})
	require.NoError(t, err)
	runner := postgres.NewTxRunner(pool, postgres.TxRunnerConfig{MaxRetries: 5, Backoff: 5 * time.Millisecond}, nil, nil)
	inv := inventory.NewInventoryUseCase(runner, postgres.NewLotRepository(pool), postgres.NewMovementRepository(pool),
		products, locations, nil, nil)
	return &pgFixture{
		pool:    pool,
		inv:     inv,
		sales:   sales.NewRecordSaleUseCase(runner, inv, postgres.NewSaleRepository(pool), nil),
		product: product,
	}
}

func (f *pgFixture) lot(t *testing.T, location string, expiry time.Time, qty int) *entity.Lot {
	t.Helper()
	lot, err := f.inv.CreateLot(context.Background(), inventory.CreateLotInput{
		ProductID: f.product.ID, Location: location, ExpiryDate: expiry, Quantity: qty,
	})
	require.NoError(t, err)
	return lot
}

// ── Lotes ────────────────────────────────────────────────────────────────────

func TestPostgres_LotesFIFOYNoEncontrado(t *testing.T) {
	f := newPgFixture(t)
	ctx := context.Background()
	late := f.lot(t, "mostrador", time.Date(2031, 3, 1, 0, 0, 0, 0, time.UTC), 4)
	early := f.lot(t, "mostrador", time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC), 6)

	lots, err := f.inv.ListAvailableLots(ctx, f.product.ID, "mostrador")
	require.NoError(t, err)
	require.Len(t, lots, 2)
	assert.Equal(t, early.ID, lots[0].ID)
	assert.Equal(t, late.ID, lots[1].ID)

	_, err = f.inv.GetLot(ctx, uuid.New().String())
	assert.True(t, errors.Is(err, domain.ErrNotFound), "got %v", err)

	lotRepo := postgres.NewLotRepository(f.pool)
	err = lotRepo.SetQuantity(ctx, uuid.New().String(), 1, time.Now())
	assert.True(t, errors.Is(err, domain.ErrNotFound), "got %v", err)
}

func TestPostgres_CreacionConcurrenteDelMismoLote(t *testing.T) {
	f := newPgFixture(t)
	expiry := time.Date(2031, 5, 1, 0, 0, 0, 0, time.UTC)

	const writers = 8
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.inv.CreateLot(context.Background(), inventory.CreateLotInput{
				ProductID: f.product.ID, Location: "almacen", ExpiryDate: expiry, Quantity: 3,
			})
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err, "la carrera por la clave única se reintenta")
	}

	lots, err := f.inv.ListAvailableLots(context.Background(), f.product.ID, "almacen")
	require.NoError(t, err)
	require.Len(t, lots, 1, "un solo lote por producto, ubicación y vencimiento")
	assert.Equal(t, writers*3, lots[0].Quantity)
}

// ── Ventas ───────────────────────────────────────────────────────────────────

func TestPostgres_VentasConcurrentesNoVendenDeMas(t *testing.T) {
	f := newPgFixture(t)
	lot := f.lot(t, "mostrador", time.Date(2031, 2, 1, 0, 0, 0, 0, time.UTC), 9)

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
			_, err := f.sales.RecordSale(context.Background(), sales.RecordSaleInput{
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

	assert.Equal(t, 4, ok)
	for _, err := range errs {
		assert.True(t, errors.Is(err, domain.ErrInsufficientStock), "got %v", err)
	}
	current, err := f.inv.GetLot(context.Background(), lot.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, current.Quantity)
}

func TestPostgres_LineasDeVentaEnOrdenDeRegistro(t *testing.T) {
	f := newPgFixture(t)
	// los IDs aleatorios no siguen el orden de las líneas
	a := f.lot(t, "mostrador", time.Date(2031, 2, 1, 0, 0, 0, 0, time.UTC), 10)
	b := f.lot(t, "mostrador", time.Date(2031, 4, 1, 0, 0, 0, 0, time.UTC), 10)

	sale, err := f.sales.RecordSale(context.Background(), sales.RecordSaleInput{
		Lines: []sales.SaleLineInput{
			{LotID: b.ID, Quantity: 1},
			{LotID: a.ID, Quantity: 2},
			{LotID: b.ID, Quantity: 3},
		},
	})
	require.NoError(t, err)

	stored, err := f.sales.GetSale(context.Background(), sale.ID)
	require.NoError(t, err)
	require.Len(t, stored.Lines, 3)
	for i, l := range stored.Lines {
		assert.Equal(t, sale.Lines[i].ID, l.ID)
		assert.Equal(t, i+1, l.LineNo)
	}
	assert.True(t, stored.Total.Equal(decimal.RequireFromString("21.00")), "total %s", stored.Total)
}
