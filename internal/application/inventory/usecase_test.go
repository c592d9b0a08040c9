package inventory_test

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
	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	domaininv "github.com/jhoicas/lotes-api/internal/domain/inventory"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
	"github.com/jhoicas/lotes-api/internal/infrastructure/memory"
)

// ── Helpers ───────────────────────────────────────────────────────────────────

type recorder struct {
	mu    sync.Mutex
	calls [][]*entity.MovementEntry
}

func (r *recorder) MovementsCommitted(_ context.Context, m []*entity.MovementEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, m)
}

type fixture struct {
	store    *memory.Store
	uc       *inventory.InventoryUseCase
	notifier *recorder
	product  *entity.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	locations, err := entity.NewLocationSet([]string{"almacen"}, []string{"mostrador1", "mostrador2"})
	require.NoError(t, err)

	product := &entity.Product{
		ID:        "prod-helado",
		Name:      "Helado de lúcuma",
		Type:      "Pote",
		BasePrice: decimal.RequireFromString("12.50"),
		Active:    true,
	}
	require.NoError(t, store.Products().Create(context.Background(), product))

	rec := &recorder{}
	uc := inventory.NewInventoryUseCase(store, store.Lots(), store.Movements(), store.Products(), locations, rec, nil)
	return &fixture{store: store, uc: uc, notifier: rec, product: product}
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func (f *fixture) createLot(t *testing.T, location, expiry string, qty int) *entity.Lot {
	t.Helper()
	lot, err := f.uc.CreateLot(context.Background(), inventory.CreateLotInput{
		ProductID:  f.product.ID,
		Location:   location,
		ExpiryDate: day(expiry),
		Quantity:   qty,
		UserID:     "user-1",
	})
	require.NoError(t, err)
	return lot
}

func (f *fixture) movements(t *testing.T, filter repository.MovementFilter) []*entity.MovementEntry {
	t.Helper()
	movs, err := f.uc.ListMovements(context.Background(), filter)
	require.NoError(t, err)
	return movs
}

// ledgerBalance suma con signo todos los movimientos que afectan al lote.
func ledgerBalance(movs []*entity.MovementEntry, lotID string) int {
	total := 0
	for _, m := range movs {
		if m.LotID == lotID {
			total += m.Signed()
		}
		if m.Kind == entity.MovementKindTransfer && m.DestinationLotID != nil && *m.DestinationLotID == lotID {
			total += m.Quantity
		}
	}
	return total
}

// ── CreateLot ────────────────────────────────────────────────────────────────

func TestCreateLot_RegistraEntradaDeStock(t *testing.T) {
	f := newFixture(t)

	lot := f.createLot(t, "Almacén", "2025-01-10", 50)

	assert.Equal(t, "almacen", lot.Location)
	assert.Equal(t, 50, lot.Quantity)
	assert.Contains(t, lot.LotNumber, "AUTO-")
	assert.Equal(t, day("2025-01-10"), lot.ExpiryDate)

	movs := f.movements(t, repository.MovementFilter{LotID: lot.ID})
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementKindStockIn, movs[0].Kind)
	assert.Equal(t, 50, movs[0].Quantity)
	assert.Nil(t, movs[0].FromLocation)
	require.NotNil(t, movs[0].ToLocation)
	assert.Equal(t, "almacen", *movs[0].ToLocation)
	assert.Equal(t, inventory.DefaultStockInNote, movs[0].Note)
	assert.Equal(t, "user-1", movs[0].CreatedBy)
	assert.Len(t, f.notifier.calls, 1)
}

func TestCreateLot_SumaAlLoteExistente(t *testing.T) {
	f := newFixture(t)
	first := f.createLot(t, "almacen", "2025-01-10", 10)
	second := f.createLot(t, "almacen", "2025-01-10", 5)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 15, second.Quantity)
	assert.Len(t, f.movements(t, repository.MovementFilter{LotID: first.ID}), 2)
}

func TestCreateLot_Errores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inactive := &entity.Product{ID: "prod-inactivo", Name: "Descontinuado", BasePrice: decimal.NewFromInt(5)}
	require.NoError(t, f.store.Products().Create(ctx, inactive))

	cases := []struct {
		name string
		in   inventory.CreateLotInput
		want error
	}{
		{"cantidad cero", inventory.CreateLotInput{ProductID: f.product.ID, Location: "almacen", ExpiryDate: day("2025-01-10")}, domain.ErrInvalidQuantity},
		{"cantidad negativa", inventory.CreateLotInput{ProductID: f.product.ID, Location: "almacen", ExpiryDate: day("2025-01-10"), Quantity: -1}, domain.ErrInvalidQuantity},
		{"producto inexistente", inventory.CreateLotInput{ProductID: "nope", Location: "almacen", ExpiryDate: day("2025-01-10"), Quantity: 1}, domain.ErrNotFound},
		{"producto inactivo", inventory.CreateLotInput{ProductID: inactive.ID, Location: "almacen", ExpiryDate: day("2025-01-10"), Quantity: 1}, domain.ErrInactiveProduct},
		{"ubicación desconocida", inventory.CreateLotInput{ProductID: f.product.ID, Location: "bodega", ExpiryDate: day("2025-01-10"), Quantity: 1}, domain.ErrInvalidLocation},
		{"sin vencimiento", inventory.CreateLotInput{ProductID: f.product.ID, Location: "almacen", Quantity: 1}, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.CreateLot(ctx, tc.in)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
	assert.Empty(t, f.movements(t, repository.MovementFilter{}))
}

// ── ListAvailableLots ────────────────────────────────────────────────────────

func TestListAvailableLots_OrdenFIFO(t *testing.T) {
	f := newFixture(t)
	late := f.createLot(t, "mostrador1", "2025-03-01", 5)
	early := f.createLot(t, "mostrador1", "2025-01-10", 5)
	empty := f.createLot(t, "mostrador1", "2025-01-05", 3)
	_, err := f.uc.AdjustQuantity(context.Background(), inventory.AdjustInput{LotID: empty.ID, NewQuantity: 0})
	require.NoError(t, err)
	f.createLot(t, "mostrador2", "2024-12-01", 5)

	lots, err := f.uc.ListAvailableLots(context.Background(), f.product.ID, "mostrador1")
	require.NoError(t, err)
	require.Len(t, lots, 2)
	assert.Equal(t, early.ID, lots[0].ID)
	assert.Equal(t, late.ID, lots[1].ID)
}

// ── Transfer ─────────────────────────────────────────────────────────────────

func TestTransfer_EscenarioTraspaso20De50(t *testing.T) {
	f := newFixture(t)
	lotA := f.createLot(t, "almacen", "2025-01-10", 50)

	res, err := f.uc.Transfer(context.Background(), inventory.TransferInput{
		LotID: lotA.ID, Quantity: 20, Destination: "mostrador1", UserID: "user-1",
	})
	require.NoError(t, err)

	assert.Equal(t, 30, res.Source.Quantity)
	assert.Equal(t, 20, res.Destination.Quantity)
	assert.Equal(t, "mostrador1", res.Destination.Location)
	assert.Equal(t, lotA.ExpiryDate, res.Destination.ExpiryDate)
	assert.Equal(t, entity.MovementKindTransfer, res.Movement.Kind)
	assert.Equal(t, 20, res.Movement.Quantity)
	assert.Equal(t, "almacen", *res.Movement.FromLocation)
	assert.Equal(t, "mostrador1", *res.Movement.ToLocation)
	assert.Equal(t, res.Destination.ID, *res.Movement.DestinationLotID)

	transfers := f.movements(t, repository.MovementFilter{Kind: entity.MovementKindTransfer})
	assert.Len(t, transfers, 1)

	stored, err := f.uc.GetLot(context.Background(), lotA.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, stored.Quantity)
}

func TestTransfer_FusionaConLoteDestinoExistente(t *testing.T) {
	f := newFixture(t)
	src := f.createLot(t, "almacen", "2025-01-10", 50)
	dst := f.createLot(t, "mostrador1", "2025-01-10", 4)

	res, err := f.uc.Transfer(context.Background(), inventory.TransferInput{LotID: src.ID, Quantity: 6, Destination: "mostrador1"})
	require.NoError(t, err)

	assert.Equal(t, dst.ID, res.Destination.ID)
	assert.Equal(t, 10, res.Destination.Quantity)
	lots, err := f.uc.ListAvailableLots(context.Background(), f.product.ID, "mostrador1")
	require.NoError(t, err)
	assert.Len(t, lots, 1, "no se fragmenta el lote destino")
}

func TestTransfer_Errores(t *testing.T) {
	f := newFixture(t)
	lot := f.createLot(t, "almacen", "2025-01-10", 10)
	ctx := context.Background()

	cases := []struct {
		name string
		in   inventory.TransferInput
		want error
	}{
		{"cantidad cero", inventory.TransferInput{LotID: lot.ID, Destination: "mostrador1"}, domain.ErrInvalidQuantity},
		{"destino igual al origen", inventory.TransferInput{LotID: lot.ID, Quantity: 1, Destination: "ALMACÉN"}, domain.ErrInvalidDestination},
		{"destino desconocido", inventory.TransferInput{LotID: lot.ID, Quantity: 1, Destination: "bodega"}, domain.ErrInvalidLocation},
		{"stock insuficiente", inventory.TransferInput{LotID: lot.ID, Quantity: 11, Destination: "mostrador1"}, domain.ErrInsufficientStock},
		{"lote inexistente", inventory.TransferInput{LotID: "nope", Quantity: 1, Destination: "mostrador1"}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.Transfer(ctx, tc.in)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}

	stored, err := f.uc.GetLot(ctx, lot.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, stored.Quantity, "ningún intento fallido modifica el lote")
	assert.Empty(t, f.movements(t, repository.MovementFilter{Kind: entity.MovementKindTransfer}))
}

func TestTransfer_DestinoNoSuperaElMaximo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	source := f.createLot(t, "almacen", "2025-01-10", 10)
	full := f.createLot(t, "mostrador1", "2025-01-10", domaininv.MaxQuantity)

	_, err := f.uc.Transfer(ctx, inventory.TransferInput{LotID: source.ID, Quantity: 1, Destination: "mostrador1"})
	assert.True(t, errors.Is(err, domain.ErrInvalidQuantity), "got %v", err)

	_, err = f.uc.Transfer(ctx, inventory.TransferInput{LotID: source.ID, Quantity: domaininv.MaxQuantity + 1, Destination: "mostrador2"})
	assert.True(t, errors.Is(err, domain.ErrInvalidQuantity), "got %v", err)

	stored, err := f.uc.GetLot(ctx, source.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, stored.Quantity)
	stored, err = f.uc.GetLot(ctx, full.ID)
	require.NoError(t, err)
	assert.Equal(t, domaininv.MaxQuantity, stored.Quantity)
}

func TestTransfer_ConservaTotalesConConcurrencia(t *testing.T) {
	f := newFixture(t)
	src := f.createLot(t, "almacen", "2025-01-10", 100)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			dest := "mostrador1"
			if i%2 == 0 {
				dest = "mostrador2"
			}
			_, err := f.uc.Transfer(ctx, inventory.TransferInput{LotID: src.ID, Quantity: 4, Destination: dest})
			if err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			} else {
				assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 25, ok, "100 unidades alcanzan para 25 traspasos de 4")
	total := 0
	for _, loc := range []string{"almacen", "mostrador1", "mostrador2"} {
		lots, err := f.uc.ListAvailableLots(ctx, f.product.ID, loc)
		require.NoError(t, err)
		for _, l := range lots {
			assert.GreaterOrEqual(t, l.Quantity, 0)
			total += l.Quantity
		}
	}
	assert.Equal(t, 100, total)
}

// ── AdjustQuantity ───────────────────────────────────────────────────────────

func TestAdjustQuantity_Escenario30A27(t *testing.T) {
	f := newFixture(t)
	lot := f.createLot(t, "mostrador1", "2025-01-10", 30)

	res, err := f.uc.AdjustQuantity(context.Background(), inventory.AdjustInput{LotID: lot.ID, NewQuantity: 27, Note: "conteo"})
	require.NoError(t, err)

	assert.Equal(t, 27, res.Lot.Quantity)
	assert.Equal(t, -3, res.Delta)
	require.NotNil(t, res.Movement)
	assert.Equal(t, entity.MovementKindAdjustment, res.Movement.Kind)
	assert.Equal(t, 3, res.Movement.Quantity)
	assert.Equal(t, "disminución: conteo", res.Movement.Note)
	require.NotNil(t, res.Movement.FromLocation)
	assert.Nil(t, res.Movement.ToLocation)
}

func TestAdjustQuantity_Aumento(t *testing.T) {
	f := newFixture(t)
	lot := f.createLot(t, "mostrador1", "2025-01-10", 5)

	res, err := f.uc.AdjustQuantity(context.Background(), inventory.AdjustInput{LotID: lot.ID, NewQuantity: 8})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Delta)
	assert.Equal(t, entity.AdjustmentIncrease, res.Movement.Note)
	require.NotNil(t, res.Movement.ToLocation)
	assert.Equal(t, "mostrador1", *res.Movement.ToLocation)
}

func TestAdjustQuantity_SinCambioNoRegistraMovimiento(t *testing.T) {
	f := newFixture(t)
	lot := f.createLot(t, "mostrador1", "2025-01-10", 5)

	res, err := f.uc.AdjustQuantity(context.Background(), inventory.AdjustInput{LotID: lot.ID, NewQuantity: 5})
	require.NoError(t, err)
	assert.Zero(t, res.Delta)
	assert.Nil(t, res.Movement)
	assert.Empty(t, f.movements(t, repository.MovementFilter{Kind: entity.MovementKindAdjustment}))
}

func TestAdjustQuantity_Errores(t *testing.T) {
	f := newFixture(t)
	lot := f.createLot(t, "mostrador1", "2025-01-10", 5)

	_, err := f.uc.AdjustQuantity(context.Background(), inventory.AdjustInput{LotID: lot.ID, NewQuantity: -1})
	assert.True(t, errors.Is(err, domain.ErrInvalidQuantity))

	_, err = f.uc.AdjustQuantity(context.Background(), inventory.AdjustInput{LotID: "nope", NewQuantity: 1})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

// ── Libro ────────────────────────────────────────────────────────────────────

func TestLibro_CadaCambioTieneSuMovimiento(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.createLot(t, "almacen", "2025-01-10", 50)
	b := f.createLot(t, "almacen", "2025-02-10", 12)

	res, err := f.uc.Transfer(ctx, inventory.TransferInput{LotID: a.ID, Quantity: 20, Destination: "mostrador1"})
	require.NoError(t, err)
	_, err = f.uc.Transfer(ctx, inventory.TransferInput{LotID: res.Destination.ID, Quantity: 5, Destination: "mostrador2"})
	require.NoError(t, err)
	_, err = f.uc.AdjustQuantity(ctx, inventory.AdjustInput{LotID: b.ID, NewQuantity: 9})
	require.NoError(t, err)
	_, err = f.uc.AdjustQuantity(ctx, inventory.AdjustInput{LotID: res.Destination.ID, NewQuantity: 17})
	require.NoError(t, err)

	movs := f.movements(t, repository.MovementFilter{Limit: repository.MaxMovementLimit})
	for _, loc := range []string{"almacen", "mostrador1", "mostrador2"} {
		lots, err := f.uc.ListAvailableLots(ctx, f.product.ID, loc)
		require.NoError(t, err)
		for _, l := range lots {
			assert.Equal(t, l.Quantity, ledgerBalance(movs, l.ID), "lote %s en %s", l.LotNumber, loc)
		}
	}
}

func TestListMovements_FiltrosYPaginacion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lot := f.createLot(t, "almacen", "2025-01-10", 50)
	for i := 0; i < 3; i++ {
		_, err := f.uc.Transfer(ctx, inventory.TransferInput{LotID: lot.ID, Quantity: 1, Destination: "mostrador1"})
		require.NoError(t, err)
	}

	all := f.movements(t, repository.MovementFilter{})
	require.Len(t, all, 4)
	assert.Equal(t, entity.MovementKindStockIn, all[len(all)-1].Kind, "el más antiguo al final")

	page := f.movements(t, repository.MovementFilter{Kind: entity.MovementKindTransfer, Limit: 2, Offset: 2})
	assert.Len(t, page, 1)

	_, err := f.uc.ListMovements(ctx, repository.MovementFilter{Kind: "ROBO"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	future := time.Now().Add(time.Hour)
	assert.Empty(t, f.movements(t, repository.MovementFilter{From: &future}))
}
