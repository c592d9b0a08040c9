// Comando seed: carga productos de ejemplo y les da stock inicial mediante CreateLot,
// de modo que cada unidad queda registrada en el libro de movimientos.
package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/lotes-api/internal/application/inventory"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/infrastructure/postgres"
	"github.com/jhoicas/lotes-api/pkg/config"
	"github.com/jhoicas/lotes-api/pkg/logger"
)

// seedNamespace hace que los IDs de productos sean estables entre ejecuciones.
var seedNamespace = uuid.MustParse("6f1c2a4e-4b7d-4f1e-9a53-0d8f3c2b7e10")

type seedProduct struct {
	name      string
	kind      string
	price     string
	backroom  int // unidades en el primer almacén
	counter   int // unidades en el primer mostrador
	shelfDays int
}

var catalogue = []seedProduct{
	{name: "Helado de lúcuma 1L", kind: "Pote", price: "18.90", backroom: 40, counter: 12, shelfDays: 120},
	{name: "Helado de fresa 1L", kind: "Pote", price: "16.50", backroom: 30, counter: 10, shelfDays: 120},
	{name: "Paleta de chocolate", kind: "Paleta", price: "3.50", backroom: 100, counter: 24, shelfDays: 90},
	{name: "Sándwich de vainilla", kind: "Sándwich", price: "4.20", backroom: 60, counter: 15, shelfDays: 20},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})
	if cfg.DB.Driver != config.DriverPostgres {
		log.Fatal().Str("driver", cfg.DB.Driver).Msg("seed solo aplica a DB_DRIVER=postgres")
	}
	locations, err := cfg.Inventory.LocationSet()
	if err != nil {
		log.Fatal().Err(err).Msg("ubicaciones")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migración")
	}

	productRepo := postgres.NewProductRepository(pool)
	runner := postgres.NewTxRunner(pool, postgres.TxRunnerConfig{
		MaxRetries: cfg.Inventory.TxMaxRetries,
		Backoff:    cfg.Inventory.TxRetryBackoff,
	}, log, nil)
	inventoryUC := inventory.NewInventoryUseCase(runner, postgres.NewLotRepository(pool),
		postgres.NewMovementRepository(pool), productRepo, locations, nil, log)

	var backroom, counter string
	for _, loc := range locations.All() {
		switch {
		case loc.Kind == entity.LocationKindBackroom && backroom == "":
			backroom = loc.Code
		case loc.Kind == entity.LocationKindCounter && counter == "":
			counter = loc.Code
		}
	}

	now := time.Now().UTC()
	for _, sp := range catalogue {
		id := uuid.NewSHA1(seedNamespace, []byte(sp.name)).String()
		existing, err := productRepo.GetByID(ctx, id)
		if err != nil {
			log.Fatal().Err(err).Str("product", sp.name).Msg("consultar producto")
		}
		if existing != nil {
			log.Info().Str("product", sp.name).Msg("producto ya cargado, se omite")
			continue
		}
		if err := productRepo.Create(ctx, &entity.Product{
			ID:        id,
			Name:      sp.name,
			Type:      sp.kind,
			BasePrice: decimal.RequireFromString(sp.price),
			Active:    true,
			CreatedAt: now,
			UpdatedAt: now,
		}); err != nil {
			log.Fatal().Err(err).Str("product", sp.name).Msg("crear producto")
		}

		expiry := entity.DateOnly(now.AddDate(0, 0, sp.shelfDays))
		for _, stock := range []struct {
			location string
			qty      int
		}{{backroom, sp.backroom}, {counter, sp.counter}} {
			lot, err := inventoryUC.CreateLot(ctx, inventory.CreateLotInput{
				ProductID:  id,
				Location:   stock.location,
				ExpiryDate: expiry,
				Quantity:   stock.qty,
				Note:       "Carga inicial",
				UserID:     "seed",
			})
			if err != nil {
				log.Fatal().Err(err).Str("product", sp.name).Msg("crear lote")
			}
			log.Info().Str("product", sp.name).Str("lot_id", lot.ID).Str("location", lot.Location).Int("quantity", lot.Quantity).Msg("lote cargado")
		}
	}
	log.Info().Msg("seed completado")
}
