package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/lotes-api/internal/application/analytics"
	"github.com/jhoicas/lotes-api/internal/application/inventory"
	"github.com/jhoicas/lotes-api/internal/application/ports"
	"github.com/jhoicas/lotes-api/internal/application/sales"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
	"github.com/jhoicas/lotes-api/internal/infrastructure/cache"
	"github.com/jhoicas/lotes-api/internal/infrastructure/events"
	"github.com/jhoicas/lotes-api/internal/infrastructure/memory"
	"github.com/jhoicas/lotes-api/internal/infrastructure/metrics"
	"github.com/jhoicas/lotes-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/lotes-api/internal/interfaces/http"
	"github.com/jhoicas/lotes-api/pkg/config"
	"github.com/jhoicas/lotes-api/pkg/logger"
)

// txRunner lo implementan postgres.TxRunner y memory.Store.
type txRunner interface {
	inventory.TxRunner
	sales.SalesTxRunner
}

// backend repositorios de lectura y runner de transacciones del driver elegido.
type backend struct {
	tx        txRunner
	lots      repository.LotReader
	movements repository.MovementRepository
	products  repository.ProductRepository
	sales     repository.SaleRepository
	analytics repository.AnalyticsRepository
	close     func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	locations, err := cfg.Inventory.LocationSet()
	if err != nil {
		log.Fatal().Err(err).Msg("ubicaciones")
	}

	ctx := context.Background()
	m := metrics.New()

	be, err := openBackend(ctx, cfg, log, m)
	if err != nil {
		log.Fatal().Err(err).Msg("persistencia")
	}
	defer be.close()

	// Caché de consultas de stock (opcional)
	var stockCache ports.StockCache
	if cfg.Redis.Enabled() {
		client, err := cache.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer client.Close()
		stockCache = cache.NewStockCache(client, cfg.Redis.TTL)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("caché de stock habilitada")
	}

	stockUC := analytics.NewStockQueryUseCase(be.analytics, stockCache, locations, cfg.Inventory.NearExpiryDays, log)

	notifiers := ports.Notifiers{m, stockUC}
	if cfg.Kafka.Enabled() {
		publisher, err := events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			log.Fatal().Err(err).Msg("productor Kafka")
		}
		defer publisher.Close()
		notifiers = append(notifiers, publisher)
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("publicación de movimientos habilitada")
	}

	inventoryUC := inventory.NewInventoryUseCase(be.tx, be.lots, be.movements, be.products, locations, notifiers, log)
	salesUC := sales.NewRecordSaleUseCase(be.tx, inventoryUC, be.sales, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.HTTP.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.SwaggerFile,
			Path:     "docs",
			Title:    "Lotes API",
		}))
	}

	if cfg.JWT.Secret == "" {
		log.Warn().Msg("JWT_SECRET vacío: la API no exige autenticación")
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		AppName:     cfg.App.Name,
		InventoryUC: inventoryUC,
		SalesUC:     salesUC,
		StockUC:     stockUC,
		Observer:    m,
		Metrics:     m.Handler(),
		JWTSecret:   cfg.JWT.Secret,
		JWTIssuer:   cfg.JWT.Issuer,
		Log:         log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func openBackend(ctx context.Context, cfg *config.Config, log *logger.Logger, m *metrics.Metrics) (*backend, error) {
	if cfg.DB.Driver == config.DriverMemory {
		log.Warn().Msg("DB_DRIVER=memory: los datos se pierden al reiniciar")
		store := memory.NewStore()
		return &backend{
			tx:        store,
			lots:      store.Lots(),
			movements: store.Movements(),
			products:  store.Products(),
			sales:     store.Sales(),
			analytics: store.Analytics(),
			close:     func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	runner := postgres.NewTxRunner(pool, postgres.TxRunnerConfig{
		MaxRetries: cfg.Inventory.TxMaxRetries,
		Backoff:    cfg.Inventory.TxRetryBackoff,
	}, log, m)
	return &backend{
		tx:        runner,
		lots:      postgres.NewLotRepository(pool),
		movements: postgres.NewMovementRepository(pool),
		products:  postgres.NewProductRepository(pool),
		sales:     postgres.NewSaleRepository(pool),
		analytics: postgres.NewAnalyticsRepository(pool),
		close:     pool.Close,
	}, nil
}
