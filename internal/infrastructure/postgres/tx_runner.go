package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/lotes-api/internal/application/inventory"
	"github.com/jhoicas/lotes-api/internal/application/sales"
	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
	"github.com/jhoicas/lotes-api/pkg/logger"
)

var tracer = otel.Tracer("lotes-api/tx")

// Ensure TxRunner implements inventory.TxRunner and sales.SalesTxRunner.
var _ inventory.TxRunner = (*TxRunner)(nil)
var _ sales.SalesTxRunner = (*TxRunner)(nil)

// RetryObserver recibe los reintentos y los conflictos definitivos (métricas).
type RetryObserver interface {
	TxRetried(reason string)
	TxConflict()
}

// TxRunnerConfig política de reintentos.
type TxRunnerConfig struct {
	MaxRetries int           // reintentos tras el primer intento
	Backoff    time.Duration // espera base; el intento n espera n*Backoff
}

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL (READ COMMITTED; los repos bloquean
// con SELECT ... FOR UPDATE). Serialización, deadlock y la creación concurrente del mismo lote
// destino se reintentan; agotados los reintentos devuelve domain.ErrConflict.
type TxRunner struct {
	pool     *pgxpool.Pool
	cfg      TxRunnerConfig
	log      *logger.Logger
	observer RetryObserver
}

// NewTxRunner construye el runner con el pool. observer puede ser nil.
func NewTxRunner(pool *pgxpool.Pool, cfg TxRunnerConfig, log *logger.Logger, observer RetryObserver) *TxRunner {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if log == nil {
		log = logger.Nop()
	}
	return &TxRunner{pool: pool, cfg: cfg, log: log, observer: observer}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	lotRepo repository.LotRepository,
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
) error) error {
	return r.run(ctx, "inventory", func(tx pgx.Tx) error {
		return fn(NewLotRepository(tx), NewMovementRepository(tx), NewProductRepository(tx))
	})
}

// RunSale inicia una transacción con repos de inventario y ventas (para RecordSale).
func (r *TxRunner) RunSale(ctx context.Context, fn func(
	lotRepo repository.LotRepository,
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
) error) error {
	return r.run(ctx, "sale", func(tx pgx.Tx) error {
		return fn(NewLotRepository(tx), NewMovementRepository(tx), NewProductRepository(tx), NewSaleRepository(tx))
	})
}

func (r *TxRunner) run(ctx context.Context, name string, body func(tx pgx.Tx) error) error {
	onRetry := func(attempt int, reason string, err error) {
		r.log.Warn().Err(err).Str("tx", name).Int("attempt", attempt).Str("reason", reason).Msg("reintentando transacción")
		if r.observer != nil {
			r.observer.TxRetried(reason)
		}
	}
	err := runWithRetry(ctx, r.cfg, func(attempt int) error {
		return r.attempt(ctx, name, attempt, body)
	}, onRetry)
	if err != nil && r.observer != nil && isConflict(err) {
		r.observer.TxConflict()
	}
	return err
}

func (r *TxRunner) attempt(ctx context.Context, name string, attempt int, body func(tx pgx.Tx) error) (err error) {
	ctx, span := tracer.Start(ctx, "tx."+name, trace.WithAttributes(
		attribute.String("tx.isolation", string(pgx.ReadCommitted)),
		attribute.Int("tx.attempt", attempt),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := body(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type conflictError struct {
	attempts int
	last     error
}

func (e *conflictError) Error() string {
	return fmt.Sprintf("transacción abortada tras %d intentos: %v", e.attempts, e.last)
}

func (e *conflictError) Unwrap() []error { return []error{domain.ErrConflict, e.last} }

func isConflict(err error) bool {
	_, ok := err.(*conflictError)
	return ok
}

// runWithRetry ejecuta attempt mientras el error sea reintentable, hasta cfg.MaxRetries reintentos.
// Agotados, devuelve un error que envuelve domain.ErrConflict y el último error.
func runWithRetry(ctx context.Context, cfg TxRunnerConfig, attempt func(n int) error, onRetry func(n int, reason string, err error)) error {
	for n := 1; ; n++ {
		err := attempt(n)
		if err == nil {
			return nil
		}
		reason := retryReason(err)
		if reason == "" {
			return err
		}
		if n > cfg.MaxRetries {
			return &conflictError{attempts: n, last: err}
		}
		if onRetry != nil {
			onRetry(n, reason, err)
		}
		if cfg.Backoff > 0 {
			timer := time.NewTimer(time.Duration(n) * cfg.Backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
}
