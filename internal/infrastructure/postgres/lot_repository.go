package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

// LotRepo implementación de LotRepository sobre PostgreSQL (usable con pool o tx).
// GetForUpdate y FindMergeTargetForUpdate solo bloquean dentro de una tx.
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

var lotColumns = []string{
	"id::text AS id",
	"product_id::text AS product_id",
	"lot_number",
	"location",
	"expiry_date",
	"quantity",
	"created_at",
	"updated_at",
}

type lotRow struct {
	ID         string    `db:"id"`
	ProductID  string    `db:"product_id"`
	LotNumber  string    `db:"lot_number"`
	Location   string    `db:"location"`
	ExpiryDate time.Time `db:"expiry_date"`
	Quantity   int       `db:"quantity"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r lotRow) toEntity() *entity.Lot {
	return &entity.Lot{
		ID:         r.ID,
		ProductID:  r.ProductID,
		LotNumber:  r.LotNumber,
		Location:   r.Location,
		ExpiryDate: entity.DateOnly(r.ExpiryDate),
		Quantity:   r.Quantity,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func (r *LotRepo) getOne(ctx context.Context, b sq.SelectBuilder, op string) (*entity.Lot, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: build: %w", op, err)
	}
	var row lotRow
	if err := pgxscan.Get(ctx, r.q, &row, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return row.toEntity(), nil
}

// Create inserta el lote.
func (r *LotRepo) Create(ctx context.Context, lot *entity.Lot) error {
	query, args, err := psql.Insert("lots").
		Columns("id", "product_id", "lot_number", "location", "expiry_date", "quantity", "created_at", "updated_at").
		Values(lot.ID, lot.ProductID, lot.LotNumber, lot.Location, entity.DateOnly(lot.ExpiryDate), lot.Quantity, lot.CreatedAt, lot.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("create lot: build: %w", err)
	}
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		// la violación del índice único se devuelve tal cual para que TxRunner la reintente
		return fmt.Errorf("create lot: %w", err)
	}
	return nil
}

// GetByID obtiene un lote. Devuelve nil, nil si no existe.
func (r *LotRepo) GetByID(ctx context.Context, id string) (*entity.Lot, error) {
	return r.getOne(ctx, psql.Select(lotColumns...).From("lots").Where(sq.Eq{"id": id}), "get lot")
}

// GetForUpdate obtiene el lote y bloquea la fila (SELECT FOR UPDATE).
func (r *LotRepo) GetForUpdate(ctx context.Context, id string) (*entity.Lot, error) {
	return r.getOne(ctx, psql.Select(lotColumns...).From("lots").Where(sq.Eq{"id": id}).Suffix("FOR UPDATE"), "get lot for update")
}

// FindMergeTargetForUpdate busca y bloquea el lote con mismo producto, ubicación y vencimiento.
func (r *LotRepo) FindMergeTargetForUpdate(ctx context.Context, productID, location string, expiry time.Time) (*entity.Lot, error) {
	b := psql.Select(lotColumns...).From("lots").
		Where(sq.Eq{"product_id": productID, "location": location, "expiry_date": entity.DateOnly(expiry)}).
		Suffix("FOR UPDATE")
	return r.getOne(ctx, b, "find merge target")
}

// ListAvailable lotes con stock del producto en la ubicación, en orden FIFO.
func (r *LotRepo) ListAvailable(ctx context.Context, productID, location string) ([]*entity.Lot, error) {
	query, args, err := psql.Select(lotColumns...).From("lots").
		Where(sq.Eq{"product_id": productID, "location": location}).
		Where(sq.Gt{"quantity": 0}).
		OrderBy("expiry_date ASC", "created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("list available lots: build: %w", err)
	}
	var rows []lotRow
	if err := pgxscan.Select(ctx, r.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list available lots: %w", err)
	}
	out := make([]*entity.Lot, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

// SetQuantity fija la cantidad. El CHECK (quantity >= 0) de la tabla impide cantidades negativas.
func (r *LotRepo) SetQuantity(ctx context.Context, id string, qty int, now time.Time) error {
	if qty < 0 {
		return fmt.Errorf("set quantity: %w", domain.ErrInvalidQuantity)
	}
	query, args, err := psql.Update("lots").
		Set("quantity", qty).
		Set("updated_at", now).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("set quantity: build: %w", err)
	}
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("set quantity: %w", domain.ErrInsufficientStock)
		}
		return fmt.Errorf("set quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("set quantity: lote %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
