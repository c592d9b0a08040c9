package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo libro de movimientos sobre PostgreSQL. Solo INSERT y SELECT; un trigger impide UPDATE/DELETE.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

type movementRow struct {
	ID               string    `db:"id"`
	LotID            string    `db:"lot_id"`
	ProductID        string    `db:"product_id"`
	Kind             string    `db:"kind"`
	Quantity         int       `db:"quantity"`
	FromLocation     *string   `db:"from_location"`
	ToLocation       *string   `db:"to_location"`
	DestinationLotID *string   `db:"destination_lot_id"`
	TransactionID    string    `db:"transaction_id"`
	Note             string    `db:"note"`
	CreatedAt        time.Time `db:"created_at"`
	CreatedBy        string    `db:"created_by"`
}

// Create agrega un movimiento.
func (r *MovementRepo) Create(ctx context.Context, m *entity.MovementEntry) error {
	query, args, err := psql.Insert("movements").
		Columns("id", "lot_id", "product_id", "kind", "quantity", "from_location", "to_location",
			"destination_lot_id", "transaction_id", "note", "created_at", "created_by").
		Values(m.ID, m.LotID, m.ProductID, m.Kind, m.Quantity, m.FromLocation, m.ToLocation,
			m.DestinationLotID, m.TransactionID, m.Note, m.CreatedAt, m.CreatedBy).
		ToSql()
	if err != nil {
		return fmt.Errorf("create movement: build: %w", err)
	}
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("create movement: %w", err)
	}
	return nil
}

// List consulta el libro con filtros opcionales, más recientes primero.
func (r *MovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.MovementEntry, error) {
	f.Normalize()
	b := psql.Select(
		"id::text AS id", "lot_id::text AS lot_id", "product_id::text AS product_id", "kind", "quantity",
		"from_location", "to_location", "destination_lot_id::text AS destination_lot_id",
		"transaction_id::text AS transaction_id", "note", "created_at", "created_by",
	).From("movements")
	if f.Kind != "" {
		b = b.Where(sq.Eq{"kind": f.Kind})
	}
	if f.ProductID != "" {
		b = b.Where(sq.Eq{"product_id": f.ProductID})
	}
	if f.LotID != "" {
		b = b.Where(sq.Or{sq.Eq{"lot_id": f.LotID}, sq.Eq{"destination_lot_id": f.LotID}})
	}
	if f.From != nil {
		b = b.Where(sq.GtOrEq{"created_at": *f.From})
	}
	if f.To != nil {
		b = b.Where(sq.Lt{"created_at": *f.To})
	}
	query, args, err := b.OrderBy("created_at DESC", "id DESC").
		Limit(uint64(f.Limit)).
		Offset(uint64(f.Offset)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("list movements: build: %w", err)
	}
	var rows []movementRow
	if err := pgxscan.Select(ctx, r.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	out := make([]*entity.MovementEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, &entity.MovementEntry{
			ID:               row.ID,
			LotID:            row.LotID,
			ProductID:        row.ProductID,
			Kind:             row.Kind,
			Quantity:         row.Quantity,
			FromLocation:     row.FromLocation,
			ToLocation:       row.ToLocation,
			DestinationLotID: row.DestinationLotID,
			TransactionID:    row.TransactionID,
			Note:             row.Note,
			CreatedAt:        row.CreatedAt,
			CreatedBy:        row.CreatedBy,
		})
	}
	return out, nil
}
