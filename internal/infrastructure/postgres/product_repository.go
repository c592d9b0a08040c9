package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

type productRow struct {
	ID        string          `db:"id"`
	Name      string          `db:"name"`
	Type      string          `db:"type"`
	BasePrice decimal.Decimal `db:"base_price"`
	Active    bool            `db:"active"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}

func (r productRow) toEntity() *entity.Product {
	return &entity.Product{
		ID:        r.ID,
		Name:      r.Name,
		Type:      r.Type,
		BasePrice: r.BasePrice,
		Active:    r.Active,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func productSelect() sq.SelectBuilder {
	return psql.Select("id::text AS id", "name", "type", "base_price", "active", "created_at", "updated_at").From("products")
}

// Create persiste un producto (solo carga inicial).
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query, args, err := psql.Insert("products").
		Columns("id", "name", "type", "base_price", "active", "created_at", "updated_at").
		Values(p.ID, p.Name, p.Type, p.BasePrice, p.Active, p.CreatedAt, p.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("insert product: build: %w", err)
	}
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID. Devuelve nil, nil si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	query, args, err := productSelect().Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("get product: build: %w", err)
	}
	var row productRow
	if err := pgxscan.Get(ctx, r.q, &row, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return row.toEntity(), nil
}

// List lista productos por nombre.
func (r *ProductRepo) List(ctx context.Context, activeOnly bool) ([]*entity.Product, error) {
	b := productSelect()
	if activeOnly {
		b = b.Where(sq.Eq{"active": true})
	}
	query, args, err := b.OrderBy("name ASC", "id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("list products: build: %w", err)
	}
	var rows []productRow
	if err := pgxscan.Select(ctx, r.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	out := make([]*entity.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}
