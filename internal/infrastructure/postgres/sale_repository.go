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

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo ventas y sus líneas sobre PostgreSQL.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador de ventas. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

type saleRow struct {
	ID            string          `db:"id"`
	Total         decimal.Decimal `db:"total"`
	PaymentMethod string          `db:"payment_method"`
	CustomerName  string          `db:"customer_name"`
	CreatedAt     time.Time       `db:"created_at"`
	CreatedBy     string          `db:"created_by"`
}

type saleLineRow struct {
	ID        string          `db:"id"`
	SaleID    string          `db:"sale_id"`
	LineNo    int             `db:"line_no"`
	LotID     string          `db:"lot_id"`
	ProductID string          `db:"product_id"`
	Quantity  int             `db:"quantity"`
	UnitPrice decimal.Decimal `db:"unit_price"`
	Subtotal  decimal.Decimal `db:"subtotal"`
}

// Create inserta la cabecera de la venta.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	query, args, err := psql.Insert("sales").
		Columns("id", "total", "payment_method", "customer_name", "created_at", "created_by").
		Values(s.ID, s.Total, s.PaymentMethod, s.CustomerName, s.CreatedAt, s.CreatedBy).
		ToSql()
	if err != nil {
		return fmt.Errorf("create sale: build: %w", err)
	}
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("create sale: %w", err)
	}
	return nil
}

// CreateLine inserta una línea de venta.
func (r *SaleRepo) CreateLine(ctx context.Context, l *entity.SaleLine) error {
	query, args, err := psql.Insert("sale_lines").
		Columns("id", "sale_id", "line_no", "lot_id", "product_id", "quantity", "unit_price", "subtotal").
		Values(l.ID, l.SaleID, l.LineNo, l.LotID, l.ProductID, l.Quantity, l.UnitPrice, l.Subtotal).
		ToSql()
	if err != nil {
		return fmt.Errorf("create sale line: build: %w", err)
	}
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("create sale line: %w", err)
	}
	return nil
}

// GetByID obtiene la cabecera. Devuelve nil, nil si no existe.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	query, args, err := psql.Select("id::text AS id", "total", "payment_method", "customer_name", "created_at", "created_by").
		From("sales").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("get sale: build: %w", err)
	}
	var row saleRow
	if err := pgxscan.Get(ctx, r.q, &row, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	return &entity.Sale{
		ID:            row.ID,
		Total:         row.Total,
		PaymentMethod: row.PaymentMethod,
		CustomerName:  row.CustomerName,
		CreatedAt:     row.CreatedAt,
		CreatedBy:     row.CreatedBy,
	}, nil
}

// GetLines líneas de la venta en el orden en que se registraron.
func (r *SaleRepo) GetLines(ctx context.Context, saleID string) ([]*entity.SaleLine, error) {
	query, args, err := psql.Select("id::text AS id", "sale_id::text AS sale_id", "line_no", "lot_id::text AS lot_id",
		"product_id::text AS product_id", "quantity", "unit_price", "subtotal").
		From("sale_lines").
		Where(sq.Eq{"sale_id": saleID}).
		OrderBy("line_no").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("get sale lines: build: %w", err)
	}
	var rows []saleLineRow
	if err := pgxscan.Select(ctx, r.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("get sale lines: %w", err)
	}
	out := make([]*entity.SaleLine, 0, len(rows))
	for _, row := range rows {
		out = append(out, &entity.SaleLine{
			ID:        row.ID,
			SaleID:    row.SaleID,
			LineNo:    row.LineNo,
			LotID:     row.LotID,
			ProductID: row.ProductID,
			Quantity:  row.Quantity,
			UnitPrice: row.UnitPrice,
			Subtotal:  row.Subtotal,
		})
	}
	return out, nil
}
