package repository

import (
	"context"

	"github.com/jhoicas/lotes-api/internal/domain/entity"
)

// SaleRepository persistencia de ventas (cabecera y líneas).
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	CreateLine(ctx context.Context, line *entity.SaleLine) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	GetLines(ctx context.Context, saleID string) ([]*entity.SaleLine, error)
}
