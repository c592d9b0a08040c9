package repository

import (
	"context"

	"github.com/jhoicas/lotes-api/internal/domain/entity"
)

// ProductRepository define el puerto de lectura del catálogo de productos.
// Create solo lo usa la carga inicial (cmd/seed); el catálogo vive fuera del motor.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	List(ctx context.Context, activeOnly bool) ([]*entity.Product, error)
}
