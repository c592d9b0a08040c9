package inventory

import (
	"context"

	"github.com/jhoicas/lotes-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error nada de lo escrito se persiste.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		lotRepo repository.LotRepository,
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
	) error) error
}
