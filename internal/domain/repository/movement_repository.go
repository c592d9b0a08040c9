package repository

import (
	"context"
	"time"

	"github.com/jhoicas/lotes-api/internal/domain/entity"
)

// Límites de paginación del libro de movimientos.
const (
	DefaultMovementLimit = 50
	MaxMovementLimit     = 500
)

// MovementFilter criterios de consulta del libro. Los campos vacíos no filtran;
// From es inclusivo y To exclusivo.
type MovementFilter struct {
	Kind      string
	ProductID string
	LotID     string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// Normalize aplica los límites por defecto y máximo.
func (f *MovementFilter) Normalize() {
	if f.Limit <= 0 {
		f.Limit = DefaultMovementLimit
	}
	if f.Limit > MaxMovementLimit {
		f.Limit = MaxMovementLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}

// MovementRepository puerto del libro de movimientos: solo inserción y lectura.
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.MovementEntry) error
	// List devuelve los movimientos más recientes primero.
	List(ctx context.Context, filter MovementFilter) ([]*entity.MovementEntry, error)
}
