package repository

import (
	"context"
	"time"

	"github.com/jhoicas/lotes-api/internal/domain/entity"
)

// LotReader consultas de lotes fuera de transacción.
type LotReader interface {
	GetByID(ctx context.Context, id string) (*entity.Lot, error)
	// ListAvailable devuelve los lotes con cantidad > 0 del producto en la ubicación,
	// ordenados por vencimiento ascendente, creación y luego ID.
	ListAvailable(ctx context.Context, productID, location string) ([]*entity.Lot, error)
}

// LotRepository puerto de escritura de lotes. Solo se obtiene atado a una transacción
// (TxRunner), por eso SetQuantity no está disponible fuera de ella.
type LotRepository interface {
	LotReader
	Create(ctx context.Context, lot *entity.Lot) error
	// GetForUpdate obtiene el lote y bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Lot, error)
	// FindMergeTargetForUpdate busca y bloquea el lote con mismo producto, ubicación y vencimiento.
	// Devuelve nil, nil si no existe.
	FindMergeTargetForUpdate(ctx context.Context, productID, location string, expiry time.Time) (*entity.Lot, error)
	// SetQuantity fija la cantidad; qty nunca es negativa.
	SetQuantity(ctx context.Context, id string, qty int, now time.Time) error
}
