package entity_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
)

func TestNormalizeLocation_QuitaTildesYMayusculas(t *testing.T) {
	assert.Equal(t, "almacen", entity.NormalizeLocation("  Almacén "))
	assert.Equal(t, "mostrador1", entity.NormalizeLocation("MOSTRADOR1"))
}

func TestNewLocationSet_ConjuntoAbierto(t *testing.T) {
	set, err := entity.NewLocationSet([]string{"Almacén"}, []string{"mostrador1", "mostrador2", "mostrador3"})
	require.NoError(t, err)

	all := set.All()
	require.Len(t, all, 4)
	assert.Equal(t, entity.LocationKindBackroom, all[0].Kind)
	assert.Equal(t, "almacen", all[0].Code)
	assert.True(t, set.Contains("mostrador3"))

	code, err := set.Resolve("ALMACEN")
	require.NoError(t, err)
	assert.Equal(t, "almacen", code)

	_, err = set.Resolve("bodega-central")
	assert.True(t, errors.Is(err, domain.ErrInvalidLocation))
}

func TestNewLocationSet_Invalido(t *testing.T) {
	_, err := entity.NewLocationSet(nil, []string{"mostrador"})
	assert.Error(t, err, "sin almacén")

	_, err = entity.NewLocationSet([]string{"almacen"}, nil)
	assert.Error(t, err, "sin mostrador")

	_, err = entity.NewLocationSet([]string{"almacen"}, []string{"Almacén"})
	assert.Error(t, err, "duplicado tras normalizar")
}

func TestMovementEntry_Signed(t *testing.T) {
	from := "almacen"
	assert.Equal(t, 5, (&entity.MovementEntry{Kind: entity.MovementKindStockIn, Quantity: 5}).Signed())
	assert.Equal(t, -5, (&entity.MovementEntry{Kind: entity.MovementKindSale, Quantity: 5}).Signed())
	assert.Equal(t, -5, (&entity.MovementEntry{Kind: entity.MovementKindAdjustment, Quantity: 5, FromLocation: &from}).Signed())
	assert.Equal(t, 5, (&entity.MovementEntry{Kind: entity.MovementKindAdjustment, Quantity: 5, ToLocation: &from}).Signed())
}
