package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Las operaciones del motor pueden envolverlos con %w para dar detalle; los callers usan errors.Is.
var (
	ErrInvalidQuantity    = errors.New("cantidad inválida")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrInvalidDestination = errors.New("el destino debe ser distinto de la ubicación de origen")
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrConflict           = errors.New("conflicto de concurrencia, reintentos agotados")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrInvalidLocation    = errors.New("ubicación no configurada")
	ErrInactiveProduct    = errors.New("producto inactivo")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
)
