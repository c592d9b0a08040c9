package ports

import "context"

// StockCache caché versionada de consultas de stock. Bump invalida todas las entradas.
type StockCache interface {
	// FetchJSON carga key en dest o la llena con loader si no existe.
	FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error
	Bump(ctx context.Context) error
}
