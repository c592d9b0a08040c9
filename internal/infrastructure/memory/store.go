// Package memory implementa los puertos de persistencia en memoria. Un mutex global serializa
// las transacciones y cada transacción trabaja sobre una copia del estado que solo reemplaza
// al original si fn termina sin error.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/lotes-api/internal/application/inventory"
	"github.com/jhoicas/lotes-api/internal/application/sales"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)
var _ sales.SalesTxRunner = (*Store)(nil)

type state struct {
	products  map[string]*entity.Product
	lots      map[string]*entity.Lot
	movements []*entity.MovementEntry
	sales     map[string]*entity.Sale
	saleLines []*entity.SaleLine
}

func newState() *state {
	return &state{
		products: make(map[string]*entity.Product),
		lots:     make(map[string]*entity.Lot),
		sales:    make(map[string]*entity.Sale),
	}
}

// clone copia lo mutable (lotes); movimientos, ventas y productos no se modifican tras insertarse.
func (s *state) clone() *state {
	c := &state{
		products:  make(map[string]*entity.Product, len(s.products)),
		lots:      make(map[string]*entity.Lot, len(s.lots)),
		movements: s.movements[:len(s.movements):len(s.movements)],
		sales:     make(map[string]*entity.Sale, len(s.sales)),
		saleLines: s.saleLines[:len(s.saleLines):len(s.saleLines)],
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.lots {
		lot := *v
		c.lots[k] = &lot
	}
	for k, v := range s.sales {
		c.sales[k] = v
	}
	return c
}

// Store almacén en memoria. Implementa TxRunner (inventario y ventas) y expone lectores
// con bloqueo para las consultas fuera de transacción.
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// Run ejecuta fn sobre una copia del estado; si fn devuelve error la copia se descarta.
func (s *Store) Run(ctx context.Context, fn func(
	lotRepo repository.LotRepository,
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
) error) error {
	return s.tx(ctx, func(st *state) error {
		return fn(&lotRepo{st: st}, &movementRepo{st: st}, &productRepo{st: st})
	})
}

// RunSale como Run, con el repositorio de ventas en la misma transacción.
func (s *Store) RunSale(ctx context.Context, fn func(
	lotRepo repository.LotRepository,
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
) error) error {
	return s.tx(ctx, func(st *state) error {
		return fn(&lotRepo{st: st}, &movementRepo{st: st}, &productRepo{st: st}, &saleRepo{st: st})
	})
}

func (s *Store) tx(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.st.clone()
	if err := fn(work); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = work
	return nil
}

func (s *Store) view(fn func(st *state)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.st)
}

// Lots lector de lotes fuera de transacción.
func (s *Store) Lots() repository.LotReader { return lotReader{s: s} }

// Products catálogo (lectura y carga inicial).
func (s *Store) Products() repository.ProductRepository { return productReader{s: s} }

// Movements consulta del libro. Create fuera de transacción se aplica atómicamente.
func (s *Store) Movements() repository.MovementRepository { return movementReader{s: s} }

// Sales consulta de ventas.
func (s *Store) Sales() repository.SaleRepository { return saleReader{s: s} }

// Analytics consultas agregadas.
func (s *Store) Analytics() repository.AnalyticsRepository { return analyticsReader{s: s} }
