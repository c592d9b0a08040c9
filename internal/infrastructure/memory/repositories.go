package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/inventory"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
)

var (
	_ repository.LotRepository      = (*lotRepo)(nil)
	_ repository.MovementRepository = (*movementRepo)(nil)
	_ repository.ProductRepository  = (*productRepo)(nil)
	_ repository.SaleRepository     = (*saleRepo)(nil)
)

// ── Lotes ────────────────────────────────────────────────────────────────────

type lotRepo struct{ st *state }

func copyLot(l *entity.Lot) *entity.Lot {
	if l == nil {
		return nil
	}
	c := *l
	return &c
}

func (r *lotRepo) Create(_ context.Context, lot *entity.Lot) error {
	if lot.Quantity < 0 {
		return fmt.Errorf("create lot: %w", domain.ErrInvalidQuantity)
	}
	if _, ok := r.st.lots[lot.ID]; ok {
		return fmt.Errorf("create lot: id duplicado %s: %w", lot.ID, domain.ErrConflict)
	}
	if _, ok := r.st.products[lot.ProductID]; !ok {
		return fmt.Errorf("create lot: producto %s: %w", lot.ProductID, domain.ErrNotFound)
	}
	if existing := r.findTarget(lot.ProductID, lot.Location, lot.ExpiryDate); existing != nil {
		return fmt.Errorf("create lot: ya existe el lote %s: %w", existing.ID, domain.ErrConflict)
	}
	r.st.lots[lot.ID] = copyLot(lot)
	return nil
}

func (r *lotRepo) GetByID(_ context.Context, id string) (*entity.Lot, error) {
	return copyLot(r.st.lots[id]), nil
}

// GetForUpdate no necesita bloquear: la transacción ya tiene el mutex del almacén.
func (r *lotRepo) GetForUpdate(ctx context.Context, id string) (*entity.Lot, error) {
	return r.GetByID(ctx, id)
}

func (r *lotRepo) findTarget(productID, location string, expiry time.Time) *entity.Lot {
	expiry = entity.DateOnly(expiry)
	for _, l := range r.st.lots {
		if l.ProductID == productID && l.Location == location && l.ExpiryDate.Equal(expiry) {
			return l
		}
	}
	return nil
}

func (r *lotRepo) FindMergeTargetForUpdate(_ context.Context, productID, location string, expiry time.Time) (*entity.Lot, error) {
	return copyLot(r.findTarget(productID, location, expiry)), nil
}

func (r *lotRepo) ListAvailable(_ context.Context, productID, location string) ([]*entity.Lot, error) {
	var out []*entity.Lot
	for _, l := range r.st.lots {
		if l.ProductID == productID && l.Location == location && l.Quantity > 0 {
			out = append(out, copyLot(l))
		}
	}
	inventory.SortFIFO(out)
	return out, nil
}

func (r *lotRepo) SetQuantity(_ context.Context, id string, qty int, now time.Time) error {
	if qty < 0 {
		return fmt.Errorf("set quantity: %w", domain.ErrInvalidQuantity)
	}
	l, ok := r.st.lots[id]
	if !ok {
		return fmt.Errorf("set quantity: lote %s: %w", id, domain.ErrNotFound)
	}
	l.Quantity = qty
	l.UpdatedAt = now
	return nil
}

// ── Movimientos ──────────────────────────────────────────────────────────────

type movementRepo struct{ st *state }

func (r *movementRepo) Create(_ context.Context, m *entity.MovementEntry) error {
	if m.Quantity <= 0 {
		return fmt.Errorf("create movement: %w", domain.ErrInvalidQuantity)
	}
	if _, ok := r.st.lots[m.LotID]; !ok {
		return fmt.Errorf("create movement: lote %s: %w", m.LotID, domain.ErrNotFound)
	}
	c := *m
	r.st.movements = append(r.st.movements, &c)
	return nil
}

func (r *movementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.MovementEntry, error) {
	f.Normalize()
	matched := make([]*entity.MovementEntry, 0)
	// recorrido inverso: a igual fecha, el último insertado primero
	for i := len(r.st.movements) - 1; i >= 0; i-- {
		m := r.st.movements[i]
		if f.Kind != "" && m.Kind != f.Kind {
			continue
		}
		if f.ProductID != "" && m.ProductID != f.ProductID {
			continue
		}
		if f.LotID != "" && m.LotID != f.LotID && (m.DestinationLotID == nil || *m.DestinationLotID != f.LotID) {
			continue
		}
		if f.From != nil && m.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && !m.CreatedAt.Before(*f.To) {
			continue
		}
		c := *m
		matched = append(matched, &c)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	if f.Offset >= len(matched) {
		return []*entity.MovementEntry{}, nil
	}
	end := f.Offset + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[f.Offset:end], nil
}

// ── Productos ────────────────────────────────────────────────────────────────

type productRepo struct{ st *state }

func (r *productRepo) Create(_ context.Context, p *entity.Product) error {
	if _, ok := r.st.products[p.ID]; ok {
		return fmt.Errorf("create product: %s: %w", p.ID, domain.ErrConflict)
	}
	c := *p
	r.st.products[p.ID] = &c
	return nil
}

func (r *productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	p, ok := r.st.products[id]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

func (r *productRepo) List(_ context.Context, activeOnly bool) ([]*entity.Product, error) {
	out := make([]*entity.Product, 0, len(r.st.products))
	for _, p := range r.st.products {
		if activeOnly && !p.Active {
			continue
		}
		c := *p
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ── Ventas ───────────────────────────────────────────────────────────────────

type saleRepo struct{ st *state }

func (r *saleRepo) Create(_ context.Context, s *entity.Sale) error {
	if _, ok := r.st.sales[s.ID]; ok {
		return fmt.Errorf("create sale: %s: %w", s.ID, domain.ErrConflict)
	}
	c := *s
	c.Lines = nil
	r.st.sales[s.ID] = &c
	return nil
}

func (r *saleRepo) CreateLine(_ context.Context, l *entity.SaleLine) error {
	if _, ok := r.st.sales[l.SaleID]; !ok {
		return fmt.Errorf("create sale line: venta %s: %w", l.SaleID, domain.ErrNotFound)
	}
	if _, ok := r.st.lots[l.LotID]; !ok {
		return fmt.Errorf("create sale line: lote %s: %w", l.LotID, domain.ErrNotFound)
	}
	c := *l
	r.st.saleLines = append(r.st.saleLines, &c)
	return nil
}

func (r *saleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	s, ok := r.st.sales[id]
	if !ok {
		return nil, nil
	}
	c := *s
	return &c, nil
}

func (r *saleRepo) GetLines(_ context.Context, saleID string) ([]*entity.SaleLine, error) {
	out := make([]*entity.SaleLine, 0)
	for _, l := range r.st.saleLines {
		if l.SaleID == saleID {
			c := *l
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].LineNo < out[j].LineNo })
	return out, nil
}
