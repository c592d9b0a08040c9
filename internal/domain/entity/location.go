package entity

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/jhoicas/lotes-api/internal/domain"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Tipos de ubicación física.
const (
	LocationKindBackroom = "backroom" // almacén / trastienda
	LocationKindCounter  = "counter"  // mostrador de venta
)

// Location es una ubicación configurada donde pueden existir lotes.
type Location struct {
	Code string
	Name string
	Kind string
}

// LocationSet es el conjunto abierto de ubicaciones válidas (se carga desde configuración).
type LocationSet struct {
	ordered []Location
	byCode  map[string]Location
}

// NormalizeLocation devuelve el código canónico: minúsculas, sin tildes y sin espacios extremos.
// "Almacén" y "almacen" producen el mismo código.
func NormalizeLocation(raw string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, raw)
	if err != nil {
		out = raw
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// NewLocationSet construye el conjunto. Exige al menos un almacén y un mostrador, sin duplicados.
func NewLocationSet(backrooms, counters []string) (*LocationSet, error) {
	set := &LocationSet{byCode: make(map[string]Location)}
	add := func(raw, kind string) error {
		code := NormalizeLocation(raw)
		if code == "" {
			return nil
		}
		if _, dup := set.byCode[code]; dup {
			return fmt.Errorf("ubicación duplicada: %q", code)
		}
		loc := Location{Code: code, Name: strings.TrimSpace(raw), Kind: kind}
		set.byCode[code] = loc
		set.ordered = append(set.ordered, loc)
		return nil
	}
	for _, b := range backrooms {
		if err := add(b, LocationKindBackroom); err != nil {
			return nil, err
		}
	}
	nBackrooms := len(set.ordered)
	for _, c := range counters {
		if err := add(c, LocationKindCounter); err != nil {
			return nil, err
		}
	}
	if nBackrooms == 0 {
		return nil, fmt.Errorf("se requiere al menos una ubicación de almacén")
	}
	if len(set.ordered) == nBackrooms {
		return nil, fmt.Errorf("se requiere al menos una ubicación de mostrador")
	}
	return set, nil
}

// Resolve normaliza raw y verifica que pertenezca al conjunto.
func (s *LocationSet) Resolve(raw string) (string, error) {
	code := NormalizeLocation(raw)
	if _, ok := s.byCode[code]; !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidLocation, raw)
	}
	return code, nil
}

// Contains indica si code (ya normalizado) está configurado.
func (s *LocationSet) Contains(code string) bool {
	_, ok := s.byCode[code]
	return ok
}

// All devuelve las ubicaciones en orden de configuración (almacenes primero).
func (s *LocationSet) All() []Location {
	out := make([]Location, len(s.ordered))
	copy(out, s.ordered)
	return out
}
