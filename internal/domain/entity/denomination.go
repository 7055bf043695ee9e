package entity

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Denomination valor facial de una ficha o billete/moneda, en unidades menores (centavos).
type Denomination int64

// Amount cantidad de unidades menores (centavos). No negativa en los montos de negocio.
type Amount int64

// Universe distingue los dos vocabularios de denominaciones. Comparten valores enteros
// (un billete de $100 y una placa de $100) pero nunca se mezclan en una consulta.
type Universe string

const (
	UniverseCurrency Universe = "CURRENCY" // billetes y monedas físicas
	UniverseChip     Universe = "CHIP"     // fichas de póker
)

// Valid indica si el universo es uno de los conocidos.
func (u Universe) Valid() bool {
	return u == UniverseCurrency || u == UniverseChip
}

// ParseUniverse acepta "currency"/"chip" sin distinguir mayúsculas.
func ParseUniverse(s string) (Universe, error) {
	u := Universe(strings.ToUpper(strings.TrimSpace(s)))
	if !u.Valid() {
		return "", fmt.Errorf("universo desconocido: %q", s)
	}
	return u, nil
}

// Denominaciones por defecto (AUD, centavos), tomadas de la caja de la sociedad.
var (
	DefaultCurrencyDenominations = []Denomination{10000, 5000, 2000, 1000, 500, 200, 100, 50, 20, 10, 5}
	DefaultChipDenominations     = []Denomination{10000, 2500, 500, 200, 100, 25, 5}
)

// DenominationSet conjunto ordenado (descendente) de denominaciones de un universo.
type DenominationSet struct {
	Universe Universe
	values   []Denomination
}

// NewDenominationSet valida (positivas, sin duplicados) y ordena descendente.
func NewDenominationSet(u Universe, values []Denomination) (DenominationSet, error) {
	if !u.Valid() {
		return DenominationSet{}, fmt.Errorf("universo inválido: %q", u)
	}
	if len(values) == 0 {
		return DenominationSet{}, fmt.Errorf("conjunto de denominaciones vacío para %s", u)
	}
	seen := make(map[Denomination]struct{}, len(values))
	sorted := make([]Denomination, 0, len(values))
	for _, d := range values {
		if d <= 0 {
			return DenominationSet{}, fmt.Errorf("denominación no positiva: %d", d)
		}
		if _, ok := seen[d]; ok {
			return DenominationSet{}, fmt.Errorf("denominación duplicada: %d", d)
		}
		seen[d] = struct{}{}
		sorted = append(sorted, d)
	}
	SortDescending(sorted)
	return DenominationSet{Universe: u, values: sorted}, nil
}

// Descending devuelve una copia de las denominaciones de mayor a menor.
func (s DenominationSet) Descending() []Denomination {
	out := make([]Denomination, len(s.values))
	copy(out, s.values)
	return out
}

// Contains indica si d pertenece al conjunto.
func (s DenominationSet) Contains(d Denomination) bool {
	for _, v := range s.values {
		if v == d {
			return true
		}
	}
	return false
}

// Len número de denominaciones.
func (s DenominationSet) Len() int { return len(s.values) }

// SortDescending ordena in-place de mayor a menor.
func SortDescending(ds []Denomination) {
	sort.Slice(ds, func(i, j int) bool { return ds[i] > ds[j] })
}

// ParseDenominations interpreta una lista "10000,5000,2000" (config/env).
func ParseDenominations(s string) ([]Denomination, error) {
	parts := strings.Split(s, ",")
	out := make([]Denomination, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("denominación %q: %w", p, err)
		}
		out = append(out, Denomination(n))
	}
	return out, nil
}
