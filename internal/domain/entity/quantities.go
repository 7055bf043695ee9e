package entity

import "fmt"

// Quantities conteo por denominación (cantidad de piezas). Se usa para snapshots,
// planes de pago y conteos ingresados por el operador.
type Quantities map[Denomination]int64

// Get devuelve la cantidad de d (0 si no existe).
func (q Quantities) Get(d Denomination) int64 {
	if q == nil {
		return 0
	}
	return q[d]
}

// Total valor total Σ(d × cantidad) en unidades menores.
func (q Quantities) Total() Amount {
	var sum int64
	for d, n := range q {
		sum += int64(d) * n
	}
	return Amount(sum)
}

// Pieces número total de piezas.
func (q Quantities) Pieces() int64 {
	var sum int64
	for _, n := range q {
		sum += n
	}
	return sum
}

// Clone copia independiente.
func (q Quantities) Clone() Quantities {
	out := make(Quantities, len(q))
	for d, n := range q {
		out[d] = n
	}
	return out
}

// Merge suma dos conteos en uno nuevo.
func (q Quantities) Merge(other Quantities) Quantities {
	out := q.Clone()
	for d, n := range other {
		out[d] += n
	}
	return out
}

// Compact elimina las entradas en cero.
func (q Quantities) Compact() Quantities {
	out := make(Quantities, len(q))
	for d, n := range q {
		if n != 0 {
			out[d] = n
		}
	}
	return out
}

// Equal compara ignorando entradas en cero.
func (q Quantities) Equal(other Quantities) bool {
	a, b := q.Compact(), other.Compact()
	if len(a) != len(b) {
		return false
	}
	for d, n := range a {
		if b[d] != n {
			return false
		}
	}
	return true
}

// Denominations claves ordenadas de mayor a menor.
func (q Quantities) Denominations() []Denomination {
	out := make([]Denomination, 0, len(q))
	for d := range q {
		out = append(out, d)
	}
	SortDescending(out)
	return out
}

// ValidateCounts exige denominaciones positivas, cantidades no negativas y, si set no es
// nil, que cada denominación pertenezca al conjunto.
func (q Quantities) ValidateCounts(set *DenominationSet) error {
	for d, n := range q {
		if d <= 0 {
			return fmt.Errorf("denominación no positiva: %d", d)
		}
		if n < 0 {
			return fmt.Errorf("cantidad negativa para %d: %d", d, n)
		}
		if set != nil && !set.Contains(d) {
			return fmt.Errorf("denominación %d no pertenece a %s", d, set.Universe)
		}
	}
	return nil
}

// Snapshot disponibilidad calculada de un universo con el filtro de razones que se usó.
// Es efímero: nunca se guarda.
type Snapshot struct {
	Universe Universe
	Reasons  ReasonFilter
	Counts   Quantities
}

// Available cantidad disponible de d.
func (s Snapshot) Available(d Denomination) int64 { return s.Counts.Get(d) }

// Total valor total disponible.
func (s Snapshot) Total() Amount { return s.Counts.Total() }

// PayoutPlan desglose cuyo valor total es exactamente Target.
type PayoutPlan struct {
	Target Amount
	Counts Quantities
}

// IsEmpty plan sin piezas (objetivo cero).
func (p PayoutPlan) IsEmpty() bool { return len(p.Counts) == 0 }
