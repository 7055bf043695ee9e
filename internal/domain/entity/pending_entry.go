package entity

import "fmt"

// Multiplicadores que ofrece el teclado de denominaciones.
var allowedMultipliers = []int64{1, 5, 10, 20}

// PendingEntry conteo en curso del operador antes de confirmar. Es propiedad del llamador:
// cancelar es simplemente descartarlo, nada se escribe en el ledger.
type PendingEntry struct {
	set        DenominationSet
	counts     Quantities
	multiplier int64
	history    []pendingStep
}

type pendingStep struct {
	d Denomination
	n int64
}

// NewPendingEntry conteo vacío sobre un conjunto de denominaciones, multiplicador 1.
func NewPendingEntry(set DenominationSet) *PendingEntry {
	return &PendingEntry{set: set, counts: Quantities{}, multiplier: 1}
}

// Universe universo del conjunto.
func (p *PendingEntry) Universe() Universe { return p.set.Universe }

// Multiplier multiplicador vigente.
func (p *PendingEntry) Multiplier() int64 { return p.multiplier }

// SetMultiplier acepta 1, 5, 10 o 20.
func (p *PendingEntry) SetMultiplier(m int64) error {
	for _, a := range allowedMultipliers {
		if a == m {
			p.multiplier = m
			return nil
		}
	}
	return fmt.Errorf("multiplicador no permitido: %d", m)
}

// Add suma `multiplicador` piezas de d.
func (p *PendingEntry) Add(d Denomination) error {
	if !p.set.Contains(d) {
		return fmt.Errorf("denominación %d no pertenece a %s", d, p.set.Universe)
	}
	p.counts[d] += p.multiplier
	p.history = append(p.history, pendingStep{d: d, n: p.multiplier})
	return nil
}

// Undo deshace el último Add. Devuelve false si no había nada.
func (p *PendingEntry) Undo() bool {
	if len(p.history) == 0 {
		return false
	}
	last := p.history[len(p.history)-1]
	p.history = p.history[:len(p.history)-1]
	p.counts[last.d] -= last.n
	if p.counts[last.d] == 0 {
		delete(p.counts, last.d)
	}
	return true
}

// Clear vacía el conteo y el historial; el multiplicador se conserva.
func (p *PendingEntry) Clear() {
	p.counts = Quantities{}
	p.history = nil
}

// Counts copia del conteo actual.
func (p *PendingEntry) Counts() Quantities { return p.counts.Clone() }

// Total valor del conteo.
func (p *PendingEntry) Total() Amount { return p.counts.Total() }

// IsEmpty sin piezas.
func (p *PendingEntry) IsEmpty() bool { return len(p.counts) == 0 }
