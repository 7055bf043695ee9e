package entity

import "time"

// FloatBaseline stock inicial de una denominación en la caja. Se fija al abrir la sesión
// y solo aumenta con eventos FLOAT_ADD.
type FloatBaseline struct {
	Universe     Universe
	Denomination Denomination
	Quantity     int64
	UpdatedAt    time.Time
}

// BaselineCounts agrupa filas de float en un conteo.
func BaselineCounts(rows []FloatBaseline) Quantities {
	out := make(Quantities, len(rows))
	for _, r := range rows {
		out[r.Denomination] += r.Quantity
	}
	return out
}
