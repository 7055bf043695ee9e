package entity

// Line una fila de un evento antes de convertirse en movimiento.
type Line struct {
	Universe       Universe
	Denomination   Denomination
	Delta          int64
	Reason         Reason
	PlayerRef      string
	TransactionRef string
	Notes          string
}

// LinesFromCounts convierte un conteo en líneas con el signo dado (+1 entra, -1 sale).
// Las denominaciones en cero se omiten.
func LinesFromCounts(u Universe, counts Quantities, sign int64, reason Reason) []Line {
	out := make([]Line, 0, len(counts))
	for _, d := range counts.Denominations() {
		n := counts[d]
		if n == 0 {
			continue
		}
		out = append(out, Line{Universe: u, Denomination: d, Delta: sign * n, Reason: reason})
	}
	return out
}

// Guard cantidades que deben seguir disponibles al confirmar, dentro de la misma transacción
// de escritura.
type Guard struct {
	Universe Universe
	Reasons  ReasonFilter
	Need     Quantities
}

// Batch grupo de movimientos y su entrada de auditoría, escritos como una unidad.
type Batch struct {
	ID        BatchID
	Movements []Movement
	Audit     AuditEntry
	Guards    []Guard
}

// ReversalMode forma de revertir un lote.
type ReversalMode string

const (
	// ReversalCompensate escribe un lote de filas negadas que apuntan al original.
	ReversalCompensate ReversalMode = "COMPENSATE"
	// ReversalHardDelete borra las filas, la auditoría y descuenta el float.
	ReversalHardDelete ReversalMode = "HARD_DELETE"
)

// ReversalTarget identifica lo que se revierte: un lote o todas las filas de una referencia de transacción.
// Exactamente uno de los dos campos debe venir.
type ReversalTarget struct {
	BatchID        BatchID
	TransactionRef string
}

// Valid exactamente un identificador.
func (t ReversalTarget) Valid() bool {
	return (t.BatchID != "") != (t.TransactionRef != "")
}

func (t ReversalTarget) String() string {
	if t.BatchID != "" {
		return "batch:" + string(t.BatchID)
	}
	return "tx:" + t.TransactionRef
}
