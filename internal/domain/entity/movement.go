package entity

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Reason causa de negocio de un movimiento. El conjunto es cerrado: solo se amplía por acuerdo
// explícito, nunca se infiere de texto libre.
type Reason string

const (
	ReasonBuyIn    Reason = "BUYIN"
	ReasonCashOut  Reason = "CASHOUT"
	ReasonSale     Reason = "SALE"
	ReasonFloatAdd Reason = "FLOAT_ADD"
	ReasonLostChip Reason = "LOST_CHIP"
	ReasonExchange Reason = "EXCHANGE" // cambio de billetes por billetes en caja
)

// AllReasons todas las razones reconocidas.
func AllReasons() []Reason {
	return []Reason{ReasonBuyIn, ReasonCashOut, ReasonSale, ReasonFloatAdd, ReasonLostChip, ReasonExchange}
}

// Valid indica si la razón está en el conjunto reconocido.
func (r Reason) Valid() bool {
	for _, k := range AllReasons() {
		if r == k {
			return true
		}
	}
	return false
}

// BatchID token opaco que agrupa las filas y la entrada de auditoría de un evento.
type BatchID string

// Movement cambio firmado de cantidad de una denominación. Inmutable una vez escrito.
type Movement struct {
	ID             string
	Universe       Universe
	Denomination   Denomination
	Delta          int64 // + entra a caja, - sale
	Reason         Reason
	BatchID        BatchID
	PlayerRef      string
	TransactionRef string
	ReversalOf     BatchID // lote original cuando la fila es compensatoria
	Notes          string
	CreatedAt      time.Time
}

// Validate reglas mínimas de una fila antes de escribirla.
func (m *Movement) Validate() error {
	if !m.Universe.Valid() {
		return fmt.Errorf("movimiento: universo inválido %q", m.Universe)
	}
	if m.Denomination <= 0 {
		return fmt.Errorf("movimiento: denominación no positiva %d", m.Denomination)
	}
	if m.Delta == 0 {
		return fmt.Errorf("movimiento: delta cero para %d", m.Denomination)
	}
	if !m.Reason.Valid() {
		return fmt.Errorf("movimiento: razón desconocida %q", m.Reason)
	}
	return nil
}

// Value valor firmado del movimiento en unidades menores.
func (m *Movement) Value() int64 { return int64(m.Denomination) * m.Delta }

// ReasonFilter conjunto explícito de razones incluidas en una consulta de disponibilidad.
// Siempre es un parámetro obligatorio; no existe un valor por defecto oculto.
type ReasonFilter struct {
	reasons []Reason
}

// IncludeReasons construye el filtro (ordenado, sin duplicados).
func IncludeReasons(rs ...Reason) ReasonFilter {
	seen := make(map[Reason]struct{}, len(rs))
	out := make([]Reason, 0, len(rs))
	for _, r := range rs {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return ReasonFilter{reasons: out}
}

// Filtros con nombre usados por las vistas. Cada vista declara el suyo.
var (
	// SpendableCash efectivo físico disponible: el float base ya cuenta los FLOAT_ADD.
	SpendableCash = IncludeReasons(ReasonBuyIn, ReasonCashOut, ReasonSale, ReasonExchange)
	// FullAudit todas las razones.
	FullAudit = IncludeReasons(AllReasons()...)
	// ChipsReceived fichas recibidas por la casa (universo CHIP).
	ChipsReceived = IncludeReasons(ReasonCashOut, ReasonSale, ReasonLostChip)
	// Tips fichas perdidas registradas como propina (universo CHIP).
	Tips = IncludeReasons(ReasonLostChip)
)

// Reasons copia de las razones incluidas.
func (f ReasonFilter) Reasons() []Reason {
	out := make([]Reason, len(f.reasons))
	copy(out, f.reasons)
	return out
}

// Includes indica si r está incluida.
func (f ReasonFilter) Includes(r Reason) bool {
	for _, x := range f.reasons {
		if x == r {
			return true
		}
	}
	return false
}

// IsEmpty filtro sin razones.
func (f ReasonFilter) IsEmpty() bool { return len(f.reasons) == 0 }

// Validate exige al menos una razón y que todas sean reconocidas.
func (f ReasonFilter) Validate() error {
	if f.IsEmpty() {
		return fmt.Errorf("filtro de razones vacío")
	}
	for _, r := range f.reasons {
		if !r.Valid() {
			return fmt.Errorf("razón desconocida en filtro: %q", r)
		}
	}
	return nil
}

// Strings razones como []string (parámetros SQL).
func (f ReasonFilter) Strings() []string {
	out := make([]string, len(f.reasons))
	for i, r := range f.reasons {
		out[i] = string(r)
	}
	return out
}

func (f ReasonFilter) String() string { return strings.Join(f.Strings(), ",") }

// ParseReasonFilter interpreta "BUYIN,CASHOUT" o un nombre de vista ("spendable", "full", "tips", "chips").
func ParseReasonFilter(s string) (ReasonFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "spendable":
		return SpendableCash, nil
	case "full":
		return FullAudit, nil
	case "tips":
		return Tips, nil
	case "chips":
		return ChipsReceived, nil
	}
	var rs []Reason
	for _, p := range strings.Split(s, ",") {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		rs = append(rs, Reason(p))
	}
	f := IncludeReasons(rs...)
	if err := f.Validate(); err != nil {
		return ReasonFilter{}, err
	}
	return f, nil
}
