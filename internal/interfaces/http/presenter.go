package http

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/cashbox-api/internal/application/cashbox"
	"github.com/jhoicas/cashbox-api/internal/application/dto"
	"github.com/jhoicas/cashbox-api/internal/application/ledger"
	"github.com/jhoicas/cashbox-api/internal/domain/entity"
)

// MoneyFormatter lo implementa *money.Formatter.
type MoneyFormatter interface {
	Format(minor int64) string
	ToDecimal(minor int64) decimal.Decimal
}

// presenter convierte entidades en DTOs con montos en centavos y unidades mayores.
type presenter struct {
	money MoneyFormatter
}

func (p presenter) amount(a entity.Amount) dto.MoneyResponse {
	return dto.MoneyResponse{
		Cents:     int64(a),
		Amount:    p.money.ToDecimal(int64(a)),
		Formatted: p.money.Format(int64(a)),
	}
}

func (p presenter) counts(q entity.Quantities) []dto.DenominationCountResponse {
	out := make([]dto.DenominationCountResponse, 0, len(q))
	for _, d := range q.Denominations() {
		n := q[d]
		if n == 0 {
			continue
		}
		out = append(out, dto.DenominationCountResponse{
			DenominationCents: int64(d),
			Denomination:      p.money.ToDecimal(int64(d)),
			Count:             n,
			Value:             p.amount(entity.Amount(int64(d) * n)),
		})
	}
	return out
}

func (p presenter) snapshot(s entity.Snapshot) dto.SnapshotResponse {
	return dto.SnapshotResponse{
		Universe: string(s.Universe),
		Reasons:  s.Reasons.Strings(),
		Counts:   p.counts(s.Counts),
		Total:    p.amount(s.Counts.Total()),
	}
}

func (p presenter) plan(q *cashbox.Quote) dto.PlanResponse {
	return dto.PlanResponse{
		Target:     p.amount(q.Target),
		Plan:       p.counts(q.Plan.Counts),
		PlanCounts: fromQuantities(q.Plan.Counts),
		Available:  p.snapshot(q.Available),
	}
}

func (p presenter) audit(e *entity.AuditEntry) dto.AuditEntryResponse {
	return dto.AuditEntryResponse{
		ID:             e.ID,
		BatchID:        string(e.BatchID),
		Type:           string(e.Type),
		Amount:         p.amount(e.Amount),
		Note:           e.Note,
		Staff:          e.Staff,
		PlayerRef:      e.PlayerRef,
		TransactionRef: e.TransactionRef,
		ReversalOf:     string(e.ReversalOf),
		CreatedAt:      e.CreatedAt,
	}
}

func (p presenter) batch(b *ledger.BatchDetail) dto.BatchDetailResponse {
	out := dto.BatchDetailResponse{
		Movements: make([]dto.MovementResponse, 0, len(b.Movements)),
		Reversed:  b.Reversed,
	}
	if b.Audit != nil {
		a := p.audit(b.Audit)
		out.Audit = &a
	}
	for _, m := range b.Movements {
		out.Movements = append(out.Movements, dto.MovementResponse{
			ID:                m.ID,
			Universe:          string(m.Universe),
			DenominationCents: int64(m.Denomination),
			Delta:             m.Delta,
			Reason:            string(m.Reason),
			PlayerRef:         m.PlayerRef,
			TransactionRef:    m.TransactionRef,
			ReversalOf:        string(m.ReversalOf),
			Notes:             m.Notes,
			CreatedAt:         m.CreatedAt,
		})
	}
	return out
}

func (p presenter) summary(s *cashbox.Summary) dto.SummaryResponse {
	return dto.SummaryResponse{
		Cash:          p.snapshot(s.Cash),
		ChipsReceived: p.snapshot(s.ChipsReceived),
		Tips:          p.snapshot(s.Tips),
		Float:         p.counts(s.Float),
		FloatTotal:    p.amount(s.FloatTotal()),
		SalesTotal:    p.amount(s.SalesTotal),
	}
}

func toQuantities(c dto.Counts) entity.Quantities {
	out := make(entity.Quantities, len(c))
	for d, n := range c {
		out[entity.Denomination(d)] = n
	}
	return out
}

func fromQuantities(q entity.Quantities) dto.Counts {
	out := make(dto.Counts, len(q))
	for d, n := range q {
		if n != 0 {
			out[int64(d)] = n
		}
	}
	return out
}

func refs(r dto.RefsRequest, staff string) cashbox.Refs {
	return cashbox.Refs{
		Staff:          staff,
		PlayerRef:      r.PlayerRef,
		TransactionRef: r.TransactionRef,
		Note:           r.Note,
	}
}
