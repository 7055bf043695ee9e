package ledger

import (
	"context"
	"fmt"

	"github.com/jhoicas/cashbox-api/internal/domain"
	"github.com/jhoicas/cashbox-api/internal/domain/entity"
	"github.com/jhoicas/cashbox-api/internal/domain/repository"
)

// AvailabilityQuery universo y filtro de razones; ambos obligatorios.
type AvailabilityQuery struct {
	Universe entity.Universe
	Reasons  entity.ReasonFilter
}

// Consultas con nombre que usan las vistas de caja.
var (
	SpendableCashQuery = AvailabilityQuery{Universe: entity.UniverseCurrency, Reasons: entity.SpendableCash}
	FullAuditQuery     = AvailabilityQuery{Universe: entity.UniverseCurrency, Reasons: entity.FullAudit}
	ChipsReceivedQuery = AvailabilityQuery{Universe: entity.UniverseChip, Reasons: entity.ChipsReceived}
	TipsQuery          = AvailabilityQuery{Universe: entity.UniverseChip, Reasons: entity.Tips}
)

// Validate universo conocido y filtro no vacío.
func (q AvailabilityQuery) Validate() error {
	if !q.Universe.Valid() {
		return fmt.Errorf("%w: universo %q", domain.ErrInvalidInput, q.Universe)
	}
	if err := q.Reasons.Validate(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

// computeSnapshot baseline[d] + Σ movimientos(d, razón incluida). Se recalcula siempre.
// Los movimientos no tienen baseline en el universo CHIP; el resultado es solo la suma.
func computeSnapshot(
	ctx context.Context,
	movRepo repository.MovementRepository,
	floatRepo repository.FloatRepository,
	q AvailabilityQuery,
) (entity.Snapshot, error) {
	if err := q.Validate(); err != nil {
		return entity.Snapshot{}, err
	}
	rows, err := floatRepo.List(ctx, q.Universe)
	if err != nil {
		return entity.Snapshot{}, fmt.Errorf("%w: float: %v", domain.ErrStorageUnavailable, err)
	}
	sums, err := movRepo.SumByDenomination(ctx, q.Universe, q.Reasons)
	if err != nil {
		return entity.Snapshot{}, fmt.Errorf("%w: movimientos: %v", domain.ErrStorageUnavailable, err)
	}
	counts := entity.BaselineCounts(rows).Merge(sums).Compact()
	return entity.Snapshot{Universe: q.Universe, Reasons: q.Reasons, Counts: counts}, nil
}

// checkGuards se ejecuta dentro de la transacción después de escribir las filas del lote:
// ninguna denominación con guarda puede quedar con disponibilidad negativa. Equivale a
// need[d] <= disponible[d] + entradas del mismo lote (el vuelto de un buy-in puede salir de
// los billetes recién entregados).
// written es el efecto neto del lote; el error informa lo disponible antes de aplicarlo.
func checkGuards(
	ctx context.Context,
	movRepo repository.MovementRepository,
	floatRepo repository.FloatRepository,
	guards []entity.Guard,
	written []entity.Movement,
) error {
	for _, g := range guards {
		if len(g.Need) == 0 {
			continue
		}
		snap, err := computeSnapshot(ctx, movRepo, floatRepo, AvailabilityQuery{Universe: g.Universe, Reasons: g.Reasons})
		if err != nil {
			return err
		}
		for _, d := range g.Need.Denominations() {
			need := g.Need[d]
			if need <= 0 {
				continue
			}
			if after := snap.Available(d); after < 0 {
				return &domain.AvailabilityChangedError{
					Universe:     string(g.Universe),
					Denomination: int64(d),
					Needed:       need,
					Available:    after - batchDelta(written, g.Universe, g.Reasons, d),
				}
			}
		}
	}
	return nil
}

// batchDelta cuánto movió el lote la disponibilidad de d bajo el filtro dado. Las filas
// FLOAT_ADD también mueven el float base, que entra en cualquier filtro de su universo.
func batchDelta(written []entity.Movement, u entity.Universe, f entity.ReasonFilter, d entity.Denomination) int64 {
	var sum int64
	for _, m := range written {
		if m.Universe != u || m.Denomination != d {
			continue
		}
		if f.Includes(m.Reason) {
			sum += m.Delta
		}
		if m.Reason == entity.ReasonFloatAdd {
			sum += m.Delta
		}
	}
	return sum
}
