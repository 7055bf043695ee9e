package cashbox

import (
	"github.com/jhoicas/cashbox-api/internal/domain"
	"github.com/jhoicas/cashbox-api/internal/domain/entity"
)

// PlanPayout calcula el desglose de un pago (servicio de dominio, puro).
// Greedy de mayor a menor valor, acotado por lo disponible:
//
//	take = min(restante / d, disponible[d])
//
// Con existencias limitadas puede declarar inviable un objetivo que sí tiene solución
// ({10:2, 9:2} con objetivo 18). No hay búsqueda exhaustiva.
//
// order son las denominaciones a usar; si viene vacío se usan las del snapshot.
// Un valor repetido en order se considera una sola vez.
func PlanPayout(target entity.Amount, available entity.Snapshot, order []entity.Denomination) (entity.PayoutPlan, error) {
	if target < 0 {
		return entity.PayoutPlan{}, &domain.InvalidAmountError{Amount: int64(target)}
	}
	plan := entity.PayoutPlan{Target: target, Counts: entity.Quantities{}}
	if target == 0 {
		return plan, nil
	}

	denoms := make([]entity.Denomination, 0, len(order))
	if len(order) == 0 {
		denoms = available.Counts.Denominations()
	} else {
		denoms = append(denoms, order...)
		entity.SortDescending(denoms)
	}

	remaining := int64(target)
	for i, d := range denoms {
		if d <= 0 || remaining == 0 || (i > 0 && denoms[i-1] == d) {
			continue
		}
		take := remaining / int64(d)
		if have := available.Available(d); have < take {
			take = have
		}
		if take <= 0 {
			continue
		}
		plan.Counts[d] += take
		remaining -= take * int64(d)
	}

	if remaining != 0 {
		return entity.PayoutPlan{}, &domain.InfeasiblePayoutError{Target: int64(target), Remainder: remaining}
	}
	return plan, nil
}

// Fits indica si need cabe en el snapshot (need[d] <= disponible[d] para todo d).
// Devuelve la primera denominación que no alcanza.
func Fits(need entity.Quantities, available entity.Snapshot) (entity.Denomination, bool) {
	for _, d := range need.Denominations() {
		if n := need[d]; n > 0 && available.Available(d) < n {
			return d, false
		}
	}
	return 0, true
}
