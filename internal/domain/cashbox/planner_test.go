package cashbox_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cashbox-api/internal/domain"
	"github.com/jhoicas/cashbox-api/internal/domain/cashbox"
	"github.com/jhoicas/cashbox-api/internal/domain/entity"
)

func snapshot(counts entity.Quantities) entity.Snapshot {
	return entity.Snapshot{Universe: entity.UniverseCurrency, Reasons: entity.SpendableCash, Counts: counts}
}

func denoms(vs ...int64) []entity.Denomination {
	out := make([]entity.Denomination, len(vs))
	for i, v := range vs {
		out[i] = entity.Denomination(v)
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenarios de referencia
// ──────────────────────────────────────────────────────────────────────────────

func TestPlanPayout_UnBilleteExacto(t *testing.T) {
	plan, err := cashbox.PlanPayout(100, snapshot(entity.Quantities{100: 1}), denoms(100, 50, 20, 10, 5))
	require.NoError(t, err)
	assert.Equal(t, entity.Quantities{100: 1}, plan.Counts)
	assert.Equal(t, entity.Amount(100), plan.Counts.Total())
}

func TestPlanPayout_CombinaVariasDenominaciones(t *testing.T) {
	plan, err := cashbox.PlanPayout(40, snapshot(entity.Quantities{20: 1, 10: 1, 5: 2}), denoms(50, 20, 10, 5))
	require.NoError(t, err)
	assert.Equal(t, entity.Quantities{20: 1, 10: 1, 5: 2}, plan.Counts)
}

func TestPlanPayout_ObjetivoCero_PlanVacio(t *testing.T) {
	plan, err := cashbox.PlanPayout(0, snapshot(entity.Quantities{}), denoms(100, 50))
	require.NoError(t, err)
	assert.True(t, plan.IsEmpty())
	assert.Empty(t, plan.Counts)
}

func TestPlanPayout_ObjetivoNegativo_InvalidAmount(t *testing.T) {
	_, err := cashbox.PlanPayout(-5, snapshot(entity.Quantities{5: 10}), denoms(5))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	var ia *domain.InvalidAmountError
	require.True(t, errors.As(err, &ia))
	assert.Equal(t, int64(-5), ia.Amount)
}

// ──────────────────────────────────────────────────────────────────────────────
// Límite conocido del greedy acotado: {10:2, 9:2} con objetivo 18 es inviable
// aunque {9:2} cubre el monto. Es el comportamiento esperado.
// ──────────────────────────────────────────────────────────────────────────────

func TestPlanPayout_GreedyAcotado_NoBuscaAlternativas(t *testing.T) {
	_, err := cashbox.PlanPayout(18, snapshot(entity.Quantities{10: 2, 9: 2}), denoms(10, 9))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInfeasiblePayout)

	var ip *domain.InfeasiblePayoutError
	require.True(t, errors.As(err, &ip))
	assert.Equal(t, int64(18), ip.Target)
	assert.Equal(t, int64(8), ip.Remainder, "toma un 10 y quedan 8 sin cubrir")
}

func TestPlanPayout_SinExistencias_Inviable(t *testing.T) {
	_, err := cashbox.PlanPayout(50, snapshot(entity.Quantities{100: 3}), denoms(100, 50, 20))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInfeasiblePayout)
}

func TestPlanPayout_DisponibilidadCeroNoGeneraEntradas(t *testing.T) {
	plan, err := cashbox.PlanPayout(70, snapshot(entity.Quantities{100: 0, 50: 1, 20: 1, 10: 0}), denoms(100, 50, 20, 10))
	require.NoError(t, err)
	assert.Equal(t, entity.Quantities{50: 1, 20: 1}, plan.Counts)
	_, has100 := plan.Counts[100]
	assert.False(t, has100)
}

func TestPlanPayout_OrdenDesordenadoSeOrdena(t *testing.T) {
	plan, err := cashbox.PlanPayout(150, snapshot(entity.Quantities{100: 5, 50: 5}), denoms(50, 100))
	require.NoError(t, err)
	assert.Equal(t, entity.Quantities{100: 1, 50: 1}, plan.Counts)
}

// Repetir una denominación en el orden no duplica sus existencias.
func TestPlanPayout_OrdenConRepetidos_RespetaExistencias(t *testing.T) {
	_, err := cashbox.PlanPayout(20, snapshot(entity.Quantities{10: 1}), denoms(10, 10))
	var infeasible *domain.InfeasiblePayoutError
	require.True(t, errors.As(err, &infeasible), "20 con un solo billete de 10 no tiene plan")
	assert.Equal(t, int64(10), infeasible.Remainder)

	plan, err := cashbox.PlanPayout(30, snapshot(entity.Quantities{20: 1, 10: 1}), denoms(10, 20, 10, 20))
	require.NoError(t, err)
	assert.Equal(t, entity.Quantities{20: 1, 10: 1}, plan.Counts)
}

func TestPlanPayout_OrdenVacio_UsaDenominacionesDelSnapshot(t *testing.T) {
	plan, err := cashbox.PlanPayout(2500, snapshot(entity.Quantities{2000: 1, 500: 3}), nil)
	require.NoError(t, err)
	assert.Equal(t, entity.Quantities{2000: 1, 500: 1}, plan.Counts)
}

// TestPlanPayout_Propiedad recorre objetivos y existencias: si hay plan, suma exacta y
// nunca supera lo disponible.
func TestPlanPayout_Propiedad(t *testing.T) {
	order := entity.DefaultCurrencyDenominations
	avail := entity.Quantities{10000: 1, 5000: 2, 2000: 3, 1000: 1, 500: 4, 200: 0, 100: 7, 50: 3, 20: 2, 10: 5, 5: 1}
	for target := entity.Amount(0); target <= 40000; target += 5 {
		plan, err := cashbox.PlanPayout(target, snapshot(avail), order)
		if err != nil {
			assert.ErrorIs(t, err, domain.ErrInfeasiblePayout)
			continue
		}
		require.Equal(t, target, plan.Counts.Total(), "objetivo %d", target)
		for d, n := range plan.Counts {
			assert.LessOrEqual(t, n, avail[d], "objetivo %d denominación %d", target, d)
			assert.Positive(t, n)
		}
	}
}

func TestFits(t *testing.T) {
	avail := snapshot(entity.Quantities{100: 2, 50: 1})

	_, ok := cashbox.Fits(entity.Quantities{100: 2, 50: 1}, avail)
	assert.True(t, ok)

	d, ok := cashbox.Fits(entity.Quantities{100: 1, 50: 2}, avail)
	assert.False(t, ok)
	assert.Equal(t, entity.Denomination(50), d)
}
