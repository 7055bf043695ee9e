// Package cashbox arma los eventos de negocio de la caja (cobros, compras de fichas, ventas,
// float, fichas perdidas, cambios y reversas) y los escribe por medio del ledger.
//
// Cada caso de uso sigue el mismo flujo: disponibilidad -> plan (si hay pago) -> confirmación
// del operador -> lote atómico con guardas. Quien arma el lote garantiza su balance económico.
package cashbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/cashbox-api/internal/application/ledger"
	"github.com/jhoicas/cashbox-api/internal/domain"
	planner "github.com/jhoicas/cashbox-api/internal/domain/cashbox"
	"github.com/jhoicas/cashbox-api/internal/domain/entity"
	"github.com/jhoicas/cashbox-api/internal/domain/repository"
	"github.com/jhoicas/cashbox-api/pkg/logger"
	"github.com/jhoicas/cashbox-api/pkg/metrics"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// Deps dependencias del servicio. Logger y Metrics pueden ser nil.
type Deps struct {
	Ledger   Ledger
	Recorder EventRecorder
	Settings repository.SettingsRepository
	Currency entity.DenominationSet
	Chips    entity.DenominationSet
	Money    AmountFormatter
	Reports  ReportGenerator
	Logger   *logger.Logger
	Metrics  *metrics.Metrics
	JWT      JWTConfig
}

// Service casos de uso de la caja.
type Service struct {
	ledger   Ledger
	recorder EventRecorder
	settings repository.SettingsRepository
	currency entity.DenominationSet
	chips    entity.DenominationSet
	money    AmountFormatter
	reports  ReportGenerator
	log      *logger.Logger
	metrics  *metrics.Metrics
	jwtCfg   JWTConfig
	now      func() time.Time
}

// NewService construye el servicio.
func NewService(d Deps) *Service {
	log := d.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		ledger:   d.Ledger,
		recorder: d.Recorder,
		settings: d.Settings,
		currency: d.Currency,
		chips:    d.Chips,
		money:    d.Money,
		reports:  d.Reports,
		log:      log.Named("cashbox"),
		metrics:  d.Metrics,
		jwtCfg:   d.JWT,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CurrencyDenominations denominaciones de billetes y monedas de la sesión.
func (s *Service) CurrencyDenominations() entity.DenominationSet { return s.currency }

// ChipDenominations denominaciones de fichas de la sesión.
func (s *Service) ChipDenominations() entity.DenominationSet { return s.chips }

// Availability consulta directa con universo y filtro explícitos.
func (s *Service) Availability(ctx context.Context, q ledger.AvailabilityQuery) (entity.Snapshot, error) {
	return s.ledger.Availability(ctx, q)
}

// Quote plan propuesto al operador antes de confirmar.
type Quote struct {
	Target    entity.Amount
	Plan      entity.PayoutPlan
	Available entity.Snapshot
}

// PlanInput plan genérico sobre cualquier universo/filtro.
type PlanInput struct {
	Universe entity.Universe
	Reasons  entity.ReasonFilter
	Target   entity.Amount
}

// Plan calcula un desglose sin escribir nada.
func (s *Service) Plan(ctx context.Context, in PlanInput) (*Quote, error) {
	q := ledger.AvailabilityQuery{Universe: in.Universe, Reasons: in.Reasons}
	snap, err := s.ledger.Availability(ctx, q)
	if err != nil {
		return nil, err
	}
	set := s.currency
	if in.Universe == entity.UniverseChip {
		set = s.chips
	}
	plan, err := s.plan(in.Target, snap, set)
	if err != nil {
		return nil, err
	}
	return &Quote{Target: in.Target, Plan: plan, Available: snap}, nil
}

// planCash plan en efectivo gastable; extra son billetes que entran en el mismo lote
// (lo entregado por el cliente) y pueden usarse para el vuelto.
func (s *Service) planCash(ctx context.Context, target entity.Amount, extra entity.Quantities) (*Quote, error) {
	snap, err := s.ledger.Availability(ctx, ledger.SpendableCashQuery)
	if err != nil {
		return nil, err
	}
	if len(extra) > 0 {
		snap.Counts = snap.Counts.Merge(extra).Compact()
	}
	plan, err := s.plan(target, snap, s.currency)
	if err != nil {
		return nil, err
	}
	return &Quote{Target: target, Plan: plan, Available: snap}, nil
}

func (s *Service) plan(target entity.Amount, snap entity.Snapshot, set entity.DenominationSet) (entity.PayoutPlan, error) {
	plan, err := planner.PlanPayout(target, snap, set.Descending())
	switch {
	case err == nil:
		s.metrics.RecordPlan(string(snap.Universe), metrics.OutcomeOK)
	case errors.Is(err, domain.ErrInfeasiblePayout):
		s.metrics.RecordPlan(string(snap.Universe), metrics.OutcomeInfeasible)
	default:
		s.metrics.RecordPlan(string(snap.Universe), metrics.OutcomeError)
	}
	return plan, err
}

// record escribe el evento y deja log + métricas del resultado.
func (s *Service) record(ctx context.Context, ev ledger.Event) (entity.BatchID, error) {
	id, err := s.recorder.Record(ctx, ev)
	if err != nil {
		var changed *domain.AvailabilityChangedError
		if errors.As(err, &changed) {
			s.metrics.RecordGuardRejection(changed.Universe)
			s.metrics.RecordBatch(string(ev.Type), metrics.OutcomeRejected, 0)
			s.log.Warn().Str("event", string(ev.Type)).
				Int64("denomination", changed.Denomination).
				Int64("needed", changed.Needed).
				Int64("available", changed.Available).
				Msg("disponibilidad cambió antes de confirmar")
			return "", err
		}
		s.metrics.RecordBatch(string(ev.Type), metrics.OutcomeError, 0)
		s.log.Error().Err(err).Str("event", string(ev.Type)).Msg("no se pudo escribir el lote")
		return "", err
	}
	s.metrics.RecordBatch(string(ev.Type), metrics.OutcomeOK, int64(ev.Amount))
	s.log.Info().
		Str("batch_id", string(id)).
		Str("event", string(ev.Type)).
		Int64("amount_cents", int64(ev.Amount)).
		Str("staff", ev.Staff).
		Msg("lote registrado")
	return id, nil
}

// formatAmount usa el formateador de la sesión; sin él, centavos en crudo.
func (s *Service) formatAmount(a entity.Amount) string {
	if s.money == nil {
		return fmt.Sprintf("%d", int64(a))
	}
	return s.money.Format(int64(a))
}

// describeCounts "2×AUD 50.00, 1×AUD 20.00".
func (s *Service) describeCounts(q entity.Quantities) string {
	out := ""
	for _, d := range q.Denominations() {
		n := q[d]
		if n == 0 {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += fmt.Sprintf("%d×%s", n, s.formatAmount(entity.Amount(d)))
	}
	return out
}

// validateCounts conteo no vacío, no negativo y del conjunto dado.
func validateCounts(q entity.Quantities, set entity.DenominationSet, label string) error {
	if err := q.ValidateCounts(&set); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, label, err)
	}
	if q.Compact().Pieces() == 0 {
		return fmt.Errorf("%w: %s vacío", domain.ErrInvalidInput, label)
	}
	return nil
}

// checkPlan el plan confirmado debe cubrir exactamente el objetivo con denominaciones válidas.
func checkPlan(plan entity.Quantities, target entity.Amount, set entity.DenominationSet) error {
	if err := plan.ValidateCounts(&set); err != nil {
		return fmt.Errorf("%w: plan: %v", domain.ErrInvalidInput, err)
	}
	if plan.Total() != target {
		return fmt.Errorf("%w: el plan suma %d y el pago es %d", domain.ErrInvalidInput, plan.Total(), target)
	}
	return nil
}

func cashGuard(need entity.Quantities) []entity.Guard {
	need = need.Compact()
	if len(need) == 0 {
		return nil
	}
	return []entity.Guard{{Universe: entity.UniverseCurrency, Reasons: entity.SpendableCash, Need: need}}
}
