package cashbox

import (
	"context"
	"fmt"

	"github.com/jhoicas/cashbox-api/internal/application/ledger"
	"github.com/jhoicas/cashbox-api/internal/domain"
	"github.com/jhoicas/cashbox-api/internal/domain/entity"
)

// Refs datos comunes de trazabilidad de un evento.
type Refs struct {
	Staff          string
	PlayerRef      string
	TransactionRef string
	Note           string
}

// ── Cobro de fichas ──────────────────────────────────────────────────────────

// CashOutInput fichas entregadas por el jugador y consumo a descontar.
type CashOutInput struct {
	Refs
	Chips     entity.Quantities
	FoodCents entity.Amount
}

// CashOutQuote desglose propuesto del pago.
type CashOutQuote struct {
	ChipsTotal entity.Amount
	Food       entity.Amount
	Quote
}

func (s *Service) cashOutTarget(in CashOutInput) (entity.Amount, error) {
	if err := validateCounts(in.Chips, s.chips, "fichas"); err != nil {
		return 0, err
	}
	if in.FoodCents < 0 {
		return 0, &domain.InvalidAmountError{Amount: int64(in.FoodCents)}
	}
	target := in.Chips.Total() - in.FoodCents
	if target < 0 {
		return 0, &domain.InvalidAmountError{Amount: int64(target)}
	}
	return target, nil
}

// PlanCashOut valor de las fichas menos el consumo, pagado desde el efectivo gastable.
func (s *Service) PlanCashOut(ctx context.Context, in CashOutInput) (*CashOutQuote, error) {
	target, err := s.cashOutTarget(in)
	if err != nil {
		return nil, err
	}
	q, err := s.planCash(ctx, target, nil)
	if err != nil {
		return nil, err
	}
	return &CashOutQuote{ChipsTotal: in.Chips.Total(), Food: in.FoodCents, Quote: *q}, nil
}

// ConfirmCashOut escribe el cobro con el plan que vio el operador.
// Con consumo el tipo es CASHOUT_SALE y el monto auditado es el consumo (suma a ventas);
// sin consumo es CASHOUT por el monto pagado.
func (s *Service) ConfirmCashOut(ctx context.Context, in CashOutInput, plan entity.Quantities) (entity.BatchID, error) {
	target, err := s.cashOutTarget(in)
	if err != nil {
		return "", err
	}
	if err := checkPlan(plan, target, s.currency); err != nil {
		return "", err
	}

	lines := entity.LinesFromCounts(entity.UniverseChip, in.Chips, +1, entity.ReasonCashOut)
	lines = append(lines, entity.LinesFromCounts(entity.UniverseCurrency, plan, -1, entity.ReasonCashOut)...)

	ev := ledger.Event{
		Type:           entity.EventCashOut,
		Amount:         target,
		Staff:          in.Staff,
		PlayerRef:      in.PlayerRef,
		TransactionRef: in.TransactionRef,
		Lines:          lines,
		Guards:         cashGuard(plan),
	}
	note := fmt.Sprintf("Cobro fichas %s, pago %s", s.formatAmount(in.Chips.Total()), s.formatAmount(target))
	if in.FoodCents > 0 {
		ev.Type = entity.EventCashOutSale
		ev.Amount = in.FoodCents
		note = fmt.Sprintf("Cobro fichas %s, consumo %s, pago %s",
			s.formatAmount(in.Chips.Total()), s.formatAmount(in.FoodCents), s.formatAmount(target))
	}
	ev.Note = joinNote(note, in.Note)
	return s.record(ctx, ev)
}

// ── Compra de fichas ─────────────────────────────────────────────────────────

// BuyInInput billetes entregados y monto de fichas comprado.
type BuyInInput struct {
	Refs
	Tendered   entity.Quantities
	ChipsCents entity.Amount
}

// BuyInQuote vuelto a entregar.
type BuyInQuote struct {
	Tendered entity.Amount
	Chips    entity.Amount
	Quote
}

func (s *Service) buyInChange(in BuyInInput) (entity.Amount, error) {
	if err := validateCounts(in.Tendered, s.currency, "efectivo entregado"); err != nil {
		return 0, err
	}
	if in.ChipsCents <= 0 {
		return 0, &domain.InvalidAmountError{Amount: int64(in.ChipsCents)}
	}
	change := in.Tendered.Total() - in.ChipsCents
	if change < 0 {
		return 0, fmt.Errorf("%w: entregado %d no cubre %d", domain.ErrInvalidInput, in.Tendered.Total(), in.ChipsCents)
	}
	return change, nil
}

// PlanBuyIn el vuelto puede salir de la caja o de los mismos billetes entregados.
func (s *Service) PlanBuyIn(ctx context.Context, in BuyInInput) (*BuyInQuote, error) {
	change, err := s.buyInChange(in)
	if err != nil {
		return nil, err
	}
	q, err := s.planCash(ctx, change, in.Tendered)
	if err != nil {
		return nil, err
	}
	return &BuyInQuote{Tendered: in.Tendered.Total(), Chips: in.ChipsCents, Quote: *q}, nil
}

// ConfirmBuyIn +entregado, -vuelto (BUYIN).
func (s *Service) ConfirmBuyIn(ctx context.Context, in BuyInInput, change entity.Quantities) (entity.BatchID, error) {
	target, err := s.buyInChange(in)
	if err != nil {
		return "", err
	}
	if err := checkPlan(change, target, s.currency); err != nil {
		return "", err
	}
	lines := entity.LinesFromCounts(entity.UniverseCurrency, in.Tendered, +1, entity.ReasonBuyIn)
	lines = append(lines, entity.LinesFromCounts(entity.UniverseCurrency, change, -1, entity.ReasonBuyIn)...)

	note := fmt.Sprintf("Compra fichas %s, entregado %s, vuelto %s",
		s.formatAmount(in.ChipsCents), s.formatAmount(in.Tendered.Total()), s.formatAmount(target))
	return s.record(ctx, ledger.Event{
		Type:           entity.EventBuyIn,
		Amount:         in.ChipsCents,
		Note:           joinNote(note, in.Note),
		Staff:          in.Staff,
		PlayerRef:      in.PlayerRef,
		TransactionRef: in.TransactionRef,
		Lines:          lines,
		Guards:         cashGuard(change),
	})
}

// ── Venta ────────────────────────────────────────────────────────────────────

// SaleInput venta de comida/bebida pagada con efectivo y/o fichas.
type SaleInput struct {
	Refs
	TotalCents  entity.Amount
	Cash        entity.Quantities
	Chips       entity.Quantities
	Description string
}

// SaleQuote vuelto de la venta.
type SaleQuote struct {
	Total entity.Amount
	Paid  entity.Amount
	Quote
}

func (s *Service) saleChange(in SaleInput) (entity.Amount, error) {
	if in.TotalCents <= 0 {
		return 0, &domain.InvalidAmountError{Amount: int64(in.TotalCents)}
	}
	if err := in.Cash.ValidateCounts(&s.currency); err != nil {
		return 0, fmt.Errorf("%w: efectivo: %v", domain.ErrInvalidInput, err)
	}
	if err := in.Chips.ValidateCounts(&s.chips); err != nil {
		return 0, fmt.Errorf("%w: fichas: %v", domain.ErrInvalidInput, err)
	}
	paid := in.Cash.Total() + in.Chips.Total()
	if paid < in.TotalCents {
		return 0, fmt.Errorf("%w: pagado %d no cubre %d", domain.ErrInvalidInput, paid, in.TotalCents)
	}
	return paid - in.TotalCents, nil
}

// PlanSale el vuelto siempre sale en efectivo.
func (s *Service) PlanSale(ctx context.Context, in SaleInput) (*SaleQuote, error) {
	change, err := s.saleChange(in)
	if err != nil {
		return nil, err
	}
	q, err := s.planCash(ctx, change, in.Cash)
	if err != nil {
		return nil, err
	}
	return &SaleQuote{Total: in.TotalCents, Paid: in.Cash.Total() + in.Chips.Total(), Quote: *q}, nil
}

// ConfirmSale +efectivo/+fichas pagados, -vuelto (SALE).
func (s *Service) ConfirmSale(ctx context.Context, in SaleInput, change entity.Quantities) (entity.BatchID, error) {
	target, err := s.saleChange(in)
	if err != nil {
		return "", err
	}
	if err := checkPlan(change, target, s.currency); err != nil {
		return "", err
	}
	lines := entity.LinesFromCounts(entity.UniverseCurrency, in.Cash, +1, entity.ReasonSale)
	lines = append(lines, entity.LinesFromCounts(entity.UniverseChip, in.Chips, +1, entity.ReasonSale)...)
	lines = append(lines, entity.LinesFromCounts(entity.UniverseCurrency, change, -1, entity.ReasonSale)...)

	note := fmt.Sprintf("Venta %s", s.formatAmount(in.TotalCents))
	if in.Description != "" {
		note += ": " + in.Description
	}
	return s.record(ctx, ledger.Event{
		Type:           entity.EventSale,
		Amount:         in.TotalCents,
		Note:           joinNote(note, in.Note),
		Staff:          in.Staff,
		PlayerRef:      in.PlayerRef,
		TransactionRef: in.TransactionRef,
		Lines:          lines,
		Guards:         cashGuard(change),
	})
}

// ── Float, fichas perdidas y cambio ──────────────────────────────────────────

// AddFloat agrega billetes a la caja: filas FLOAT_ADD y aumento del float base en la misma unidad.
func (s *Service) AddFloat(ctx context.Context, counts entity.Quantities, refs Refs) (entity.BatchID, error) {
	if err := validateCounts(counts, s.currency, "float"); err != nil {
		return "", err
	}
	total := counts.Total()
	return s.record(ctx, ledger.Event{
		Type:   entity.EventFloatAdd,
		Amount: total,
		Note:   joinNote("Float agregado: "+s.formatAmount(total), refs.Note),
		Staff:  refs.Staff,
		Lines:  entity.LinesFromCounts(entity.UniverseCurrency, counts, +1, entity.ReasonFloatAdd),
	})
}

// RecordLostChips fichas encontradas en mesa: entran como propina (LOST_CHIP).
func (s *Service) RecordLostChips(ctx context.Context, chips entity.Quantities, refs Refs) (entity.BatchID, error) {
	if err := validateCounts(chips, s.chips, "fichas"); err != nil {
		return "", err
	}
	total := chips.Total()
	return s.record(ctx, ledger.Event{
		Type:      entity.EventTip,
		Amount:    total,
		Note:      joinNote("Fichas perdidas: "+s.describeCounts(chips), refs.Note),
		Staff:     refs.Staff,
		PlayerRef: refs.PlayerRef,
		Lines:     entity.LinesFromCounts(entity.UniverseChip, chips, +1, entity.ReasonLostChip),
	})
}

// ExchangeInput billetes que salen de la caja y los que entran a cambio.
type ExchangeInput struct {
	Refs
	Give    entity.Quantities
	Receive entity.Quantities
}

// Exchange cambio de billetes por billetes de igual total.
func (s *Service) Exchange(ctx context.Context, in ExchangeInput) (entity.BatchID, error) {
	if err := validateCounts(in.Give, s.currency, "entregado"); err != nil {
		return "", err
	}
	if err := validateCounts(in.Receive, s.currency, "recibido"); err != nil {
		return "", err
	}
	if in.Give.Total() != in.Receive.Total() {
		return "", fmt.Errorf("%w: el cambio debe ser por el mismo total (%d != %d)",
			domain.ErrInvalidInput, in.Give.Total(), in.Receive.Total())
	}
	lines := entity.LinesFromCounts(entity.UniverseCurrency, in.Give, -1, entity.ReasonExchange)
	lines = append(lines, entity.LinesFromCounts(entity.UniverseCurrency, in.Receive, +1, entity.ReasonExchange)...)

	note := fmt.Sprintf("Cambio: entregado [%s] por [%s]", s.describeCounts(in.Give), s.describeCounts(in.Receive))
	return s.record(ctx, ledger.Event{
		Type:           entity.EventExchange,
		Amount:         in.Give.Total(),
		Note:           joinNote(note, in.Note),
		Staff:          in.Staff,
		TransactionRef: in.TransactionRef,
		Lines:          lines,
		Guards:         cashGuard(in.Give),
	})
}

// StockFloat conteo inicial de una sesión nueva.
func (s *Service) StockFloat(ctx context.Context, counts entity.Quantities, staff string) error {
	if err := validateCounts(counts, s.currency, "float inicial"); err != nil {
		return err
	}
	if err := s.ledger.StockFloat(ctx, entity.UniverseCurrency, counts); err != nil {
		return err
	}
	s.log.Info().Int64("amount_cents", int64(counts.Total())).Str("staff", staff).Msg("float inicial cargado")
	return nil
}

func joinNote(base, extra string) string {
	if extra == "" {
		return base
	}
	return base + " | " + extra
}
