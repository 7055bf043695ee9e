package cashbox

import (
	"context"
	"fmt"

	"github.com/jhoicas/cashbox-api/internal/application/ledger"
	"github.com/jhoicas/cashbox-api/internal/domain"
	"github.com/jhoicas/cashbox-api/internal/domain/entity"
)

// Summary vista de caja: lo gastable, propinas, fichas recibidas, float y ventas.
type Summary struct {
	Cash          entity.Snapshot
	ChipsReceived entity.Snapshot
	Tips          entity.Snapshot
	Float         entity.Quantities
	SalesTotal    entity.Amount
}

// CashTotal efectivo gastable.
func (s Summary) CashTotal() entity.Amount { return s.Cash.Total() }

// FloatTotal valor del float base.
func (s Summary) FloatTotal() entity.Amount { return s.Float.Total() }

// Summary se recalcula en cada llamada.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	cash, err := s.ledger.Availability(ctx, ledger.SpendableCashQuery)
	if err != nil {
		return nil, err
	}
	chips, err := s.ledger.Availability(ctx, ledger.ChipsReceivedQuery)
	if err != nil {
		return nil, err
	}
	tips, err := s.ledger.Availability(ctx, ledger.TipsQuery)
	if err != nil {
		return nil, err
	}
	float, err := s.ledger.Baseline(ctx, entity.UniverseCurrency)
	if err != nil {
		return nil, err
	}
	sales, err := s.ledger.SalesTotal(ctx)
	if err != nil {
		return nil, err
	}
	return &Summary{Cash: cash, ChipsReceived: chips, Tips: tips, Float: float, SalesTotal: sales}, nil
}

// Batch desglose de un lote.
func (s *Service) Batch(ctx context.Context, id entity.BatchID) (*ledger.BatchDetail, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: lote vacío", domain.ErrInvalidInput)
	}
	return s.ledger.Batch(ctx, id)
}

// Activity bitácora paginada, más reciente primero.
func (s *Service) Activity(ctx context.Context, limit, offset int) ([]*entity.AuditEntry, int, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.ledger.Activity(ctx, limit, offset)
}

const reportActivityLimit = 200

// Report PDF de la sesión con el conteo actual y la bitácora reciente.
func (s *Service) Report(ctx context.Context, staff string) ([]byte, error) {
	if s.reports == nil {
		return nil, fmt.Errorf("%w: generador de reportes no configurado", domain.ErrInvalidInput)
	}
	sum, err := s.Summary(ctx)
	if err != nil {
		return nil, err
	}
	entries, _, err := s.ledger.Activity(ctx, reportActivityLimit, 0)
	if err != nil {
		return nil, err
	}

	rep := &SessionReport{
		Title:       "Cierre de caja",
		GeneratedAt: s.now(),
		Staff:       staff,
		Cash:        s.reportRows(sum.Cash.Counts),
		Tips:        s.reportRows(sum.Tips.Counts),
		Totals: []ReportTotal{
			{Label: "Efectivo en caja", Value: s.formatAmount(sum.CashTotal())},
			{Label: "Float base", Value: s.formatAmount(sum.FloatTotal())},
			{Label: "Fichas recibidas", Value: s.formatAmount(sum.ChipsReceived.Total())},
			{Label: "Propinas (fichas perdidas)", Value: s.formatAmount(sum.Tips.Total())},
			{Label: "Ventas", Value: s.formatAmount(sum.SalesTotal)},
		},
	}
	if c, ok := s.money.(interface{ Code() string }); ok {
		rep.Currency = c.Code()
	}

	ids := make([]entity.BatchID, len(entries))
	for i, e := range entries {
		ids[i] = e.BatchID
	}
	reversed, err := s.ledger.Reversed(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		rep.Activity = append(rep.Activity, ReportActivity{
			Time:     e.CreatedAt,
			Type:     string(e.Type),
			Amount:   s.formatAmount(e.Amount),
			Staff:    e.Staff,
			Note:     e.Note,
			Reversed: reversed[e.BatchID],
		})
	}

	doc, err := s.reports.GenerateSessionReport(ctx, rep)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("staff", staff).Int("bytes", len(doc)).Msg("reporte de sesión generado")
	return doc, nil
}

func (s *Service) reportRows(q entity.Quantities) []ReportRow {
	rows := make([]ReportRow, 0, len(q))
	for _, d := range q.Denominations() {
		n := q[d]
		if n == 0 {
			continue
		}
		rows = append(rows, ReportRow{
			Denomination: s.formatAmount(entity.Amount(d)),
			Count:        n,
			Value:        s.formatAmount(entity.Amount(int64(d) * n)),
		})
	}
	return rows
}
