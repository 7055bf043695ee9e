package cashbox

import (
	"context"
	"time"

	"github.com/jhoicas/cashbox-api/internal/application/ledger"
	"github.com/jhoicas/cashbox-api/internal/domain/entity"
)

// Ledger lo que los casos de uso consumen del store.
type Ledger interface {
	Availability(ctx context.Context, q ledger.AvailabilityQuery) (entity.Snapshot, error)
	ReverseBatch(ctx context.Context, target entity.ReversalTarget, mode entity.ReversalMode, opts ...ledger.ReverseOption) (entity.BatchID, error)
	Batch(ctx context.Context, id entity.BatchID) (*ledger.BatchDetail, error)
	Reversed(ctx context.Context, ids []entity.BatchID) (map[entity.BatchID]bool, error)
	Activity(ctx context.Context, limit, offset int) ([]*entity.AuditEntry, int, error)
	SalesTotal(ctx context.Context) (entity.Amount, error)
	Baseline(ctx context.Context, universe entity.Universe) (entity.Quantities, error)
	StockFloat(ctx context.Context, universe entity.Universe, counts entity.Quantities) error
}

// EventRecorder escribe un evento como lote atómico.
type EventRecorder interface {
	Record(ctx context.Context, ev ledger.Event) (entity.BatchID, error)
}

// AmountFormatter texto de un monto en unidades menores ("AUD 40.00").
type AmountFormatter interface {
	Format(minor int64) string
}

// ReportGenerator genera el PDF de cierre de sesión.
type ReportGenerator interface {
	GenerateSessionReport(ctx context.Context, report *SessionReport) ([]byte, error)
}

// SessionReport datos ya formateados para el PDF.
type SessionReport struct {
	Title       string
	GeneratedAt time.Time
	Staff       string
	Currency    string
	Cash        []ReportRow
	Tips        []ReportRow
	Totals      []ReportTotal
	Activity    []ReportActivity
}

// ReportRow una denominación del conteo.
type ReportRow struct {
	Denomination string
	Count        int64
	Value        string
}

// ReportTotal etiqueta + monto.
type ReportTotal struct {
	Label string
	Value string
}

// ReportActivity una fila de la bitácora.
type ReportActivity struct {
	Time     time.Time
	Type     string
	Amount   string
	Staff    string
	Note     string
	Reversed bool
}
