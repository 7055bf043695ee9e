package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/cashbox-api/internal/domain"
	"github.com/jhoicas/cashbox-api/internal/domain/entity"
)

// Event un evento de negocio listo para escribirse: líneas, auditoría y guardas.
// Quien lo arma es responsable del balance económico; el Recorder no planifica ni valida montos.
type Event struct {
	Type           entity.EventType
	Amount         entity.Amount
	Note           string
	Staff          string
	PlayerRef      string
	TransactionRef string
	Lines          []entity.Line
	Guards         []entity.Guard
}

// Recorder convierte un evento en un lote atómico.
type Recorder struct {
	store BatchAppender
	now   func() time.Time
	newID func() entity.BatchID
}

// NewRecorder construye el recorder sobre el store.
func NewRecorder(store BatchAppender) *Recorder {
	return &Recorder{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() entity.BatchID { return entity.BatchID(uuid.NewString()) },
	}
}

// Record genera el id del lote, sella tiempos, arma la auditoría y escribe todo en una unidad.
// Devuelve el id para una eventual reversa.
func (r *Recorder) Record(ctx context.Context, ev Event) (entity.BatchID, error) {
	if ev.Amount < 0 {
		return "", &domain.InvalidAmountError{Amount: int64(ev.Amount)}
	}
	if len(ev.Lines) == 0 {
		return "", fmt.Errorf("%w: evento %s sin movimientos", domain.ErrInvalidInput, ev.Type)
	}

	id := r.newID()
	now := r.now()
	movs := make([]entity.Movement, 0, len(ev.Lines))
	for _, l := range ev.Lines {
		m := entity.Movement{
			Universe:       l.Universe,
			Denomination:   l.Denomination,
			Delta:          l.Delta,
			Reason:         l.Reason,
			BatchID:        id,
			PlayerRef:      firstNonEmpty(l.PlayerRef, ev.PlayerRef),
			TransactionRef: firstNonEmpty(l.TransactionRef, ev.TransactionRef),
			Notes:          firstNonEmpty(l.Notes, ev.Note),
			CreatedAt:      now,
		}
		movs = append(movs, m)
	}

	batch := entity.Batch{
		ID:        id,
		Movements: movs,
		Guards:    ev.Guards,
		Audit: entity.AuditEntry{
			BatchID:        id,
			Type:           ev.Type,
			Amount:         ev.Amount,
			Note:           ev.Note,
			Staff:          ev.Staff,
			PlayerRef:      ev.PlayerRef,
			TransactionRef: ev.TransactionRef,
			CreatedAt:      now,
		},
	}
	if err := r.store.AppendBatch(ctx, batch); err != nil {
		return "", err
	}
	return id, nil
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
