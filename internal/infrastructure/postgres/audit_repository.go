package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/cashbox-api/internal/domain"
	"github.com/jhoicas/cashbox-api/internal/domain/entity"
	"github.com/jhoicas/cashbox-api/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo bitácora de actividad sobre PostgreSQL. El monto se guarda como NUMERIC(16,2).
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

const auditColumns = `id, batch_id, event_type, amount, note, staff, player_ref, transaction_ref, reversal_of, created_at`

// Create inserta la entrada; un batch_id repetido devuelve ErrConflict.
func (r *AuditRepo) Create(ctx context.Context, e *entity.AuditEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO activity_log (` + auditColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		e.ID, string(e.BatchID), string(e.Type), amountToNumeric(e.Amount), e.Note, e.Staff,
		textOrNil(e.PlayerRef), textOrNil(e.TransactionRef), textOrNil(string(e.ReversalOf)),
		e.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: lote %s ya registrado", domain.ErrConflict, e.BatchID)
		}
		return fmt.Errorf("create activity: %w", err)
	}
	return nil
}

// GetByBatch entrada del lote; nil si no existe.
func (r *AuditRepo) GetByBatch(ctx context.Context, batchID entity.BatchID) (*entity.AuditEntry, error) {
	row := r.q.QueryRow(ctx, `SELECT `+auditColumns+` FROM activity_log WHERE batch_id = $1`, string(batchID))
	e, err := scanAudit(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get activity: %w", err)
	}
	return e, nil
}

// List más reciente primero.
func (r *AuditRepo) List(ctx context.Context, limit, offset int) ([]*entity.AuditEntry, error) {
	rows, err := r.q.Query(ctx, `SELECT `+auditColumns+` FROM activity_log
		ORDER BY created_at DESC, seq DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()
	var list []*entity.AuditEntry
	for rows.Next() {
		e, err := scanAudit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// Count total de entradas.
func (r *AuditRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(1) FROM activity_log`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count activity: %w", err)
	}
	return n, nil
}

// DeleteByBatch borra la entrada del lote.
func (r *AuditRepo) DeleteByBatch(ctx context.Context, batchID entity.BatchID) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM activity_log WHERE batch_id = $1`, string(batchID)); err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	return nil
}

// SumAmount Σ amount de los tipos dados, sin los lotes que tienen compensación.
func (r *AuditRepo) SumAmount(ctx context.Context, types []entity.EventType) (entity.Amount, error) {
	if len(types) == 0 {
		return 0, nil
	}
	query := `
		SELECT COALESCE(SUM(a.amount), 0) FROM activity_log a
		WHERE a.event_type = ANY($1)
		AND NOT EXISTS (SELECT 1 FROM cashbox_movements m WHERE m.reversal_of = a.batch_id)`
	var sum decimal.Decimal
	if err := r.q.QueryRow(ctx, query, eventTypeStrings(types)).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum activity: %w", err)
	}
	return numericToAmount(sum), nil
}

func scanAudit(row pgx.Row) (*entity.AuditEntry, error) {
	var (
		e                            entity.AuditEntry
		batch, typ                   string
		amount                       decimal.Decimal
		playerRef, txRef, reversalOf *string
	)
	if err := row.Scan(&e.ID, &batch, &typ, &amount, &e.Note, &e.Staff,
		&playerRef, &txRef, &reversalOf, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.BatchID = entity.BatchID(batch)
	e.Type = entity.EventType(typ)
	e.Amount = numericToAmount(amount)
	e.PlayerRef = deref(playerRef)
	e.TransactionRef = deref(txRef)
	e.ReversalOf = entity.BatchID(deref(reversalOf))
	e.CreatedAt = e.CreatedAt.UTC()
	return &e, nil
}
