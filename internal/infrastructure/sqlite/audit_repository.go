package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/cashbox-api/internal/domain"
	"github.com/jhoicas/cashbox-api/internal/domain/entity"
	"github.com/jhoicas/cashbox-api/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo bitácora de actividad sobre SQLite.
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construye el adaptador. Pasar db o tx (Querier).
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

const auditColumns = `id, batch_id, event_type, amount_cents, note, staff, player_ref, transaction_ref, reversal_of, created_at`

// Create inserta la entrada; un batch_id repetido devuelve ErrConflict.
func (r *AuditRepo) Create(ctx context.Context, e *entity.AuditEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := r.q.ExecContext(ctx, `INSERT INTO activity_log (`+auditColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, string(e.BatchID), string(e.Type), int64(e.Amount), e.Note, e.Staff,
		nullString(e.PlayerRef), nullString(e.TransactionRef), nullString(string(e.ReversalOf)),
		formatTime(e.CreatedAt),
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
	row := r.q.QueryRowContext(ctx, `SELECT `+auditColumns+` FROM activity_log WHERE batch_id = ?`, string(batchID))
	e, err := scanAudit(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get activity: %w", err)
	}
	return e, nil
}

// List más reciente primero.
func (r *AuditRepo) List(ctx context.Context, limit, offset int) ([]*entity.AuditEntry, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+auditColumns+` FROM activity_log
		ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?`, limit, offset)
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
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(1) FROM activity_log`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count activity: %w", err)
	}
	return n, nil
}

// DeleteByBatch borra la entrada del lote.
func (r *AuditRepo) DeleteByBatch(ctx context.Context, batchID entity.BatchID) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM activity_log WHERE batch_id = ?`, string(batchID)); err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	return nil
}

// SumAmount Σ amount de los tipos dados, sin los lotes que tienen compensación.
func (r *AuditRepo) SumAmount(ctx context.Context, types []entity.EventType) (entity.Amount, error) {
	if len(types) == 0 {
		return 0, nil
	}
	args := make([]any, len(types))
	for i, t := range types {
		args[i] = string(t)
	}
	query := `
		SELECT COALESCE(SUM(amount_cents), 0) FROM activity_log
		WHERE event_type IN (` + placeholders(len(types)) + `)
		AND batch_id NOT IN (SELECT reversal_of FROM cashbox_movements WHERE reversal_of IS NOT NULL)`
	var sum int64
	if err := r.q.QueryRowContext(ctx, query, args...).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum activity: %w", err)
	}
	return entity.Amount(sum), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAudit(s rowScanner) (*entity.AuditEntry, error) {
	var (
		e                            entity.AuditEntry
		batch, typ, ts               string
		amount                       int64
		playerRef, txRef, reversalOf sql.NullString
	)
	if err := s.Scan(&e.ID, &batch, &typ, &amount, &e.Note, &e.Staff,
		&playerRef, &txRef, &reversalOf, &ts); err != nil {
		return nil, err
	}
	e.BatchID = entity.BatchID(batch)
	e.Type = entity.EventType(typ)
	e.Amount = entity.Amount(amount)
	e.PlayerRef = playerRef.String
	e.TransactionRef = txRef.String
	e.ReversalOf = entity.BatchID(reversalOf.String)
	e.CreatedAt = parseTime(ts)
	return &e, nil
}
