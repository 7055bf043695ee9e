package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/cashbox-api/internal/domain/entity"
	"github.com/jhoicas/cashbox-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación sobre SQLite (usable con db o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar db o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, universe, denomination, delta, reason, batch_id, player_ref, transaction_ref, reversal_of, notes, created_at`

// Create persiste una fila del log.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	query := `INSERT INTO cashbox_movements (` + movementColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.q.ExecContext(ctx, query,
		m.ID, string(m.Universe), int64(m.Denomination), m.Delta, string(m.Reason), string(m.BatchID),
		nullString(m.PlayerRef), nullString(m.TransactionRef), nullString(string(m.ReversalOf)),
		m.Notes, formatTime(m.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("create movement: %w", err)
	}
	return nil
}

// SumByDenomination Σ delta agrupado por denominación para el universo y las razones dadas.
func (r *MovementRepo) SumByDenomination(ctx context.Context, universe entity.Universe, reasons entity.ReasonFilter) (entity.Quantities, error) {
	rs := reasons.Strings()
	out := entity.Quantities{}
	if len(rs) == 0 {
		return out, nil
	}
	query := `
		SELECT denomination, COALESCE(SUM(delta), 0)
		FROM cashbox_movements
		WHERE universe = ? AND reason IN (` + placeholders(len(rs)) + `)
		GROUP BY denomination`
	args := make([]any, 0, len(rs)+1)
	args = append(args, string(universe))
	for _, s := range rs {
		args = append(args, s)
	}
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sum movements: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var d, sum int64
		if err := rows.Scan(&d, &sum); err != nil {
			return nil, fmt.Errorf("scan sum: %w", err)
		}
		out[entity.Denomination(d)] = sum
	}
	return out, rows.Err()
}

// ListByBatch filas de un lote, en orden de inserción.
func (r *MovementRepo) ListByBatch(ctx context.Context, batchID entity.BatchID) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM cashbox_movements WHERE batch_id = ? ORDER BY rowid`
	return r.list(ctx, query, string(batchID))
}

// ListByTransactionRef filas originales de una referencia (excluye compensaciones).
func (r *MovementRepo) ListByTransactionRef(ctx context.Context, ref string) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM cashbox_movements
		WHERE transaction_ref = ? AND reversal_of IS NULL ORDER BY rowid`
	return r.list(ctx, query, ref)
}

// IsReversed existe alguna fila compensatoria del lote.
func (r *MovementRepo) IsReversed(ctx context.Context, batchID entity.BatchID) (bool, error) {
	var n int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM cashbox_movements WHERE reversal_of = ?`, string(batchID)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("is reversed: %w", err)
	}
	return n > 0, nil
}

// DeleteByBatch borrado físico (reversa administrativa).
func (r *MovementRepo) DeleteByBatch(ctx context.Context, batchID entity.BatchID) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM cashbox_movements WHERE batch_id = ?`, string(batchID))
	if err != nil {
		return 0, fmt.Errorf("delete movements: %w", err)
	}
	return res.RowsAffected()
}

func (r *MovementRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Movement, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.Movement
	for rows.Next() {
		var (
			m                            entity.Movement
			universe, reason, batch, ts  string
			denom                        int64
			playerRef, txRef, reversalOf sql.NullString
		)
		if err := rows.Scan(&m.ID, &universe, &denom, &m.Delta, &reason, &batch,
			&playerRef, &txRef, &reversalOf, &m.Notes, &ts); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		m.Universe = entity.Universe(universe)
		m.Denomination = entity.Denomination(denom)
		m.Reason = entity.Reason(reason)
		m.BatchID = entity.BatchID(batch)
		m.PlayerRef = playerRef.String
		m.TransactionRef = txRef.String
		m.ReversalOf = entity.BatchID(reversalOf.String)
		m.CreatedAt = parseTime(ts)
		list = append(list, &m)
	}
	return list, rows.Err()
}
