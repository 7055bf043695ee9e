package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/cashbox-api/internal/domain/entity"
	"github.com/jhoicas/cashbox-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación sobre PostgreSQL (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, universe, denomination, delta, reason, batch_id, player_ref, transaction_ref, reversal_of, notes, created_at`

// Create persiste una fila del log.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO cashbox_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		m.ID, string(m.Universe), int64(m.Denomination), m.Delta, string(m.Reason), string(m.BatchID),
		textOrNil(m.PlayerRef), textOrNil(m.TransactionRef), textOrNil(string(m.ReversalOf)),
		m.Notes, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create movement: %w", err)
	}
	return nil
}

// SumByDenomination Σ delta agrupado por denominación para el universo y las razones dadas.
func (r *MovementRepo) SumByDenomination(ctx context.Context, universe entity.Universe, reasons entity.ReasonFilter) (entity.Quantities, error) {
	out := entity.Quantities{}
	if reasons.IsEmpty() {
		return out, nil
	}
	query := `
		SELECT denomination, COALESCE(SUM(delta), 0)::BIGINT
		FROM cashbox_movements
		WHERE universe = $1 AND reason = ANY($2)
		GROUP BY denomination`
	rows, err := r.q.Query(ctx, query, string(universe), reasons.Strings())
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
	query := `SELECT ` + movementColumns + ` FROM cashbox_movements WHERE batch_id = $1 ORDER BY seq`
	return r.list(ctx, query, string(batchID))
}

// ListByTransactionRef filas originales de una referencia (excluye compensaciones).
func (r *MovementRepo) ListByTransactionRef(ctx context.Context, ref string) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM cashbox_movements
		WHERE transaction_ref = $1 AND reversal_of IS NULL ORDER BY seq`
	return r.list(ctx, query, ref)
}

// IsReversed existe alguna fila compensatoria del lote.
func (r *MovementRepo) IsReversed(ctx context.Context, batchID entity.BatchID) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM cashbox_movements WHERE reversal_of = $1)`, string(batchID)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("is reversed: %w", err)
	}
	return exists, nil
}

// DeleteByBatch borrado físico (reversa administrativa).
func (r *MovementRepo) DeleteByBatch(ctx context.Context, batchID entity.BatchID) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM cashbox_movements WHERE batch_id = $1`, string(batchID))
	if err != nil {
		return 0, fmt.Errorf("delete movements: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *MovementRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Movement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.Movement
	for rows.Next() {
		var (
			m                            entity.Movement
			universe, reason, batch      string
			denom                        int64
			playerRef, txRef, reversalOf *string
		)
		if err := rows.Scan(&m.ID, &universe, &denom, &m.Delta, &reason, &batch,
			&playerRef, &txRef, &reversalOf, &m.Notes, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		m.Universe = entity.Universe(universe)
		m.Denomination = entity.Denomination(denom)
		m.Reason = entity.Reason(reason)
		m.BatchID = entity.BatchID(batch)
		m.PlayerRef = deref(playerRef)
		m.TransactionRef = deref(txRef)
		m.ReversalOf = entity.BatchID(deref(reversalOf))
		m.CreatedAt = m.CreatedAt.UTC()
		list = append(list, &m)
	}
	return list, rows.Err()
}
