package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/cashbox-api/internal/domain/entity"
	"github.com/jhoicas/cashbox-api/internal/domain/repository"
)

var _ repository.FloatRepository = (*FloatRepo)(nil)

// FloatRepo float base sobre SQLite.
type FloatRepo struct {
	q Querier
}

// NewFloatRepository construye el adaptador. Pasar db o tx (Querier).
func NewFloatRepository(q Querier) *FloatRepo {
	return &FloatRepo{q: q}
}

// List filas del universo, de mayor a menor denominación.
func (r *FloatRepo) List(ctx context.Context, universe entity.Universe) ([]entity.FloatBaseline, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT denomination, quantity, updated_at FROM cashbox_float
		WHERE universe = ? ORDER BY denomination DESC`, string(universe))
	if err != nil {
		return nil, fmt.Errorf("list float: %w", err)
	}
	defer rows.Close()
	var out []entity.FloatBaseline
	for rows.Next() {
		var (
			d, qty int64
			ts     string
		)
		if err := rows.Scan(&d, &qty, &ts); err != nil {
			return nil, fmt.Errorf("scan float: %w", err)
		}
		out = append(out, entity.FloatBaseline{
			Universe: universe, Denomination: entity.Denomination(d), Quantity: qty, UpdatedAt: parseTime(ts),
		})
	}
	return out, rows.Err()
}

// Increment upsert quantity = quantity + delta.
func (r *FloatRepo) Increment(ctx context.Context, universe entity.Universe, d entity.Denomination, delta int64) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO cashbox_float (universe, denomination, quantity, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (universe, denomination)
		DO UPDATE SET quantity = quantity + excluded.quantity, updated_at = excluded.updated_at`,
		string(universe), int64(d), delta, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("increment float: %w", err)
	}
	return nil
}

// Replace borra el float del universo y escribe el nuevo conteo.
func (r *FloatRepo) Replace(ctx context.Context, universe entity.Universe, counts entity.Quantities) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM cashbox_float WHERE universe = ?`, string(universe)); err != nil {
		return fmt.Errorf("replace float: %w", err)
	}
	now := formatTime(time.Now())
	for _, d := range counts.Denominations() {
		if _, err := r.q.ExecContext(ctx,
			`INSERT INTO cashbox_float (universe, denomination, quantity, updated_at) VALUES (?, ?, ?, ?)`,
			string(universe), int64(d), counts[d], now); err != nil {
			return fmt.Errorf("replace float %d: %w", d, err)
		}
	}
	return nil
}
