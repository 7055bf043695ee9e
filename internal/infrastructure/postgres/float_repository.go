package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/cashbox-api/internal/domain/entity"
	"github.com/jhoicas/cashbox-api/internal/domain/repository"
)

var _ repository.FloatRepository = (*FloatRepo)(nil)

// FloatRepo float base sobre PostgreSQL.
type FloatRepo struct {
	q Querier
}

// NewFloatRepository construye el adaptador. Pasar pool o tx (Querier).
func NewFloatRepository(q Querier) *FloatRepo {
	return &FloatRepo{q: q}
}

// List filas del universo, de mayor a menor denominación.
func (r *FloatRepo) List(ctx context.Context, universe entity.Universe) ([]entity.FloatBaseline, error) {
	rows, err := r.q.Query(ctx, `
		SELECT denomination, quantity, updated_at FROM cashbox_float
		WHERE universe = $1 ORDER BY denomination DESC`, string(universe))
	if err != nil {
		return nil, fmt.Errorf("list float: %w", err)
	}
	defer rows.Close()
	var out []entity.FloatBaseline
	for rows.Next() {
		f := entity.FloatBaseline{Universe: universe}
		var d int64
		if err := rows.Scan(&d, &f.Quantity, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan float: %w", err)
		}
		f.Denomination = entity.Denomination(d)
		out = append(out, f)
	}
	return out, rows.Err()
}

// Increment upsert quantity = quantity + delta.
func (r *FloatRepo) Increment(ctx context.Context, universe entity.Universe, d entity.Denomination, delta int64) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO cashbox_float (universe, denomination, quantity, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (universe, denomination)
		DO UPDATE SET quantity = cashbox_float.quantity + EXCLUDED.quantity, updated_at = now()`,
		string(universe), int64(d), delta)
	if err != nil {
		return fmt.Errorf("increment float: %w", err)
	}
	return nil
}

// Replace borra el float del universo y escribe el nuevo conteo.
func (r *FloatRepo) Replace(ctx context.Context, universe entity.Universe, counts entity.Quantities) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM cashbox_float WHERE universe = $1`, string(universe)); err != nil {
		return fmt.Errorf("replace float: %w", err)
	}
	for _, d := range counts.Denominations() {
		if _, err := r.q.Exec(ctx,
			`INSERT INTO cashbox_float (universe, denomination, quantity, updated_at) VALUES ($1, $2, $3, now())`,
			string(universe), int64(d), counts[d]); err != nil {
			return fmt.Errorf("replace float %d: %w", d, err)
		}
	}
	return nil
}
