package repository

import (
	"context"

	"github.com/jhoicas/cashbox-api/internal/domain/entity"
)

// FloatRepository puerto del float base por universo y denominación.
type FloatRepository interface {
	List(ctx context.Context, universe entity.Universe) ([]entity.FloatBaseline, error)
	// Increment suma delta (puede ser negativo) a la fila; la crea si no existe.
	Increment(ctx context.Context, universe entity.Universe, d entity.Denomination, delta int64) error
	// Replace reemplaza el float completo del universo (apertura de caja).
	Replace(ctx context.Context, universe entity.Universe, counts entity.Quantities) error
}
