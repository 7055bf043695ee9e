package repository

import (
	"context"

	"github.com/jhoicas/cashbox-api/internal/domain/entity"
)

// MovementRepository puerto de persistencia del log de movimientos (append-mostly).
type MovementRepository interface {
	Create(ctx context.Context, m *entity.Movement) error
	// SumByDenomination Σ delta por denominación de un universo, solo razones incluidas.
	SumByDenomination(ctx context.Context, universe entity.Universe, reasons entity.ReasonFilter) (entity.Quantities, error)
	ListByBatch(ctx context.Context, batchID entity.BatchID) ([]*entity.Movement, error)
	// ListByTransactionRef filas originales (no compensatorias) con esa referencia.
	ListByTransactionRef(ctx context.Context, ref string) ([]*entity.Movement, error)
	// IsReversed indica si existe una fila compensatoria que apunte al lote.
	IsReversed(ctx context.Context, batchID entity.BatchID) (bool, error)
	DeleteByBatch(ctx context.Context, batchID entity.BatchID) (int64, error)
}
