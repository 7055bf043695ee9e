package repository

import (
	"context"

	"github.com/jhoicas/cashbox-api/internal/domain/entity"
)

// AuditRepository puerto de la bitácora: una fila por lote.
type AuditRepository interface {
	Create(ctx context.Context, e *entity.AuditEntry) error
	GetByBatch(ctx context.Context, batchID entity.BatchID) (*entity.AuditEntry, error)
	List(ctx context.Context, limit, offset int) ([]*entity.AuditEntry, error)
	Count(ctx context.Context) (int, error)
	DeleteByBatch(ctx context.Context, batchID entity.BatchID) error
	// SumAmount suma los montos de los tipos dados, descontando reversas compensatorias.
	SumAmount(ctx context.Context, types []entity.EventType) (entity.Amount, error)
}
