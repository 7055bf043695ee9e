package ledger

import (
	"context"

	"github.com/jhoicas/cashbox-api/internal/domain/entity"
	"github.com/jhoicas/cashbox-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de escritura, pasando repositorios atados a esa tx.
// La implementación debe serializar escritores (BEGIN IMMEDIATE en SQLite, advisory lock en PostgreSQL)
// para que la revalidación de guardas y la inserción no se intercalen con otro lote.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		floatRepo repository.FloatRepository,
		auditRepo repository.AuditRepository,
	) error) error
}

// BatchAppender lo que necesita el Recorder del Store.
type BatchAppender interface {
	AppendBatch(ctx context.Context, b entity.Batch) error
}
