// Package storage elige el backend del ledger según la configuración y arma el store.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jhoicas/cashbox-api/internal/application/ledger"
	"github.com/jhoicas/cashbox-api/internal/domain"
	"github.com/jhoicas/cashbox-api/internal/domain/repository"
	"github.com/jhoicas/cashbox-api/internal/infrastructure/postgres"
	"github.com/jhoicas/cashbox-api/internal/infrastructure/sqlite"
	"github.com/jhoicas/cashbox-api/pkg/config"
)

// Backend store del ledger, settings de la sesión y cierre de la conexión.
type Backend struct {
	Driver   string
	Ledger   *ledger.Store
	Settings repository.SettingsRepository
	close    func()
}

// Close libera la conexión; se puede llamar más de una vez.
func (b *Backend) Close() {
	if b.close != nil {
		b.close()
		b.close = nil
	}
}

// Open abre el backend configurado y aplica el esquema.
func Open(ctx context.Context, cfg *config.Config) (*Backend, error) {
	switch cfg.Store.Driver {
	case config.StoreSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Store.SessionPath), 0o755); err != nil {
			return nil, fmt.Errorf("%w: directorio de sesión: %v", domain.ErrStorageUnavailable, err)
		}
		db, err := sqlite.Open(ctx, cfg.Store.SessionPath)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Driver: config.StoreSQLite,
			Ledger: ledger.NewStore(
				sqlite.NewTxRunner(db),
				sqlite.NewMovementRepository(db),
				sqlite.NewFloatRepository(db),
				sqlite.NewAuditRepository(db),
			),
			Settings: sqlite.NewSettingsRepository(db),
			close:    func() { _ = db.Close() },
		}, nil
	case config.StorePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Driver: config.StorePostgres,
			Ledger: ledger.NewStore(
				postgres.NewTxRunner(pool),
				postgres.NewMovementRepository(pool),
				postgres.NewFloatRepository(pool),
				postgres.NewAuditRepository(pool),
			),
			Settings: postgres.NewSettingsRepository(pool),
			close:    pool.Close,
		}, nil
	default:
		return nil, fmt.Errorf("storage: driver desconocido %q", cfg.Store.Driver)
	}
}
