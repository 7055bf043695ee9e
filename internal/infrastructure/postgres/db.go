// Package postgres implementa el ledger de caja sobre PostgreSQL con pgx.
//
// Cada transacción de escritura toma un advisory lock de transacción, así la
// revalidación de guardas y los inserts quedan serializados entre procesos.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/cashbox-api/internal/domain"
)

// Querier lo común entre *pgxpool.Pool y pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var (
	_ Querier = (*pgxpool.Pool)(nil)
	_ Querier = (pgx.Tx)(nil)
)

const schema = `
CREATE TABLE IF NOT EXISTS cashbox_float (
	universe     TEXT        NOT NULL CHECK (universe IN ('CURRENCY', 'CHIP')),
	denomination BIGINT      NOT NULL CHECK (denomination > 0),
	quantity     BIGINT      NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (universe, denomination)
);

CREATE TABLE IF NOT EXISTS cashbox_movements (
	seq             BIGINT GENERATED ALWAYS AS IDENTITY,
	id              TEXT        PRIMARY KEY,
	universe        TEXT        NOT NULL CHECK (universe IN ('CURRENCY', 'CHIP')),
	denomination    BIGINT      NOT NULL CHECK (denomination > 0),
	delta           BIGINT      NOT NULL CHECK (delta <> 0),
	reason          TEXT        NOT NULL CHECK (reason IN ('BUYIN', 'CASHOUT', 'SALE', 'FLOAT_ADD', 'LOST_CHIP', 'EXCHANGE')),
	batch_id        TEXT        NOT NULL,
	player_ref      TEXT,
	transaction_ref TEXT,
	reversal_of     TEXT,
	notes           TEXT        NOT NULL DEFAULT '',
	created_at      TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_movements_universe_reason ON cashbox_movements (universe, reason, denomination);
CREATE INDEX IF NOT EXISTS idx_movements_batch ON cashbox_movements (batch_id);
CREATE INDEX IF NOT EXISTS idx_movements_tx_ref ON cashbox_movements (transaction_ref);
CREATE INDEX IF NOT EXISTS idx_movements_reversal_of ON cashbox_movements (reversal_of);

CREATE TABLE IF NOT EXISTS activity_log (
	seq             BIGINT GENERATED ALWAYS AS IDENTITY,
	id              TEXT          PRIMARY KEY,
	batch_id        TEXT          NOT NULL UNIQUE,
	event_type      TEXT          NOT NULL,
	amount          NUMERIC(16,2) NOT NULL CHECK (amount >= 0),
	note            TEXT          NOT NULL DEFAULT '',
	staff           TEXT          NOT NULL DEFAULT '',
	player_ref      TEXT,
	transaction_ref TEXT,
	reversal_of     TEXT,
	created_at      TIMESTAMPTZ   NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_activity_created ON activity_log (created_at);

CREATE TABLE IF NOT EXISTS app_settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// Migrate aplica el esquema (idempotente).
func Migrate(ctx context.Context, q Querier) error {
	if _, err := q.Exec(ctx, schema); err != nil {
		return fmt.Errorf("%w: esquema: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}
