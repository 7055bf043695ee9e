// Package sqlite implementa el ledger de caja sobre un archivo SQLite por sesión.
//
// El archivo se abre en modo WAL con BEGIN IMMEDIATE para toda transacción: hay un solo
// escritor a la vez y las lecturas no se bloquean. El esquema se crea al abrir.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jhoicas/cashbox-api/internal/domain"
)

// Querier lo común entre *sql.DB y *sql.Tx; los repositorios aceptan cualquiera de los dos.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
)

const schema = `
CREATE TABLE IF NOT EXISTS cashbox_float (
	universe     TEXT    NOT NULL CHECK (universe IN ('CURRENCY', 'CHIP')),
	denomination INTEGER NOT NULL CHECK (denomination > 0),
	quantity     INTEGER NOT NULL,
	updated_at   TEXT    NOT NULL,
	PRIMARY KEY (universe, denomination)
);

CREATE TABLE IF NOT EXISTS cashbox_movements (
	id              TEXT    PRIMARY KEY,
	universe        TEXT    NOT NULL CHECK (universe IN ('CURRENCY', 'CHIP')),
	denomination    INTEGER NOT NULL CHECK (denomination > 0),
	delta           INTEGER NOT NULL CHECK (delta <> 0),
	reason          TEXT    NOT NULL CHECK (reason IN ('BUYIN', 'CASHOUT', 'SALE', 'FLOAT_ADD', 'LOST_CHIP', 'EXCHANGE')),
	batch_id        TEXT    NOT NULL,
	player_ref      TEXT,
	transaction_ref TEXT,
	reversal_of     TEXT,
	notes           TEXT    NOT NULL DEFAULT '',
	created_at      TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_movements_universe_reason ON cashbox_movements (universe, reason, denomination);
CREATE INDEX IF NOT EXISTS idx_movements_batch ON cashbox_movements (batch_id);
CREATE INDEX IF NOT EXISTS idx_movements_tx_ref ON cashbox_movements (transaction_ref);
CREATE INDEX IF NOT EXISTS idx_movements_reversal_of ON cashbox_movements (reversal_of);

CREATE TABLE IF NOT EXISTS activity_log (
	id              TEXT    PRIMARY KEY,
	batch_id        TEXT    NOT NULL UNIQUE,
	event_type      TEXT    NOT NULL,
	amount_cents    INTEGER NOT NULL CHECK (amount_cents >= 0),
	note            TEXT    NOT NULL DEFAULT '',
	staff           TEXT    NOT NULL DEFAULT '',
	player_ref      TEXT,
	transaction_ref TEXT,
	reversal_of     TEXT,
	created_at      TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_activity_created ON activity_log (created_at);

CREATE TABLE IF NOT EXISTS app_settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// Open abre (o crea) el archivo de sesión y aplica el esquema.
// Cualquier fallo aquí es ErrStorageUnavailable.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: ruta de sesión vacía", domain.ErrStorageUnavailable)
	}
	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("%w: abrir %s: %v", domain.ErrStorageUnavailable, path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping %s: %v", domain.ErrStorageUnavailable, path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: esquema: %v", domain.ErrStorageUnavailable, err)
	}
	return db, nil
}

func dsn(path string) string {
	q := url.Values{}
	q.Set("_txlock", "immediate")
	q.Set("_busy_timeout", "5000")
	q.Set("_foreign_keys", "on")
	q.Set("_journal_mode", "WAL")
	return path + "?" + q.Encode()
}
