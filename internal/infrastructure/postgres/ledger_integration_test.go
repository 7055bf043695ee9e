package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cashbox-api/internal/application/ledger"
	"github.com/jhoicas/cashbox-api/internal/domain"
	"github.com/jhoicas/cashbox-api/internal/domain/entity"
	"github.com/jhoicas/cashbox-api/internal/infrastructure/postgres"
	"github.com/jhoicas/cashbox-api/pkg/config"
)

// Requiere TEST_DATABASE_URL apuntando a una base descartable: las tablas se vacían.
func newStore(t *testing.T) (*ledger.Store, *postgres.SettingsRepo) {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL no definido")
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: url})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `TRUNCATE cashbox_float, cashbox_movements, activity_log, app_settings`)
	require.NoError(t, err)

	store := ledger.NewStore(
		postgres.NewTxRunner(pool),
		postgres.NewMovementRepository(pool),
		postgres.NewFloatRepository(pool),
		postgres.NewAuditRepository(pool),
	)
	return store, postgres.NewSettingsRepository(pool)
}

func TestPostgres_CobroYReversa(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()
	require.NoError(t, store.StockFloat(ctx, entity.UniverseCurrency, entity.Quantities{5000: 2, 2000: 2}))

	plan := entity.Quantities{5000: 1, 2000: 1}
	lines := entity.LinesFromCounts(entity.UniverseChip, entity.Quantities{2500: 2, 200: 10}, +1, entity.ReasonCashOut)
	lines = append(lines, entity.LinesFromCounts(entity.UniverseCurrency, plan, -1, entity.ReasonCashOut)...)
	id, err := ledger.NewRecorder(store).Record(ctx, ledger.Event{
		Type:   entity.EventCashOut,
		Amount: plan.Total(),
		Lines:  lines,
		Guards: []entity.Guard{{Universe: entity.UniverseCurrency, Reasons: entity.SpendableCash, Need: plan}},
	})
	require.NoError(t, err)

	snap, err := store.Availability(ctx, ledger.SpendableCashQuery)
	require.NoError(t, err)
	assert.Equal(t, entity.Quantities{5000: 1, 2000: 1}, snap.Counts)

	detail, err := store.Batch(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, entity.Amount(7000), detail.Audit.Amount)
	assert.Len(t, detail.Movements, 4)

	_, err = store.ReverseBatch(ctx, entity.ReversalTarget{BatchID: id}, entity.ReversalCompensate)
	require.NoError(t, err)
	snap, err = store.Availability(ctx, ledger.SpendableCashQuery)
	require.NoError(t, err)
	assert.Equal(t, entity.Quantities{5000: 2, 2000: 2}, snap.Counts)

	_, err = store.ReverseBatch(ctx, entity.ReversalTarget{BatchID: id}, entity.ReversalCompensate)
	assert.ErrorIs(t, err, domain.ErrAlreadyReversed)
}

func TestPostgres_Settings(t *testing.T) {
	_, settings := newStore(t)
	ctx := context.Background()

	v, err := settings.Get(ctx, "clave")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, settings.Set(ctx, "clave", "a"))
	require.NoError(t, settings.Set(ctx, "clave", "b"))
	v, err = settings.Get(ctx, "clave")
	require.NoError(t, err)
	assert.Equal(t, "b", v)
}
