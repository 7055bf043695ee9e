package cashbox_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cashbox-api/internal/application/cashbox"
	"github.com/jhoicas/cashbox-api/internal/application/ledger"
	"github.com/jhoicas/cashbox-api/internal/domain"
	"github.com/jhoicas/cashbox-api/internal/domain/entity"
	"github.com/jhoicas/cashbox-api/internal/infrastructure/sqlite"
	"github.com/jhoicas/cashbox-api/pkg/jwt"
	"github.com/jhoicas/cashbox-api/pkg/metrics"
	"github.com/jhoicas/cashbox-api/pkg/money"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const adminPassword = "1234"

type fakeReports struct {
	last *cashbox.SessionReport
}

func (f *fakeReports) GenerateSessionReport(_ context.Context, r *cashbox.SessionReport) ([]byte, error) {
	f.last = r
	return []byte("%PDF-fake"), nil
}

type fixture struct {
	svc     *cashbox.Service
	metrics *metrics.Metrics
	reports *fakeReports
}

func newService(t *testing.T, float entity.Quantities) fixture {
	t.Helper()
	ctx := context.Background()
	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := ledger.NewStore(
		sqlite.NewTxRunner(db),
		sqlite.NewMovementRepository(db),
		sqlite.NewFloatRepository(db),
		sqlite.NewAuditRepository(db),
	)
	currency, err := entity.NewDenominationSet(entity.UniverseCurrency, entity.DefaultCurrencyDenominations)
	require.NoError(t, err)
	chips, err := entity.NewDenominationSet(entity.UniverseChip, entity.DefaultChipDenominations)
	require.NoError(t, err)
	fmtr, err := money.NewFormatter("AUD", "en-AU")
	require.NoError(t, err)

	f := fixture{metrics: metrics.New(metrics.DefaultConfig()), reports: &fakeReports{}}
	f.svc = cashbox.NewService(cashbox.Deps{
		Ledger:   store,
		Recorder: ledger.NewRecorder(store),
		Settings: sqlite.NewSettingsRepository(db),
		Currency: currency,
		Chips:    chips,
		Money:    fmtr,
		Reports:  f.reports,
		Metrics:  f.metrics,
		JWT:      cashbox.JWTConfig{Secret: "secreto-de-prueba", ExpMinutes: 60, Issuer: "cashbox-test"},
	})
	require.NoError(t, f.svc.EnsureAdminPassword(ctx, adminPassword))
	if len(float) > 0 {
		require.NoError(t, f.svc.StockFloat(ctx, float, "caja"))
	}
	return f
}

func (f fixture) summary(t *testing.T) *cashbox.Summary {
	t.Helper()
	s, err := f.svc.Summary(context.Background())
	require.NoError(t, err)
	return s
}

// ──────────────────────────────────────────────────────────────────────────────
// Cobro de fichas
// ──────────────────────────────────────────────────────────────────────────────

func TestCashOut_PlanYConfirmacion(t *testing.T) {
	f := newService(t, entity.Quantities{2000: 1, 1000: 1, 500: 2})
	ctx := context.Background()
	in := cashbox.CashOutInput{
		Refs:  cashbox.Refs{Staff: "ana", PlayerRef: "M-17"},
		Chips: entity.Quantities{2500: 1, 500: 3},
	}

	quote, err := f.svc.PlanCashOut(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, entity.Amount(4000), quote.Target)
	assert.Equal(t, entity.Quantities{2000: 1, 1000: 1, 500: 2}, quote.Plan.Counts)

	id, err := f.svc.ConfirmCashOut(ctx, in, quote.Plan.Counts)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	sum := f.summary(t)
	assert.Empty(t, sum.Cash.Counts)
	assert.Equal(t, entity.Quantities{2500: 1, 500: 3}, sum.ChipsReceived.Counts)
	assert.Equal(t, entity.Amount(0), sum.SalesTotal)

	detail, err := f.svc.Batch(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, entity.EventCashOut, detail.Audit.Type)
	assert.Equal(t, "M-17", detail.Audit.PlayerRef)
	assert.Contains(t, detail.Audit.Note, "AUD 40.00")
}

func TestCashOut_ConConsumo_SumaAVentas(t *testing.T) {
	f := newService(t, entity.Quantities{2000: 1, 1000: 1})
	ctx := context.Background()
	in := cashbox.CashOutInput{Chips: entity.Quantities{2500: 2}, FoodCents: 2000}

	quote, err := f.svc.PlanCashOut(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, entity.Amount(3000), quote.Target)

	id, err := f.svc.ConfirmCashOut(ctx, in, quote.Plan.Counts)
	require.NoError(t, err)

	detail, err := f.svc.Batch(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, entity.EventCashOutSale, detail.Audit.Type)
	assert.Equal(t, entity.Amount(2000), detail.Audit.Amount)
	assert.Equal(t, entity.Amount(2000), f.summary(t).SalesTotal)
}

func TestCashOut_Errores(t *testing.T) {
	f := newService(t, entity.Quantities{5000: 1})
	ctx := context.Background()

	_, err := f.svc.PlanCashOut(ctx, cashbox.CashOutInput{Chips: entity.Quantities{2500: 1}})
	assert.ErrorIs(t, err, domain.ErrInfeasiblePayout, "no hay billetes menores a 50")

	_, err = f.svc.PlanCashOut(ctx, cashbox.CashOutInput{Chips: entity.Quantities{2500: 1}, FoodCents: 3000})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount, "el consumo supera las fichas")

	_, err = f.svc.PlanCashOut(ctx, cashbox.CashOutInput{Chips: entity.Quantities{2000: 1}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "20 no es una ficha")

	_, err = f.svc.PlanCashOut(ctx, cashbox.CashOutInput{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	in := cashbox.CashOutInput{Chips: entity.Quantities{10000: 1}}
	_, err = f.svc.ConfirmCashOut(ctx, in, entity.Quantities{5000: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "el plan no cubre el pago")
	assert.Equal(t, entity.Quantities{5000: 1}, f.summary(t).Cash.Counts)
}

func TestCashOut_DisponibilidadCambiaEntrePlanYConfirmacion(t *testing.T) {
	f := newService(t, entity.Quantities{5000: 1})
	ctx := context.Background()
	in := cashbox.CashOutInput{Chips: entity.Quantities{2500: 2}}

	first, err := f.svc.PlanCashOut(ctx, in)
	require.NoError(t, err)
	second, err := f.svc.PlanCashOut(ctx, in)
	require.NoError(t, err)

	_, err = f.svc.ConfirmCashOut(ctx, in, first.Plan.Counts)
	require.NoError(t, err)
	_, err = f.svc.ConfirmCashOut(ctx, in, second.Plan.Counts)
	assert.ErrorIs(t, err, domain.ErrConcurrentAvailabilityChanged)

	assert.Empty(t, f.summary(t).Cash.Counts)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.GuardRejections.WithLabelValues(string(entity.UniverseCurrency))))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.BatchesTotal.WithLabelValues("CASHOUT", metrics.OutcomeRejected)))
}

// ──────────────────────────────────────────────────────────────────────────────
// Compra de fichas y ventas
// ──────────────────────────────────────────────────────────────────────────────

func TestBuyIn_VueltoConBilletesEntregados(t *testing.T) {
	f := newService(t, nil)
	ctx := context.Background()
	in := cashbox.BuyInInput{Tendered: entity.Quantities{2000: 2}, ChipsCents: 2000}

	quote, err := f.svc.PlanBuyIn(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, entity.Quantities{2000: 1}, quote.Plan.Counts)

	_, err = f.svc.ConfirmBuyIn(ctx, in, quote.Plan.Counts)
	require.NoError(t, err)
	assert.Equal(t, entity.Quantities{2000: 1}, f.summary(t).Cash.Counts)
}

func TestBuyIn_EntregadoInsuficiente(t *testing.T) {
	f := newService(t, nil)
	_, err := f.svc.PlanBuyIn(context.Background(), cashbox.BuyInInput{Tendered: entity.Quantities{1000: 1}, ChipsCents: 2000})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.PlanBuyIn(context.Background(), cashbox.BuyInInput{Tendered: entity.Quantities{1000: 1}})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestSale_VueltoYTotalDeVentas(t *testing.T) {
	f := newService(t, entity.Quantities{500: 1, 200: 2, 100: 1})
	ctx := context.Background()
	in := cashbox.SaleInput{TotalCents: 1200, Cash: entity.Quantities{2000: 1}, Description: "2 cafés"}

	quote, err := f.svc.PlanSale(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, entity.Amount(800), quote.Target)
	assert.Equal(t, entity.Quantities{500: 1, 200: 1, 100: 1}, quote.Plan.Counts)

	_, err = f.svc.ConfirmSale(ctx, in, quote.Plan.Counts)
	require.NoError(t, err)

	sum := f.summary(t)
	assert.Equal(t, entity.Quantities{2000: 1, 200: 1}, sum.Cash.Counts)
	assert.Equal(t, entity.Amount(1200), sum.SalesTotal)
}

func TestSale_PagadaConFichasSinVuelto(t *testing.T) {
	f := newService(t, nil)
	ctx := context.Background()
	in := cashbox.SaleInput{TotalCents: 500, Chips: entity.Quantities{500: 1}}

	quote, err := f.svc.PlanSale(ctx, in)
	require.NoError(t, err)
	assert.True(t, quote.Plan.IsEmpty())

	_, err = f.svc.ConfirmSale(ctx, in, quote.Plan.Counts)
	require.NoError(t, err)
	sum := f.summary(t)
	assert.Equal(t, entity.Quantities{500: 1}, sum.ChipsReceived.Counts)
	assert.Equal(t, entity.Amount(500), sum.SalesTotal)
}

// ──────────────────────────────────────────────────────────────────────────────
// Float, fichas perdidas y cambio
// ──────────────────────────────────────────────────────────────────────────────

func TestAddFloat_AumentaBaseYEfectivo(t *testing.T) {
	f := newService(t, entity.Quantities{1000: 1})
	_, err := f.svc.AddFloat(context.Background(), entity.Quantities{1000: 2, 500: 1}, cashbox.Refs{Staff: "ana"})
	require.NoError(t, err)

	sum := f.summary(t)
	assert.Equal(t, entity.Quantities{1000: 3, 500: 1}, sum.Float)
	assert.Equal(t, entity.Quantities{1000: 3, 500: 1}, sum.Cash.Counts)
	assert.Equal(t, entity.Amount(3500), sum.FloatTotal())
}

func TestRecordLostChips_SonPropinas(t *testing.T) {
	f := newService(t, nil)
	_, err := f.svc.RecordLostChips(context.Background(), entity.Quantities{25: 4}, cashbox.Refs{})
	require.NoError(t, err)

	sum := f.summary(t)
	assert.Equal(t, entity.Quantities{25: 4}, sum.Tips.Counts)
	assert.Equal(t, entity.Quantities{25: 4}, sum.ChipsReceived.Counts)
	assert.Empty(t, sum.Cash.Counts)
}

func TestExchange(t *testing.T) {
	f := newService(t, entity.Quantities{5000: 1})
	ctx := context.Background()

	_, err := f.svc.Exchange(ctx, cashbox.ExchangeInput{Give: entity.Quantities{5000: 1}, Receive: entity.Quantities{2000: 2}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "totales distintos")

	_, err = f.svc.Exchange(ctx, cashbox.ExchangeInput{Give: entity.Quantities{10000: 1}, Receive: entity.Quantities{5000: 2}})
	assert.ErrorIs(t, err, domain.ErrConcurrentAvailabilityChanged, "no hay billete de 100 para entregar")

	_, err = f.svc.Exchange(ctx, cashbox.ExchangeInput{Give: entity.Quantities{5000: 1}, Receive: entity.Quantities{2000: 2, 1000: 1}})
	require.NoError(t, err)
	assert.Equal(t, entity.Quantities{2000: 2, 1000: 1}, f.summary(t).Cash.Counts)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reversas y administración
// ──────────────────────────────────────────────────────────────────────────────

func TestReverse_RequiereContraseña(t *testing.T) {
	f := newService(t, entity.Quantities{5000: 1})
	ctx := context.Background()
	in := cashbox.CashOutInput{Chips: entity.Quantities{2500: 2}}
	id, err := f.svc.ConfirmCashOut(ctx, in, entity.Quantities{5000: 1})
	require.NoError(t, err)

	_, err = f.svc.Reverse(ctx, cashbox.ReverseInput{BatchID: id, Password: "mala"})
	assert.ErrorIs(t, err, domain.ErrInvalidPassword)
	assert.Empty(t, f.summary(t).Cash.Counts, "la reversa rechazada no cambia nada")

	revID, err := f.svc.Reverse(ctx, cashbox.ReverseInput{BatchID: id, Password: adminPassword, Staff: "jefe"})
	require.NoError(t, err)
	assert.NotEqual(t, id, revID)

	sum := f.summary(t)
	assert.Equal(t, entity.Quantities{5000: 1}, sum.Cash.Counts)
	assert.Empty(t, sum.ChipsReceived.Counts)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ReversalsTotal.WithLabelValues("COMPENSATE", metrics.OutcomeOK)))
}

func TestReverse_HardDeleteYObjetivoInvalido(t *testing.T) {
	f := newService(t, nil)
	ctx := context.Background()
	id, err := f.svc.AddFloat(ctx, entity.Quantities{1000: 1}, cashbox.Refs{})
	require.NoError(t, err)

	_, err = f.svc.Reverse(ctx, cashbox.ReverseInput{Password: adminPassword})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	got, err := f.svc.Reverse(ctx, cashbox.ReverseInput{BatchID: id, Password: adminPassword, HardDelete: true})
	require.NoError(t, err)
	assert.Equal(t, id, got)

	sum := f.summary(t)
	assert.Empty(t, sum.Float.Compact())
	assert.Empty(t, sum.Cash.Counts)

	_, err = f.svc.Batch(ctx, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLogin_Roles(t *testing.T) {
	f := newService(t, nil)
	ctx := context.Background()

	res, err := f.svc.Login(ctx, "ana", "")
	require.NoError(t, err)
	assert.Equal(t, jwt.RoleDealer, res.Role)
	staff, role, err := jwt.Parse("secreto-de-prueba", res.Token)
	require.NoError(t, err)
	assert.Equal(t, "ana", staff)
	assert.Equal(t, jwt.RoleDealer, role)

	res, err = f.svc.Login(ctx, "jefe", adminPassword)
	require.NoError(t, err)
	assert.Equal(t, jwt.RoleAdmin, res.Role)

	_, err = f.svc.Login(ctx, "jefe", "otra")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = f.svc.Login(ctx, "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestChangeAdminPassword(t *testing.T) {
	f := newService(t, nil)
	ctx := context.Background()

	assert.ErrorIs(t, f.svc.ChangeAdminPassword(ctx, "mala", "nueva-clave"), domain.ErrInvalidPassword)
	assert.ErrorIs(t, f.svc.ChangeAdminPassword(ctx, adminPassword, "123"), domain.ErrInvalidInput)
	require.NoError(t, f.svc.ChangeAdminPassword(ctx, adminPassword, "nueva-clave"))

	assert.ErrorIs(t, f.svc.VerifyAdminPassword(ctx, adminPassword), domain.ErrInvalidPassword)
	assert.NoError(t, f.svc.VerifyAdminPassword(ctx, "nueva-clave"))

	require.NoError(t, f.svc.EnsureAdminPassword(ctx, adminPassword), "no pisa un hash existente")
	assert.NoError(t, f.svc.VerifyAdminPassword(ctx, "nueva-clave"))
}

// ──────────────────────────────────────────────────────────────────────────────
// Resumen y reporte
// ──────────────────────────────────────────────────────────────────────────────

func TestReport_ArmaDatosFormateados(t *testing.T) {
	f := newService(t, entity.Quantities{5000: 1})
	ctx := context.Background()
	id, err := f.svc.ConfirmCashOut(ctx, cashbox.CashOutInput{Chips: entity.Quantities{2500: 2}}, entity.Quantities{5000: 1})
	require.NoError(t, err)
	_, err = f.svc.Reverse(ctx, cashbox.ReverseInput{BatchID: id, Password: adminPassword})
	require.NoError(t, err)

	doc, err := f.svc.Report(ctx, "jefe")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-fake"), doc)

	rep := f.reports.last
	require.NotNil(t, rep)
	assert.Equal(t, "AUD", rep.Currency)
	assert.Equal(t, "jefe", rep.Staff)
	require.Len(t, rep.Cash, 1)
	assert.Equal(t, cashbox.ReportRow{Denomination: "AUD 50.00", Count: 1, Value: "AUD 50.00"}, rep.Cash[0])
	assert.Equal(t, cashbox.ReportTotal{Label: "Efectivo en caja", Value: "AUD 50.00"}, rep.Totals[0])

	require.Len(t, rep.Activity, 2)
	assert.Equal(t, string(entity.EventReversal), rep.Activity[0].Type)
	assert.True(t, rep.Activity[1].Reversed, "el cobro aparece marcado como revertido")
}

// Una reversa por referencia que abarca dos cobros marca ambos en el reporte.
func TestReport_ReversaPorReferencia_MarcaTodosLosLotes(t *testing.T) {
	f := newService(t, entity.Quantities{5000: 1, 2000: 1})
	ctx := context.Background()
	refs := cashbox.Refs{TransactionRef: "mesa-3"}
	_, err := f.svc.ConfirmCashOut(ctx, cashbox.CashOutInput{Refs: refs, Chips: entity.Quantities{2500: 2}}, entity.Quantities{5000: 1})
	require.NoError(t, err)
	_, err = f.svc.ConfirmCashOut(ctx, cashbox.CashOutInput{Refs: refs, Chips: entity.Quantities{500: 4}}, entity.Quantities{2000: 1})
	require.NoError(t, err)
	_, err = f.svc.Reverse(ctx, cashbox.ReverseInput{TransactionRef: "mesa-3", Password: adminPassword})
	require.NoError(t, err)

	_, err = f.svc.Report(ctx, "jefe")
	require.NoError(t, err)
	rep := f.reports.last
	require.Len(t, rep.Activity, 3)
	assert.Equal(t, string(entity.EventReversal), rep.Activity[0].Type)
	assert.Equal(t, "AUD 70.00", rep.Activity[0].Amount)
	assert.False(t, rep.Activity[0].Reversed)
	assert.True(t, rep.Activity[1].Reversed)
	assert.True(t, rep.Activity[2].Reversed)
}

func TestActivity_LimitesPorDefecto(t *testing.T) {
	f := newService(t, nil)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := f.svc.RecordLostChips(ctx, entity.Quantities{5: 1}, cashbox.Refs{})
		require.NoError(t, err)
	}
	list, total, err := f.svc.Activity(ctx, 0, -1)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, list, 3)

	list, _, err = f.svc.Activity(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
