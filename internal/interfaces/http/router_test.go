package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cashbox-api/internal/application/cashbox"
	"github.com/jhoicas/cashbox-api/internal/application/ledger"
	"github.com/jhoicas/cashbox-api/internal/domain/entity"
	"github.com/jhoicas/cashbox-api/internal/infrastructure/sqlite"
	apphttp "github.com/jhoicas/cashbox-api/internal/interfaces/http"
	"github.com/jhoicas/cashbox-api/pkg/metrics"
	"github.com/jhoicas/cashbox-api/pkg/money"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const adminPassword = "1234"

type pdfStub struct{}

func (pdfStub) GenerateSessionReport(context.Context, *cashbox.SessionReport) ([]byte, error) {
	return []byte("%PDF-1.4 stub"), nil
}

// buildAPI router completo sobre una sesión SQLite nueva con el float dado.
func buildAPI(t *testing.T, float entity.Quantities) *fiber.App {
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

	svc := cashbox.NewService(cashbox.Deps{
		Ledger:   store,
		Recorder: ledger.NewRecorder(store),
		Settings: sqlite.NewSettingsRepository(db),
		Currency: currency,
		Chips:    chips,
		Money:    fmtr,
		Reports:  pdfStub{},
		JWT:      cashbox.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer},
	})
	require.NoError(t, svc.EnsureAdminPassword(ctx, adminPassword))
	if len(float) > 0 {
		require.NoError(t, svc.StockFloat(ctx, float, "caja"))
	}

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Cashbox:   svc,
		Money:     fmtr,
		Metrics:   metrics.New(metrics.DefaultConfig()),
		JWTSecret: testJWTSecret,
	})
	return app
}

// call envía JSON y decodifica la respuesta JSON (si la hay).
func call(t *testing.T, app *fiber.App, method, path, auth string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()

	var out map[string]interface{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp, out
}

func login(t *testing.T, app *fiber.App, password string) string {
	t.Helper()
	resp, body := call(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{"staff": testStaff, "password": password})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return "Bearer " + body["token"].(string)
}

func nested(m map[string]interface{}, keys ...string) interface{} {
	var cur interface{} = m
	for _, k := range keys {
		mm, ok := cur.(map[string]interface{})
		if !ok {
			return nil
		}
		cur = mm[k]
	}
	return cur
}

// ──────────────────────────────────────────────────────────────────────────────
// Login y roles
// ──────────────────────────────────────────────────────────────────────────────

func TestLogin_SinPasswordEsDealer(t *testing.T) {
	app := buildAPI(t, nil)
	resp, body := call(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{"staff": "ana"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "dealer", body["role"])
	assert.NotEmpty(t, body["token"])
}

func TestLogin_PasswordAdmin(t *testing.T) {
	app := buildAPI(t, nil)
	resp, body := call(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{"staff": "ana", "password": adminPassword})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "admin", body["role"])

	resp, body = call(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{"staff": "ana", "password": "otra"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", body["code"])
}

func TestLogin_SinStaff_Retorna400ConCampos(t *testing.T) {
	app := buildAPI(t, nil)
	resp, body := call(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body["code"])
	assert.NotNil(t, nested(body, "fields", "staff"))
}

func TestRutasProtegidas_SinToken(t *testing.T) {
	app := buildAPI(t, nil)
	resp, body := call(t, app, http.MethodGet, "/api/cashbox/summary", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_TOKEN", body["code"])
}

func TestCambioPassword_SoloAdmin(t *testing.T) {
	app := buildAPI(t, nil)
	req := map[string]string{"current": adminPassword, "next": "nueva-clave"}

	resp, _ := call(t, app, http.MethodPut, "/api/settings/admin-password", login(t, app, ""), req)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = call(t, app, http.MethodPut, "/api/settings/admin-password", login(t, app, adminPassword), req)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body := call(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{"staff": "ana", "password": "nueva-clave"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "admin", body["role"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Cobro: quote → confirmación → reversa
// ──────────────────────────────────────────────────────────────────────────────

func TestCashOut_QuoteConfirmarYRevertir(t *testing.T) {
	app := buildAPI(t, entity.Quantities{2000: 1, 1000: 1, 500: 2})
	tok := login(t, app, "")
	chips := map[string]int64{"2500": 1, "500": 3}

	resp, quote := call(t, app, http.MethodPost, "/api/cashout/quote", tok, map[string]interface{}{"chips": chips})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 4000, nested(quote, "target", "cents"))
	assert.Equal(t, "AUD 40.00", nested(quote, "target", "formatted"))
	planCounts := quote["plan_counts"].(map[string]interface{})
	assert.EqualValues(t, 1, planCounts["2000"])
	assert.EqualValues(t, 1, planCounts["1000"])
	assert.EqualValues(t, 2, planCounts["500"])

	resp, created := call(t, app, http.MethodPost, "/api/cashout", tok, map[string]interface{}{
		"chips":      chips,
		"plan":       planCounts,
		"player_ref": "M-17",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	batchID := created["batch_id"].(string)
	require.NotEmpty(t, batchID)

	resp, sum := call(t, app, http.MethodGet, "/api/cashbox/summary", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 0, nested(sum, "cash", "total", "cents"))
	assert.EqualValues(t, 4000, nested(sum, "chips_received", "total", "cents"))
	assert.EqualValues(t, 4000, nested(sum, "float_total", "cents"))

	resp, detail := call(t, app, http.MethodGet, "/api/batches/"+batchID, tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "CASHOUT", nested(detail, "audit", "type"))
	assert.Len(t, detail["movements"], 5)
	assert.Equal(t, false, detail["reversed"])

	// reversa: contraseña incorrecta, correcta y repetida
	resp, body := call(t, app, http.MethodPost, "/api/batches/reverse", tok, map[string]interface{}{"batch_id": batchID, "password": "mal"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_PASSWORD", body["code"])

	resp, _ = call(t, app, http.MethodPost, "/api/batches/reverse", tok, map[string]interface{}{"batch_id": batchID, "password": adminPassword})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body = call(t, app, http.MethodPost, "/api/batches/reverse", tok, map[string]interface{}{"batch_id": batchID, "password": adminPassword})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "ALREADY_REVERSED", body["code"])

	_, sum = call(t, app, http.MethodGet, "/api/cashbox/summary", tok, nil)
	assert.EqualValues(t, 4000, nested(sum, "cash", "total", "cents"))
	assert.EqualValues(t, 0, nested(sum, "chips_received", "total", "cents"))
}

func TestCashOut_SinCambioExacto_Retorna422(t *testing.T) {
	app := buildAPI(t, entity.Quantities{2000: 1})
	tok := login(t, app, "")

	resp, body := call(t, app, http.MethodPost, "/api/cashout/quote", tok, map[string]interface{}{
		"chips": map[string]int64{"500": 1},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "INFEASIBLE_PAYOUT", body["code"])
}

func TestCashOut_PlanQueNoCubre_Retorna400(t *testing.T) {
	app := buildAPI(t, entity.Quantities{2000: 2})
	tok := login(t, app, "")

	resp, body := call(t, app, http.MethodPost, "/api/cashout", tok, map[string]interface{}{
		"chips": map[string]int64{"2500": 2},
		"plan":  map[string]int64{"2000": 2},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body["code"])
}

func TestCashOut_SinFichas_Retorna400(t *testing.T) {
	app := buildAPI(t, nil)
	tok := login(t, app, "")

	resp, body := call(t, app, http.MethodPost, "/api/cashout/quote", tok, map[string]interface{}{"food_cents": 0})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotNil(t, nested(body, "fields", "chips"))
}

// ──────────────────────────────────────────────────────────────────────────────
// Compra de fichas, venta, float, fichas perdidas y cambio
// ──────────────────────────────────────────────────────────────────────────────

func TestBuyIn_VueltoDesdeLoEntregado(t *testing.T) {
	app := buildAPI(t, nil)
	tok := login(t, app, "")
	req := map[string]interface{}{
		"tendered":    map[string]int64{"2000": 2},
		"chips_cents": 2000,
	}

	resp, quote := call(t, app, http.MethodPost, "/api/buyin/quote", tok, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2000, nested(quote, "target", "cents"))

	req["change"] = quote["plan_counts"]
	resp, _ = call(t, app, http.MethodPost, "/api/buyin", tok, req)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	_, sum := call(t, app, http.MethodGet, "/api/cashbox/summary", tok, nil)
	assert.EqualValues(t, 2000, nested(sum, "cash", "total", "cents"))
}

func TestSale_ConVueltoSumaVentas(t *testing.T) {
	app := buildAPI(t, entity.Quantities{500: 2})
	tok := login(t, app, "")
	req := map[string]interface{}{
		"total_cents": 1500,
		"cash":        map[string]int64{"2000": 1},
		"description": "hamburguesa",
	}

	resp, quote := call(t, app, http.MethodPost, "/api/sales/quote", tok, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 500, nested(quote, "target", "cents"))

	req["change"] = quote["plan_counts"]
	resp, _ = call(t, app, http.MethodPost, "/api/sales", tok, req)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	_, sum := call(t, app, http.MethodGet, "/api/cashbox/summary", tok, nil)
	assert.EqualValues(t, 1500, nested(sum, "sales_total", "cents"))
	assert.EqualValues(t, 2500, nested(sum, "cash", "total", "cents"))
}

func TestSale_SinPago_Retorna400(t *testing.T) {
	app := buildAPI(t, nil)
	tok := login(t, app, "")
	resp, body := call(t, app, http.MethodPost, "/api/sales/quote", tok, map[string]interface{}{"total_cents": 1500})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotNil(t, nested(body, "fields", "cash"))
}

func TestFloatFichasPerdidasYCambio(t *testing.T) {
	app := buildAPI(t, nil)
	tok := login(t, app, "")

	resp, _ := call(t, app, http.MethodPost, "/api/float", tok, map[string]interface{}{
		"counts": map[string]int64{"5000": 2},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = call(t, app, http.MethodPost, "/api/lost-chips", tok, map[string]interface{}{
		"chips": map[string]int64{"500": 2},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = call(t, app, http.MethodPost, "/api/exchange", tok, map[string]interface{}{
		"give":    map[string]int64{"5000": 1},
		"receive": map[string]int64{"2000": 2, "1000": 1},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := call(t, app, http.MethodPost, "/api/exchange", tok, map[string]interface{}{
		"give":    map[string]int64{"5000": 1},
		"receive": map[string]int64{"2000": 1},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body["code"])

	_, sum := call(t, app, http.MethodGet, "/api/cashbox/summary", tok, nil)
	assert.EqualValues(t, 10000, nested(sum, "float_total", "cents"))
	assert.EqualValues(t, 10000, nested(sum, "cash", "total", "cents"))
	assert.EqualValues(t, 1000, nested(sum, "tips", "total", "cents"))
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestAvailability_UniversoYFiltro(t *testing.T) {
	app := buildAPI(t, entity.Quantities{5000: 1, 1000: 3})
	tok := login(t, app, "")

	resp, snap := call(t, app, http.MethodGet, "/api/cashbox/availability?universe=currency&reasons=spendable", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "CURRENCY", snap["universe"])
	assert.EqualValues(t, 8000, nested(snap, "total", "cents"))

	resp, _ = call(t, app, http.MethodGet, "/api/cashbox/availability?universe=euros&reasons=spendable", tok, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = call(t, app, http.MethodGet, "/api/cashbox/availability?universe=CHIP", tok, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPlan_Generico(t *testing.T) {
	app := buildAPI(t, entity.Quantities{5000: 1, 1000: 3})
	tok := login(t, app, "")

	resp, plan := call(t, app, http.MethodPost, "/api/cashbox/plan", tok, map[string]interface{}{
		"universe":     "CURRENCY",
		"reasons":      []string{"BUYIN", "CASHOUT", "SALE", "EXCHANGE"},
		"target_cents": 7000,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	counts := plan["plan_counts"].(map[string]interface{})
	assert.EqualValues(t, 1, counts["5000"])
	assert.EqualValues(t, 2, counts["1000"])

	resp, _ = call(t, app, http.MethodPost, "/api/cashbox/plan", tok, map[string]interface{}{
		"universe":     "CURRENCY",
		"reasons":      []string{"PROPINA"},
		"target_cents": 7000,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestActivityYLoteInexistente(t *testing.T) {
	app := buildAPI(t, nil)
	tok := login(t, app, "")
	for i := 0; i < 3; i++ {
		resp, _ := call(t, app, http.MethodPost, "/api/float", tok, map[string]interface{}{
			"counts": map[string]int64{"1000": 1},
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, act := call(t, app, http.MethodGet, "/api/activity?limit=2", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, act["items"], 2)
	assert.EqualValues(t, 3, nested(act, "page", "total"))
	assert.Equal(t, "3", resp.Header.Get("X-Total-Count"))

	resp, body := call(t, app, http.MethodGet, "/api/batches/no-existe", tok, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", body["code"])
}

func TestReportePDF(t *testing.T) {
	app := buildAPI(t, entity.Quantities{1000: 1})
	tok := login(t, app, "")

	resp, _ := call(t, app, http.MethodGet, "/api/cashbox/report.pdf", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
}

func TestMetrics_ExponeRequestsHTTP(t *testing.T) {
	app := buildAPI(t, nil)
	_ = login(t, app, "")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `cashbox_http_requests_total{method="POST",path="/api/auth/login",status="200"} 1`)
}
