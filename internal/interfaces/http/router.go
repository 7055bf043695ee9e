package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/cashbox-api/internal/application/cashbox"
	"github.com/jhoicas/cashbox-api/pkg/jwt"
	"github.com/jhoicas/cashbox-api/pkg/metrics"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Cashbox   *cashbox.Service
	Money     MoneyFormatter
	Metrics   *metrics.Metrics // nil: sin /metrics
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Metrics != nil {
		app.Use(MetricsMiddleware(deps.Metrics))
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}

	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.Cashbox)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	cashboxHandler := NewCashboxHandler(deps.Cashbox, deps.Money)
	box := protected.Group("/cashbox")
	box.Get("/availability", cashboxHandler.Availability)
	box.Get("/summary", cashboxHandler.Summary)
	box.Get("/report.pdf", cashboxHandler.Report)
	box.Post("/plan", cashboxHandler.Plan)

	events := NewEventHandler(deps.Cashbox, deps.Money)
	protected.Post("/cashout/quote", events.QuoteCashOut)
	protected.Post("/cashout", events.ConfirmCashOut)
	protected.Post("/buyin/quote", events.QuoteBuyIn)
	protected.Post("/buyin", events.ConfirmBuyIn)
	protected.Post("/sales/quote", events.QuoteSale)
	protected.Post("/sales", events.ConfirmSale)
	protected.Post("/float", events.AddFloat)
	protected.Post("/lost-chips", events.LostChips)
	protected.Post("/exchange", events.Exchange)

	// Lotes y bitácora; la reversa además exige la contraseña de administrador en el cuerpo.
	protected.Post("/batches/reverse", events.Reverse)
	protected.Get("/batches/:id", cashboxHandler.Batch)
	protected.Get("/activity", cashboxHandler.Activity)

	// Settings (solo admin)
	settings := protected.Group("/settings", RequireRole(jwt.RoleAdmin))
	settings.Put("/admin-password", authHandler.ChangeAdminPassword)
}
