package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/cashbox-api/internal/application/cashbox"
	"github.com/jhoicas/cashbox-api/internal/application/ledger"
	"github.com/jhoicas/cashbox-api/internal/domain/entity"
	infrapdf "github.com/jhoicas/cashbox-api/internal/infrastructure/pdf"
	"github.com/jhoicas/cashbox-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/cashbox-api/internal/interfaces/http"
	"github.com/jhoicas/cashbox-api/pkg/config"
	"github.com/jhoicas/cashbox-api/pkg/logger"
	"github.com/jhoicas/cashbox-api/pkg/metrics"
	"github.com/jhoicas/cashbox-api/pkg/money"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET requerido")
	}

	currency, err := denominationSet(entity.UniverseCurrency, cfg.Cashbox.CurrencyDenominations)
	if err != nil {
		log.Fatal().Err(err).Msg("CURRENCY_DENOMINATIONS")
	}
	chips, err := denominationSet(entity.UniverseChip, cfg.Cashbox.ChipDenominations)
	if err != nil {
		log.Fatal().Err(err).Msg("CHIP_DENOMINATIONS")
	}
	fmtr, err := money.NewFormatter(cfg.Currency.Code, cfg.Currency.Language)
	if err != nil {
		log.Fatal().Err(err).Msg("moneda")
	}

	ctx := context.Background()
	backend, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir ledger")
	}
	defer backend.Close()

	m := metrics.New(metrics.DefaultConfig())
	svc := cashbox.NewService(cashbox.Deps{
		Ledger:   backend.Ledger,
		Recorder: ledger.NewRecorder(backend.Ledger),
		Settings: backend.Settings,
		Currency: currency,
		Chips:    chips,
		Money:    fmtr,
		Reports:  infrapdf.NewMarotoPDFGenerator(),
		Logger:   log,
		Metrics:  m,
		JWT: cashbox.JWTConfig{
			Secret:     cfg.JWT.Secret,
			ExpMinutes: cfg.JWT.Expiration,
			Issuer:     cfg.JWT.Issuer,
		},
	})
	if err := svc.EnsureAdminPassword(ctx, cfg.Cashbox.AdminPassword); err != nil {
		log.Fatal().Err(err).Msg("contraseña de administrador")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs (solo si se generó docs/swagger.json)
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Cashbox API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": backend.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Cashbox:   svc,
		Money:     fmtr,
		Metrics:   m,
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func denominationSet(u entity.Universe, list string) (entity.DenominationSet, error) {
	values, err := entity.ParseDenominations(list)
	if err != nil {
		return entity.DenominationSet{}, err
	}
	return entity.NewDenominationSet(u, values)
}
