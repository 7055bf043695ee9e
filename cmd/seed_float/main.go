// seed_float carga el float base de una sesión nueva a partir de un conteo "denominación=cantidad".
//
// Uso: go run ./cmd/seed_float 10000=2,5000=4,2000=10,500=20
// Las denominaciones van en centavos. Usa la misma configuración que la API (STORE_DRIVER,
// SESSION_DB_PATH o DATABASE_URL, CURRENCY_DENOMINATIONS). Falla si la sesión ya tiene float
// o movimientos.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jhoicas/cashbox-api/internal/domain/entity"
	"github.com/jhoicas/cashbox-api/internal/infrastructure/storage"
	"github.com/jhoicas/cashbox-api/pkg/config"
	"github.com/jhoicas/cashbox-api/pkg/money"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "uso: seed_float 10000=2,5000=4,...")
		os.Exit(2)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuración: %v\n", err)
		os.Exit(1)
	}

	values, err := entity.ParseDenominations(cfg.Cashbox.CurrencyDenominations)
	if err != nil {
		fmt.Fprintf(os.Stderr, "CURRENCY_DENOMINATIONS: %v\n", err)
		os.Exit(1)
	}
	set, err := entity.NewDenominationSet(entity.UniverseCurrency, values)
	if err != nil {
		fmt.Fprintf(os.Stderr, "CURRENCY_DENOMINATIONS: %v\n", err)
		os.Exit(1)
	}

	counts, err := parseCounts(strings.Join(os.Args[1:], ","))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Conteo: %v\n", err)
		os.Exit(1)
	}
	if err := counts.ValidateCounts(&set); err != nil {
		fmt.Fprintf(os.Stderr, "Conteo: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	backend, err := storage.Open(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir ledger: %v\n", err)
		os.Exit(1)
	}
	defer backend.Close()

	if err := backend.Ledger.StockFloat(ctx, entity.UniverseCurrency, counts); err != nil {
		fmt.Fprintf(os.Stderr, "Cargar float: %v\n", err)
		backend.Close()
		os.Exit(1)
	}

	fmtr, err := money.NewFormatter(cfg.Currency.Code, cfg.Currency.Language)
	if err != nil {
		fmt.Printf("Float cargado: %d centavos\n", counts.Total())
		return
	}
	for _, d := range counts.Denominations() {
		fmt.Printf("  %4d × %s\n", counts[d], fmtr.Format(int64(d)))
	}
	fmt.Printf("Float cargado (%s): %s\n", backend.Driver, fmtr.Format(int64(counts.Total())))
}

// parseCounts "10000=2,5000=4" → {10000: 2, 5000: 4}. Repetidas se suman.
func parseCounts(s string) (entity.Quantities, error) {
	out := entity.Quantities{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("se esperaba denominación=cantidad: %q", part)
		}
		d, err := strconv.ParseInt(strings.TrimSpace(kv[0]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("denominación %q: %w", kv[0], err)
		}
		n, err := strconv.ParseInt(strings.TrimSpace(kv[1]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("cantidad %q: %w", kv[1], err)
		}
		out[entity.Denomination(d)] += n
	}
	if out.Compact().Pieces() == 0 {
		return nil, fmt.Errorf("conteo vacío")
	}
	return out, nil
}
