package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/cashbox-api/internal/domain/entity"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// textOrNil guarda vacío como NULL.
func textOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// amountToNumeric centavos -> NUMERIC(16,2).
func amountToNumeric(a entity.Amount) decimal.Decimal {
	return decimal.New(int64(a), -2)
}

// numericToAmount NUMERIC(16,2) -> centavos.
func numericToAmount(d decimal.Decimal) entity.Amount {
	return entity.Amount(d.Shift(2).Round(0).IntPart())
}

func eventTypeStrings(types []entity.EventType) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}
