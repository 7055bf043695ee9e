package domain

import (
	"errors"
	"fmt"
)

// Errores del ledger de denominaciones. Todos son recuperables y se muestran al operador,
// salvo ErrStorageUnavailable.
var (
	ErrInvalidAmount                 = errors.New("monto inválido")
	ErrInfeasiblePayout              = errors.New("no hay cambio exacto con la caja actual")
	ErrLedgerWrite                   = errors.New("no se pudo escribir el lote en el ledger")
	ErrConcurrentAvailabilityChanged = errors.New("la disponibilidad cambió desde que se calculó el plan")
	ErrAlreadyReversed               = errors.New("el lote ya fue revertido")
)

// InvalidAmountError monto negativo (o no positivo donde se exige positivo).
type InvalidAmountError struct {
	Amount int64
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("%s: %d", ErrInvalidAmount.Error(), e.Amount)
}

func (e *InvalidAmountError) Is(target error) bool { return target == ErrInvalidAmount }

// InfeasiblePayoutError el planificador no alcanzó el objetivo; Remainder es lo que quedó sin cubrir.
type InfeasiblePayoutError struct {
	Target    int64
	Remainder int64
}

func (e *InfeasiblePayoutError) Error() string {
	return fmt.Sprintf("%s: objetivo %d, faltan %d", ErrInfeasiblePayout.Error(), e.Target, e.Remainder)
}

func (e *InfeasiblePayoutError) Is(target error) bool { return target == ErrInfeasiblePayout }

// LedgerWriteError el lote no se escribió; nada quedó confirmado.
type LedgerWriteError struct {
	BatchID string
	Err     error
}

func (e *LedgerWriteError) Error() string {
	return fmt.Sprintf("%s (lote %s): %v", ErrLedgerWrite.Error(), e.BatchID, e.Err)
}

func (e *LedgerWriteError) Is(target error) bool { return target == ErrLedgerWrite }

func (e *LedgerWriteError) Unwrap() error { return e.Err }

// AvailabilityChangedError la revalidación al confirmar encontró menos unidades que las planificadas.
type AvailabilityChangedError struct {
	Universe     string
	Denomination int64
	Needed       int64
	Available    int64
}

func (e *AvailabilityChangedError) Error() string {
	return fmt.Sprintf("%s: %s %d requiere %d, disponibles %d",
		ErrConcurrentAvailabilityChanged.Error(), e.Universe, e.Denomination, e.Needed, e.Available)
}

func (e *AvailabilityChangedError) Is(target error) bool {
	return target == ErrConcurrentAvailabilityChanged
}
