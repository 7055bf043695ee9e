package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/cashbox-api/internal/domain"
	"github.com/jhoicas/cashbox-api/internal/domain/entity"
	"github.com/jhoicas/cashbox-api/internal/domain/repository"
)

// Store ledger de denominaciones: log de movimientos + float base. Es la única fuente de verdad;
// todas las escrituras pasan por TxRunner.
type Store struct {
	txRunner  TxRunner
	movements repository.MovementRepository
	floats    repository.FloatRepository
	audit     repository.AuditRepository
	now       func() time.Time
}

// NewStore construye el store. Los repositorios sueltos se usan solo para lecturas.
func NewStore(
	txRunner TxRunner,
	movements repository.MovementRepository,
	floats repository.FloatRepository,
	audit repository.AuditRepository,
) *Store {
	return &Store{
		txRunner:  txRunner,
		movements: movements,
		floats:    floats,
		audit:     audit,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Availability lectura pura: recalcula baseline + movimientos filtrados en cada llamada.
func (s *Store) Availability(ctx context.Context, q AvailabilityQuery) (entity.Snapshot, error) {
	return computeSnapshot(ctx, s.movements, s.floats, q)
}

// AppendBatch escribe todas las filas y la entrada de auditoría en una sola transacción.
// Las filas FLOAT_ADD también incrementan el float base. Las guardas se revalidan antes del Commit.
// Cualquier fallo deja el store como estaba.
func (s *Store) AppendBatch(ctx context.Context, b entity.Batch) error {
	if b.ID == "" {
		return &domain.LedgerWriteError{Err: fmt.Errorf("%w: lote sin id", domain.ErrInvalidInput)}
	}
	for i := range b.Movements {
		b.Movements[i].BatchID = b.ID
		if err := b.Movements[i].Validate(); err != nil {
			return &domain.LedgerWriteError{BatchID: string(b.ID), Err: fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)}
		}
	}
	b.Audit.BatchID = b.ID

	err := s.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		floatRepo repository.FloatRepository,
		auditRepo repository.AuditRepository,
	) error {
		for i := range b.Movements {
			if err := writeMovement(ctx, movRepo, floatRepo, &b.Movements[i]); err != nil {
				return err
			}
		}
		if err := checkGuards(ctx, movRepo, floatRepo, b.Guards, b.Movements); err != nil {
			return err
		}
		// La auditoría va al final: UNIQUE(batch_id) descarta un lote repetido.
		if err := auditRepo.Create(ctx, &b.Audit); err != nil {
			return fmt.Errorf("auditoría: %w", err)
		}
		return nil
	})
	return writeError(b.ID, err)
}

func writeMovement(
	ctx context.Context,
	movRepo repository.MovementRepository,
	floatRepo repository.FloatRepository,
	m *entity.Movement,
) error {
	if err := movRepo.Create(ctx, m); err != nil {
		return fmt.Errorf("movimiento %d: %w", m.Denomination, err)
	}
	if m.Reason == entity.ReasonFloatAdd {
		if err := floatRepo.Increment(ctx, m.Universe, m.Denomination, m.Delta); err != nil {
			return fmt.Errorf("float %d: %w", m.Denomination, err)
		}
	}
	return nil
}

// writeError deja pasar los errores de negocio y envuelve el resto en LedgerWriteError.
func writeError(id entity.BatchID, err error) error {
	if err == nil {
		return nil
	}
	var changed *domain.AvailabilityChangedError
	if errors.As(err, &changed) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrAlreadyReversed) ||
		errors.Is(err, domain.ErrInvalidInput) {
		return err
	}
	var lw *domain.LedgerWriteError
	if errors.As(err, &lw) {
		return err
	}
	return &domain.LedgerWriteError{BatchID: string(id), Err: err}
}

// ReverseOption datos opcionales de la reversa.
type ReverseOption func(*reverseOptions)

type reverseOptions struct {
	staff string
	note  string
}

// WithStaff operador que autorizó la reversa.
func WithStaff(staff string) ReverseOption { return func(o *reverseOptions) { o.staff = staff } }

// WithNote texto libre para la bitácora.
func WithNote(note string) ReverseOption { return func(o *reverseOptions) { o.note = note } }

// ReverseBatch elimina el efecto económico de todas las filas del lote o de la referencia de transacción.
// ReversalCompensate (por defecto) escribe un lote REVERSAL con las filas negadas, misma razón y ReversalOf;
// ReversalHardDelete borra filas y auditoría y descuenta el float de las filas FLOAT_ADD.
// Devuelve el id del lote de reversa (compensación) o el del lote borrado. Un borrado por
// referencia que abarca varios lotes los borra todos y devuelve el primero en orden de escritura.
// La entrada REVERSAL suma los montos de los lotes originales; ReversalOf solo se llena cuando hay
// uno. Para saber qué lotes quedaron revertidos usar Reversed.
func (s *Store) ReverseBatch(ctx context.Context, target entity.ReversalTarget, mode entity.ReversalMode, opts ...ReverseOption) (entity.BatchID, error) {
	if !target.Valid() {
		return "", fmt.Errorf("%w: indicar lote o referencia de transacción", domain.ErrInvalidInput)
	}
	if mode == "" {
		mode = entity.ReversalCompensate
	}
	if mode != entity.ReversalCompensate && mode != entity.ReversalHardDelete {
		return "", fmt.Errorf("%w: modo de reversa %q", domain.ErrInvalidInput, mode)
	}
	var o reverseOptions
	for _, opt := range opts {
		opt(&o)
	}

	var result entity.BatchID
	err := s.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		floatRepo repository.FloatRepository,
		auditRepo repository.AuditRepository,
	) error {
		rows, err := reversalRows(ctx, movRepo, target)
		if err != nil {
			return err
		}
		batches := distinctBatches(rows)
		for _, id := range batches {
			reversed, err := movRepo.IsReversed(ctx, id)
			if err != nil {
				return err
			}
			if reversed {
				return fmt.Errorf("%w: %s", domain.ErrAlreadyReversed, id)
			}
		}

		originals := make([]*entity.AuditEntry, 0, len(batches))
		for _, id := range batches {
			entry, err := auditRepo.GetByBatch(ctx, id)
			if err != nil {
				return err
			}
			if entry != nil {
				originals = append(originals, entry)
			}
		}

		effect := make([]entity.Movement, 0, len(rows))

		switch mode {
		case entity.ReversalHardDelete:
			for _, m := range rows {
				gone := *m
				gone.Delta = -m.Delta
				effect = append(effect, gone)
				if m.Reason == entity.ReasonFloatAdd {
					if err := floatRepo.Increment(ctx, m.Universe, m.Denomination, -m.Delta); err != nil {
						return fmt.Errorf("float %d: %w", m.Denomination, err)
					}
				}
			}
			for _, id := range batches {
				if _, err := movRepo.DeleteByBatch(ctx, id); err != nil {
					return err
				}
				if err := auditRepo.DeleteByBatch(ctx, id); err != nil {
					return err
				}
			}
			result = batches[0]
		default:
			id := entity.BatchID(uuid.NewString())
			now := s.now()
			for _, m := range rows {
				comp := entity.Movement{
					Universe:       m.Universe,
					Denomination:   m.Denomination,
					Delta:          -m.Delta,
					Reason:         m.Reason,
					BatchID:        id,
					PlayerRef:      m.PlayerRef,
					TransactionRef: m.TransactionRef,
					ReversalOf:     m.BatchID,
					Notes:          "reversa",
					CreatedAt:      now,
				}
				if err := writeMovement(ctx, movRepo, floatRepo, &comp); err != nil {
					return err
				}
				effect = append(effect, comp)
			}
			entry := entity.AuditEntry{
				BatchID:        id,
				Type:           entity.EventReversal,
				Note:           reversalNote(o.note, batches),
				Staff:          o.staff,
				TransactionRef: target.TransactionRef,
				CreatedAt:      now,
			}
			for _, orig := range originals {
				entry.Amount += orig.Amount
			}
			if len(batches) == 1 && len(originals) == 1 {
				entry.ReversalOf = originals[0].BatchID
				entry.PlayerRef = originals[0].PlayerRef
			}
			if err := auditRepo.Create(ctx, &entry); err != nil {
				return fmt.Errorf("auditoría: %w", err)
			}
			result = id
		}

		return checkGuards(ctx, movRepo, floatRepo, reversalGuards(rows), effect)
	})
	if err != nil {
		return "", writeError(result, err)
	}
	return result, nil
}

// reversalRows filas originales del objetivo. Una reversa no se puede revertir.
func reversalRows(ctx context.Context, movRepo repository.MovementRepository, target entity.ReversalTarget) ([]*entity.Movement, error) {
	var (
		rows []*entity.Movement
		err  error
	)
	if target.BatchID != "" {
		rows, err = movRepo.ListByBatch(ctx, target.BatchID)
	} else {
		rows, err = movRepo.ListByTransactionRef(ctx, target.TransactionRef)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, target)
	}
	for _, m := range rows {
		if m.ReversalOf != "" {
			return nil, fmt.Errorf("%w: %s ya es una reversa", domain.ErrInvalidInput, m.BatchID)
		}
	}
	return rows, nil
}

func distinctBatches(rows []*entity.Movement) []entity.BatchID {
	seen := make(map[entity.BatchID]struct{}, len(rows))
	var out []entity.BatchID
	for _, m := range rows {
		if _, ok := seen[m.BatchID]; ok {
			continue
		}
		seen[m.BatchID] = struct{}{}
		out = append(out, m.BatchID)
	}
	return out
}

// reversalGuards deshacer una entrada saca piezas de la caja: esas piezas deben seguir ahí.
func reversalGuards(rows []*entity.Movement) []entity.Guard {
	cash, chips := entity.Quantities{}, entity.Quantities{}
	for _, m := range rows {
		if m.Delta <= 0 {
			continue
		}
		switch m.Universe {
		case entity.UniverseCurrency:
			cash[m.Denomination] += m.Delta
		case entity.UniverseChip:
			chips[m.Denomination] += m.Delta
		}
	}
	return []entity.Guard{
		{Universe: entity.UniverseCurrency, Reasons: entity.SpendableCash, Need: cash},
		{Universe: entity.UniverseChip, Reasons: entity.ChipsReceived, Need: chips},
	}
}

func reversalNote(note string, batches []entity.BatchID) string {
	ids := make([]string, len(batches))
	for i, b := range batches {
		ids[i] = string(b)
	}
	base := "reversa de " + strings.Join(ids, ", ")
	if note == "" {
		return base
	}
	return base + ": " + note
}

// BatchDetail desglose de un lote para la interfaz.
type BatchDetail struct {
	Audit     *entity.AuditEntry
	Movements []*entity.Movement
	Reversed  bool
}

// Batch devuelve la auditoría y las filas de un lote.
func (s *Store) Batch(ctx context.Context, id entity.BatchID) (*BatchDetail, error) {
	entry, err := s.audit.GetByBatch(ctx, id)
	if err != nil {
		return nil, err
	}
	rows, err := s.movements.ListByBatch(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry == nil && len(rows) == 0 {
		return nil, fmt.Errorf("%w: lote %s", domain.ErrNotFound, id)
	}
	reversed, err := s.movements.IsReversed(ctx, id)
	if err != nil {
		return nil, err
	}
	return &BatchDetail{Audit: entry, Movements: rows, Reversed: reversed}, nil
}

// Reversed indica, por lote, si ya tiene compensación.
func (s *Store) Reversed(ctx context.Context, ids []entity.BatchID) (map[entity.BatchID]bool, error) {
	out := make(map[entity.BatchID]bool, len(ids))
	for _, id := range ids {
		if _, done := out[id]; done {
			continue
		}
		reversed, err := s.movements.IsReversed(ctx, id)
		if err != nil {
			return nil, err
		}
		out[id] = reversed
	}
	return out, nil
}

// Activity bitácora, más reciente primero.
func (s *Store) Activity(ctx context.Context, limit, offset int) ([]*entity.AuditEntry, int, error) {
	list, err := s.audit.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.audit.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// SalesTotal suma de ventas de la sesión (SALE y CASHOUT_SALE no revertidas).
func (s *Store) SalesTotal(ctx context.Context) (entity.Amount, error) {
	return s.audit.SumAmount(ctx, entity.SalesEventTypes())
}

// Baseline float base de un universo.
func (s *Store) Baseline(ctx context.Context, universe entity.Universe) (entity.Quantities, error) {
	rows, err := s.floats.List(ctx, universe)
	if err != nil {
		return nil, err
	}
	return entity.BaselineCounts(rows), nil
}

// StockFloat fija el float base al abrir la caja. Solo se permite si el universo no tiene float
// ni movimientos todavía.
func (s *Store) StockFloat(ctx context.Context, universe entity.Universe, counts entity.Quantities) error {
	if !universe.Valid() {
		return fmt.Errorf("%w: universo %q", domain.ErrInvalidInput, universe)
	}
	if err := counts.ValidateCounts(nil); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return s.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		floatRepo repository.FloatRepository,
		_ repository.AuditRepository,
	) error {
		current, err := floatRepo.List(ctx, universe)
		if err != nil {
			return err
		}
		if entity.BaselineCounts(current).Compact().Pieces() != 0 {
			return fmt.Errorf("%w: la caja ya tiene float", domain.ErrConflict)
		}
		sums, err := movRepo.SumByDenomination(ctx, universe, entity.FullAudit)
		if err != nil {
			return err
		}
		if len(sums.Compact()) != 0 {
			return fmt.Errorf("%w: la sesión ya tiene movimientos", domain.ErrConflict)
		}
		return floatRepo.Replace(ctx, universe, counts.Compact())
	})
}
