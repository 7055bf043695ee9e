package cashbox

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/cashbox-api/internal/application/ledger"
	"github.com/jhoicas/cashbox-api/internal/domain"
	"github.com/jhoicas/cashbox-api/internal/domain/entity"
	"github.com/jhoicas/cashbox-api/internal/domain/repository"
	"github.com/jhoicas/cashbox-api/pkg/jwt"
	"github.com/jhoicas/cashbox-api/pkg/metrics"
)

const minPasswordLen = 4

// EnsureAdminPassword guarda el hash de la contraseña inicial si la sesión aún no tiene uno.
func (s *Service) EnsureAdminPassword(ctx context.Context, initial string) error {
	current, err := s.settings.Get(ctx, repository.SettingAdminPasswordHash)
	if err != nil {
		return err
	}
	if current != "" {
		return nil
	}
	if len(initial) < minPasswordLen {
		return fmt.Errorf("%w: contraseña inicial demasiado corta", domain.ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(initial), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.settings.Set(ctx, repository.SettingAdminPasswordHash, string(hash))
}

// VerifyAdminPassword ErrInvalidPassword si no coincide con el hash guardado.
func (s *Service) VerifyAdminPassword(ctx context.Context, password string) error {
	hash, err := s.settings.Get(ctx, repository.SettingAdminPasswordHash)
	if err != nil {
		return err
	}
	if hash == "" || password == "" {
		return domain.ErrInvalidPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return domain.ErrInvalidPassword
	}
	return nil
}

// ChangeAdminPassword exige la contraseña actual.
func (s *Service) ChangeAdminPassword(ctx context.Context, current, next string) error {
	if err := s.VerifyAdminPassword(ctx, current); err != nil {
		return err
	}
	if len(next) < minPasswordLen {
		return fmt.Errorf("%w: la contraseña nueva debe tener al menos %d caracteres", domain.ErrInvalidInput, minPasswordLen)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.settings.Set(ctx, repository.SettingAdminPasswordHash, string(hash)); err != nil {
		return err
	}
	s.log.Info().Msg("contraseña de administrador actualizada")
	return nil
}

// LoginResult token emitido y rol asignado.
type LoginResult struct {
	Token string
	Staff string
	Role  string
}

// Login sin contraseña entra como dealer; con la contraseña de administrador, como admin.
func (s *Service) Login(ctx context.Context, staff, password string) (*LoginResult, error) {
	if staff == "" {
		return nil, fmt.Errorf("%w: staff requerido", domain.ErrInvalidInput)
	}
	role := jwt.RoleDealer
	if password != "" {
		if err := s.VerifyAdminPassword(ctx, password); err != nil {
			return nil, domain.ErrUnauthorized
		}
		role = jwt.RoleAdmin
	}
	token, err := jwt.Generate(s.jwtCfg.Secret, staff, role, s.jwtCfg.Issuer, s.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, Staff: staff, Role: role}, nil
}

// ReverseInput qué revertir y con qué autorización.
type ReverseInput struct {
	BatchID        entity.BatchID
	TransactionRef string
	Password       string
	HardDelete     bool
	Staff          string
	Note           string
}

// Reverse revierte un lote o una referencia de transacción. Requiere la contraseña de administrador.
// Por defecto compensa; HardDelete borra las filas.
func (s *Service) Reverse(ctx context.Context, in ReverseInput) (entity.BatchID, error) {
	target := entity.ReversalTarget{BatchID: in.BatchID, TransactionRef: in.TransactionRef}
	if !target.Valid() {
		return "", fmt.Errorf("%w: indicar lote o referencia de transacción, no ambos", domain.ErrInvalidInput)
	}
	if err := s.VerifyAdminPassword(ctx, in.Password); err != nil {
		s.log.Warn().Str("target", target.String()).Str("staff", in.Staff).Msg("reversa rechazada: contraseña")
		return "", err
	}
	mode := entity.ReversalCompensate
	if in.HardDelete {
		mode = entity.ReversalHardDelete
	}

	id, err := s.ledger.ReverseBatch(ctx, target, mode, ledger.WithStaff(in.Staff), ledger.WithNote(in.Note))
	if err != nil {
		outcome := metrics.OutcomeError
		if errors.Is(err, domain.ErrConcurrentAvailabilityChanged) {
			outcome = metrics.OutcomeRejected
		}
		s.metrics.RecordReversal(string(mode), outcome)
		s.log.Warn().Err(err).Str("target", target.String()).Str("mode", string(mode)).Msg("reversa fallida")
		return "", err
	}
	s.metrics.RecordReversal(string(mode), metrics.OutcomeOK)
	s.log.Info().
		Str("target", target.String()).
		Str("mode", string(mode)).
		Str("batch_id", string(id)).
		Str("staff", in.Staff).
		Msg("reversa registrada")
	return id, nil
}
