package service

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/workpulse/workpulse-backend/internal/kiosk/events"
	"github.com/workpulse/workpulse-backend/internal/kiosk/jwt"
	"github.com/workpulse/workpulse-backend/internal/kiosk/repository"
	"github.com/workpulse/workpulse-backend/pkg/errors"
	"github.com/workpulse/workpulse-backend/pkg/logger"
	"github.com/workpulse/workpulse-backend/pkg/tenant"
)

// PIN length bounds for kiosk punches.
const (
	minPINLength = 4
	maxPINLength = 8
)

// KioskService handles terminal registration and employee PIN verification
type KioskService struct {
	repo       *repository.TerminalRepository
	jwtManager *jwt.Manager
	publisher  *events.KioskEventPublisher
	logger     *logger.Logger
}

// NewKioskService creates a new kiosk service
func NewKioskService(
	repo *repository.TerminalRepository,
	jwtManager *jwt.Manager,
	publisher *events.KioskEventPublisher,
	log *logger.Logger,
) *KioskService {
	return &KioskService{
		repo:       repo,
		jwtManager: jwtManager,
		publisher:  publisher,
		logger:     log,
	}
}

// RegisterTerminal registers a terminal and mints its first token
func (s *KioskService) RegisterTerminal(ctx context.Context, organizationID, name, registeredBy string) (*repository.Terminal, *jwt.TerminalToken, error) {
	if name == "" {
		return nil, nil, errors.BadRequest("name is required")
	}

	terminal := &repository.Terminal{
		OrganizationID: organizationID,
		Name:           name,
		RegisteredBy:   registeredBy,
	}
	if err := s.repo.Create(ctx, terminal); err != nil {
		return nil, nil, err
	}

	token, err := s.mintToken(ctx, terminal)
	if err != nil {
		return nil, nil, err
	}

	s.publisher.PublishTerminalRegistered(ctx, terminal)

	return terminal, token, nil
}

// RenewToken mints a fresh token for an active terminal
func (s *KioskService) RenewToken(ctx context.Context, terminalID string) (*jwt.TerminalToken, error) {
	terminal, err := s.repo.GetByID(ctx, terminalID)
	if err != nil {
		return nil, err
	}
	if terminal.Status != repository.TerminalStatusActive {
		return nil, errors.Forbidden("terminal is revoked")
	}

	return s.mintToken(ctx, terminal)
}

func (s *KioskService) mintToken(ctx context.Context, terminal *repository.Terminal) (*jwt.TerminalToken, error) {
	tenantID, _ := tenant.TenantID(ctx)
	tenantSlug, _ := tenant.TenantSlug(ctx)
	tenantSchema, _ := tenant.TenantSchema(ctx)

	return s.jwtManager.GenerateTerminalToken(&jwt.TerminalInfo{
		TerminalID:     terminal.ID,
		OrganizationID: terminal.OrganizationID,
		TenantID:       tenantID,
		TenantSlug:     tenantSlug,
		TenantSchema:   tenantSchema,
	})
}

// ValidateToken validates a terminal token, checks the terminal is still
// active and records the activity. Revocation wins over an unexpired token.
func (s *KioskService) ValidateToken(ctx context.Context, tokenString string) (*jwt.TerminalClaims, error) {
	claims, err := s.jwtManager.ValidateTerminalToken(tokenString)
	if err != nil {
		return nil, err
	}

	terminal, err := s.repo.GetByID(ctx, claims.TerminalID)
	if err != nil {
		return nil, errors.TokenInvalid()
	}
	if terminal.Status != repository.TerminalStatusActive {
		return nil, errors.Forbidden("terminal is revoked")
	}

	if err := s.repo.TouchLastSeen(ctx, terminal.ID); err != nil {
		s.logger.Warn().Err(err).Str("terminal_id", terminal.ID).Msg("failed to record terminal activity")
	}

	return claims, nil
}

// ListTerminals gets all registered terminals
func (s *KioskService) ListTerminals(ctx context.Context) ([]*repository.Terminal, error) {
	return s.repo.List(ctx)
}

// RevokeTerminal revokes a terminal; its tokens stop validating immediately
func (s *KioskService) RevokeTerminal(ctx context.Context, terminalID, revokedBy, reason string) error {
	if err := s.repo.Revoke(ctx, terminalID, revokedBy); err != nil {
		return err
	}

	s.publisher.PublishTerminalRevoked(ctx, terminalID, revokedBy, reason)

	return nil
}

// SetEmployeePIN hashes and stores an employee's kiosk PIN
func (s *KioskService) SetEmployeePIN(ctx context.Context, employeeID, pin string) error {
	if len(pin) < minPINLength || len(pin) > maxPINLength {
		return errors.BadRequest("pin must be 4 to 8 digits")
	}
	for _, c := range pin {
		if c < '0' || c > '9' {
			return errors.BadRequest("pin must contain only digits")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "PIN_HASH_FAILED", "failed to hash pin", 500)
	}

	return s.repo.SetEmployeePIN(ctx, employeeID, string(hash))
}

// VerifyEmployeePIN checks a PIN against the stored hash. A missing PIN and
// a wrong PIN return the same error so the kiosk cannot probe enrollment.
func (s *KioskService) VerifyEmployeePIN(ctx context.Context, employeeID, pin string) error {
	stored, err := s.repo.GetEmployeePIN(ctx, employeeID)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return errors.Unauthorized("invalid pin")
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(stored.PINHash), []byte(pin)); err != nil {
		return errors.Unauthorized("invalid pin")
	}

	return nil
}
