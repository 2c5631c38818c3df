package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/workpulse/workpulse-backend/pkg/config"
	"github.com/workpulse/workpulse-backend/pkg/errors"
)

// TerminalClaims are the claims carried by a kiosk terminal token. The
// tenant context rides along so punch requests can be routed to the right
// schema without a separate lookup.
type TerminalClaims struct {
	jwt.RegisteredClaims
	TerminalID     string `json:"terminal_id"`
	OrganizationID string `json:"organization_id"`

	TenantID     string `json:"tenant_id"`
	TenantSlug   string `json:"tenant_slug"`
	TenantSchema string `json:"tenant_schema"`
}

// Manager handles kiosk terminal token operations
type Manager struct {
	config *config.JWTConfig
}

// NewManager creates a new terminal token manager
func NewManager(cfg *config.JWTConfig) *Manager {
	return &Manager{config: cfg}
}

// TerminalInfo contains terminal information for token generation
type TerminalInfo struct {
	TerminalID     string
	OrganizationID string

	TenantID     string
	TenantSlug   string
	TenantSchema string
}

// TerminalToken is a minted terminal token with its expiry
type TerminalToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	TokenType string    `json:"token_type"`
}

// GenerateTerminalToken mints a signed token for a kiosk terminal
func (m *Manager) GenerateTerminalToken(terminal *TerminalInfo) (*TerminalToken, error) {
	now := time.Now()
	expiresAt := now.Add(m.config.AccessExpiry)

	claims := TerminalClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.config.Issuer,
			Subject:   terminal.TerminalID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
		TerminalID:     terminal.TerminalID,
		OrganizationID: terminal.OrganizationID,
		TenantID:       terminal.TenantID,
		TenantSlug:     terminal.TenantSlug,
		TenantSchema:   terminal.TenantSchema,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(m.config.Secret))
	if err != nil {
		return nil, err
	}

	return &TerminalToken{
		Token:     tokenString,
		ExpiresAt: expiresAt,
		TokenType: "Bearer",
	}, nil
}

// ValidateTerminalToken validates a terminal token and returns the claims
func (m *Manager) ValidateTerminalToken(tokenString string) (*TerminalClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TerminalClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.TokenInvalid()
		}
		return []byte(m.config.Secret), nil
	})

	if err != nil {
		if err.Error() == "token has invalid claims: token is expired" {
			return nil, errors.TokenExpired()
		}
		return nil, errors.TokenInvalid()
	}

	claims, ok := token.Claims.(*TerminalClaims)
	if !ok || !token.Valid {
		return nil, errors.TokenInvalid()
	}

	return claims, nil
}

// GetTokenExpiry returns the terminal token expiry duration
func (m *Manager) GetTokenExpiry() time.Duration {
	return m.config.AccessExpiry
}
