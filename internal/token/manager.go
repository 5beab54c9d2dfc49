// Package token issues and verifies the short-lived HS256 bearer
// tokens that protect the API routes. Tokens are stateless: validity
// is decided by signature and expiry alone, never by server-side
// lookup.
package token

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenInvalid covers every verification failure except expiry.
// Callers must not reveal which check failed.
var ErrTokenInvalid = errors.New("invalid token")

// ErrTokenExpired is returned for a well-formed, correctly signed
// token whose lifetime has elapsed.
var ErrTokenExpired = errors.New("token expired")

const (
	// DefaultTTL is the fixed access-token lifetime.
	DefaultTTL = 15 * time.Minute

	// DefaultIssuer and DefaultAudience are pinned into every token
	// and enforced on verification.
	DefaultIssuer   = "session-control-backend"
	DefaultAudience = "client"

	secretSize = 32
)

// Config parameterizes a Manager. Zero values fall back to the
// defaults above; an empty Secret is replaced by a fresh random one,
// which invalidates all previously issued tokens on restart.
type Config struct {
	Secret   []byte
	Issuer   string
	Audience string
	TTL      time.Duration
}

// Claims is the access-token claim set.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// Manager signs and verifies access tokens with a process-wide
// symmetric secret.
//
// Manager instances are configured once and treated as immutable; all
// methods are safe for concurrent use.
type Manager struct {
	config Config
	now    func() time.Time
}

// NewManager validates cfg, fills defaults, and generates the signing
// secret when none is supplied.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.TTL == 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.TTL < 0 {
		return nil, errors.New("token: invalid TTL configuration")
	}
	if cfg.Issuer == "" {
		cfg.Issuer = DefaultIssuer
	}
	if cfg.Audience == "" {
		cfg.Audience = DefaultAudience
	}
	if len(cfg.Secret) == 0 {
		secret := make([]byte, secretSize)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("token: generate secret: %w", err)
		}
		cfg.Secret = secret
	}

	return &Manager{config: cfg, now: time.Now}, nil
}

// Issue signs a token carrying the user identity claim.
func (m *Manager) Issue(userID string) (string, error) {
	now := m.now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.config.Issuer,
			Audience:  jwt.ClaimStrings{m.config.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.TTL)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(m.config.Secret)
}

// Verify checks signature, issuer, audience, and expiry. Any mismatch
// other than expiry yields ErrTokenInvalid without detail.
func (m *Manager) Verify(tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.config.Issuer),
		jwt.WithAudience(m.config.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)

	tok, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.config.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid || claims.UserID == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// TTL exposes the configured lifetime for callers that report it.
func (m *Manager) TTL() time.Duration {
	return m.config.TTL
}
