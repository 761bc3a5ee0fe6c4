// Package token issues and verifies the two signed credential classes used
// by the API: session tokens carrying an administrator identity and stream
// tokens scoped to a single media asset. The two domains sign with distinct
// secrets and are verified through separate entry points; a token from one
// domain never validates in the other.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	issuer          = "mediavault-api"
	sessionAudience = "mediavault-admin"
	streamAudience  = "mediavault-stream"
)

var (
	// ErrMissingToken indicates no bearer material was presented at all.
	ErrMissingToken = errors.New("missing token")
	// ErrInvalidToken covers every verification failure: malformed input,
	// bad signature, wrong domain, expiry. Callers get no further detail.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// SessionClaims identify an authenticated administrator.
type SessionClaims struct {
	UserID uint   `json:"uid"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// StreamClaims authorize byte access to exactly one media asset.
type StreamClaims struct {
	MediaID string `json:"media_id"`
	jwt.RegisteredClaims
}

// Config holds the construction parameters for a Service.
type Config struct {
	SessionSecret string
	StreamSecret  string
	SessionTTL    time.Duration
	StreamTTL     time.Duration
	// Clock overrides time.Now for deterministic expiry tests.
	Clock func() time.Time
}

// Service signs and verifies tokens. Secrets are injected at construction
// and never read ambiently per call.
type Service struct {
	sessionSecret []byte
	streamSecret  []byte
	sessionTTL    time.Duration
	streamTTL     time.Duration
	now           func() time.Time
}

// NewService validates the configuration and returns a Service.
func NewService(cfg Config) (*Service, error) {
	if cfg.SessionSecret == "" || cfg.StreamSecret == "" {
		return nil, errors.New("token: both signing secrets are required")
	}
	if cfg.SessionSecret == cfg.StreamSecret {
		return nil, errors.New("token: session and stream secrets must be distinct")
	}
	if cfg.SessionTTL <= 0 || cfg.StreamTTL <= 0 {
		return nil, errors.New("token: TTLs must be positive")
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	return &Service{
		sessionSecret: []byte(cfg.SessionSecret),
		streamSecret:  []byte(cfg.StreamSecret),
		sessionTTL:    cfg.SessionTTL,
		streamTTL:     cfg.StreamTTL,
		now:           now,
	}, nil
}

// IssueSession signs a session token for the given administrator and
// returns it with its expiry instant.
func (s *Service) IssueSession(userID uint, email string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.sessionTTL)

	claims := SessionClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{sessionAudience},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        newJTI(now),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.sessionSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing session token: %w", err)
	}
	return signed, expiresAt, nil
}

// IssueStream signs a stream token scoped to mediaID and returns it with
// its lifetime in seconds.
func (s *Service) IssueStream(mediaID string) (string, int, error) {
	if mediaID == "" {
		return "", 0, errors.New("token: media id is required")
	}
	now := s.now()

	claims := StreamClaims{
		MediaID: mediaID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   mediaID,
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{streamAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.streamTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        newJTI(now),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.streamSecret)
	if err != nil {
		return "", 0, fmt.Errorf("signing stream token: %w", err)
	}
	return signed, int(s.streamTTL / time.Second), nil
}

// VerifySession verifies a session token and returns its claims. All
// failures collapse to ErrInvalidToken.
func (s *Service) VerifySession(raw string) (*SessionClaims, error) {
	if raw == "" {
		return nil, ErrMissingToken
	}
	claims := &SessionClaims{}
	if err := s.parse(raw, claims, s.sessionSecret, sessionAudience); err != nil {
		return nil, ErrInvalidToken
	}
	if claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyStream verifies a stream token and returns its claims. All
// failures collapse to ErrInvalidToken.
func (s *Service) VerifyStream(raw string) (*StreamClaims, error) {
	if raw == "" {
		return nil, ErrMissingToken
	}
	claims := &StreamClaims{}
	if err := s.parse(raw, claims, s.streamSecret, streamAudience); err != nil {
		return nil, ErrInvalidToken
	}
	if claims.MediaID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *Service) parse(raw string, claims jwt.Claims, secret []byte, audience string) error {
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return secret, nil
	},
		jwt.WithTimeFunc(s.now),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return err
	}
	if !tok.Valid {
		return ErrInvalidToken
	}
	return nil
}

// newJTI creates a unique token ID to make every issued token distinct.
func newJTI(now time.Time) string {
	return fmt.Sprintf("%d-%s", now.Unix(), uuid.New().String()[:8])
}
