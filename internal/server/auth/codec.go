package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/outreach/internal/common"
	"github.com/dmitrijs2005/outreach/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// sessionClaims is the complete cookie payload. Expiry is kept as an
// ISO 8601 string and checked by the session manager, not by the JWT parser.
type sessionClaims struct {
	UserID       int64  `json:"userId"`
	SessionToken string `json:"sessionToken"`
	Expires      string `json:"expires"`
}

func (sessionClaims) GetExpirationTime() (*jwt.NumericDate, error) { return nil, nil }
func (sessionClaims) GetIssuedAt() (*jwt.NumericDate, error)       { return nil, nil }
func (sessionClaims) GetNotBefore() (*jwt.NumericDate, error)      { return nil, nil }
func (sessionClaims) GetIssuer() (string, error)                   { return "", nil }
func (sessionClaims) GetSubject() (string, error)                  { return "", nil }
func (sessionClaims) GetAudience() (jwt.ClaimStrings, error)       { return nil, nil }

// SessionCodec turns sessions into HS256-signed cookie values and back.
type SessionCodec struct {
	secret   []byte
	newToken func() (string, error)
}

func NewSessionCodec(secret []byte) (*SessionCodec, error) {
	if len(secret) == 0 {
		return nil, errors.New("session secret is empty")
	}
	return &SessionCodec{secret: secret, newToken: newSessionToken}, nil
}

// newSessionToken returns a UUIDv7: a millisecond timestamp followed by
// random bits from crypto/rand.
func newSessionToken() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Encode assigns a fresh token to s and returns the signed cookie value.
func (c *SessionCodec) Encode(s *models.Session) (string, error) {
	token, err := c.newToken()
	if err != nil {
		return "", fmt.Errorf("session token: %w", err)
	}

	claims := sessionClaims{
		UserID:       s.UserID,
		SessionToken: token,
		Expires:      s.ExpiresAt.UTC().Format(time.RFC3339Nano),
	}

	value, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}

	s.Token = token
	return value, nil
}

// Decode verifies the signature of value and returns the session it carries.
// Every failure wraps common.ErrDecode.
func (c *SessionCodec) Decode(value string) (s *models.Session, err error) {
	defer func() {
		if r := recover(); r != nil {
			s, err = nil, fmt.Errorf("%w: %v", common.ErrDecode, r)
		}
	}()

	claims := &sessionClaims{}
	_, err = jwt.ParseWithClaims(value, claims,
		func(t *jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrDecode, err)
	}

	if claims.UserID <= 0 || claims.SessionToken == "" || claims.Expires == "" {
		return nil, fmt.Errorf("%w: missing fields", common.ErrDecode)
	}
	expires, err := time.Parse(time.RFC3339Nano, claims.Expires)
	if err != nil {
		return nil, fmt.Errorf("%w: expiry: %w", common.ErrDecode, err)
	}

	return &models.Session{UserID: claims.UserID, Token: claims.SessionToken, ExpiresAt: expires}, nil
}
