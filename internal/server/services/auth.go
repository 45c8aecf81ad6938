// Package services contains server-side business logic. AuthService handles
// registration, login and logout on top of the credential store, the
// password hasher and the session manager.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/dmitrijs2005/outreach/internal/common"
	"github.com/dmitrijs2005/outreach/internal/logging"
	"github.com/dmitrijs2005/outreach/internal/server/auth"
	"github.com/dmitrijs2005/outreach/internal/server/config"
	"github.com/dmitrijs2005/outreach/internal/server/models"
	"github.com/dmitrijs2005/outreach/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/outreach/internal/server/session"
)

// emailPattern accepts local@domain.tld with no whitespace and a single @.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Results reported to AuthMetrics.
const (
	ResultSuccess            = "success"
	ResultInvalid            = "invalid"
	ResultWeakPassword       = "weak_password"
	ResultDuplicate          = "duplicate"
	ResultInvalidCredentials = "invalid_credentials"
	ResultError              = "error"
)

type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext, digest string) bool
}

type SessionDestroyer interface {
	Destroy(ctx context.Context, a session.Artifact) error
}

type AuthMetrics interface {
	Registration(result string)
	Login(result string)
}

type noopMetrics struct{}

func (noopMetrics) Registration(string) {}
func (noopMetrics) Login(string)        {}

// AuthService provides the authentication operations:
// - Register: validate input and create a user
// - Login: check credentials without revealing which part was wrong
// - Logout: destroy the caller's session
type AuthService struct {
	db                *sql.DB
	repomanager       repomanager.RepositoryManager
	hasher            PasswordHasher
	sessions          SessionDestroyer
	logger            logging.Logger
	metrics           AuthMetrics
	minPasswordLength int

	dummyOnce   sync.Once
	dummyDigest string
}

// NewAuthService constructs an AuthService. db may be nil with the in-memory
// repository manager.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, h PasswordHasher, sessions SessionDestroyer, logger logging.Logger, cfg *config.Config) *AuthService {
	return &AuthService{
		db:                db,
		repomanager:       m,
		hasher:            h,
		sessions:          sessions,
		logger:            logger.With("module", "auth_service"),
		metrics:           noopMetrics{},
		minPasswordLength: cfg.MinPasswordLength,
	}
}

// WithMetrics sets the metrics sink and returns s.
func (s *AuthService) WithMetrics(m AuthMetrics) *AuthService {
	s.metrics = m
	return s
}

// Register creates a user. It returns a *common.ValidationError for missing
// or malformed fields, common.ErrWeakPassword for a short password and
// common.ErrDuplicateEmail when the email is taken in any letter case.
// It does not start a session.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*models.PublicUser, error) {
	u, err := s.register(ctx, strings.TrimSpace(email), password, strings.TrimSpace(name))
	s.metrics.Registration(resultOf(err))
	return u, err
}

func (s *AuthService) register(ctx context.Context, email, password, name string) (*models.PublicUser, error) {
	if err := common.MissingFields("email", email, "password", password, "name", name); err != nil {
		return nil, err
	}
	if !emailPattern.MatchString(email) {
		return nil, &common.ValidationError{Reason: "invalid email format"}
	}
	if utf8.RuneCountInString(password) < s.minPasswordLength {
		return nil, common.ErrWeakPassword
	}
	if len(password) > auth.MaxPasswordBytes {
		return nil, &common.ValidationError{Reason: fmt.Sprintf("password must be at most %d bytes long", auth.MaxPasswordBytes)}
	}

	repo := s.repomanager.Users(s.db)

	// The unique index decides; this lookup only saves a bcrypt round.
	_, err := repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, common.ErrDuplicateEmail
	case !errors.Is(err, common.ErrorNotFound):
		s.logger.Error(ctx, "user lookup failed", "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	digest, err := s.hasher.Hash(ctx, password)
	if err != nil {
		s.logger.Error(ctx, "password hashing failed", "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	user, err := repo.Create(ctx, &models.User{Name: name, Email: email, PasswordHash: digest})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateEmail) || errors.Is(err, common.ErrValidation) {
			return nil, err
		}
		s.logger.Error(ctx, "error creating user", "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	pub := user.Public()
	return &pub, nil
}

// Login checks credentials. An unknown email and a wrong password both give
// common.ErrInvalidCredentials, and both cost one bcrypt comparison.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.PublicUser, error) {
	u, err := s.login(ctx, strings.TrimSpace(email), password)
	s.metrics.Login(resultOf(err))
	return u, err
}

func (s *AuthService) login(ctx context.Context, email, password string) (*models.PublicUser, error) {
	if err := common.MissingFields("email", email, "password", password); err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.Verify(ctx, password, s.dummy(ctx))
			return nil, common.ErrInvalidCredentials
		}
		s.logger.Error(ctx, "user lookup failed", "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	if !s.hasher.Verify(ctx, password, user.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}

	pub := user.Public()
	return &pub, nil
}

// Logout destroys the session carried by a. Having no session is not an error.
func (s *AuthService) Logout(ctx context.Context, a session.Artifact) error {
	if err := s.sessions.Destroy(ctx, a); err != nil {
		s.logger.Error(ctx, "logout failed", "error", err)
		return fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	return nil
}

// dummy returns a digest of a random password, computed once, to compare
// against when the email is unknown.
func (s *AuthService) dummy(ctx context.Context) string {
	s.dummyOnce.Do(func() {
		pw, err := common.MakeRandHexString(16)
		if err != nil {
			return
		}
		s.dummyDigest, _ = s.hasher.Hash(context.WithoutCancel(ctx), pw)
	})
	return s.dummyDigest
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return ResultSuccess
	case errors.Is(err, common.ErrValidation):
		return ResultInvalid
	case errors.Is(err, common.ErrWeakPassword):
		return ResultWeakPassword
	case errors.Is(err, common.ErrDuplicateEmail):
		return ResultDuplicate
	case errors.Is(err, common.ErrInvalidCredentials):
		return ResultInvalidCredentials
	default:
		return ResultError
	}
}
