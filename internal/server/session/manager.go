package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/outreach/internal/common"
	"github.com/dmitrijs2005/outreach/internal/logging"
	"github.com/dmitrijs2005/outreach/internal/server/models"
)

// Validation outcomes reported to Metrics.
const (
	OutcomeAbsent    = "absent"
	OutcomeMalformed = "malformed"
	OutcomeExpired   = "expired"
	OutcomeRevoked   = "revoked"
	OutcomeOrphaned  = "orphaned"
	OutcomeValid     = "valid"
	OutcomeRenewed   = "renewed"
	OutcomeError     = "error"
)

// Codec converts sessions to and from their transport form.
type Codec interface {
	Encode(s *models.Session) (string, error)
	Decode(value string) (*models.Session, error)
}

// UserLookup resolves the owner of a session.
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// Metrics receives session lifecycle events.
type Metrics interface {
	SessionValidated(outcome string)
	SessionIssued(renewal bool)
}

type noopMetrics struct{}

func (noopMetrics) SessionValidated(string) {}
func (noopMetrics) SessionIssued(bool)      {}

// Manager creates, validates, renews and destroys sessions.
type Manager struct {
	codec    Codec
	users    UserLookup
	registry Registry
	logger   logging.Logger
	metrics  Metrics
	now      func() time.Time

	duration      time.Duration
	renewalWindow time.Duration
}

type Option func(*Manager)

// WithRegistry enables server-side session records.
func WithRegistry(r Registry) Option { return func(m *Manager) { m.registry = r } }

func WithClock(now func() time.Time) Option { return func(m *Manager) { m.now = now } }

func WithMetrics(mt Metrics) Option { return func(m *Manager) { m.metrics = mt } }

// WithDurations sets the session lifetime and the renewal window.
func WithDurations(duration, renewalWindow time.Duration) Option {
	return func(m *Manager) {
		m.duration = duration
		m.renewalWindow = renewalWindow
	}
}

func NewManager(codec Codec, users UserLookup, logger logging.Logger, opts ...Option) *Manager {
	m := &Manager{
		codec:         codec,
		users:         users,
		logger:        logger.With("module", "session"),
		metrics:       noopMetrics{},
		now:           time.Now,
		duration:      common.DefaultSessionDuration,
		renewalWindow: common.DefaultRenewalWindow,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Create issues a session for userID expiring one session duration from now
// and writes it to a, replacing any previous session.
func (m *Manager) Create(ctx context.Context, a Artifact, userID int64) (*models.Summary, error) {
	return m.create(ctx, a, userID, false)
}

// Renew has the same effect as Create: the new session replaces the old one.
func (m *Manager) Renew(ctx context.Context, a Artifact, userID int64) (*models.Summary, error) {
	return m.create(ctx, a, userID, true)
}

func (m *Manager) create(ctx context.Context, a Artifact, userID int64, renewal bool) (*models.Summary, error) {
	s, value, err := m.issue(userID)
	if err != nil {
		return nil, err
	}
	var prev string
	if m.registry != nil {
		prev = m.carriedToken(a)
		if err := m.registry.Save(ctx, s); err != nil {
			return nil, fmt.Errorf("save session: %w", err)
		}
	}
	if err := a.Write(value, s.ExpiresAt); err != nil {
		return nil, fmt.Errorf("write session: %w", err)
	}
	// The replaced session must not outlive its cookie.
	if prev != "" && prev != s.Token {
		m.forget(ctx, prev)
	}

	m.issued(ctx, s, renewal)
	return &models.Summary{UserID: userID, ExpiresAt: s.ExpiresAt}, nil
}

// Get validates the session carried by a and returns its owner, or nil when
// there is no valid session. Invalid artifacts are cleared. A session with
// less than the renewal window left is renewed before returning. Get never
// fails: store errors are logged and read as "no session".
func (m *Manager) Get(ctx context.Context, a Artifact) (cur *models.CurrentSession) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error(ctx, "session validation panicked", "panic", r)
			m.metrics.SessionValidated(OutcomeError)
			cur = nil
		}
	}()

	value, err := a.Read()
	if err != nil {
		if !errors.Is(err, ErrNoArtifact) {
			m.logger.Warn(ctx, "session read failed", "error", err)
		}
		m.metrics.SessionValidated(OutcomeAbsent)
		return nil
	}

	s, err := m.codec.Decode(value)
	if err != nil {
		m.logger.Debug(ctx, "session rejected", "error", err)
		return m.reject(ctx, a, OutcomeMalformed)
	}

	now := m.now()
	if s.Expired(now) {
		if m.registry != nil {
			m.forget(ctx, s.Token)
		}
		return m.reject(ctx, a, OutcomeExpired)
	}

	if m.registry != nil {
		rec, err := m.registry.Lookup(ctx, s.Token)
		switch {
		case errors.Is(err, common.ErrorNotFound):
			return m.reject(ctx, a, OutcomeRevoked)
		case err != nil:
			m.logger.Error(ctx, "session lookup failed", "error", err)
			m.metrics.SessionValidated(OutcomeError)
			return nil
		case rec.UserID != s.UserID || rec.Expired(now):
			m.forget(ctx, s.Token)
			return m.reject(ctx, a, OutcomeRevoked)
		}
	}

	user, err := m.users.GetByID(ctx, s.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			if m.registry != nil {
				m.forget(ctx, s.Token)
			}
			return m.reject(ctx, a, OutcomeOrphaned)
		}
		m.logger.Error(ctx, "session user lookup failed", "user_id", s.UserID, "error", err)
		m.metrics.SessionValidated(OutcomeError)
		return nil
	}

	cur = &models.CurrentSession{User: user.Public(), ExpiresAt: s.ExpiresAt}

	if s.ExpiresAt.Sub(now) < m.renewalWindow {
		next, err := m.rotate(ctx, a, s)
		if err != nil {
			m.logger.Warn(ctx, "session renewal failed", "user_id", s.UserID, "error", err)
		} else {
			cur.ExpiresAt = next.ExpiresAt
			cur.Renewed = true
			m.metrics.SessionValidated(OutcomeRenewed)
			return cur
		}
	}

	m.metrics.SessionValidated(OutcomeValid)
	return cur
}

// Destroy clears the session artifact. It succeeds when there is nothing to
// clear and may be called any number of times.
func (m *Manager) Destroy(ctx context.Context, a Artifact) error {
	var token string
	if m.registry != nil {
		token = m.carriedToken(a)
	}

	if err := a.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}

	if token != "" {
		if err := m.registry.Remove(ctx, token); err != nil {
			return fmt.Errorf("remove session: %w", err)
		}
	}
	return nil
}

// carriedToken returns the token of the session a currently carries, or "".
func (m *Manager) carriedToken(a Artifact) string {
	value, err := a.Read()
	if err != nil {
		return ""
	}
	s, err := m.codec.Decode(value)
	if err != nil {
		return ""
	}
	return s.Token
}

func (m *Manager) issue(userID int64) (*models.Session, string, error) {
	s := &models.Session{UserID: userID, ExpiresAt: m.now().Add(m.duration)}
	value, err := m.codec.Encode(s)
	if err != nil {
		return nil, "", fmt.Errorf("encode session: %w", err)
	}
	return s, value, nil
}

// rotate renews prev, replacing its registry record when there is one.
func (m *Manager) rotate(ctx context.Context, a Artifact, prev *models.Session) (*models.Summary, error) {
	if m.registry == nil {
		return m.Renew(ctx, a, prev.UserID)
	}

	s, value, err := m.issue(prev.UserID)
	if err != nil {
		return nil, err
	}
	if err := m.registry.Rotate(ctx, prev.Token, s); err != nil {
		return nil, fmt.Errorf("rotate session: %w", err)
	}
	if err := a.Write(value, s.ExpiresAt); err != nil {
		return nil, fmt.Errorf("write session: %w", err)
	}

	m.issued(ctx, s, true)
	return &models.Summary{UserID: s.UserID, ExpiresAt: s.ExpiresAt}, nil
}

func (m *Manager) issued(ctx context.Context, s *models.Session, renewal bool) {
	m.metrics.SessionIssued(renewal)
	msg := "session created"
	if renewal {
		msg = "session renewed"
	}
	m.logger.Info(ctx, msg, "user_id", s.UserID, "expires", s.ExpiresAt)
}

func (m *Manager) reject(ctx context.Context, a Artifact, outcome string) *models.CurrentSession {
	if err := a.Clear(); err != nil {
		m.logger.Warn(ctx, "session clear failed", "error", err)
	}
	m.metrics.SessionValidated(outcome)
	return nil
}

func (m *Manager) forget(ctx context.Context, token string) {
	if err := m.registry.Remove(ctx, token); err != nil {
		m.logger.Warn(ctx, "session record removal failed", "error", err)
	}
}
