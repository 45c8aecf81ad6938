package models

import "time"

// Session is the payload carried by the session cookie and, in database
// mode, a row of the sessions table.
type Session struct {
	UserID    int64
	Token     string
	ExpiresAt time.Time
}

// Expired reports whether s is no longer valid at now. A session whose
// expiry equals now is expired.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// Summary describes a freshly created or renewed session.
type Summary struct {
	UserID    int64     `json:"userId"`
	ExpiresAt time.Time `json:"expires"`
}

// CurrentSession is what a validated request learns about its caller.
type CurrentSession struct {
	User      PublicUser `json:"user"`
	ExpiresAt time.Time  `json:"expires"`
	Renewed   bool       `json:"-"`
}
