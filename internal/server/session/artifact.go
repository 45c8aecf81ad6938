// Package session implements the session lifecycle: create, validate with
// sliding renewal, and destroy. The transport that carries the session
// (normally a cookie) is passed in per request as an Artifact.
package session

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

// ErrNoArtifact is returned by Artifact.Read when the request carries no session.
var ErrNoArtifact = errors.New("no session artifact")

// Artifact reads and writes the single session value of one request/response
// pair. Write overwrites any previous value.
type Artifact interface {
	Read() (string, error)
	Write(value string, expires time.Time) error
	Clear() error
}

// CookieOptions are the attributes of the session cookie.
type CookieOptions struct {
	Name   string
	Secure bool
}

// CookieArtifact stores the session in an HttpOnly, SameSite=Lax cookie with
// Path=/. After a Write or Clear, Read reflects the pending response value.
type CookieArtifact struct {
	w    http.ResponseWriter
	r    *http.Request
	opts CookieOptions

	written bool
	value   string
}

func NewCookieArtifact(w http.ResponseWriter, r *http.Request, opts CookieOptions) *CookieArtifact {
	return &CookieArtifact{w: w, r: r, opts: opts}
}

func (a *CookieArtifact) Read() (string, error) {
	if a.written {
		if a.value == "" {
			return "", ErrNoArtifact
		}
		return a.value, nil
	}
	c, err := a.r.Cookie(a.opts.Name)
	if err != nil || c.Value == "" {
		return "", ErrNoArtifact
	}
	return c.Value, nil
}

func (a *CookieArtifact) Write(value string, expires time.Time) error {
	c := a.cookie(value)
	c.Expires = expires.UTC()
	a.set(c)
	a.written, a.value = true, value
	return nil
}

func (a *CookieArtifact) Clear() error {
	c := a.cookie("")
	c.Expires = time.Unix(0, 0).UTC()
	c.MaxAge = -1
	a.set(c)
	a.written, a.value = true, ""
	return nil
}

func (a *CookieArtifact) cookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     a.opts.Name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   a.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// set replaces any Set-Cookie header for the same cookie already queued on
// this response, so at most one session cookie is sent.
func (a *CookieArtifact) set(c *http.Cookie) {
	h := a.w.Header()
	prefix := a.opts.Name + "="
	var kept []string
	for _, v := range h.Values("Set-Cookie") {
		if !strings.HasPrefix(v, prefix) {
			kept = append(kept, v)
		}
	}
	h.Del("Set-Cookie")
	for _, v := range kept {
		h.Add("Set-Cookie", v)
	}
	http.SetCookie(a.w, c)
}

// MemoryArtifact is an Artifact backed by a field; it suits tests and
// non-HTTP callers.
type MemoryArtifact struct {
	Value   string
	Expires time.Time
	Writes  int
}

func (m *MemoryArtifact) Read() (string, error) {
	if m.Value == "" {
		return "", ErrNoArtifact
	}
	return m.Value, nil
}

func (m *MemoryArtifact) Write(value string, expires time.Time) error {
	m.Value, m.Expires = value, expires
	m.Writes++
	return nil
}

func (m *MemoryArtifact) Clear() error {
	m.Value, m.Expires = "", time.Time{}
	return nil
}
