// Package config handles configuration for the server component:
// defaults, a JSON file overlay, .env and environment variables, and
// command-line flags, applied in that order.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/outreach/internal/common"
)

// Session storage modes.
const (
	// SessionModeCookie keeps the whole session in the signed cookie.
	SessionModeCookie = "cookie"
	// SessionModeServer additionally records every session in the session store.
	SessionModeServer = "server"
)

const EnvProduction = "production"

// Config holds runtime settings for the outreach server.
//
// Fields:
//   - HTTPAddr: bind address of the HTTP API.
//   - GRPCHealthAddr: bind address of the gRPC health endpoint; empty disables it.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty selects the in-memory store.
//   - SecretKey: HMAC key that signs session cookies.
//   - SessionDuration / RenewalWindow: session lifetime and the remaining
//     lifetime below which a session is renewed on access.
//   - Environment: "production" turns on Secure cookies.
type Config struct {
	HTTPAddr          string
	GRPCHealthAddr    string
	DatabaseDSN       string
	SecretKey         string
	SessionDuration   time.Duration
	RenewalWindow     time.Duration
	SessionMode       string
	CookieName        string
	Environment       string
	BcryptCost        int
	MinPasswordLength int
	LogLevel          string
	LogBackend        string
}

// LoadDefaults populates Config with development defaults.
// NOTE: SecretKey must be overridden in production; Validate enforces it.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8080"
	c.GRPCHealthAddr = ""
	c.DatabaseDSN = ""
	c.SecretKey = "secretKey"
	c.SessionDuration = common.DefaultSessionDuration
	c.RenewalWindow = common.DefaultRenewalWindow
	c.SessionMode = SessionModeCookie
	c.CookieName = common.SessionCookieName
	c.Environment = "development"
	c.BcryptCost = 12
	c.MinPasswordLength = 6
	c.LogLevel = "info"
	c.LogBackend = "slog"
}

// LoadConfig builds a Config from defaults, the optional JSON file, the
// environment and finally command-line flags. Malformed input panics.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	if err := parseEnv(cfg); err != nil {
		panic(err)
	}
	parseFlags(cfg)
	return cfg
}

// IsProduction reports whether cookies must carry the Secure attribute.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// Validate checks values that would otherwise fail late or silently.
func (c *Config) Validate() error {
	var errs []error

	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("http address is empty"))
	}
	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret key is empty"))
	}
	if c.IsProduction() && c.SecretKey == "secretKey" {
		errs = append(errs, errors.New("default secret key used in production"))
	}
	if c.SessionDuration <= 0 {
		errs = append(errs, fmt.Errorf("session duration must be positive, got %s", c.SessionDuration))
	}
	if c.RenewalWindow < 0 || c.RenewalWindow >= c.SessionDuration {
		errs = append(errs, fmt.Errorf("renewal window %s must be in [0, %s)", c.RenewalWindow, c.SessionDuration))
	}
	switch c.SessionMode {
	case SessionModeCookie, SessionModeServer:
	default:
		errs = append(errs, fmt.Errorf("unknown session mode %q", c.SessionMode))
	}
	if c.CookieName == "" {
		errs = append(errs, errors.New("cookie name is empty"))
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("bcrypt cost %d out of range [4, 31]", c.BcryptCost))
	}
	if c.MinPasswordLength < 1 {
		errs = append(errs, fmt.Errorf("min password length must be positive, got %d", c.MinPasswordLength))
	}

	return errors.Join(errs...)
}
