package common

import "time"

// SessionCookieName is the name of the single cookie carrying the session.
const SessionCookieName = "session_token"

const (
	DefaultSessionDuration = 7 * 24 * time.Hour
	DefaultRenewalWindow   = 24 * time.Hour
)

// Route targets used by the route guard and the placeholder pages.
const (
	SignInPath      = "/auth/signin"
	SignUpPath      = "/auth/signup"
	DashboardPath   = "/dashboard"
	LoginAPIPath    = "/api/auth/login"
	RegisterAPIPath = "/api/auth/register"
	LogoutAPIPath   = "/api/auth/logout"
	SessionAPIPath  = "/api/auth/session"
)
