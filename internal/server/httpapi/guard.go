package httpapi

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/outreach/internal/common"
)

// Guard redirects between the public and protected areas by looking only at
// whether the session cookie is present. Full validation happens in the
// handlers of protected pages.
type Guard struct {
	cookieName string
	publicOnly []string
	skip       []string
}

func NewGuard(cookieName string) *Guard {
	return &Guard{
		cookieName: cookieName,
		publicOnly: []string{common.SignInPath, common.SignUpPath, common.LoginAPIPath, common.RegisterAPIPath},
		skip:       []string{"/api/", "/static/", "/favicon.ico", "/metrics", "/healthz"},
	}
}

// Decide returns the redirect target for path, or "" to let the request pass.
//
//	no cookie, protected path      -> sign-in
//	cookie, sign-in/sign-up/login  -> dashboard
//	"/" always passes
func (g *Guard) Decide(path string, hasCookie bool) string {
	public := g.isPublicOnly(path)
	switch {
	case !hasCookie && !public && path != "/":
		return common.SignInPath
	case hasCookie && public:
		return common.DashboardPath
	default:
		return ""
	}
}

func (g *Guard) isPublicOnly(path string) bool {
	for _, p := range g.publicOnly {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func (g *Guard) skipped(path string) bool {
	for _, p := range g.skip {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.skipped(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		c, err := r.Cookie(g.cookieName)
		hasCookie := err == nil && c.Value != ""

		if target := g.Decide(r.URL.Path, hasCookie); target != "" {
			http.Redirect(w, r, target, http.StatusTemporaryRedirect)
			return
		}
		next.ServeHTTP(w, r)
	})
}
