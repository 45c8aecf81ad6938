package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/outreach/internal/common"
	"github.com/dmitrijs2005/outreach/internal/logging"
	"github.com/dmitrijs2005/outreach/internal/server/models"
	"github.com/dmitrijs2005/outreach/internal/server/session"
)

// AuthGateway is the account side of the API.
type AuthGateway interface {
	Register(ctx context.Context, email, password, name string) (*models.PublicUser, error)
	Login(ctx context.Context, email, password string) (*models.PublicUser, error)
	Logout(ctx context.Context, a session.Artifact) error
}

// SessionManager issues and validates sessions.
type SessionManager interface {
	Create(ctx context.Context, a session.Artifact, userID int64) (*models.Summary, error)
	Get(ctx context.Context, a session.Artifact) *models.CurrentSession
}

type Handler struct {
	auth     AuthGateway
	sessions SessionManager
	cookie   session.CookieOptions
	health   func(context.Context) error
	logger   logging.Logger
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) artifact(w http.ResponseWriter, r *http.Request) *session.CookieArtifact {
	return session.NewCookieArtifact(w, r, h.cookie)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad request format")
		return
	}

	user, err := h.auth.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrValidation),
			errors.Is(err, common.ErrWeakPassword),
			errors.Is(err, common.ErrDuplicateEmail):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error(r.Context(), "registration failed", "error", err)
			writeError(w, http.StatusInternalServerError, internalErrorMessage)
		}
		return
	}

	writeJSON(w, http.StatusCreated, apiResponse{
		Success: true,
		User:    user,
		Message: "User registered successfully",
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad request format")
		return
	}

	user, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrValidation),
			errors.Is(err, common.ErrInvalidCredentials):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error(r.Context(), "login failed", "error", err)
			writeError(w, http.StatusInternalServerError, internalErrorMessage)
		}
		return
	}

	summary, err := h.sessions.Create(r.Context(), h.artifact(w, r), user.ID)
	if err != nil {
		h.logger.Error(r.Context(), "session creation failed", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, internalErrorMessage)
		return
	}

	writeJSON(w, http.StatusOK, apiResponse{
		Success: true,
		User:    user,
		Expires: &summary.ExpiresAt,
		Message: "Login successful",
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), h.artifact(w, r)); err != nil {
		writeError(w, http.StatusInternalServerError, internalErrorMessage)
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Message: "Logged out successfully"})
}

// Session reports the current user, renewing the session when it is close
// to expiry.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	cur := h.sessions.Get(r.Context(), h.artifact(w, r))
	if cur == nil {
		writeError(w, http.StatusUnauthorized, common.ErrorUnauthorized.Error())
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{Success: true, User: &cur.User, Expires: &cur.ExpiresAt})
}

type pageResponse struct {
	Page    string             `json:"page"`
	User    *models.PublicUser `json:"user,omitempty"`
	Expires *time.Time         `json:"expires,omitempty"`
}

// Dashboard is the protected landing page. An invalid session is sent back
// to sign-in after its cookie has been cleared.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	cur := h.sessions.Get(r.Context(), h.artifact(w, r))
	if cur == nil {
		http.Redirect(w, r, common.SignInPath, http.StatusTemporaryRedirect)
		return
	}
	writeJSON(w, http.StatusOK, pageResponse{Page: "dashboard", User: &cur.User, Expires: &cur.ExpiresAt})
}

// Root sends visitors to the dashboard; the guard and the dashboard decide
// from there.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, common.DashboardPath, http.StatusTemporaryRedirect)
}

func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, pageResponse{Page: "signin"})
}

func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, pageResponse{Page: "signup"})
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health(r.Context()); err != nil {
			h.logger.Warn(r.Context(), "health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "not found")
}
