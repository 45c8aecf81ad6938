package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dmitrijs2005/outreach/internal/server/models"
)

const internalErrorMessage = "Internal server error"

// apiResponse is the body of every /api/auth response.
type apiResponse struct {
	Success bool               `json:"success"`
	User    *models.PublicUser `json:"user,omitempty"`
	Expires *time.Time         `json:"expires,omitempty"`
	Message string             `json:"message,omitempty"`
	Error   string             `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, apiResponse{Success: false, Error: msg})
}
