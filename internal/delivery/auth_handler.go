package delivery

import (
	"encoding/json"
	"net/http"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/voxstudio/internal/ports"
)

type AuthHandler struct {
	auth ports.AuthService
	log  *logger.ZapLogger
}

func NewAuthHandler(auth ports.AuthService, log *logger.ZapLogger) *AuthHandler {
	return &AuthHandler{
		auth: auth,
		log:  log,
	}
}

// POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid json: "+err.Error()))
		return
	}

	token, err := h.auth.Login(r.Context(), req.Password)
	if err != nil {
		h.log.Log(logger.LogEntry{
			Level:   "warn",
			Message: "login failed",
			Error:   err,
		})
		writeJSON(w, http.StatusUnauthorized, errorBody("invalid password"))
		return
	}

	h.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "login success",
	})

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}
