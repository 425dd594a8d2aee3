package httpapi

import (
	"net/http"

	"deskhive/internal/service"

	"go.uber.org/zap"
)

// AuthHandler login/logout/registration endpoints.
type AuthHandler struct {
	auth   service.AuthService
	logger *zap.Logger
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(auth service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body loginBody
	if err := readBodyJSON(r, 1<<20, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid JSON body"))
		return
	}

	resp, err := h.auth.Login(r.Context(), service.LoginRequest{
		Email:    body.Email,
		Password: body.Password,
	})
	if err != nil {
		// Credential failures all collapse to one message; nothing about
		// which part was wrong leaks to the caller.
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID := sessionFrom(r)
	if sessionID == "" {
		writeJSON(w, http.StatusUnauthorized, Fail("missing session"))
		return
	}
	if err := h.auth.Logout(r.Context(), sessionID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]bool{"loggedOut": true}))
}

type registerBody struct {
	InvitationCode string `json:"invitationCode"`
	Email          string `json:"email"`
	Password       string `json:"password"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var body registerBody
	if err := readBodyJSON(r, 1<<20, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid JSON body"))
		return
	}

	resp, err := h.auth.Register(r.Context(), service.RegisterRequest{
		InvitationCode: body.InvitationCode,
		Email:          body.Email,
		Password:       body.Password,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(resp))
}
