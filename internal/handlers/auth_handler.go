package handlers

import (
	"net/http"

	"github.com/Lixing-Zhang/striv-storefront/backend/internal/models"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/service"
	"github.com/Lixing-Zhang/striv-storefront/backend/pkg/logger"
)

// AuthHandler handles registration, sessions and account recovery.
type AuthHandler struct {
	authService *service.AuthService
	log         *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		log:         log,
	}
}

// Signup handles POST /api/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if !decodeValid(w, r, &req, h.log) {
		return
	}
	resp, err := h.authService.Signup(r.Context(), req)
	h.respond(w, r, http.StatusCreated, resp, err)
}

// SignupAdmin handles POST /api/auth/signup-admin
func (h *AuthHandler) SignupAdmin(w http.ResponseWriter, r *http.Request) {
	var req models.AdminSignupRequest
	if !decodeJSON(w, r, &req, h.log) {
		return
	}
	// Secret first, then field rules.
	if err := h.authService.CheckAdminSecret(req.AdminSecret); err != nil {
		writeServiceError(w, r, err, h.log)
		return
	}
	if err := models.Validate(&req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		return
	}
	resp, err := h.authService.SignupAdmin(r.Context(), req)
	h.respond(w, r, http.StatusCreated, resp, err)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeJSON(w, r, &req, h.log) {
		return
	}
	resp, err := h.authService.Login(r.Context(), req)
	h.respond(w, r, http.StatusOK, resp, err)
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if !decodeJSON(w, r, &req, h.log) {
		return
	}
	h.message(w, r, h.authService.Logout(r.Context(), req.RefreshToken), "Logout successful")
}

// RefreshToken handles POST /api/auth/refresh-token
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if !decodeJSON(w, r, &req, h.log) {
		return
	}
	resp, err := h.authService.Refresh(r.Context(), req.RefreshToken)
	h.respond(w, r, http.StatusOK, resp, err)
}

// ForgotUsername handles POST /api/auth/forgot-username
func (h *AuthHandler) ForgotUsername(w http.ResponseWriter, r *http.Request) {
	var req models.EmailRequest
	if !decodeJSON(w, r, &req, h.log) {
		return
	}
	h.message(w, r, h.authService.ForgotUsername(r.Context(), req.Email), "Username sent to email")
}

// ForgotPassword handles POST /api/auth/forgot-password
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req models.EmailRequest
	if !decodeJSON(w, r, &req, h.log) {
		return
	}
	h.message(w, r, h.authService.ForgotPassword(r.Context(), req.Email), "Password reset email sent")
}

// ResetPassword handles POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if !decodeJSON(w, r, &req, h.log) {
		return
	}
	h.message(w, r, h.authService.ResetPassword(r.Context(), req.Token, req.Password), "Password reset successful")
}

func (h *AuthHandler) respond(w http.ResponseWriter, r *http.Request, status int, resp *models.AuthResponse, err error) {
	if err != nil {
		writeServiceError(w, r, err, h.log)
		return
	}
	WriteJSON(w, status, resp, h.log)
}

func (h *AuthHandler) message(w http.ResponseWriter, r *http.Request, err error, msg string) {
	if err != nil {
		writeServiceError(w, r, err, h.log)
		return
	}
	WriteJSON(w, http.StatusOK, messageResponse{Message: msg}, h.log)
}
