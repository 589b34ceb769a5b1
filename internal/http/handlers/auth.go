package handlers

import (
	"errors"
	"net/http"

	"github.com/hongminglow/itarix-api/internal/account"
	"github.com/hongminglow/itarix-api/internal/auth"
	"github.com/hongminglow/itarix-api/internal/http/respond"
	"github.com/hongminglow/itarix-api/internal/logging"
	"github.com/hongminglow/itarix-api/internal/models/dto"
)

const forgotPasswordMessage = "If an account exists for that email, a reset link has been sent"

// AuthHandler owns registration, login and session endpoints.
type AuthHandler struct {
	accounts *account.Service
	log      logging.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(accounts *account.Service, log logging.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, log: log}
}

// Register attaches auth routes to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /auth/register", h.handleRegister)
	mux.HandleFunc("GET /auth/verify-email", h.handleVerifyEmail)
	mux.HandleFunc("POST /auth/login", h.handleLogin)
	mux.HandleFunc("POST /auth/refresh-token", h.handleRefresh)
	mux.HandleFunc("POST /auth/logout", h.handleLogout)
	mux.HandleFunc("POST /auth/forgot-password", h.handleForgotPassword)
	mux.HandleFunc("POST /auth/reset-password", h.handleResetPassword)
	mux.Handle("GET /auth/validate", authed(h.handleValidate))
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	id, err := h.accounts.Register(r.Context(), account.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusCreated, "Registration successful, please check your email to verify your account", map[string]int64{"userId": id})
}

func (h *AuthHandler) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	acc, err := h.accounts.VerifyEmail(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Email verified successfully", map[string]string{"username": acc.Username})
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	acc, err := h.accounts.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	pair, err := h.accounts.IssueSession(r.Context(), acc)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "login successful", dto.LoginResponse{
		UserID:           acc.ID,
		Username:         acc.Username,
		Role:             acc.Role,
		AccessToken:      pair.AccessToken,
		AccessExpiresAt:  pair.AccessExpiresAt,
		RefreshToken:     pair.RefreshToken,
		RefreshExpiresAt: pair.RefreshExpiresAt,
	})
}

func (h *AuthHandler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshTokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	_, pair, err := h.accounts.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "token refreshed", tokenResponse(pair))
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshTokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := h.accounts.Logout(r.Context(), req.RefreshToken); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "logged out", nil)
}

func (h *AuthHandler) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.EmailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if _, err := h.accounts.ForgotPassword(r.Context(), req.Email); err != nil && !errors.Is(err, account.ErrNotFound) {
		h.log.Error(r.Context(), "forgot password", "error", err)
	}
	respond.JSON(w, http.StatusOK, forgotPasswordMessage, nil)
}

func (h *AuthHandler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := h.accounts.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Password has been reset", nil)
}

func (h *AuthHandler) handleValidate(w http.ResponseWriter, r *http.Request) {
	id := identity(r)
	respond.JSON(w, http.StatusOK, "token valid", dto.ValidateResponse{
		UserID:   id.AccountID,
		Username: id.Name,
		Email:    id.Email,
		Role:     id.Role,
	})
}

func tokenResponse(pair auth.TokenPair) dto.TokenResponse {
	return dto.TokenResponse{
		AccessToken:      pair.AccessToken,
		AccessExpiresAt:  pair.AccessExpiresAt,
		RefreshToken:     pair.RefreshToken,
		RefreshExpiresAt: pair.RefreshExpiresAt,
	}
}
