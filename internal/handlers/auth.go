package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kgrierson/stronghold/internal/models"
	"github.com/kgrierson/stronghold/internal/services"
	pkghttp "github.com/kgrierson/stronghold/pkg/http"
	pkglogger "github.com/kgrierson/stronghold/pkg/logger"
)

// AuthServiceInterface defines the interface for authentication business logic
type AuthServiceInterface interface {
	Login(ctx context.Context, username, password string) (*services.LoginResult, error)
	ChangePassword(ctx context.Context, accountID int64, currentPassword, newPassword string) (bool, error)
	ValidatePassword(password string) bool
}

// SessionInterface defines the interface for the in-process session
type SessionInterface interface {
	SetCurrentUser(account *models.Account)
	ClearCurrentUser()
	CurrentUser() *models.Account
	HasRequiredAccess(required models.AccessLevel) bool
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	service AuthServiceInterface
	session SessionInterface
	logger  *slog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface, session SessionInterface, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		session: session,
		logger:  logger,
	}
}

// Request DTOs

// LoginRequest represents the request body for login
type LoginRequest struct {
	Username string `json:"username" validate:"required,min=1,max=100"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest represents the request body for a password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
}

// AccessCheckRequest represents the request body for an access check
type AccessCheckRequest struct {
	RequiredLevel string `json:"required_level" validate:"required"`
}

// Response DTOs

// AccountResponse is the caller-facing view of an account. The password hash,
// security stamp, and lockout bookkeeping never leave the service.
type AccountResponse struct {
	ID          int64      `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	AccessLevel string     `json:"access_level"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// LoginResponse represents a successful login
type LoginResponse struct {
	Message string          `json:"message"`
	Account AccountResponse `json:"account"`
}

// AccessCheckResponse represents the outcome of an access check
type AccessCheckResponse struct {
	Allowed bool `json:"allowed"`
}

func toAccountResponse(account *models.Account) AccountResponse {
	return AccountResponse{
		ID:          account.ID,
		Username:    account.Username,
		Email:       account.Email,
		AccessLevel: account.AccessLevel.String(),
		LastLoginAt: account.LastLoginAt,
	}
}

// Login authenticates a username/password pair and establishes the session
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	req.Username = strings.TrimSpace(req.Username)

	result, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "login handler failure",
			slog.String("username", pkglogger.SanitizedUsername(req.Username)),
			slog.String("client_ip", pkghttp.ExtractClientIP(r)),
			slog.Any("error", err),
		)
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	if !result.Success {
		if result.Locked {
			pkghttp.WriteTooManyRequests(w, result.Message)
			return
		}
		pkghttp.WriteUnauthorized(w, result.Message)
		return
	}

	h.session.SetCurrentUser(result.Account)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(LoginResponse{
		Message: result.Message,
		Account: toAccountResponse(result.Account),
	})
}

// Logout clears the session. Idempotent; logging out twice is not an error.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.session.ClearCurrentUser()
	w.WriteHeader(http.StatusNoContent)
}

// Session returns the current identity, or 401 when nobody is logged in
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	account := h.session.CurrentUser()
	if account == nil {
		pkghttp.WriteUnauthorized(w, "Not logged in")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(toAccountResponse(account))
}

// ChangePassword changes the logged-in account's password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	account := h.session.CurrentUser()
	if account == nil {
		pkghttp.WriteUnauthorized(w, "Not logged in")
		return
	}

	var req ChangePasswordRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	changed, err := h.service.ChangePassword(r.Context(), account.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "password change handler failure",
			slog.Int64("account_id", account.ID),
			slog.Any("error", err),
		)
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	if !changed {
		// One generic message for a wrong current password and a weak new one,
		// so the response does not reveal which check failed.
		pkghttp.WriteBadRequest(w, "Password change failed")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CheckAccess evaluates whether the current identity satisfies a required level
func (h *AuthHandler) CheckAccess(w http.ResponseWriter, r *http.Request) {
	var req AccessCheckRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	level, err := models.ParseAccessLevel(req.RequiredLevel)
	if err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(AccessCheckResponse{
		Allowed: h.session.HasRequiredAccess(level),
	})
}
