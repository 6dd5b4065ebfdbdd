// Package http provides HTTP handlers for account authentication and file
// sharing.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ndanilin/filebox/internal/models"
	"github.com/ndanilin/filebox/internal/service"
)

// AccountService defines the account-lifecycle operations required by the
// HTTP handlers.
type AccountService interface {
	// Register creates a new account, activated or code-pending depending
	// on the configured mode.
	Register(ctx context.Context, username, password, confirm string) (*models.Account, error)
	// Login verifies credentials, consuming the activation code first for
	// unactivated accounts.
	Login(ctx context.Context, username, password, activationCode string) (*models.Account, error)
}

// SessionIssuer creates and destroys sessions for authenticated accounts.
type SessionIssuer interface {
	Create(ctx context.Context, accountID int64) (string, error)
	Destroy(ctx context.Context, token string) error
}

// AuthHandler handles HTTP requests for registration, login, and logout.
type AuthHandler struct {
	Accounts   AccountService
	Sessions   SessionIssuer
	CookieName string
	SessionTTL time.Duration
	Log        *zap.Logger
}

// RegisterRequest represents the JSON payload for registration.
type RegisterRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// LoginRequest represents the JSON payload for login. ActivationCode is only
// consulted for accounts that still await activation.
type LoginRequest struct {
	Username       string `json:"username"`
	Password       string `json:"password"`
	ActivationCode string `json:"activation_code"`
}

// Register handles user registration requests.
// In instant mode the new account receives a session right away; in code mode
// the response tells the client to proceed to login with the activation code.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	account, err := h.Accounts.Register(r.Context(), req.Username, req.Password, req.ConfirmPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameRequired),
			errors.Is(err, service.ErrPasswordRequired),
			errors.Is(err, service.ErrPasswordMismatch):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, service.ErrUsernameTaken):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			h.Log.Error("register failed", zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	if !account.Activated {
		writeJSON(w, http.StatusCreated, map[string]any{
			"account":             account,
			"activation_required": true,
		})
		return
	}

	if err := h.issueSession(w, r, account.ID); err != nil {
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"account": account})
}

// Login handles login requests, issuing a session cookie on success.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	account, err := h.Accounts.Login(r.Context(), req.Username, req.Password, req.ActivationCode)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			http.Error(w, err.Error(), http.StatusUnauthorized)
		case errors.Is(err, service.ErrActivationCodeInvalid),
			errors.Is(err, service.ErrActivationCodeExpired):
			http.Error(w, err.Error(), http.StatusForbidden)
		default:
			h.Log.Error("login failed", zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	if err := h.issueSession(w, r, account.ID); err != nil {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"account": account})
}

// Logout destroys the current session and clears the cookie.
// The session gate has already authorized the request.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.CookieName); err == nil {
		if err := h.Sessions.Destroy(r.Context(), cookie.Value); err != nil {
			h.Log.Error("logout failed", zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// issueSession creates a session for the account and sets the cookie.
// On failure it writes the error response itself and returns the error.
func (h *AuthHandler) issueSession(w http.ResponseWriter, r *http.Request, accountID int64) error {
	token, err := h.Sessions.Create(r.Context(), accountID)
	if err != nil {
		h.Log.Error("failed to create session", zap.Error(err), zap.Int64("account_id", accountID))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
