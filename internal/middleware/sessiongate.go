// Package middleware provides HTTP middlewares for authorization and logging.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ndanilin/filebox/internal/models"
	"github.com/ndanilin/filebox/internal/session"
)

type ctxKey string

const accountKey ctxKey = "account_id"

// Denial reasons reported to the client alongside the login redirect.
const (
	ReasonNotAuthenticated   = "not_authenticated"
	ReasonActivationRequired = "activation_required"
)

// SessionResolver resolves and destroys sessions by opaque token.
type SessionResolver interface {
	Get(ctx context.Context, token string) (*session.Session, error)
	Destroy(ctx context.Context, token string) error
}

// AccountFinder re-checks the account bound to a session.
type AccountFinder interface {
	// FindByID returns the account with the given id, or (nil, nil).
	FindByID(ctx context.Context, id int64) (*models.Account, error)
}

// SessionGate is a middleware that authorizes every protected request.
//
// It resolves the session cookie to a session, then re-validates the bound
// account's activation state against current storage. A missing or expired
// session denies with "not_authenticated". An account that has reverted to
// unactivated mid-session gets its session destroyed and is denied with
// "activation_required". On success the bound account id is stored in the
// request context for handlers and audit logging.
func SessionGate(sessions SessionResolver, accounts AccountFinder, cookieName string, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token := sessionToken(r, cookieName)
			if token == "" {
				denyToLogin(w, ReasonNotAuthenticated)
				return
			}

			sess, err := sessions.Get(ctx, token)
			if err != nil {
				if !errors.Is(err, session.ErrNotFound) && !errors.Is(err, session.ErrExpired) {
					log.Error("session lookup failed", zap.Error(err))
					http.Error(w, "internal error", http.StatusInternalServerError)
					return
				}
				denyToLogin(w, ReasonNotAuthenticated)
				return
			}

			account, err := accounts.FindByID(ctx, sess.AccountID)
			if err != nil {
				log.Error("account re-check failed", zap.Error(err), zap.Int64("account_id", sess.AccountID))
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			if account == nil || !account.Activated {
				// Activation was revoked after login; the session dies with it.
				if err := sessions.Destroy(ctx, token); err != nil {
					log.Error("failed to destroy session", zap.Error(err))
				}
				if account == nil {
					denyToLogin(w, ReasonNotAuthenticated)
				} else {
					denyToLogin(w, ReasonActivationRequired)
				}
				return
			}

			ctx = context.WithValue(ctx, accountKey, account.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetAccountIDFromContext extracts the authenticated account id from the
// request context. Returns 0 if not present.
func GetAccountIDFromContext(ctx context.Context) int64 {
	if id, ok := ctx.Value(accountKey).(int64); ok {
		return id
	}
	return 0
}

// sessionToken reads the session cookie. Missing cookie means no session.
func sessionToken(r *http.Request, cookieName string) string {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// denyToLogin writes the 401 denial the HTTP layer renders as a redirect to
// the login page.
func denyToLogin(w http.ResponseWriter, reason string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"redirect": "/login",
		"reason":   reason,
	})
}
