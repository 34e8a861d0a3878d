package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JaimeStill/aligner/pkg/handlers"
	"github.com/JaimeStill/aligner/pkg/routes"
)

type userKey struct{}

// WithUser returns a context carrying u.
func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFromContext returns the authenticated user, or nil when the request is anonymous.
func UserFromContext(ctx context.Context) *User {
	u, _ := ctx.Value(userKey{}).(*User)
	return u
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Authenticate attaches the token's user to the request context when a valid
// bearer token is present. Anonymous and invalid requests pass through untouched.
func Authenticate(sys System, logger *slog.Logger) routes.Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next(w, r)
				return
			}

			u, err := sys.Authenticate(r.Context(), token)
			if err != nil {
				logger.Debug("ignoring invalid token", "error", err)
				next(w, r)
				return
			}

			next(w, r.WithContext(WithUser(r.Context(), u)))
		}
	}
}

// RequireAuth rejects requests without a valid token for an existing, active user.
// The user is reloaded from the store on every request.
func RequireAuth(sys System, logger *slog.Logger) routes.Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if u := UserFromContext(r.Context()); u != nil {
				next(w, r)
				return
			}

			token := bearerToken(r)
			if token == "" {
				handlers.RespondError(w, logger, http.StatusUnauthorized, ErrUnauthorized)
				return
			}

			u, err := sys.Authenticate(r.Context(), token)
			if err != nil {
				handlers.RespondError(w, logger, MapHTTPStatus(err), err)
				return
			}

			next(w, r.WithContext(WithUser(r.Context(), u)))
		}
	}
}

// RequireAdmin rejects authenticated users without the admin role.
// It must run after RequireAuth.
func RequireAdmin(logger *slog.Logger) routes.Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			u := UserFromContext(r.Context())
			if u == nil {
				handlers.RespondError(w, logger, http.StatusUnauthorized, ErrUnauthorized)
				return
			}
			if !u.IsAdmin() {
				handlers.RespondError(w, logger, http.StatusForbidden, ErrForbidden)
				return
			}
			next(w, r)
		}
	}
}
