package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/angelmondragon/chieftain/api/responses"
	"github.com/angelmondragon/chieftain/internal/session"
	pkgerrors "github.com/angelmondragon/chieftain/pkg/errors"
	"github.com/angelmondragon/chieftain/pkg/logger"
)

// SessionHeader carries the session id for clients that do not keep cookies.
const SessionHeader = "X-Session-Id"

// SessionResolver finds the live session for an id.
type SessionResolver interface {
	Resolve(ctx context.Context, id string) (*session.Session, error)
}

// SessionID reads the session id from the cookie, falling back to the header.
func SessionID(r *http.Request, cookieName string) string {
	if r == nil {
		return ""
	}
	if cookieName != "" {
		if c, err := r.Cookie(cookieName); err == nil {
			if id := strings.TrimSpace(c.Value); id != "" {
				return id
			}
		}
	}
	return strings.TrimSpace(r.Header.Get(SessionHeader))
}

// RequireSession resolves the session of the request and seeds the context
// with it. Requests without a live session get 401.
func RequireSession(resolver SessionResolver, cookieName string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := SessionID(r, cookieName)
			if id == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "not signed in"))
				return
			}

			sess, err := resolver.Resolve(r.Context(), id)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithSession(r.Context(), sess)
			if logg != nil {
				ctx = logg.WithUserID(logg.WithSessionID(ctx, sess.ID), sess.User.ID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
