package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/chieftain/api/middleware"
	"github.com/angelmondragon/chieftain/api/responses"
	"github.com/angelmondragon/chieftain/api/validators"
	"github.com/angelmondragon/chieftain/internal/session"
	"github.com/angelmondragon/chieftain/pkg/config"
	pkgerrors "github.com/angelmondragon/chieftain/pkg/errors"
	"github.com/angelmondragon/chieftain/pkg/gateway"
	"github.com/angelmondragon/chieftain/pkg/logger"
)

// Sessions is the sign-in surface of the session registry.
type Sessions interface {
	Login(ctx context.Context, creds gateway.Credentials) (*session.Session, error)
	Signup(ctx context.Context, req gateway.SignupRequest) (*session.Session, error)
	Logout(ctx context.Context, id string) error
}

type sessionResponse struct {
	SessionID string       `json:"sessionId"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      gateway.User `json:"user"`
}

func newSessionResponse(sess *session.Session) sessionResponse {
	return sessionResponse{SessionID: sess.ID, ExpiresAt: sess.ExpiresAt, User: sess.User}
}

// AuthLogin signs the shopper in and issues the session cookie.
func AuthLogin(svc Sessions, cfg config.SessionConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload gateway.Credentials
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payload.Email = strings.TrimSpace(payload.Email)

		sess, err := svc.Login(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setSessionCookie(w, cfg, sess)
		responses.WriteSuccess(w, newSessionResponse(sess))
	}
}

// AuthSignup creates the account and signs it in.
func AuthSignup(svc Sessions, cfg config.SessionConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload gateway.SignupRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sess, err := svc.Signup(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setSessionCookie(w, cfg, sess)
		responses.WriteSuccessStatus(w, http.StatusCreated, newSessionResponse(sess))
	}
}

// AuthLogout ends the session. Logging out without a session succeeds.
func AuthLogout(svc Sessions, cfg config.SessionConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := middleware.SessionID(r, cfg.CookieName)
		clearSessionCookie(w, cfg)
		if id == "" {
			responses.WriteNoContent(w)
			return
		}
		if err := svc.Logout(r.Context(), id); err != nil {
			// The session is gone locally either way; report the partial failure.
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "logout incomplete"))
			return
		}
		responses.WriteNoContent(w)
	}
}

// AuthMe returns the signed-in user.
func AuthMe(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, newSessionResponse(sess))
	}
}

func setSessionCookie(w http.ResponseWriter, cfg config.SessionConfig, sess *session.Session) {
	w.Header().Set(middleware.SessionHeader, sess.ID)
	if cfg.CookieName == "" {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    sess.ID,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter, cfg config.SessionConfig) {
	if cfg.CookieName == "" {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func requireSession(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (*session.Session, bool) {
	sess := middleware.SessionFromContext(r.Context())
	if sess == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "not signed in"))
		return nil, false
	}
	return sess, true
}
