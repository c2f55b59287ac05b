package http

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	domsession "example.com/storefront-cart/app/internal/domain/session"
	domuser "example.com/storefront-cart/app/internal/domain/user"
)

type ctxKey int

const (
	ctxUserKey ctxKey = iota + 1
	ctxSessionKey
)

var (
	errUnauthenticated = errors.New("unauthenticated")
	errNoSession       = errors.New("session unavailable")
)

type authUser struct {
	UserID int64
	Email  string
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("http request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", chimw.GetReqID(r.Context())))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// sessionMiddleware attaches the visitor session. A visitor without a valid
// cookie gets a fresh session that is only stored once something changes.
func (a *API) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := a.loadSession(r)
		if err != nil {
			a.logger.Error("load session", zap.Error(err))
			respondError(w, http.StatusServiceUnavailable, errNoSession)
			return
		}
		ctx := context.WithValue(r.Context(), ctxSessionKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *API) loadSession(r *http.Request) (*domsession.Session, error) {
	if c, err := r.Cookie(a.cookie.Name); err == nil && c.Value != "" {
		if _, perr := uuid.Parse(c.Value); perr == nil {
			sess, err := a.sessions.Get(r.Context(), c.Value)
			switch {
			case err == nil:
				return sess, nil
			case !errors.Is(err, domsession.ErrSessionNotFound):
				return nil, err
			}
		}
	}
	return domsession.New(uuid.NewString(), a.cookie.TTL), nil
}

// commitSession persists a modified session and refreshes the cookie. It
// must run before the response status is written.
func (a *API) commitSession(w http.ResponseWriter, r *http.Request, sess *domsession.Session) error {
	if !sess.Modified {
		return nil
	}
	sess.ExpiresAt = time.Now().Add(a.cookie.TTL)
	if err := a.sessions.Save(r.Context(), sess); err != nil {
		return err
	}
	sess.Modified = false
	sess.IsNew = false
	http.SetCookie(w, &http.Cookie{
		Name:     a.cookie.Name,
		Value:    sess.ID,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   a.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (a *API) redirect(w http.ResponseWriter, r *http.Request, sess *domsession.Session, location string) {
	if err := a.commitSession(w, r, sess); err != nil {
		a.logger.Error("save session", zap.Error(err))
		respondError(w, http.StatusServiceUnavailable, errNoSession)
		return
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// requireLogin accepts a bearer token or a session bound by login. Anonymous
// visitors are sent to the login page.
func (a *API) requireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if authHeader := r.Header.Get("Authorization"); authHeader != "" {
			if !strings.HasPrefix(authHeader, "Bearer ") {
				respondError(w, http.StatusUnauthorized, errUnauthenticated)
				return
			}
			token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
			id, err := a.authSvc.Identify(r.Context(), token)
			if err != nil {
				if !errors.Is(err, domuser.ErrUnauthorized) {
					a.logger.Error("identify bearer", zap.Error(err))
				}
				respondError(w, http.StatusUnauthorized, errUnauthenticated)
				return
			}
			ctx := context.WithValue(r.Context(), ctxUserKey, &authUser{
				UserID: id.UserID,
				Email:  id.Email,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		if sess := getSession(r.Context()); sess != nil && sess.IsAuthenticated() {
			ctx := context.WithValue(r.Context(), ctxUserKey, &authUser{
				UserID: sess.UserID,
				Email:  sess.Username,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		http.Redirect(w, r, a.loginURL+"?next="+url.QueryEscape(r.URL.Path), http.StatusFound)
	})
}

func getAuthUser(ctx context.Context) *authUser {
	if user, ok := ctx.Value(ctxUserKey).(*authUser); ok {
		return user
	}
	return nil
}

func getSession(ctx context.Context) *domsession.Session {
	if sess, ok := ctx.Value(ctxSessionKey).(*domsession.Session); ok {
		return sess
	}
	return nil
}
