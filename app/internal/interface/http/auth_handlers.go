package http

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	authuc "example.com/storefront-cart/app/internal/usecase/auth"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// handleLogin returns a bearer token and also binds the user to the session
// so cookie-only clients can check out.
func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	result, err := a.authSvc.Login(r.Context(), authuc.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		a.handleDomainError(w, err)
		return
	}

	sess := getSession(r.Context())
	if !sess.IsNew {
		// New id on privilege change; the cart carries over.
		if err := a.sessions.Delete(r.Context(), sess.ID); err != nil {
			a.logger.Warn("drop pre-login session", zap.Error(err))
		}
		sess.ID = uuid.NewString()
	}
	sess.Authenticate(result.User.ID, result.User.Username())
	if err := a.commitSession(w, r, sess); err != nil {
		a.logger.Error("save session", zap.Error(err))
		respondError(w, http.StatusServiceUnavailable, errNoSession)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": result.Token,
		"user":  mapUser(result.User),
	})
}
