package http

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	domproduct "example.com/storefront-cart/app/internal/domain/product"
	checkoutuc "example.com/storefront-cart/app/internal/usecase/checkout"
)

func (a *API) handleViewCart(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r.Context())

	view, err := a.cartSvc.View(r.Context(), sess)
	if err != nil {
		a.handleDomainError(w, err)
		return
	}

	notices := sess.TakeNotices()
	if err := a.commitSession(w, r, sess); err != nil {
		a.logger.Error("save session", zap.Error(err))
	}
	writeJSON(w, http.StatusOK, mapCartView(view, notices))
}

func (a *API) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	sess := getSession(r.Context())

	if err := a.cartSvc.Add(r.Context(), sess, id); err != nil {
		a.handleDomainError(w, err)
		return
	}
	a.redirect(w, r, sess, PathCart)
}

func (a *API) handleRemoveFromCart(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	sess := getSession(r.Context())

	a.cartSvc.Remove(r.Context(), sess, id)
	a.redirect(w, r, sess, PathCart)
}

func (a *API) handleCheckout(w http.ResponseWriter, r *http.Request) {
	user := getAuthUser(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, errUnauthenticated)
		return
	}
	sess := getSession(r.Context())

	_, err := a.checkoutSvc.Checkout(r.Context(), sess, checkoutuc.Purchaser{
		UserID:   user.UserID,
		Username: user.Email,
	})
	switch {
	case err == nil:
		a.redirect(w, r, sess, PathProducts)
	case errors.Is(err, domproduct.ErrInsufficientStock),
		errors.Is(err, domproduct.ErrStockConflict):
		a.redirect(w, r, sess, PathCart)
	default:
		a.handleDomainError(w, err)
	}
}
