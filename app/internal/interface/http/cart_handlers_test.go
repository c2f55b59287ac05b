package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	cartuc "example.com/storefront-cart/app/internal/usecase/cart"
)

func TestAddToCart_RedirectsAndPersistsSession(t *testing.T) {
	env := setupAPI(t)
	b := env.browser(t)

	rec := b.do(http.MethodPost, "/api/v1/cart/add/1", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, PathCart, rec.Header().Get("Location"))
	require.NotNil(t, b.cookie)
	require.Equal(t, 1, env.sessions.Len())

	rec = b.do(http.MethodPost, "/api/v1/cart/add/1", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	cart := b.cart()
	require.Len(t, cart.Items, 1)
	require.Equal(t, int64(1), cart.Items[0].ProductID)
	require.Equal(t, int64(2), cart.Items[0].Quantity)
	require.InDelta(t, 20.0, cart.Items[0].Subtotal, 0.001)
	require.InDelta(t, 20.0, cart.Total, 0.001)
	require.Len(t, cart.Notices, 2)
	require.Equal(t, "success", cart.Notices[0].Level)
	require.Equal(t, cartuc.MsgAdded, cart.Notices[0].Message)

	// notices are shown once
	require.Empty(t, b.cart().Notices)
}

func TestAddToCart_NotPurchasable(t *testing.T) {
	env := setupAPI(t)

	tests := []struct {
		name string
		path string
		code int
	}{
		{"inactive", "/api/v1/cart/add/3", http.StatusNotFound},
		{"out of stock", "/api/v1/cart/add/4", http.StatusNotFound},
		{"unknown", "/api/v1/cart/add/999", http.StatusNotFound},
		{"invalid id", "/api/v1/cart/add/abc", http.StatusBadRequest},
		{"zero id", "/api/v1/cart/add/0", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := env.browser(t)
			rec := b.do(http.MethodPost, tt.path, nil)
			require.Equal(t, tt.code, rec.Code)
			require.Nil(t, b.cookie)
		})
	}
	require.Equal(t, 0, env.sessions.Len())
}

func TestRemoveFromCart(t *testing.T) {
	env := setupAPI(t)
	b := env.browser(t)

	b.do(http.MethodPost, "/api/v1/cart/add/1", nil)
	b.do(http.MethodPost, "/api/v1/cart/add/1", nil)
	b.do(http.MethodPost, "/api/v1/cart/add/2", nil)
	b.cart()

	rec := b.do(http.MethodPost, "/api/v1/cart/remove/1", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, PathCart, rec.Header().Get("Location"))

	cart := b.cart()
	require.Len(t, cart.Items, 1)
	require.Equal(t, int64(2), cart.Items[0].ProductID)
	require.InDelta(t, 20.0, cart.Total, 0.001)
	require.Len(t, cart.Notices, 1)
	require.Equal(t, "info", cart.Notices[0].Level)
	require.Equal(t, cartuc.MsgRemoved, cart.Notices[0].Message)

	// removing something absent is a silent redirect
	rec = b.do(http.MethodPost, "/api/v1/cart/remove/1", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Empty(t, b.cart().Notices)
}

func TestViewCart_SkipsProductsGoneFromCatalog(t *testing.T) {
	env := setupAPI(t)
	b := env.browser(t)

	b.do(http.MethodPost, "/api/v1/cart/add/1", nil)
	b.do(http.MethodPost, "/api/v1/cart/add/2", nil)

	env.catalog.mu.Lock()
	delete(env.catalog.products, 2)
	env.catalog.mu.Unlock()

	cart := b.cart()
	require.Len(t, cart.Items, 1)
	require.InDelta(t, 10.0, cart.Total, 0.001)
}

func TestViewCart_AnonymousEmpty(t *testing.T) {
	env := setupAPI(t)
	b := env.browser(t)

	cart := b.cart()
	require.Empty(t, cart.Items)
	require.Zero(t, cart.Total)
	require.Nil(t, b.cookie)
	require.Equal(t, 0, env.sessions.Len())
}

func TestViewCart_UnknownCookieStartsFreshSession(t *testing.T) {
	env := setupAPI(t)
	b := env.browser(t)
	b.cookie = &http.Cookie{Name: "cart_session", Value: "not-a-session-id"}

	rec := b.do(http.MethodPost, "/api/v1/cart/add/1", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.NotEqual(t, "not-a-session-id", b.cookie.Value)
	require.Len(t, b.cart().Items, 1)
}
