package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	domnotify "example.com/storefront-cart/app/internal/domain/notification"
	domproduct "example.com/storefront-cart/app/internal/domain/product"
	domuser "example.com/storefront-cart/app/internal/domain/user"
	"example.com/storefront-cart/app/internal/infra/security"
	infrasession "example.com/storefront-cart/app/internal/infra/session"
	authuc "example.com/storefront-cart/app/internal/usecase/auth"
	cartuc "example.com/storefront-cart/app/internal/usecase/cart"
	checkoutuc "example.com/storefront-cart/app/internal/usecase/checkout"
	productuc "example.com/storefront-cart/app/internal/usecase/product"
)

type fakeCatalog struct {
	mu       sync.Mutex
	products map[int64]*domproduct.Product
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		products: map[int64]*domproduct.Product{
			1: {ID: 1, Name: "Item A", Price: 10.0, Stock: 5, IsActive: true},
			2: {ID: 2, Name: "Item B", Price: 20.0, Stock: 1, IsActive: true},
			3: {ID: 3, Name: "Inactive Product", Price: 30.0, Stock: 50, IsActive: false},
			4: {ID: 4, Name: "Sold Out", Price: 5.0, Stock: 0, IsActive: true},
		},
	}
}

func (f *fakeCatalog) stock(id int64) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.products[id].Stock
}

func (f *fakeCatalog) setStock(id, stock int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[id].Stock = stock
}

func (f *fakeCatalog) GetByID(ctx context.Context, id int64) (*domproduct.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.products[id]; ok {
		cloned := *p
		return &cloned, nil
	}
	return nil, domproduct.ErrProductNotFound
}

func (f *fakeCatalog) GetPurchasable(ctx context.Context, id int64) (*domproduct.Product, error) {
	p, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Purchasable() {
		return nil, domproduct.ErrProductNotFound
	}
	return p, nil
}

func (f *fakeCatalog) GetByIDs(ctx context.Context, ids []int64) ([]*domproduct.Product, error) {
	var result []*domproduct.Product
	for _, id := range ids {
		if p, err := f.GetByID(ctx, id); err == nil {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (f *fakeCatalog) List(ctx context.Context, filter domproduct.ListFilter) ([]*domproduct.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*domproduct.Product
	for _, p := range f.products {
		if filter.OnlyActive && !p.IsActive {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Search)) {
			continue
		}
		cloned := *p
		result = append(result, &cloned)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

func (f *fakeCatalog) DecrementStock(ctx context.Context, changes []domproduct.StockChange) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range changes {
		p := f.products[ch.ProductID]
		if p == nil || p.Stock < ch.Quantity {
			return &domproduct.StockConflictError{ProductID: ch.ProductID, Requested: ch.Quantity}
		}
	}
	for _, ch := range changes {
		if err := f.products[ch.ProductID].DecrementStock(ch.Quantity); err != nil {
			return err
		}
	}
	return nil
}

type fakeUserRepo struct {
	users map[string]*domuser.User
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*domuser.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domuser.ErrUserNotFound
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domuser.User, error) {
	if u, ok := f.users[email]; ok {
		cloned := *u
		return &cloned, nil
	}
	return nil, domuser.ErrUserNotFound
}

type fakeNotifier struct {
	mu      sync.Mutex
	sent    []domnotify.Message
	sendErr error
}

func (f *fakeNotifier) Send(ctx context.Context, msg domnotify.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, msg)
	return nil
}

const testPassword = "password123"

type testEnv struct {
	router   chi.Router
	catalog  *fakeCatalog
	notifier *fakeNotifier
	sessions *infrasession.MemoryStore
	users    *fakeUserRepo
	token    string
}

func setupAPI(t *testing.T) *testEnv {
	t.Helper()

	catalog := newFakeCatalog()
	notifier := &fakeNotifier{}
	sessions := infrasession.NewMemoryStore(0)
	t.Cleanup(func() { _ = sessions.Close() })

	hasher := security.NewPasswordHasher(4)
	hash, err := hasher.Hash(testPassword)
	require.NoError(t, err)
	users := &fakeUserRepo{users: map[string]*domuser.User{
		"ana@example.com": {ID: 100, Name: "Ana", Email: "ana@example.com", PasswordHash: hash, IsActive: true},
	}}

	tokenSvc := security.NewJWTService("test-secret", time.Hour)
	api := NewAPI(Dependencies{
		AuthService:    authuc.NewService(users, hasher, tokenSvc),
		ProductService: productuc.NewService(catalog),
		CartService:    cartuc.NewService(catalog),
		CheckoutService: checkoutuc.NewService(catalog, notifier, checkoutuc.Config{
			StoreName: "Test Shop",
			From:      "shop@example.com",
		}, nil),
		SessionStore:  sessions,
		SessionCookie: SessionCookie{Name: "cart_session", TTL: time.Hour},
		LoginURL:      "/login",
		HealthChecks: map[string]HealthCheck{
			"sessions": sessions.Ping,
		},
	})

	token, err := tokenSvc.Issue(authuc.Identity{UserID: 100, Email: "ana@example.com", Name: "Ana"})
	require.NoError(t, err)

	return &testEnv{
		router:   api.Router(),
		catalog:  catalog,
		notifier: notifier,
		sessions: sessions,
		users:    users,
		token:    token,
	}
}

// browser carries the session cookie between requests.
type browser struct {
	t      *testing.T
	env    *testEnv
	cookie *http.Cookie
	bearer string
}

func (e *testEnv) browser(t *testing.T) *browser {
	return &browser{t: t, env: e}
}

func (b *browser) do(method, path string, body any) *httptest.ResponseRecorder {
	b.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(b.t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if b.cookie != nil {
		req.AddCookie(b.cookie)
	}
	if b.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+b.bearer)
	}
	rec := httptest.NewRecorder()
	b.env.router.ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		if c.Name == "cart_session" {
			b.cookie = &http.Cookie{Name: c.Name, Value: c.Value}
		}
	}
	return rec
}

type cartResponse struct {
	Items []struct {
		ProductID int64   `json:"product_id"`
		Name      string  `json:"name"`
		Price     float64 `json:"price"`
		Quantity  int64   `json:"quantity"`
		Subtotal  float64 `json:"subtotal"`
	} `json:"items"`
	Total   float64 `json:"total"`
	Notices []struct {
		Level   string `json:"level"`
		Message string `json:"message"`
	} `json:"notices"`
}

func (b *browser) cart() cartResponse {
	b.t.Helper()
	rec := b.do(http.MethodGet, PathCart, nil)
	require.Equal(b.t, http.StatusOK, rec.Code, rec.Body.String())
	var resp cartResponse
	require.NoError(b.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

type listingResponse struct {
	Data    []map[string]any `json:"data"`
	Notices []struct {
		Level   string `json:"level"`
		Message string `json:"message"`
	} `json:"notices"`
}

func (b *browser) listing() listingResponse {
	b.t.Helper()
	rec := b.do(http.MethodGet, PathProducts, nil)
	require.Equal(b.t, http.StatusOK, rec.Code, rec.Body.String())
	var resp listingResponse
	require.NoError(b.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

var errSMTPDown = errors.New("smtp: connection refused")
