package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domcart "example.com/storefront-cart/app/internal/domain/cart"
	domproduct "example.com/storefront-cart/app/internal/domain/product"
	domsession "example.com/storefront-cart/app/internal/domain/session"
	domuser "example.com/storefront-cart/app/internal/domain/user"
	authuc "example.com/storefront-cart/app/internal/usecase/auth"
	cartuc "example.com/storefront-cart/app/internal/usecase/cart"
	checkoutuc "example.com/storefront-cart/app/internal/usecase/checkout"
	productuc "example.com/storefront-cart/app/internal/usecase/product"
)

const (
	PathProducts = "/api/v1/products"
	PathCart     = "/api/v1/cart"
)

// HealthCheck reports whether a backing service answers.
type HealthCheck func(ctx context.Context) error

type SessionCookie struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

type API struct {
	authSvc     *authuc.Service
	productSvc  *productuc.Service
	cartSvc     *cartuc.Service
	checkoutSvc *checkoutuc.Service
	sessions    domsession.Store
	cookie      SessionCookie
	loginURL    string
	health      map[string]HealthCheck
	logger      *zap.Logger
	validator   *validator.Validate
}

type Dependencies struct {
	AuthService     *authuc.Service
	ProductService  *productuc.Service
	CartService     *cartuc.Service
	CheckoutService *checkoutuc.Service
	SessionStore    domsession.Store
	SessionCookie   SessionCookie
	LoginURL        string
	HealthChecks    map[string]HealthCheck
	Logger          *zap.Logger
}

func NewAPI(deps Dependencies) *API {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cookie := deps.SessionCookie
	if cookie.Name == "" {
		cookie.Name = "cart_session"
	}
	if cookie.TTL <= 0 {
		cookie.TTL = 14 * 24 * time.Hour
	}
	loginURL := deps.LoginURL
	if loginURL == "" {
		loginURL = "/login"
	}
	return &API{
		authSvc:     deps.AuthService,
		productSvc:  deps.ProductService,
		cartSvc:     deps.CartService,
		checkoutSvc: deps.CheckoutService,
		sessions:    deps.SessionStore,
		cookie:      cookie,
		loginURL:    loginURL,
		health:      deps.HealthChecks,
		logger:      logger,
		validator:   validator.New(),
	}
}

func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(a.logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.AllowContentType("application/json", "text/plain", "application/x-www-form-urlencoded"))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", a.handleReady)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(a.sessionMiddleware)

		r.Post("/auth/login", a.handleLogin)
		r.Get("/products", a.handleListProducts)
		r.Get("/products/{id}", a.handleGetProduct)

		r.Get("/cart", a.handleViewCart)
		r.Post("/cart/add/{id}", a.handleAddToCart)
		r.Post("/cart/remove/{id}", a.handleRemoveFromCart)

		r.Group(func(pr chi.Router) {
			pr.Use(a.requireLogin)
			pr.Post("/cart/checkout", a.handleCheckout)
		})
	})

	return r
}

func (a *API) decodeAndValidate(r *http.Request, dst any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	return a.validator.Struct(dst)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func respondError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func parseIDParam(r *http.Request, key string) (int64, error) {
	idStr := chi.URLParam(r, key)
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

var errInvalidID = errors.New("invalid id")

func mapUser(u *domuser.User) map[string]any {
	return map[string]any{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
	}
}

func mapProduct(p *domproduct.Product) map[string]any {
	return map[string]any{
		"id":          p.ID,
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price,
		"stock":       p.Stock,
		"category_id": p.CategoryID,
		"is_active":   p.IsActive,
	}
}

func mapCartView(view *domcart.View, notices []domsession.Notice) map[string]any {
	items := make([]map[string]any, 0, len(view.Lines))
	for _, line := range view.Lines {
		items = append(items, map[string]any{
			"product_id": line.Product.ID,
			"name":       line.Product.Name,
			"price":      line.Product.Price,
			"quantity":   line.Quantity,
			"subtotal":   line.Subtotal,
		})
	}
	return map[string]any{
		"items":   items,
		"total":   view.Total,
		"notices": notices,
	}
}

func (a *API) handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domuser.ErrInvalidCredential):
		respondError(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, domproduct.ErrProductNotFound),
		errors.Is(err, domuser.ErrUserNotFound):
		respondError(w, http.StatusNotFound, err)
	case errors.Is(err, domuser.ErrUnauthorized):
		respondError(w, http.StatusUnauthorized, err)
	case errors.Is(err, domproduct.ErrInsufficientStock),
		errors.Is(err, domproduct.ErrStockConflict),
		errors.Is(err, domproduct.ErrInvalidQuantity):
		respondError(w, http.StatusUnprocessableEntity, err)
	default:
		a.logger.Error("unhandled error", zap.Error(err))
		respondError(w, http.StatusInternalServerError, errInternal)
	}
}

var errInternal = errors.New("internal error")
