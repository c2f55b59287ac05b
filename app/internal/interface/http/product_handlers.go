package http

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	domproduct "example.com/storefront-cart/app/internal/domain/product"
)

// handleListProducts is the storefront listing. Notices left by cart
// operations that redirect here are returned once.
func (a *API) handleListProducts(w http.ResponseWriter, r *http.Request) {
	filter := domproduct.ListFilter{
		Search: r.URL.Query().Get("q"),
	}
	if cid := r.URL.Query().Get("category_id"); cid != "" {
		if id, err := strconv.ParseInt(cid, 10, 64); err == nil {
			filter.CategoryID = &id
		}
	}

	products, err := a.productSvc.ListStorefront(r.Context(), filter)
	if err != nil {
		a.handleDomainError(w, err)
		return
	}

	resp := make([]map[string]any, 0, len(products))
	for _, p := range products {
		resp = append(resp, mapProduct(p))
	}

	sess := getSession(r.Context())
	notices := sess.TakeNotices()
	if err := a.commitSession(w, r, sess); err != nil {
		a.logger.Error("save session", zap.Error(err))
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": resp, "notices": notices})
}

func (a *API) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	p, err := a.productSvc.GetByID(r.Context(), id)
	if err != nil {
		a.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapProduct(p))
}
