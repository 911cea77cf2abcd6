package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kaanchinar/petshop-storefront/internal/catalog"
	"github.com/kaanchinar/petshop-storefront/internal/domain"
)

// ProductCatalog is the remote catalog the listing reads from.
type ProductCatalog interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id int64) (*domain.Product, error)
}

type ProductHandler struct {
	products ProductCatalog
	timeout  time.Duration
}

func NewProductHandler(products ProductCatalog, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		products: products,
		timeout:  timeout,
	}
}

type ProductListDTO struct {
	Products []domain.Product `json:"products"`
	Total    int              `json:"total"`
}

// ListProducts applies the query-derived filter and sort to the remote
// catalog listing.
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.products.List(ctx)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	q := r.URL.Query()
	filter := catalog.Filter{
		Category:    q.Get("category"),
		Query:       q.Get("q"),
		InStockOnly: q.Get("in_stock") == "true",
	}
	if v := q.Get("min_price"); v != "" {
		if price, parseErr := strconv.ParseFloat(v, 64); parseErr == nil {
			filter.MinPrice = price
		}
	}
	if v := q.Get("max_price"); v != "" {
		if price, parseErr := strconv.ParseFloat(v, 64); parseErr == nil {
			filter.MaxPrice = price
		}
	}

	filtered := filter.Apply(products)
	sorted := catalog.Sort(filtered, catalog.SortKey(q.Get("sort")))

	respondJSON(w, http.StatusOK, ProductListDTO{
		Products: sorted,
		Total:    len(sorted),
	})
}

func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	idStr := chi.URLParam(r, "product_id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	product, err := h.products.Get(ctx, id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, product)
}
