package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/chieftain/api/responses"
	"github.com/angelmondragon/chieftain/api/validators"
	"github.com/angelmondragon/chieftain/internal/catalog"
	"github.com/angelmondragon/chieftain/pkg/gateway"
	"github.com/angelmondragon/chieftain/pkg/logger"
	"github.com/angelmondragon/chieftain/pkg/pagination"
)

const maxSearchQueryLen = 200

// Catalog is the read surface used by the product endpoints.
type Catalog interface {
	List(ctx context.Context, filter catalog.ProductFilter, page pagination.Params) (gateway.ProductPage, error)
	Search(ctx context.Context, query string, filter catalog.ProductFilter, page pagination.Params) (gateway.ProductPage, error)
	Get(ctx context.Context, id string) (gateway.Product, error)
	Categories(ctx context.Context) ([]gateway.Category, error)
	Featured(ctx context.Context) ([]gateway.Product, error)
}

// ProductsList serves GET /products with filters and paging from the query
// string.
func ProductsList(svc Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, page, err := listingParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.List(r.Context(), filter, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func ProductsSearch(svc Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, page, err := listingParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		query := validators.SanitizeString(r.URL.Query().Get("q"), maxSearchQueryLen)
		result, err := svc.Search(r.Context(), query, filter, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func ProductDetail(svc Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		product, err := svc.Get(r.Context(), chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func ProductsFeatured(svc Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := svc.Featured(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

func CategoriesList(svc Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := svc.Categories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, categories)
	}
}

func listingParams(r *http.Request) (catalog.ProductFilter, pagination.Params, error) {
	values := r.URL.Query()
	filter, err := catalog.FilterFromQuery(values)
	if err != nil {
		return catalog.ProductFilter{}, pagination.Params{}, err
	}
	page, err := catalog.PageFromQuery(values)
	if err != nil {
		return catalog.ProductFilter{}, pagination.Params{}, err
	}
	return filter, page, nil
}
