package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/chieftain/api/responses"
	"github.com/angelmondragon/chieftain/api/validators"
	"github.com/angelmondragon/chieftain/internal/cart"
	"github.com/angelmondragon/chieftain/pkg/logger"
	"github.com/angelmondragon/chieftain/pkg/pricing"
)

type cartResponse struct {
	cart.Snapshot
	Pricing pricing.Summary `json:"pricing"`
}

func newCartResponse(snap cart.Snapshot, policy pricing.Policy) cartResponse {
	return cartResponse{Snapshot: snap, Pricing: policy.Summarize(snap.TotalAmount)}
}

type addItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

// CartFetch returns the session cart, loading it on first use.
func CartFetch(policy pricing.Policy, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		if _, err := sess.Cart.EnsureLoaded(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(sess.Cart.Snapshot(), policy))
	}
}

// CartRefresh reloads the cart from the gateway.
func CartRefresh(policy pricing.Policy, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		if _, err := sess.Cart.Load(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(sess.Cart.Snapshot(), policy))
	}
}

func CartAddItem(policy pricing.Policy, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if _, err := sess.Cart.EnsureLoaded(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if _, err := sess.Cart.AddItem(r.Context(), payload.ProductID, payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(sess.Cart.Snapshot(), policy))
	}
}

// CartUpdateItem sets a line's quantity. Quantities below one are rejected;
// removal has its own endpoint.
func CartUpdateItem(policy pricing.Policy, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		var payload updateItemRequest
		if err := validators.DecodeJSON(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if _, err := sess.Cart.EnsureLoaded(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if _, err := sess.Cart.UpdateQuantity(r.Context(), chi.URLParam(r, "itemId"), payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(sess.Cart.Snapshot(), policy))
	}
}

func CartRemoveItem(policy pricing.Policy, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		if _, err := sess.Cart.EnsureLoaded(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if _, err := sess.Cart.RemoveItem(r.Context(), chi.URLParam(r, "itemId")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(sess.Cart.Snapshot(), policy))
	}
}
