package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/chieftain/api/responses"
	"github.com/angelmondragon/chieftain/internal/orders"
	"github.com/angelmondragon/chieftain/pkg/gateway"
	"github.com/angelmondragon/chieftain/pkg/logger"
)

// Orders is the order history and admin surface.
type Orders interface {
	History(ctx context.Context, actor orders.Actor) ([]gateway.Order, error)
	Get(ctx context.Context, actor orders.Actor, id string) (gateway.Order, error)
	Advance(ctx context.Context, actor orders.Actor, id string) (gateway.Order, error)
	Cancel(ctx context.Context, actor orders.Actor, id string) (gateway.Order, error)
	Summary(ctx context.Context, actor orders.Actor) (orders.Summary, error)
}

func OrdersList(svc Orders, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		list, err := svc.History(r.Context(), sess)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if list == nil {
			list = []gateway.Order{}
		}
		responses.WriteSuccess(w, list)
	}
}

func OrderDetail(svc Orders, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		order, err := svc.Get(r.Context(), sess, chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// AdminSummary serves the dashboard counters.
func AdminSummary(svc Orders, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		summary, err := svc.Summary(r.Context(), sess)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

func AdminAdvanceOrder(svc Orders, logg *logger.Logger) http.HandlerFunc {
	return adminOrderAction(svc.Advance, logg)
}

func AdminCancelOrder(svc Orders, logg *logger.Logger) http.HandlerFunc {
	return adminOrderAction(svc.Cancel, logg)
}

func adminOrderAction(action func(context.Context, orders.Actor, string) (gateway.Order, error), logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		order, err := action(r.Context(), sess, chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
