package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/chieftain/api/responses"
	"github.com/angelmondragon/chieftain/api/validators"
	"github.com/angelmondragon/chieftain/internal/checkout"
	"github.com/angelmondragon/chieftain/pkg/enums"
	"github.com/angelmondragon/chieftain/pkg/logger"
	"github.com/angelmondragon/chieftain/pkg/types"
)

type paymentRequest struct {
	PaymentMethod string `json:"paymentMethod"`
}

// CheckoutBegin starts a checkout attempt over the session cart. Any attempt
// already running is discarded.
func CheckoutBegin(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		o, err := sess.BeginCheckout(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, o.View())
	}
}

func CheckoutView(logg *logger.Logger) http.HandlerFunc {
	return withCheckout(logg, func(w http.ResponseWriter, r *http.Request, o *checkout.Orchestrator) {
		responses.WriteSuccess(w, o.View())
	})
}

// CheckoutAddress stores the shipping address. Field errors come back as
// VALIDATION_ERROR details keyed by json field.
func CheckoutAddress(logg *logger.Logger) http.HandlerFunc {
	return withCheckout(logg, func(w http.ResponseWriter, r *http.Request, o *checkout.Orchestrator) {
		var payload types.ShippingAddress
		if err := validators.DecodeJSON(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := o.SubmitAddress(r.Context(), payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, o.View())
	})
}

func CheckoutPayment(logg *logger.Logger) http.HandlerFunc {
	return withCheckout(logg, func(w http.ResponseWriter, r *http.Request, o *checkout.Orchestrator) {
		var payload paymentRequest
		if err := validators.DecodeJSON(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		method := enums.PaymentMethod(strings.ToUpper(strings.TrimSpace(payload.PaymentMethod)))
		if err := o.SelectPayment(r.Context(), method); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, o.View())
	})
}

func CheckoutBack(logg *logger.Logger) http.HandlerFunc {
	return withCheckout(logg, func(w http.ResponseWriter, r *http.Request, o *checkout.Orchestrator) {
		if err := o.Back(); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, o.View())
	})
}

func CheckoutRetry(logg *logger.Logger) http.HandlerFunc {
	return withCheckout(logg, func(w http.ResponseWriter, r *http.Request, o *checkout.Orchestrator) {
		if err := o.Retry(); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, o.View())
	})
}

// CheckoutSubmit places the order. A failed submission answers with the
// gateway error; the attempt moves to FAILED and GET /checkout shows it.
func CheckoutSubmit(logg *logger.Logger) http.HandlerFunc {
	return withCheckout(logg, func(w http.ResponseWriter, r *http.Request, o *checkout.Orchestrator) {
		if _, err := o.SubmitOrder(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, o.View())
	})
}

// CheckoutCancel discards the attempt.
func CheckoutCancel(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		sess.EndCheckout()
		responses.WriteNoContent(w)
	}
}

func withCheckout(logg *logger.Logger, fn func(http.ResponseWriter, *http.Request, *checkout.Orchestrator)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		o, err := sess.Checkout()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		fn(w, r, o)
	}
}
