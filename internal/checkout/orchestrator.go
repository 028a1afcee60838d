// Package checkout drives one checkout attempt from address collection to a
// placed order. An Orchestrator is single use: once completed or disposed it
// accepts nothing further.
package checkout

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/angelmondragon/chieftain/internal/cart"
	"github.com/angelmondragon/chieftain/pkg/enums"
	pkgerrors "github.com/angelmondragon/chieftain/pkg/errors"
	"github.com/angelmondragon/chieftain/pkg/gateway"
	"github.com/angelmondragon/chieftain/pkg/logger"
	"github.com/angelmondragon/chieftain/pkg/metrics"
	"github.com/angelmondragon/chieftain/pkg/pricing"
	"github.com/angelmondragon/chieftain/pkg/types"
	"github.com/angelmondragon/chieftain/pkg/validation"
)

const (
	resultCompleted = "completed"
	resultFailed    = "failed"
	resultDiscarded = "discarded"

	clearAttempts = 3
)

// CartStore is what checkout needs from the session cart. Clear is the only
// write and runs only after an order is placed; Freeze and Thaw bracket the
// submission.
type CartStore interface {
	cart.Reader
	Load(ctx context.Context) (*cart.Cart, error)
	Clear(ctx context.Context) error
	Freeze(ctx context.Context) error
	Thaw()
}

// OrderPlacer creates orders on the gateway.
type OrderPlacer interface {
	CreateOrder(ctx context.Context, req gateway.CreateOrderRequest) (gateway.Order, error)
}

// Draft is the attempt's collected input.
type Draft struct {
	ShippingAddress *types.ShippingAddress `json:"shippingAddress,omitempty"`
	PaymentMethod   enums.PaymentMethod    `json:"paymentMethod,omitempty"`
	CartID          string                 `json:"cartId"`
}

// View is everything the storefront renders for the checkout page.
type View struct {
	AttemptID   string             `json:"attemptId"`
	Step        enums.CheckoutStep `json:"step"`
	Draft       Draft              `json:"draft"`
	FieldErrors map[string]string  `json:"fieldErrors,omitempty"`
	Error       string             `json:"error,omitempty"`
	Retryable   bool               `json:"retryable"`
	Order       *gateway.Order     `json:"order,omitempty"`
	CartCleared bool               `json:"cartCleared"`
	Cart        cart.Snapshot      `json:"cart"`
	Pricing     pricing.Summary    `json:"pricing"`
}

type Option func(*Orchestrator)

func WithPolicy(p pricing.Policy) Option {
	return func(o *Orchestrator) { o.policy = p }
}

// WithStrictInvariants makes invariant violations panic.
func WithStrictInvariants(strict bool) Option {
	return func(o *Orchestrator) { o.strict = strict }
}

func WithMetrics(m *metrics.CheckoutMetrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// Orchestrator is the state machine for a single checkout attempt.
type Orchestrator struct {
	id      string
	store   CartStore
	orders  OrderPlacer
	logg    *logger.Logger
	policy  pricing.Policy
	strict  bool
	metrics *metrics.CheckoutMetrics

	mu          sync.Mutex
	step        enums.CheckoutStep
	draft       Draft
	fieldErrors map[string]string
	lastErr     error
	order       *gateway.Order
	cartCleared bool
}

// New begins a checkout attempt over the store's current cart. It refuses an
// unloaded or empty cart.
func New(store CartStore, orders OrderPlacer, logg *logger.Logger, opts ...Option) (*Orchestrator, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order placer required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}

	snap := store.Snapshot()
	if snap.Cart == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cart not loaded")
	}
	if snap.Cart.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")
	}

	o := &Orchestrator{
		id:     uuid.NewString(),
		store:  store,
		orders: orders,
		logg:   logg,
		policy: pricing.DefaultPolicy(),
		step:   enums.CheckoutStepCollectingAddress,
		draft:  Draft{CartID: snap.Cart.ID},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

func (o *Orchestrator) ID() string {
	return o.id
}

func (o *Orchestrator) Step() enums.CheckoutStep {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.step
}

// SubmitAddress validates and stores the shipping address. Field errors keep
// the attempt in COLLECTING_ADDRESS and are reported in the returned error's
// details and in View.
func (o *Orchestrator) SubmitAddress(ctx context.Context, addr types.ShippingAddress) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.requireLocked(enums.CheckoutStepCollectingAddress); err != nil {
		return err
	}

	addr = addr.Normalize()
	if err := validation.ValidateAddress(addr); err != nil {
		o.fieldErrors = fieldErrorsOf(err)
		o.logg.Info(o.logg.WithField(o.ctx(ctx), "invalid_fields", len(o.fieldErrors)), "shipping address rejected")
		return err
	}

	o.draft.ShippingAddress = &addr
	o.fieldErrors = nil
	o.step = enums.CheckoutStepSelectingPayment
	return nil
}

// SelectPayment records the payment method and moves to review.
func (o *Orchestrator) SelectPayment(ctx context.Context, method enums.PaymentMethod) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.requireLocked(enums.CheckoutStepSelectingPayment); err != nil {
		return err
	}
	if !method.IsValid() {
		o.fieldErrors = map[string]string{"paymentMethod": "must be MPESA or CASH_ON_DELIVERY"}
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method").WithDetails(o.fieldErrors)
	}

	o.draft.PaymentMethod = method
	o.fieldErrors = nil
	o.step = enums.CheckoutStepReviewing
	o.logg.Debug(o.logg.WithField(o.ctx(ctx), "payment_method", method.String()), "payment method selected")
	return nil
}

// Back takes the one backward step allowed from the current step.
func (o *Orchestrator) Back() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch o.step {
	case enums.CheckoutStepSelectingPayment:
		o.step = enums.CheckoutStepCollectingAddress
	case enums.CheckoutStepReviewing:
		o.step = enums.CheckoutStepSelectingPayment
	case enums.CheckoutStepFailed:
		o.step = enums.CheckoutStepReviewing
		o.lastErr = nil
	default:
		return o.stepConflictLocked("back")
	}
	o.fieldErrors = nil
	return nil
}

// Retry returns a failed attempt to review when the failure was retryable.
func (o *Orchestrator) Retry() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.requireLocked(enums.CheckoutStepFailed); err != nil {
		return err
	}
	if !pkgerrors.As(o.lastErr).Retryable() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "the last submission cannot be retried as is; go back and review the order")
	}
	o.step = enums.CheckoutStepReviewing
	o.lastErr = nil
	return nil
}

// SubmitOrder places the order. At most one submission is in flight, and a
// completed attempt never submits again. The gateway prices the order from
// the cart it holds; only the address and payment method are sent.
func (o *Orchestrator) SubmitOrder(ctx context.Context) (gateway.Order, error) {
	ctx = o.ctx(ctx)
	req, err := o.beginSubmit(ctx)
	if err != nil {
		return gateway.Order{}, err
	}

	order, err := o.orders.CreateOrder(ctx, req)

	o.mu.Lock()
	if o.step == enums.CheckoutStepDisposed {
		o.mu.Unlock()
		o.store.Thaw()
		fields := map[string]any{"outcome": "error"}
		if err == nil {
			fields["outcome"] = "placed"
			fields["order_id"] = order.ID
			fields["order_number"] = order.OrderNumber
		}
		o.logg.Warn(o.logg.WithFields(ctx, fields), "ignoring order result for discarded checkout")
		o.metrics.IncSubmission(resultDiscarded)
		return gateway.Order{}, errDisposed()
	}
	if err != nil {
		o.step = enums.CheckoutStepFailed
		o.lastErr = err
		o.mu.Unlock()
		o.store.Thaw()
		o.metrics.IncSubmission(resultFailed)
		o.logg.Warn(o.logg.WithFields(ctx, map[string]any{
			"error":     err.Error(),
			"retryable": pkgerrors.As(err).Retryable(),
		}), "order submission failed")
		return gateway.Order{}, err
	}
	o.step = enums.CheckoutStepCompleted
	o.order = &order
	o.draft = Draft{}
	o.lastErr = nil
	o.mu.Unlock()

	o.metrics.IncSubmission(resultCompleted)
	ctx = o.logg.WithFields(ctx, map[string]any{"order_id": order.ID, "order_number": order.OrderNumber})
	o.logg.Info(ctx, "order placed")

	cleared := o.clearCart(context.WithoutCancel(ctx))
	o.store.Thaw()
	if cleared {
		o.mu.Lock()
		o.cartCleared = true
		o.mu.Unlock()
	}
	return order, nil
}

// clearCart empties the cart of a placed order, retrying transport failures.
// When every attempt fails the store reloads so it shows what the gateway
// still holds.
func (o *Orchestrator) clearCart(ctx context.Context) bool {
	var err error
	for attempt := 1; attempt <= clearAttempts; attempt++ {
		if err = o.store.Clear(ctx); err == nil {
			return true
		}
		if !pkgerrors.As(err).Retryable() {
			break
		}
	}
	o.logg.Error(ctx, "cart clear after order failed", err)
	if pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		return false
	}
	if _, loadErr := o.store.Load(ctx); loadErr != nil {
		o.logg.Warn(o.logg.WithField(ctx, "error", loadErr.Error()), "cart reload after failed clear failed")
	}
	return false
}

func (o *Orchestrator) beginSubmit(ctx context.Context) (gateway.CreateOrderRequest, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch o.step {
	case enums.CheckoutStepSubmitting:
		return gateway.CreateOrderRequest{}, pkgerrors.New(pkgerrors.CodeInFlight, "order submission already in progress")
	case enums.CheckoutStepCompleted:
		return gateway.CreateOrderRequest{}, pkgerrors.New(pkgerrors.CodeStateConflict, "order already placed")
	}
	if err := o.requireLocked(enums.CheckoutStepReviewing); err != nil {
		return gateway.CreateOrderRequest{}, err
	}
	if o.draft.ShippingAddress == nil || !o.draft.PaymentMethod.IsValid() {
		return gateway.CreateOrderRequest{}, o.violation(ctx, "review reached without address and payment method")
	}
	if err := o.store.Freeze(ctx); err != nil {
		return gateway.CreateOrderRequest{}, err
	}
	if snap := o.store.Snapshot(); snap.Cart.IsEmpty() {
		o.store.Thaw()
		return gateway.CreateOrderRequest{}, o.violation(ctx, "order submitted with an empty cart")
	}

	o.step = enums.CheckoutStepSubmitting
	o.lastErr = nil
	return gateway.CreateOrderRequest{
		ShippingAddress: *o.draft.ShippingAddress,
		PaymentMethod:   o.draft.PaymentMethod,
	}, nil
}

// Dispose discards the attempt. A submission still in flight completes on
// the gateway but its result is ignored here.
func (o *Orchestrator) Dispose() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.step = enums.CheckoutStepDisposed
	o.draft = Draft{}
	o.fieldErrors = nil
}

// View renders the attempt. Pricing is recomputed from the live cart on
// every call.
func (o *Orchestrator) View() View {
	snap := o.store.Snapshot()

	o.mu.Lock()
	defer o.mu.Unlock()
	v := View{
		AttemptID:   o.id,
		Step:        o.step,
		Draft:       o.draft,
		Order:       o.order,
		CartCleared: o.cartCleared,
		Cart:        snap,
		Pricing:     o.policy.Summarize(snap.TotalAmount),
	}
	if o.draft.ShippingAddress != nil {
		addr := *o.draft.ShippingAddress
		v.Draft.ShippingAddress = &addr
	}
	if len(o.fieldErrors) > 0 {
		v.FieldErrors = make(map[string]string, len(o.fieldErrors))
		for k, msg := range o.fieldErrors {
			v.FieldErrors[k] = msg
		}
	}
	if o.lastErr != nil {
		v.Error = o.lastErr.Error()
		if typed := pkgerrors.As(o.lastErr); typed != nil {
			v.Error = typed.Message()
		}
		v.Retryable = pkgerrors.As(o.lastErr).Retryable()
	}
	return v
}

func (o *Orchestrator) requireLocked(step enums.CheckoutStep) error {
	if o.step == enums.CheckoutStepDisposed {
		return errDisposed()
	}
	if o.step != step {
		return o.stepConflictLocked(string(step))
	}
	return nil
}

func (o *Orchestrator) stepConflictLocked(action string) error {
	if o.step == enums.CheckoutStepDisposed {
		return errDisposed()
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("checkout is %s", o.step)).
		WithDetails(map[string]string{"step": o.step.String(), "requested": action})
}

func (o *Orchestrator) violation(ctx context.Context, msg string) error {
	err := pkgerrors.Invariant(msg)
	if o.strict {
		panic(err)
	}
	o.logg.Error(ctx, "checkout invariant violated", err)
	return err
}

func (o *Orchestrator) ctx(ctx context.Context) context.Context {
	return o.logg.WithAttemptID(ctx, o.id)
}

func fieldErrorsOf(err error) map[string]string {
	if details, ok := pkgerrors.As(err).Details().(map[string]string); ok {
		return details
	}
	return map[string]string{}
}

func errDisposed() error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "checkout attempt was discarded")
}
