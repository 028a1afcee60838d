package cart

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/chieftain/pkg/enums"
	pkgerrors "github.com/angelmondragon/chieftain/pkg/errors"
	"github.com/angelmondragon/chieftain/pkg/gateway"
	"github.com/angelmondragon/chieftain/pkg/logger"
	"github.com/angelmondragon/chieftain/pkg/metrics"
)

// Gateway is the slice of the remote API the store drives.
type Gateway interface {
	FetchCart(ctx context.Context) (gateway.CartPayload, error)
	AddLine(ctx context.Context, productID string, quantity int) (gateway.CartPayload, error)
	UpdateLine(ctx context.Context, lineID string, quantity int) (gateway.CartPayload, error)
	RemoveLine(ctx context.Context, lineID string) (gateway.CartPayload, error)
	ClearCart(ctx context.Context) error
}

// Reader is the read-only view handed to checkout.
type Reader interface {
	Snapshot() Snapshot
}

// Snapshot is a point-in-time copy of the store for rendering.
type Snapshot struct {
	State       enums.CartState `json:"state"`
	Loading     bool            `json:"loading"`
	Cart        *Cart           `json:"cart"`
	TotalItems  int             `json:"totalItems"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// Option configures a Store.
type Option func(*Store)

// WithStrictInvariants makes invariant violations panic instead of being
// logged and repaired.
func WithStrictInvariants(strict bool) Option {
	return func(s *Store) { s.strict = strict }
}

func WithMetrics(m *metrics.CheckoutMetrics) Option {
	return func(s *Store) { s.metrics = m }
}

// Store owns one session's cart. Every change goes through the gateway and
// the gateway's answer replaces local state wholesale.
//
// At most one mutation runs at a time and never alongside a load; a second
// request is rejected with IN_FLIGHT rather than queued. Loads may overlap
// each other, and a load answer older than the last applied answer is
// dropped. While checkout holds the store frozen only loads and Clear run.
type Store struct {
	gw      Gateway
	logg    *logger.Logger
	strict  bool
	metrics *metrics.CheckoutMetrics

	mu         sync.Mutex
	cart       *Cart
	mutating   bool
	frozen     bool
	loads      int
	seq        uint64
	applied    uint64
	generation uint64
}

// NewStore builds an uninitialized store.
func NewStore(gw Gateway, logg *logger.Logger, opts ...Option) (*Store, error) {
	if gw == nil {
		return nil, fmt.Errorf("cart gateway required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	s := &Store{gw: gw, logg: logg}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

type ticket struct {
	seq        uint64
	generation uint64
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		State:       s.stateLocked(),
		Loading:     s.loads > 0 || s.mutating,
		Cart:        s.cart.Clone(),
		TotalItems:  s.cart.TotalItems(),
		TotalAmount: s.cart.TotalAmount(),
	}
}

func (s *Store) stateLocked() enums.CartState {
	switch {
	case s.loads > 0 || s.mutating:
		return enums.CartStateLoading
	case s.cart == nil:
		return enums.CartStateUninitialized
	case s.cart.IsEmpty():
		return enums.CartStateEmpty
	default:
		return enums.CartStateReady
	}
}

// State reports the current lifecycle state.
func (s *Store) State() enums.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Load replaces the cart with the gateway's. On failure the previous cart
// (or none) is kept; an empty cart is never fabricated.
func (s *Store) Load(ctx context.Context) (*Cart, error) {
	s.mu.Lock()
	if s.mutating {
		s.mu.Unlock()
		return nil, s.inFlight(ctx, "load")
	}
	t := s.issueLocked()
	s.loads++
	s.mu.Unlock()

	payload, err := s.gw.FetchCart(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if t.generation != s.generation {
		return nil, errDiscarded()
	}
	s.loads--
	if err != nil {
		return nil, err
	}
	if t.seq < s.applied {
		s.logg.Info(s.logg.WithField(ctx, "cart_seq", t.seq), "dropping stale cart load")
		return s.cart.Clone(), nil
	}
	if err := s.applyLocked(ctx, t, payload); err != nil {
		return nil, err
	}
	return s.cart.Clone(), nil
}

// EnsureLoaded loads the cart once; later calls return the held cart.
func (s *Store) EnsureLoaded(ctx context.Context) (*Cart, error) {
	s.mu.Lock()
	if s.cart != nil {
		c := s.cart.Clone()
		s.mu.Unlock()
		return c, nil
	}
	s.mu.Unlock()
	return s.Load(ctx)
}

// AddItem adds quantity units of a product. A stock or state conflict
// triggers a best-effort reload before the conflict is returned.
func (s *Store) AddItem(ctx context.Context, productID string, quantity int) (*Cart, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required").
			WithDetails(map[string]string{"productId": "is required"})
	}
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").
			WithDetails(map[string]string{"quantity": "must be at least 1"})
	}

	cart, err := s.mutate(ctx, "add_item", func(ctx context.Context) (gateway.CartPayload, error) {
		return s.gw.AddLine(ctx, productID, quantity)
	})
	if err != nil && pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		s.recordConflict("add_item", err)
		s.reloadAfterConflict(ctx, "add_item")
	}
	return cart, err
}

// UpdateQuantity sets a line's quantity. Zero is not accepted here; callers
// route it to RemoveItem. A line the gateway no longer knows is reported as
// a conflict after a reload.
func (s *Store) UpdateQuantity(ctx context.Context, lineID string, quantity int) (*Cart, error) {
	if strings.TrimSpace(lineID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "line id is required")
	}
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1; remove the item instead").
			WithDetails(map[string]string{"quantity": "must be at least 1"})
	}

	cart, err := s.mutate(ctx, "update_quantity", func(ctx context.Context) (gateway.CartPayload, error) {
		return s.gw.UpdateLine(ctx, lineID, quantity)
	})
	if err == nil {
		return cart, nil
	}
	if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		err = pkgerrors.Wrap(pkgerrors.CodeConflict, err, "cart item no longer exists").
			WithDetails(map[string]string{"lineId": lineID})
	}
	if pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		s.recordConflict("update_quantity", err)
		s.reloadAfterConflict(ctx, "update_quantity")
	}
	return nil, err
}

// RemoveItem deletes a line. Removing a line the gateway does not know is a
// success that leaves the cart as it is.
func (s *Store) RemoveItem(ctx context.Context, lineID string) (*Cart, error) {
	if strings.TrimSpace(lineID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "line id is required")
	}

	cart, err := s.mutate(ctx, "remove_item", func(ctx context.Context) (gateway.CartPayload, error) {
		return s.gw.RemoveLine(ctx, lineID)
	})
	if err != nil && pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.cart.Clone(), nil
	}
	return cart, err
}

// Clear empties the cart after an order was placed. Only checkout calls it.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	if s.mutating {
		s.mu.Unlock()
		return s.inFlight(ctx, "clear")
	}
	if s.cart == nil {
		s.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeStateConflict, "cart not loaded")
	}
	t := s.issueLocked()
	s.mutating = true
	s.mu.Unlock()

	err := s.gw.ClearCart(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if t.generation != s.generation {
		return errDiscarded()
	}
	s.mutating = false
	if err != nil {
		return err
	}
	s.cart = &Cart{ID: s.cart.ID, UserID: s.cart.UserID, Lines: []Line{}}
	s.applied = t.seq
	return nil
}

// Freeze holds off AddItem, UpdateQuantity and RemoveItem until Thaw, so the
// lines an order is placed from stay the lines Clear removes. It fails with
// IN_FLIGHT when a mutation is running or the store is already frozen.
func (s *Store) Freeze(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frozen {
		return s.frozenErr(ctx, "freeze")
	}
	if s.mutating {
		return s.inFlight(ctx, "freeze")
	}
	s.frozen = true
	return nil
}

// Thaw lifts Freeze. Thawing an unfrozen store is a no-op.
func (s *Store) Thaw() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frozen = false
}

// Reset discards the cart on logout. Requests still in flight are ignored
// when they return.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.cart = nil
	s.mutating = false
	s.frozen = false
	s.loads = 0
	s.applied = 0
}

func (s *Store) mutate(ctx context.Context, op string, call func(context.Context) (gateway.CartPayload, error)) (*Cart, error) {
	s.mu.Lock()
	if s.frozen {
		s.mu.Unlock()
		err := s.frozenErr(ctx, op)
		s.recordConflict(op, err)
		return nil, err
	}
	if s.mutating || s.loads > 0 {
		s.mu.Unlock()
		err := s.inFlight(ctx, op)
		s.recordConflict(op, err)
		return nil, err
	}
	if s.cart == nil {
		s.mu.Unlock()
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cart not loaded")
	}
	t := s.issueLocked()
	s.mutating = true
	s.mu.Unlock()

	payload, err := call(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if t.generation != s.generation {
		return nil, errDiscarded()
	}
	s.mutating = false
	if err != nil {
		return nil, err
	}
	if err := s.applyLocked(ctx, t, payload); err != nil {
		return nil, err
	}
	return s.cart.Clone(), nil
}

func (s *Store) reloadAfterConflict(ctx context.Context, op string) {
	if _, err := s.Load(ctx); err != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"cart_op": op,
			"error":   err.Error(),
		}), "cart reload after conflict failed")
	}
}

func (s *Store) issueLocked() ticket {
	s.seq++
	return ticket{seq: s.seq, generation: s.generation}
}

func (s *Store) applyLocked(ctx context.Context, t ticket, payload gateway.CartPayload) error {
	next, err := s.fromPayload(ctx, payload)
	if err != nil {
		return err
	}
	if payload.TotalItems != next.TotalItems() || !payload.TotalAmount.Equal(next.TotalAmount()) {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"cart_id":              payload.ID,
			"gateway_total_items":  payload.TotalItems,
			"gateway_total_amount": payload.TotalAmount.String(),
			"derived_total_items":  next.TotalItems(),
			"derived_total_amount": next.TotalAmount().String(),
		}), "gateway cart totals diverge from lines")
	}
	s.cart = next
	s.applied = t.seq
	return nil
}

func (s *Store) fromPayload(ctx context.Context, payload gateway.CartPayload) (*Cart, error) {
	out := &Cart{ID: payload.ID, UserID: payload.UserID, Lines: make([]Line, 0, len(payload.Items))}
	seen := make(map[string]bool, len(payload.Items))
	for _, item := range payload.Items {
		if item.Quantity < 1 {
			if err := s.violation(ctx, fmt.Sprintf("gateway returned line %s with quantity %d", item.ID, item.Quantity)); err != nil {
				return nil, err
			}
			continue
		}
		if seen[item.ID] {
			if err := s.violation(ctx, fmt.Sprintf("gateway returned duplicate line %s", item.ID)); err != nil {
				return nil, err
			}
			continue
		}
		seen[item.ID] = true
		out.Lines = append(out.Lines, Line{ID: item.ID, Product: item.Product, Quantity: item.Quantity})
	}
	return out, nil
}

// violation panics in strict mode; otherwise it logs and lets the caller
// repair the data.
func (s *Store) violation(ctx context.Context, msg string) error {
	err := pkgerrors.Invariant(msg)
	if s.strict {
		panic(err)
	}
	s.logg.Error(ctx, "cart invariant violated", err)
	return nil
}

func (s *Store) inFlight(ctx context.Context, op string) error {
	s.logg.Info(s.logg.WithField(ctx, "cart_op", op), "cart request rejected while another is in flight")
	return pkgerrors.New(pkgerrors.CodeInFlight, "a cart update is already in progress, please wait")
}

func (s *Store) frozenErr(ctx context.Context, op string) error {
	s.logg.Info(s.logg.WithField(ctx, "cart_op", op), "cart request rejected while an order is being placed")
	return pkgerrors.New(pkgerrors.CodeInFlight, "your order is being placed, please wait")
}

func (s *Store) recordConflict(op string, err error) {
	s.metrics.IncCartConflict(op, string(pkgerrors.CodeOf(err)))
}

func errDiscarded() error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "cart was reset while the request was in flight")
}
