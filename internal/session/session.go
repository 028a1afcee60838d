package session

import (
	"context"
	"sync"
	"time"

	"github.com/angelmondragon/chieftain/internal/cart"
	"github.com/angelmondragon/chieftain/internal/checkout"
	pkgerrors "github.com/angelmondragon/chieftain/pkg/errors"
	"github.com/angelmondragon/chieftain/pkg/gateway"
)

// Session is one signed-in browser. It owns the cart store and at most one
// live checkout attempt.
type Session struct {
	ID        string
	User      gateway.User
	ExpiresAt time.Time
	Cart      *cart.Store

	client gateway.Authorized
	reg    *Registry

	mu       sync.Mutex
	checkout *checkout.Orchestrator
}

// Client is the gateway bound to this session's token.
func (s *Session) Client() gateway.Authorized {
	return s.client
}

func (s *Session) IsAdmin() bool {
	return s.User.IsAdmin()
}

// RequireAdmin returns Forbidden for non-admin sessions.
func (s *Session) RequireAdmin() error {
	if !s.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	return nil
}

func (s *Session) expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// BeginCheckout starts a new attempt over the current cart, disposing any
// previous one.
func (s *Session) BeginCheckout(ctx context.Context) (*checkout.Orchestrator, error) {
	if _, err := s.Cart.EnsureLoaded(ctx); err != nil {
		return nil, err
	}
	o, err := checkout.New(s.Cart, s.client, s.reg.logg,
		checkout.WithPolicy(s.reg.policy),
		checkout.WithStrictInvariants(s.reg.strict),
		checkout.WithMetrics(s.reg.metrics),
	)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	prev := s.checkout
	s.checkout = o
	s.mu.Unlock()

	if prev != nil {
		prev.Dispose()
	}
	s.reg.logg.Info(s.reg.logg.WithAttemptID(ctx, o.ID()), "checkout started")
	return o, nil
}

// Checkout returns the live attempt.
func (s *Session) Checkout() (*checkout.Orchestrator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.checkout == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no checkout in progress")
	}
	return s.checkout, nil
}

// EndCheckout disposes the live attempt, if any.
func (s *Session) EndCheckout() {
	s.mu.Lock()
	o := s.checkout
	s.checkout = nil
	s.mu.Unlock()
	if o != nil {
		o.Dispose()
	}
}
