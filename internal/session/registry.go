// Package session tracks signed-in browsers. The gateway token of each
// session lives in Redis so a restarted process can rehydrate it; the cart
// and checkout state are rebuilt from the gateway on first use.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/angelmondragon/chieftain/internal/cart"
	"github.com/angelmondragon/chieftain/pkg/auth"
	pkgerrors "github.com/angelmondragon/chieftain/pkg/errors"
	"github.com/angelmondragon/chieftain/pkg/gateway"
	"github.com/angelmondragon/chieftain/pkg/logger"
	"github.com/angelmondragon/chieftain/pkg/metrics"
	"github.com/angelmondragon/chieftain/pkg/pricing"
	"github.com/angelmondragon/chieftain/pkg/redis"
)

const defaultFallbackTTL = 24 * time.Hour

// Options tunes session behaviour.
type Options struct {
	// FallbackTTL applies when the gateway token carries no readable expiry.
	FallbackTTL time.Duration
	Strict      bool
	Policy      pricing.Policy
	Metrics     *metrics.CheckoutMetrics
	Now         func() time.Time
}

// Registry holds live sessions by id.
type Registry struct {
	gw      gateway.Gateway
	tokens  redis.SessionStore
	logg    *logger.Logger
	ttl     time.Duration
	strict  bool
	policy  pricing.Policy
	metrics *metrics.CheckoutMetrics
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(gw gateway.Gateway, tokens redis.SessionStore, logg *logger.Logger, opts Options) (*Registry, error) {
	if gw == nil {
		return nil, fmt.Errorf("gateway required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("session token store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if opts.FallbackTTL <= 0 {
		opts.FallbackTTL = defaultFallbackTTL
	}
	if opts.Policy == (pricing.Policy{}) {
		opts.Policy = pricing.DefaultPolicy()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Registry{
		gw:       gw,
		tokens:   tokens,
		logg:     logg,
		ttl:      opts.FallbackTTL,
		strict:   opts.Strict,
		policy:   opts.Policy,
		metrics:  opts.Metrics,
		now:      opts.Now,
		sessions: map[string]*Session{},
	}, nil
}

// Login authenticates against the gateway and opens a session.
func (r *Registry) Login(ctx context.Context, creds gateway.Credentials) (*Session, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	res, err := r.gw.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	return r.open(ctx, res)
}

// Signup registers with the gateway and opens a session.
func (r *Registry) Signup(ctx context.Context, req gateway.SignupRequest) (*Session, error) {
	req.Email = strings.TrimSpace(req.Email)
	res, err := r.gw.Signup(ctx, req)
	if err != nil {
		return nil, err
	}
	return r.open(ctx, res)
}

func (r *Registry) open(ctx context.Context, res gateway.AuthResult) (*Session, error) {
	if res.Token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "gateway returned no token")
	}
	now := r.now()
	ttl := auth.TTLFor(res.Token, now, r.ttl)
	if ttl <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "gateway token already expired")
	}

	id := uuid.NewString()
	if err := r.tokens.StoreSessionToken(ctx, id, res.Token, ttl); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to persist session")
	}

	sess, err := r.build(id, res.Token, res.User, now.Add(ttl))
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.sessions[id] = sess
	r.mu.Unlock()

	ctx = r.logg.WithUserID(r.logg.WithSessionID(ctx, id), res.User.ID)
	r.logg.Info(ctx, "session opened")
	if _, err := sess.Cart.Load(ctx); err != nil {
		r.logg.Warn(r.logg.WithField(ctx, "error", err.Error()), "initial cart load failed")
	}
	return sess, nil
}

func (r *Registry) build(id, token string, user gateway.User, expiresAt time.Time) (*Session, error) {
	client := r.gw.ForToken(token)
	store, err := cart.NewStore(client, r.logg,
		cart.WithStrictInvariants(r.strict),
		cart.WithMetrics(r.metrics),
	)
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:        id,
		User:      user,
		ExpiresAt: expiresAt,
		Cart:      store,
		client:    client,
		reg:       r,
	}, nil
}

// Resolve returns the session for id. A session known to Redis but not to
// this process is rehydrated; its cart loads on first use.
func (r *Registry) Resolve(ctx context.Context, id string) (*Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "not signed in")
	}
	now := r.now()

	r.mu.Lock()
	sess, ok := r.sessions[id]
	if ok && sess.expired(now) {
		delete(r.sessions, id)
		r.mu.Unlock()
		r.teardown(ctx, sess)
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired")
	}
	r.mu.Unlock()
	if ok {
		return sess, nil
	}
	return r.rehydrate(ctx, id, now)
}

func (r *Registry) rehydrate(ctx context.Context, id string, now time.Time) (*Session, error) {
	token, err := r.tokens.GetSessionToken(ctx, id)
	if errors.Is(err, redis.ErrNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to read session")
	}

	user, err := r.gw.ForToken(token).CurrentUser(ctx)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
			if delErr := r.tokens.DeleteSessionToken(ctx, id); delErr != nil {
				r.logg.Error(r.logg.WithSessionID(ctx, id), "failed to drop rejected session", delErr)
			}
		}
		return nil, err
	}

	ttl := auth.TTLFor(token, now, r.ttl)
	sess, err := r.build(id, token, user, now.Add(ttl))
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if existing, ok := r.sessions[id]; ok {
		r.mu.Unlock()
		return existing, nil
	}
	r.sessions[id] = sess
	r.mu.Unlock()

	r.logg.Info(r.logg.WithUserID(r.logg.WithSessionID(ctx, id), user.ID), "session rehydrated")
	return sess, nil
}

// Logout signs the session out of the gateway and tears it down. Teardown
// always completes; the returned error collects what failed along the way.
func (r *Registry) Logout(ctx context.Context, id string) error {
	sess, err := r.Resolve(ctx, id)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
			return nil
		}
		return err
	}
	ctx = r.logg.WithSessionID(ctx, sess.ID)

	var errs error
	if err := sess.client.Logout(ctx); err != nil && !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		errs = multierr.Append(errs, fmt.Errorf("gateway logout: %w", err))
	}
	r.mu.Lock()
	delete(r.sessions, sess.ID)
	r.mu.Unlock()
	errs = multierr.Append(errs, r.teardown(ctx, sess))

	if errs != nil {
		r.logg.Warn(r.logg.WithField(ctx, "error", errs.Error()), "session teardown incomplete")
	} else {
		r.logg.Info(ctx, "session closed")
	}
	return errs
}

func (r *Registry) teardown(ctx context.Context, sess *Session) error {
	sess.EndCheckout()
	sess.Cart.Reset()
	if err := r.tokens.DeleteSessionToken(ctx, sess.ID); err != nil {
		return fmt.Errorf("delete session token: %w", err)
	}
	return nil
}

// Len reports the number of sessions held in memory.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
