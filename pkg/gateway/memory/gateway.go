// Package memory is an in-process gateway used for local development and
// tests. It keeps users, carts and orders in maps and enforces the same
// stock and ownership rules the remote API does.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/chieftain/pkg/auth"
	"github.com/angelmondragon/chieftain/pkg/enums"
	pkgerrors "github.com/angelmondragon/chieftain/pkg/errors"
	"github.com/angelmondragon/chieftain/pkg/gateway"
	"github.com/angelmondragon/chieftain/pkg/pagination"
	"github.com/angelmondragon/chieftain/pkg/security"
)

type userRecord struct {
	user gateway.User
	hash string
}

type line struct {
	id        string
	productID string
	quantity  int
}

type cartRecord struct {
	id    string
	lines []line
}

// Options tunes the in-memory gateway.
type Options struct {
	TokenTTL     time.Duration
	Secret       string
	PasswordCost security.Cost
	Now          func() time.Time
	FeaturedMax  int
}

// Gateway implements gateway.Gateway in memory.
type Gateway struct {
	mu sync.Mutex

	tokens   auth.TokenConfig
	cost     security.Cost
	now      func() time.Time
	featured int

	categories   []gateway.Category
	products     map[string]*gateway.Product
	productOrder []string
	featuredIDs  map[string]bool

	users   map[string]*userRecord
	byID    map[string]*userRecord
	revoked map[string]bool
	carts   map[string]*cartRecord
	orders  []*gateway.Order
	orderNo int

	faults map[string][]error
	hooks  map[string]func()
}

var _ gateway.Gateway = (*Gateway)(nil)

// New builds a gateway populated from seed.
func New(seed Seed, opts Options) (*Gateway, error) {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.Secret == "" {
		opts.Secret = uuid.NewString()
	}
	if opts.PasswordCost == (security.Cost{}) {
		opts.PasswordCost = security.ShopperCost()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.FeaturedMax <= 0 {
		opts.FeaturedMax = 8
	}

	g := &Gateway{
		tokens:      auth.TokenConfig{Secret: opts.Secret, Issuer: "chieftain-memory-gateway", TTL: opts.TokenTTL},
		cost:        opts.PasswordCost,
		now:         opts.Now,
		featured:    opts.FeaturedMax,
		categories:  append([]gateway.Category{}, seed.Categories...),
		products:    map[string]*gateway.Product{},
		featuredIDs: map[string]bool{},
		users:       map[string]*userRecord{},
		byID:        map[string]*userRecord{},
		revoked:     map[string]bool{},
		carts:       map[string]*cartRecord{},
		faults:      map[string][]error{},
		hooks:       map[string]func(){},
	}

	products, featured, err := seed.products(opts.Now())
	if err != nil {
		return nil, err
	}
	for i := range products {
		p := products[i]
		g.products[p.ID] = &p
		g.productOrder = append(g.productOrder, p.ID)
	}
	g.featuredIDs = featured

	for _, su := range seed.Users {
		role, err := enums.ParseUserRole(su.Role)
		if err != nil {
			return nil, fmt.Errorf("seed user %s: %w", su.Email, err)
		}
		if _, err := g.register(su.Email, su.Password, su.FirstName, su.LastName, su.Phone, role); err != nil {
			return nil, fmt.Errorf("seed user %s: %w", su.Email, err)
		}
	}
	return g, nil
}

// NewDefault builds a gateway from the bundled seed.
func NewDefault(opts Options) (*Gateway, error) {
	seed, err := DefaultSeed()
	if err != nil {
		return nil, err
	}
	return New(seed, opts)
}

// InjectFault makes the next call of op fail with err. Faults queue in order.
func (g *Gateway) InjectFault(op string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.faults[op] = append(g.faults[op], err)
}

// OnCall runs fn, outside the gateway lock, at the start of every call of op.
// Tests use it to hold a request open.
func (g *Gateway) OnCall(op string, fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if fn == nil {
		delete(g.hooks, op)
		return
	}
	g.hooks[op] = fn
}

// SetStock overrides a product's stock level.
func (g *Gateway) SetStock(productID string, stock int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p, ok := g.products[productID]; ok {
		p.Stock = stock
	}
}

// Stock returns a product's current stock level.
func (g *Gateway) Stock(productID string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p, ok := g.products[productID]; ok {
		return p.Stock
	}
	return 0
}

// enter runs the hook for op and pops a queued fault.
func (g *Gateway) enter(ctx context.Context, op string) error {
	g.mu.Lock()
	hook := g.hooks[op]
	g.mu.Unlock()
	if hook != nil {
		hook()
	}
	if err := ctx.Err(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "request cancelled")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if queue := g.faults[op]; len(queue) > 0 {
		g.faults[op] = queue[1:]
		return queue[0]
	}
	return nil
}

func (g *Gateway) register(email, password, first, last, phone string, role enums.UserRole) (*userRecord, error) {
	key := strings.ToLower(strings.TrimSpace(email))
	if key == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if _, exists := g.users[key]; exists {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	}
	hash, err := security.Hash(password, g.cost)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid password")
	}
	rec := &userRecord{
		user: gateway.User{
			ID:        uuid.NewString(),
			Email:     key,
			FirstName: first,
			LastName:  last,
			Role:      role,
			Phone:     phone,
			CreatedAt: g.now(),
		},
		hash: hash,
	}
	g.users[key] = rec
	g.byID[rec.user.ID] = rec
	return rec, nil
}

func (g *Gateway) issue(rec *userRecord) (gateway.AuthResult, error) {
	token, err := auth.MintAccessToken(g.tokens, g.now(), auth.AccessTokenPayload{
		UserID: rec.user.ID,
		Email:  rec.user.Email,
		Role:   rec.user.Role,
	})
	if err != nil {
		return gateway.AuthResult{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "issue token")
	}
	return gateway.AuthResult{Token: token, User: rec.user}, nil
}

func (g *Gateway) Login(ctx context.Context, creds gateway.Credentials) (gateway.AuthResult, error) {
	if err := g.enter(ctx, "login"); err != nil {
		return gateway.AuthResult{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	rec, ok := g.users[strings.ToLower(strings.TrimSpace(creds.Email))]
	if !ok {
		return gateway.AuthResult{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
	}
	match, err := security.Matches(creds.Password, rec.hash)
	if err != nil || !match {
		return gateway.AuthResult{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
	}
	return g.issue(rec)
}

func (g *Gateway) Signup(ctx context.Context, req gateway.SignupRequest) (gateway.AuthResult, error) {
	if err := g.enter(ctx, "signup"); err != nil {
		return gateway.AuthResult{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	rec, err := g.register(req.Email, req.Password, req.FirstName, req.LastName, req.Phone, enums.UserRoleUser)
	if err != nil {
		return gateway.AuthResult{}, err
	}
	return g.issue(rec)
}

func (g *Gateway) ListProducts(ctx context.Context, q gateway.ProductQuery) (gateway.ProductPage, error) {
	if err := g.enter(ctx, "list_products"); err != nil {
		return gateway.ProductPage{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.page(g.filter(q), q), nil
}

func (g *Gateway) SearchProducts(ctx context.Context, q gateway.ProductQuery) (gateway.ProductPage, error) {
	if err := g.enter(ctx, "search_products"); err != nil {
		return gateway.ProductPage{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	needle := strings.ToLower(strings.TrimSpace(q.Query))
	var matched []gateway.Product
	for _, p := range g.filter(q) {
		hay := strings.ToLower(p.Name + " " + p.Brand + " " + p.Description)
		if needle == "" || strings.Contains(hay, needle) {
			matched = append(matched, p)
		}
	}
	return g.page(matched, q), nil
}

func (g *Gateway) GetProduct(ctx context.Context, id string) (gateway.Product, error) {
	if err := g.enter(ctx, "get_product"); err != nil {
		return gateway.Product{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.products[id]
	if !ok {
		return gateway.Product{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return *p, nil
}

func (g *Gateway) FeaturedProducts(ctx context.Context) ([]gateway.Product, error) {
	if err := g.enter(ctx, "featured_products"); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	out := []gateway.Product{}
	for _, id := range g.productOrder {
		if g.featuredIDs[id] && len(out) < g.featured {
			out = append(out, *g.products[id])
		}
	}
	return out, nil
}

func (g *Gateway) ListCategories(ctx context.Context) ([]gateway.Category, error) {
	if err := g.enter(ctx, "list_categories"); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]gateway.Category{}, g.categories...), nil
}

func (g *Gateway) filter(q gateway.ProductQuery) []gateway.Product {
	out := []gateway.Product{}
	for _, id := range g.productOrder {
		p := *g.products[id]
		if len(q.Categories) > 0 && !containsFold(q.Categories, p.Category.ID) && !containsFold(q.Categories, p.Category.Name) {
			continue
		}
		if len(q.Brands) > 0 && !containsFold(q.Brands, p.Brand) {
			continue
		}
		if q.MinPrice != nil && p.Price.LessThan(*q.MinPrice) {
			continue
		}
		if q.MaxPrice != nil && p.Price.GreaterThan(*q.MaxPrice) {
			continue
		}
		if len(q.Conditions) > 0 && !containsCondition(q.Conditions, p.Condition) {
			continue
		}
		if len(q.Compatibility) > 0 && !overlapsFold(q.Compatibility, p.Compatibility) {
			continue
		}
		out = append(out, p)
	}
	sortProducts(out, q.SortBy, q.SortDirection)
	return out
}

func (g *Gateway) page(all []gateway.Product, q gateway.ProductQuery) gateway.ProductPage {
	params := pagination.Params{Page: q.Page, Size: q.Size}
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Size < 1 {
		params.Size = pagination.DefaultSize
	}
	p := pagination.Slice(all, params)
	return gateway.ProductPage{Products: p.Items, Total: p.TotalItems, Page: p.Page, TotalPages: p.TotalPages}
}

func sortProducts(products []gateway.Product, by string, dir enums.SortDirection) {
	desc := dir == enums.SortDirectionDesc
	var less func(a, b gateway.Product) bool
	switch by {
	case "price":
		less = func(a, b gateway.Product) bool { return a.Price.LessThan(b.Price) }
	case "name":
		less = func(a, b gateway.Product) bool { return a.Name < b.Name }
	case "ratings":
		less = func(a, b gateway.Product) bool { return a.Ratings < b.Ratings }
	default:
		return
	}
	sort.SliceStable(products, func(i, j int) bool {
		if desc {
			return less(products[j], products[i])
		}
		return less(products[i], products[j])
	})
}

// ForToken resolves the bearer token lazily so an invalid token surfaces as
// an auth error on the first call, as it would remotely.
func (g *Gateway) ForToken(token string) gateway.Authorized {
	return &session{g: g, token: token}
}

func (g *Gateway) authenticate(token string) (*userRecord, *auth.AccessTokenClaims, error) {
	claims, err := auth.ParseAccessToken(g.tokens, token)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid or expired token")
	}
	if g.revoked[claims.ID] {
		return nil, nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "token revoked")
	}
	rec, ok := g.byID[claims.UserID]
	if !ok {
		return nil, nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "unknown user")
	}
	return rec, claims, nil
}

func (g *Gateway) cartFor(userID string) *cartRecord {
	c, ok := g.carts[userID]
	if !ok {
		c = &cartRecord{id: uuid.NewString()}
		g.carts[userID] = c
	}
	return c
}

func (g *Gateway) payload(userID string) gateway.CartPayload {
	c := g.cartFor(userID)
	out := gateway.CartPayload{ID: c.id, UserID: userID, Items: []gateway.CartItem{}, TotalAmount: decimal.Zero}
	for _, l := range c.lines {
		p := g.products[l.productID]
		out.Items = append(out.Items, gateway.CartItem{ID: l.id, Product: *p, Quantity: l.quantity})
		out.TotalItems += l.quantity
		out.TotalAmount = out.TotalAmount.Add(p.Price.Mul(decimal.NewFromInt(int64(l.quantity))))
	}
	return out
}

type session struct {
	g     *Gateway
	token string
}

func (s *session) CurrentUser(ctx context.Context) (gateway.User, error) {
	if err := s.g.enter(ctx, "current_user"); err != nil {
		return gateway.User{}, err
	}
	s.g.mu.Lock()
	defer s.g.mu.Unlock()
	rec, _, err := s.g.authenticate(s.token)
	if err != nil {
		return gateway.User{}, err
	}
	return rec.user, nil
}

func (s *session) Logout(ctx context.Context) error {
	if err := s.g.enter(ctx, "logout"); err != nil {
		return err
	}
	s.g.mu.Lock()
	defer s.g.mu.Unlock()
	_, claims, err := s.g.authenticate(s.token)
	if err != nil {
		return err
	}
	s.g.revoked[claims.ID] = true
	return nil
}

func (s *session) FetchCart(ctx context.Context) (gateway.CartPayload, error) {
	if err := s.g.enter(ctx, "fetch_cart"); err != nil {
		return gateway.CartPayload{}, err
	}
	s.g.mu.Lock()
	defer s.g.mu.Unlock()
	rec, _, err := s.g.authenticate(s.token)
	if err != nil {
		return gateway.CartPayload{}, err
	}
	return s.g.payload(rec.user.ID), nil
}

func (s *session) AddLine(ctx context.Context, productID string, quantity int) (gateway.CartPayload, error) {
	if err := s.g.enter(ctx, "add_line"); err != nil {
		return gateway.CartPayload{}, err
	}
	s.g.mu.Lock()
	defer s.g.mu.Unlock()
	rec, _, err := s.g.authenticate(s.token)
	if err != nil {
		return gateway.CartPayload{}, err
	}
	if quantity < 1 {
		return gateway.CartPayload{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	p, ok := s.g.products[productID]
	if !ok {
		return gateway.CartPayload{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	c := s.g.cartFor(rec.user.ID)
	for i := range c.lines {
		if c.lines[i].productID == productID {
			want := c.lines[i].quantity + quantity
			if want > p.Stock {
				return gateway.CartPayload{}, stockConflict(p)
			}
			c.lines[i].quantity = want
			return s.g.payload(rec.user.ID), nil
		}
	}
	if quantity > p.Stock {
		return gateway.CartPayload{}, stockConflict(p)
	}
	c.lines = append(c.lines, line{id: uuid.NewString(), productID: productID, quantity: quantity})
	return s.g.payload(rec.user.ID), nil
}

func (s *session) UpdateLine(ctx context.Context, lineID string, quantity int) (gateway.CartPayload, error) {
	if err := s.g.enter(ctx, "update_line"); err != nil {
		return gateway.CartPayload{}, err
	}
	s.g.mu.Lock()
	defer s.g.mu.Unlock()
	rec, _, err := s.g.authenticate(s.token)
	if err != nil {
		return gateway.CartPayload{}, err
	}
	if quantity < 1 {
		return gateway.CartPayload{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	c := s.g.cartFor(rec.user.ID)
	for i := range c.lines {
		if c.lines[i].id == lineID {
			p := s.g.products[c.lines[i].productID]
			if quantity > p.Stock {
				return gateway.CartPayload{}, stockConflict(p)
			}
			c.lines[i].quantity = quantity
			return s.g.payload(rec.user.ID), nil
		}
	}
	return gateway.CartPayload{}, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
}

func (s *session) RemoveLine(ctx context.Context, lineID string) (gateway.CartPayload, error) {
	if err := s.g.enter(ctx, "remove_line"); err != nil {
		return gateway.CartPayload{}, err
	}
	s.g.mu.Lock()
	defer s.g.mu.Unlock()
	rec, _, err := s.g.authenticate(s.token)
	if err != nil {
		return gateway.CartPayload{}, err
	}
	c := s.g.cartFor(rec.user.ID)
	for i := range c.lines {
		if c.lines[i].id == lineID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return s.g.payload(rec.user.ID), nil
		}
	}
	return gateway.CartPayload{}, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
}

func (s *session) ClearCart(ctx context.Context) error {
	if err := s.g.enter(ctx, "clear_cart"); err != nil {
		return err
	}
	s.g.mu.Lock()
	defer s.g.mu.Unlock()
	rec, _, err := s.g.authenticate(s.token)
	if err != nil {
		return err
	}
	s.g.cartFor(rec.user.ID).lines = nil
	return nil
}

func (s *session) CreateOrder(ctx context.Context, req gateway.CreateOrderRequest) (gateway.Order, error) {
	if err := s.g.enter(ctx, "create_order"); err != nil {
		return gateway.Order{}, err
	}
	s.g.mu.Lock()
	defer s.g.mu.Unlock()
	rec, _, err := s.g.authenticate(s.token)
	if err != nil {
		return gateway.Order{}, err
	}
	if !req.PaymentMethod.IsValid() {
		return gateway.Order{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	if strings.TrimSpace(req.ShippingAddress.Address) == "" || strings.TrimSpace(req.ShippingAddress.City) == "" {
		return gateway.Order{}, pkgerrors.New(pkgerrors.CodeValidation, "shipping address is incomplete")
	}
	c := s.g.cartFor(rec.user.ID)
	if len(c.lines) == 0 {
		return gateway.Order{}, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	for _, l := range c.lines {
		if p := s.g.products[l.productID]; l.quantity > p.Stock {
			return gateway.Order{}, stockConflict(p)
		}
	}

	now := s.g.now()
	s.g.orderNo++
	order := &gateway.Order{
		ID:              uuid.NewString(),
		UserID:          rec.user.ID,
		OrderNumber:     fmt.Sprintf("CHF-%06d", s.g.orderNo),
		Status:          enums.OrderStatusPlaced,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		PaymentStatus:   enums.PaymentStatusPending,
		TotalAmount:     decimal.Zero,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for _, l := range c.lines {
		p := s.g.products[l.productID]
		p.Stock -= l.quantity
		total := p.Price.Mul(decimal.NewFromInt(int64(l.quantity)))
		order.Items = append(order.Items, gateway.OrderItem{
			ID:           uuid.NewString(),
			ProductID:    p.ID,
			ProductName:  p.Name,
			ProductImage: p.ImageURL,
			Quantity:     l.quantity,
			UnitPrice:    p.Price,
			TotalPrice:   total,
		})
		order.TotalAmount = order.TotalAmount.Add(total)
	}
	s.g.orders = append(s.g.orders, order)
	return *order, nil
}

func (s *session) ListOrders(ctx context.Context) ([]gateway.Order, error) {
	if err := s.g.enter(ctx, "list_orders"); err != nil {
		return nil, err
	}
	s.g.mu.Lock()
	defer s.g.mu.Unlock()
	rec, _, err := s.g.authenticate(s.token)
	if err != nil {
		return nil, err
	}
	out := []gateway.Order{}
	for i := len(s.g.orders) - 1; i >= 0; i-- {
		o := s.g.orders[i]
		if rec.user.IsAdmin() || o.UserID == rec.user.ID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *session) GetOrder(ctx context.Context, id string) (gateway.Order, error) {
	if err := s.g.enter(ctx, "get_order"); err != nil {
		return gateway.Order{}, err
	}
	s.g.mu.Lock()
	defer s.g.mu.Unlock()
	rec, _, err := s.g.authenticate(s.token)
	if err != nil {
		return gateway.Order{}, err
	}
	o := s.g.findOrder(id)
	if o == nil || (!rec.user.IsAdmin() && o.UserID != rec.user.ID) {
		return gateway.Order{}, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return *o, nil
}

func (s *session) UpdateOrderStatus(ctx context.Context, id string, status enums.OrderStatus) (gateway.Order, error) {
	if err := s.g.enter(ctx, "update_order_status"); err != nil {
		return gateway.Order{}, err
	}
	s.g.mu.Lock()
	defer s.g.mu.Unlock()
	rec, _, err := s.g.authenticate(s.token)
	if err != nil {
		return gateway.Order{}, err
	}
	if !rec.user.IsAdmin() {
		return gateway.Order{}, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	o := s.g.findOrder(id)
	if o == nil {
		return gateway.Order{}, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if !allowedTransition(o.Status, status) {
		return gateway.Order{}, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("cannot move order from %s to %s", o.Status, status))
	}
	o.Status = status
	o.UpdatedAt = s.g.now()
	if status == enums.OrderStatusDelivered && o.PaymentMethod == enums.PaymentMethodCashOnDelivery {
		o.PaymentStatus = enums.PaymentStatusCompleted
	}
	return *o, nil
}

func (g *Gateway) findOrder(id string) *gateway.Order {
	for _, o := range g.orders {
		if o.ID == id {
			return o
		}
	}
	return nil
}

func allowedTransition(from, to enums.OrderStatus) bool {
	if to == enums.OrderStatusCancelled {
		return !from.IsTerminal()
	}
	next, ok := enums.NextOrderStatus(from)
	return ok && next == to
}

func stockConflict(p *gateway.Product) *pkgerrors.Error {
	if p.Stock == 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("%s is out of stock", p.Name))
	}
	return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("only %d of %s left in stock", p.Stock, p.Name)).
		WithDetails(map[string]any{"productId": p.ID, "available": p.Stock})
}

func containsFold(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}

func overlapsFold(want, have []string) bool {
	for _, w := range want {
		if containsFold(have, w) {
			return true
		}
	}
	return false
}

func containsCondition(list []enums.ProductCondition, c enums.ProductCondition) bool {
	for _, item := range list {
		if item == c {
			return true
		}
	}
	return false
}
