package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/angelmondragon/chieftain/pkg/enums"
	pkgerrors "github.com/angelmondragon/chieftain/pkg/errors"
	"github.com/angelmondragon/chieftain/pkg/logger"
	"github.com/angelmondragon/chieftain/pkg/metrics"
)

const maxResponseBytes = 4 << 20

// ClientOptions configures the HTTP gateway client.
type ClientOptions struct {
	BaseURL            string
	Timeout            time.Duration
	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration
	Transport          http.RoundTripper
	Metrics            *metrics.GatewayMetrics
	Logger             *logger.Logger
}

type response struct {
	status int
	body   []byte
}

// Client talks to the remote commerce API over HTTP.
type Client struct {
	base    *url.URL
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[response]
	metrics *metrics.GatewayMetrics
	logg    *logger.Logger
}

var _ Gateway = (*Client)(nil)

// NewClient validates options and builds a client whose transport is
// instrumented with otelhttp and whose calls pass through a circuit breaker.
func NewClient(opts ClientOptions) (*Client, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, fmt.Errorf("gateway base url required")
	}
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing gateway base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("gateway base url must be http or https")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.BreakerMaxFailures == 0 {
		opts.BreakerMaxFailures = 5
	}
	if opts.BreakerOpenTimeout <= 0 {
		opts.BreakerOpenTimeout = 30 * time.Second
	}
	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	c := &Client{
		base:    base,
		http:    &http.Client{Timeout: opts.Timeout, Transport: otelhttp.NewTransport(transport)},
		metrics: opts.Metrics,
		logg:    opts.Logger,
	}
	maxFailures := opts.BreakerMaxFailures
	c.breaker = gobreaker.NewCircuitBreaker[response](gobreaker.Settings{
		Name:    "gateway",
		Timeout: opts.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !IsTransport(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.metrics.SetBreakerState(name, int(to))
			if c.logg != nil {
				c.logg.Warn(c.logg.WithFields(context.Background(), map[string]any{
					"breaker": name,
					"from":    from.String(),
					"to":      to.String(),
				}), "gateway circuit breaker state changed")
			}
		},
	})
	return c, nil
}

// ForToken returns the authorized view bound to a bearer token.
func (c *Client) ForToken(token string) Authorized {
	return &authorizedClient{c: c, token: token}
}

func (c *Client) Login(ctx context.Context, creds Credentials) (AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, "login", http.MethodPost, "/auth/login", "", nil, creds, &out)
	return out, err
}

func (c *Client) Signup(ctx context.Context, req SignupRequest) (AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, "signup", http.MethodPost, "/auth/signup", "", nil, req, &out)
	return out, err
}

func (c *Client) ListProducts(ctx context.Context, q ProductQuery) (ProductPage, error) {
	var out ProductPage
	err := c.do(ctx, "list_products", http.MethodGet, "/products", "", q.Values(), nil, &out)
	return out, err
}

func (c *Client) SearchProducts(ctx context.Context, q ProductQuery) (ProductPage, error) {
	var out ProductPage
	err := c.do(ctx, "search_products", http.MethodGet, "/products/search", "", q.Values(), nil, &out)
	return out, err
}

func (c *Client) GetProduct(ctx context.Context, id string) (Product, error) {
	var out Product
	err := c.do(ctx, "get_product", http.MethodGet, "/products/"+url.PathEscape(id), "", nil, nil, &out)
	return out, err
}

func (c *Client) FeaturedProducts(ctx context.Context) ([]Product, error) {
	var out []Product
	err := c.do(ctx, "featured_products", http.MethodGet, "/products/featured", "", nil, nil, &out)
	return out, err
}

func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var out []Category
	err := c.do(ctx, "list_categories", http.MethodGet, "/categories", "", nil, nil, &out)
	return out, err
}

type authorizedClient struct {
	c     *Client
	token string
}

func (a *authorizedClient) CurrentUser(ctx context.Context) (User, error) {
	var out User
	err := a.c.do(ctx, "current_user", http.MethodGet, "/auth/me", a.token, nil, nil, &out)
	return out, err
}

func (a *authorizedClient) Logout(ctx context.Context) error {
	return a.c.do(ctx, "logout", http.MethodPost, "/auth/logout", a.token, nil, nil, nil)
}

func (a *authorizedClient) FetchCart(ctx context.Context) (CartPayload, error) {
	var out CartPayload
	err := a.c.do(ctx, "fetch_cart", http.MethodGet, "/cart", a.token, nil, nil, &out)
	return out, err
}

func (a *authorizedClient) AddLine(ctx context.Context, productID string, quantity int) (CartPayload, error) {
	var out CartPayload
	body := map[string]any{"productId": productID, "quantity": quantity}
	err := a.c.do(ctx, "add_line", http.MethodPost, "/cart/items", a.token, nil, body, &out)
	return out, err
}

func (a *authorizedClient) UpdateLine(ctx context.Context, lineID string, quantity int) (CartPayload, error) {
	var out CartPayload
	body := map[string]any{"quantity": quantity}
	err := a.c.do(ctx, "update_line", http.MethodPut, "/cart/items/"+url.PathEscape(lineID), a.token, nil, body, &out)
	return out, err
}

func (a *authorizedClient) RemoveLine(ctx context.Context, lineID string) (CartPayload, error) {
	var out CartPayload
	err := a.c.do(ctx, "remove_line", http.MethodDelete, "/cart/items/"+url.PathEscape(lineID), a.token, nil, nil, &out)
	return out, err
}

func (a *authorizedClient) ClearCart(ctx context.Context) error {
	return a.c.do(ctx, "clear_cart", http.MethodDelete, "/cart", a.token, nil, nil, nil)
}

func (a *authorizedClient) CreateOrder(ctx context.Context, req CreateOrderRequest) (Order, error) {
	var out Order
	err := a.c.do(ctx, "create_order", http.MethodPost, "/orders", a.token, nil, req, &out)
	return out, err
}

func (a *authorizedClient) ListOrders(ctx context.Context) ([]Order, error) {
	var out []Order
	err := a.c.do(ctx, "list_orders", http.MethodGet, "/orders", a.token, nil, nil, &out)
	return out, err
}

func (a *authorizedClient) GetOrder(ctx context.Context, id string) (Order, error) {
	var out Order
	err := a.c.do(ctx, "get_order", http.MethodGet, "/orders/"+url.PathEscape(id), a.token, nil, nil, &out)
	return out, err
}

func (a *authorizedClient) UpdateOrderStatus(ctx context.Context, id string, status enums.OrderStatus) (Order, error) {
	var out Order
	body := map[string]any{"status": status}
	err := a.c.do(ctx, "update_order_status", http.MethodPatch, "/orders/"+url.PathEscape(id)+"/status", a.token, nil, body, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, op, method, path, token string, query url.Values, body, out any) error {
	start := time.Now()
	err := c.roundTrip(ctx, method, path, token, query, body, out)
	c.metrics.Observe(op, outcome(err), time.Since(start))
	if err != nil && c.logg != nil && IsTransport(err) {
		c.logg.Warn(c.logg.WithFields(ctx, map[string]any{
			"gateway_op": op,
			"error":      err.Error(),
		}), "gateway request failed")
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path, token string, query url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode gateway request")
		}
		payload = encoded
	}

	resp, err := c.breaker.Execute(func() (response, error) {
		return c.send(ctx, method, path, token, query, payload)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "gateway temporarily unavailable")
		}
		return err
	}

	if out == nil || len(bytes.TrimSpace(resp.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode gateway response")
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path, token string, query url.Values, payload []byte) (response, error) {
	target := *c.base
	target.Path = c.base.Path + path
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return response{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build gateway request")
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return response{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "gateway unreachable")
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return response{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read gateway response")
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return response{status: res.StatusCode, body: raw}, StatusError(res.StatusCode, raw)
	}
	return response{status: res.StatusCode, body: raw}, nil
}

func outcome(err error) string {
	if err == nil {
		return ""
	}
	return string(pkgerrors.CodeOf(err))
}

// Values encodes the query the way the gateway expects: repeated keys for
// list filters, plain decimals for prices.
func (q ProductQuery) Values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Size > 0 {
		v.Set("size", strconv.Itoa(q.Size))
	}
	if q.SortBy != "" {
		v.Set("sortBy", q.SortBy)
	}
	if q.SortDirection != "" {
		v.Set("sortDirection", q.SortDirection.String())
	}
	for _, c := range q.Categories {
		v.Add("categories", c)
	}
	for _, b := range q.Brands {
		v.Add("brands", b)
	}
	if q.MinPrice != nil {
		v.Set("minPrice", q.MinPrice.String())
	}
	if q.MaxPrice != nil {
		v.Set("maxPrice", q.MaxPrice.String())
	}
	for _, c := range q.Conditions {
		v.Add("conditions", c.String())
	}
	for _, c := range q.Compatibility {
		v.Add("compatibility", c)
	}
	if q.Query != "" {
		v.Set("query", q.Query)
	}
	return v
}
