package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/chieftain/internal/catalog"
	"github.com/angelmondragon/chieftain/internal/orders"
	"github.com/angelmondragon/chieftain/internal/session"
	"github.com/angelmondragon/chieftain/pkg/config"
	"github.com/angelmondragon/chieftain/pkg/gateway/memory"
	"github.com/angelmondragon/chieftain/pkg/logger"
	"github.com/angelmondragon/chieftain/pkg/metrics"
	"github.com/angelmondragon/chieftain/pkg/redis"
	"github.com/angelmondragon/chieftain/pkg/security"
)

const cookieName = "chieftain_session"

var validAddress = map[string]string{
	"firstName": "Wanjiru",
	"lastName":  "Kamau",
	"email":     "wanjiru@example.com",
	"phone":     "+254 712 345 678",
	"address":   "Moi Avenue 12",
	"city":      "Nairobi",
	"country":   "Kenya",
}

type harness struct {
	t       *testing.T
	handler http.Handler
	gw      *memory.Gateway
	mr      *miniredis.Miniredis
	reg     *session.Registry
}

func testConfig() *config.Config {
	return &config.Config{
		App:     config.AppConfig{Env: config.AppEnvDev, IdempotencyTTL: time.Hour},
		Gateway: config.GatewayConfig{Mode: config.GatewayModeMemory},
		Session: config.SessionConfig{CookieName: cookieName, FallbackTTL: time.Hour},
		Pricing: config.PricingConfig{
			FreeShippingThreshold: decimal.NewFromInt(10000),
			ShippingFee:           decimal.NewFromInt(500),
			TaxRate:               decimal.RequireFromString("0.14"),
			Currency:              "KSh",
		},
	}
}

func newHarness(t *testing.T, cfg *config.Config) *harness {
	t.Helper()
	gw, err := memory.NewDefault(memory.Options{
		Secret:       "router-test-secret",
		TokenTTL:     time.Hour,
		PasswordCost: security.Cost{MemoryKiB: 8 * 1024, Passes: 1, Threads: 1},
	})
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	raw := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = raw.Close() })
	store := redis.Wrap(raw)

	logg := logger.New(logger.Options{ServiceName: "router-test", Output: io.Discard})
	promReg := prometheus.NewRegistry()

	reg, err := session.NewRegistry(gw, store, logg, session.Options{
		FallbackTTL: cfg.Session.FallbackTTL,
		Metrics:     metrics.NewCheckoutMetrics(promReg),
	})
	require.NoError(t, err)
	cat, err := catalog.NewService(gw, store, time.Minute, logg)
	require.NoError(t, err)
	ord, err := orders.NewService(gw, logg)
	require.NoError(t, err)

	handler := NewRouter(cfg, logg, store, reg, cat, ord, promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))
	return &harness{t: t, handler: handler, gw: gw, mr: mr, reg: reg}
}

type result struct {
	status int
	header http.Header
	body   []byte
}

func (r result) data(t *testing.T, dest any) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(r.body, &env), string(r.body))
	require.NoError(t, json.Unmarshal(env.Data, dest))
}

func (r result) errorCode(t *testing.T) string {
	t.Helper()
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(r.body, &env), string(r.body))
	return env.Error.Code
}

func (h *harness) do(method, path, sessionID string, body any, headers ...string) result {
	h.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(h.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "10.0.0.1:4000"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sessionID != "" {
		req.Header.Set("X-Session-Id", sessionID)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return result{status: rec.Code, header: rec.Header(), body: rec.Body.Bytes()}
}

func (h *harness) login(email, password string) string {
	h.t.Helper()
	res := h.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(h.t, http.StatusOK, res.status, string(res.body))
	var out struct {
		SessionID string `json:"sessionId"`
	}
	res.data(h.t, &out)
	require.NotEmpty(h.t, out.SessionID)
	return out.SessionID
}

type cartView struct {
	State       string          `json:"state"`
	TotalItems  int             `json:"totalItems"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Cart        struct {
		Items []struct {
			ID       string `json:"id"`
			Quantity int    `json:"quantity"`
		} `json:"items"`
	} `json:"cart"`
	Pricing struct {
		Currency string          `json:"currency"`
		Shipping decimal.Decimal `json:"shipping"`
		Total    decimal.Decimal `json:"total"`
	} `json:"pricing"`
}

type checkoutView struct {
	Step        string            `json:"step"`
	FieldErrors map[string]string `json:"fieldErrors"`
	CartCleared bool              `json:"cartCleared"`
	Order       *struct {
		ID          string `json:"id"`
		OrderNumber string `json:"orderNumber"`
	} `json:"order"`
	Pricing struct {
		Total decimal.Decimal `json:"total"`
	} `json:"pricing"`
}

func TestHealthEndpoints(t *testing.T) {
	h := newHarness(t, testConfig())

	live := h.do(http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, live.status)
	assert.Equal(t, config.AppEnvDev, live.header.Get("X-Chieftain-Env"))

	ready := h.do(http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, ready.status)

	h.mr.Close()
	down := h.do(http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, down.status)
}

func TestLoginSetsCookieAndMe(t *testing.T) {
	h := newHarness(t, testConfig())
	res := h.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "shopper@chieftain.co.ke", "password": "shopper-pass-123"})
	require.Equal(t, http.StatusOK, res.status)

	var cookie *http.Cookie
	for _, c := range (&http.Response{Header: res.header}).Cookies() {
		if c.Name == cookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "session cookie expected")
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, cookie.Value, res.header.Get("X-Session-Id"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "shopper@chieftain.co.ke")
}

func TestLoginRejectsBadInput(t *testing.T) {
	h := newHarness(t, testConfig())

	missing := h.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "nope"})
	assert.Equal(t, http.StatusBadRequest, missing.status)
	assert.Equal(t, "VALIDATION_ERROR", missing.errorCode(t))

	wrong := h.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "shopper@chieftain.co.ke", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, wrong.status)
}

func TestLoginRateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.AuthRateLimit = config.AuthRateLimitConfig{LoginWindow: time.Minute, LoginEmailLimit: 2}
	h := newHarness(t, cfg)

	creds := map[string]string{"email": "shopper@chieftain.co.ke", "password": "wrong-password"}
	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodPost, "/api/v1/auth/login", "", creds).status)
	}
	blocked := h.do(http.MethodPost, "/api/v1/auth/login", "", creds)
	assert.Equal(t, http.StatusTooManyRequests, blocked.status)
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", blocked.errorCode(t))
}

func TestSignupOpensSession(t *testing.T) {
	h := newHarness(t, testConfig())
	res := h.do(http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"email":     "new@example.com",
		"password":  "long-enough-pass",
		"firstName": "Otieno",
		"lastName":  "Odhiambo",
		"phone":     "0712345678",
	})
	require.Equal(t, http.StatusCreated, res.status, string(res.body))

	var out struct {
		SessionID string `json:"sessionId"`
	}
	res.data(t, &out)
	cart := h.do(http.MethodGet, "/api/v1/cart", out.SessionID, nil)
	require.Equal(t, http.StatusOK, cart.status)
	var view cartView
	cart.data(t, &view)
	assert.Equal(t, "EMPTY", view.State)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	h := newHarness(t, testConfig())
	for _, path := range []string{"/api/v1/cart", "/api/v1/checkout", "/api/v1/orders", "/api/v1/auth/me", "/api/admin/v1/summary"} {
		res := h.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, res.status, path)
	}
	res := h.do(http.MethodGet, "/api/v1/cart", "not-a-session", nil)
	assert.Equal(t, http.StatusUnauthorized, res.status)
}

func TestCatalogRoutes(t *testing.T) {
	h := newHarness(t, testConfig())

	list := h.do(http.MethodGet, "/api/v1/products?category=memory&sortBy=price&sortDir=ASC", "", nil)
	require.Equal(t, http.StatusOK, list.status, string(list.body))
	var page struct {
		Products []struct {
			ID string `json:"id"`
		} `json:"products"`
		Total int `json:"total"`
	}
	list.data(t, &page)
	require.NotEmpty(t, page.Products)
	assert.Equal(t, "prod-ddr4-8gb", page.Products[0].ID)

	bad := h.do(http.MethodGet, "/api/v1/products?minPrice=500&maxPrice=100", "", nil)
	assert.Equal(t, http.StatusBadRequest, bad.status)

	noQuery := h.do(http.MethodGet, "/api/v1/products/search?q=%20", "", nil)
	assert.Equal(t, http.StatusBadRequest, noQuery.status)

	detail := h.do(http.MethodGet, "/api/v1/products/prod-ssd-512", "", nil)
	assert.Equal(t, http.StatusOK, detail.status)

	missing := h.do(http.MethodGet, "/api/v1/products/prod-unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, missing.status)

	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/v1/categories", "", nil).status)
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/v1/products/featured", "", nil).status)
	assert.True(t, h.mr.Exists("chieftain:cache:categories"), "categories should be cached")
}

func TestCartRoutes(t *testing.T) {
	h := newHarness(t, testConfig())
	sid := h.login("shopper@chieftain.co.ke", "shopper-pass-123")

	add := h.do(http.MethodPost, "/api/v1/cart/items", sid, map[string]any{"productId": "prod-ddr4-8gb", "quantity": 2})
	require.Equal(t, http.StatusOK, add.status, string(add.body))
	var view cartView
	add.data(t, &view)
	assert.Equal(t, "READY", view.State)
	assert.Equal(t, 2, view.TotalItems)
	assert.True(t, view.TotalAmount.Equal(decimal.NewFromInt(9000)))
	assert.True(t, view.Pricing.Shipping.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, "KSh", view.Pricing.Currency)
	lineID := view.Cart.Items[0].ID

	zero := h.do(http.MethodPost, "/api/v1/cart/items", sid, map[string]any{"productId": "prod-ddr4-8gb", "quantity": 0})
	assert.Equal(t, http.StatusBadRequest, zero.status)

	soldOut := h.do(http.MethodPost, "/api/v1/cart/items", sid, map[string]any{"productId": "prod-charger-65w", "quantity": 1})
	assert.Equal(t, http.StatusConflict, soldOut.status)
	assert.Equal(t, "CONFLICT", soldOut.errorCode(t))

	update := h.do(http.MethodPut, "/api/v1/cart/items/"+lineID, sid, map[string]any{"quantity": 3})
	require.Equal(t, http.StatusOK, update.status)
	update.data(t, &view)
	assert.Equal(t, 3, view.TotalItems)

	badQty := h.do(http.MethodPut, "/api/v1/cart/items/"+lineID, sid, map[string]any{"quantity": 0})
	assert.Equal(t, http.StatusBadRequest, badQty.status)

	remove := h.do(http.MethodDelete, "/api/v1/cart/items/"+lineID, sid, nil)
	require.Equal(t, http.StatusOK, remove.status)
	remove.data(t, &view)
	assert.Equal(t, "EMPTY", view.State)
	assert.Zero(t, view.TotalItems)

	again := h.do(http.MethodDelete, "/api/v1/cart/items/"+lineID, sid, nil)
	assert.Equal(t, http.StatusOK, again.status, "removing a vanished line is not an error")
}

func TestCheckoutFlow(t *testing.T) {
	h := newHarness(t, testConfig())
	sid := h.login("shopper@chieftain.co.ke", "shopper-pass-123")

	empty := h.do(http.MethodPost, "/api/v1/checkout", sid, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, empty.status, "checkout over an empty cart is refused")

	require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/v1/cart/items", sid, map[string]any{"productId": "prod-thinkpad-t480", "quantity": 1}).status)

	begin := h.do(http.MethodPost, "/api/v1/checkout", sid, nil)
	require.Equal(t, http.StatusCreated, begin.status, string(begin.body))
	var view checkoutView
	begin.data(t, &view)
	assert.Equal(t, "COLLECTING_ADDRESS", view.Step)
	assert.True(t, view.Pricing.Total.Equal(decimal.NewFromInt(43890)), "38500 + 0 shipping + 5390 tax")

	skip := h.do(http.MethodPost, "/api/v1/checkout/payment", sid, map[string]string{"paymentMethod": "MPESA"})
	assert.Equal(t, http.StatusUnprocessableEntity, skip.status)
	assert.Equal(t, "STATE_CONFLICT", skip.errorCode(t))

	badAddr := map[string]string{"firstName": "Wanjiru", "email": "broken", "phone": "123"}
	invalid := h.do(http.MethodPost, "/api/v1/checkout/address", sid, badAddr)
	assert.Equal(t, http.StatusBadRequest, invalid.status)
	current := h.do(http.MethodGet, "/api/v1/checkout", sid, nil)
	current.data(t, &view)
	assert.Equal(t, "COLLECTING_ADDRESS", view.Step)
	assert.Contains(t, view.FieldErrors, "email")
	assert.Contains(t, view.FieldErrors, "phone")
	assert.Contains(t, view.FieldErrors, "city")

	require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/v1/checkout/address", sid, validAddress).status)
	unknownMethod := h.do(http.MethodPost, "/api/v1/checkout/payment", sid, map[string]string{"paymentMethod": "BITCOIN"})
	assert.Equal(t, http.StatusBadRequest, unknownMethod.status)
	require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/v1/checkout/payment", sid, map[string]string{"paymentMethod": "mpesa"}).status)

	submit := h.do(http.MethodPost, "/api/v1/checkout/submit", sid, nil, "Idempotency-Key", "order-1")
	require.Equal(t, http.StatusCreated, submit.status, string(submit.body))
	submit.data(t, &view)
	assert.Equal(t, "COMPLETED", view.Step)
	require.NotNil(t, view.Order)
	assert.True(t, view.CartCleared)

	replay := h.do(http.MethodPost, "/api/v1/checkout/submit", sid, nil, "Idempotency-Key", "order-1")
	assert.Equal(t, http.StatusCreated, replay.status)
	assert.Equal(t, "true", replay.header.Get("Idempotent-Replayed"))
	assert.Equal(t, submit.body, replay.body)

	twice := h.do(http.MethodPost, "/api/v1/checkout/submit", sid, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, twice.status, "a completed attempt never submits again")

	cart := h.do(http.MethodGet, "/api/v1/cart", sid, nil)
	var cv cartView
	cart.data(t, &cv)
	assert.Equal(t, "EMPTY", cv.State)

	history := h.do(http.MethodGet, "/api/v1/orders", sid, nil)
	require.Equal(t, http.StatusOK, history.status)
	var list []struct {
		ID string `json:"id"`
	}
	history.data(t, &list)
	require.Len(t, list, 1)
	assert.Equal(t, view.Order.ID, list[0].ID)

	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/v1/orders/"+view.Order.ID, sid, nil).status)

	metricsRes := h.do(http.MethodGet, "/metrics", "", nil)
	assert.Contains(t, string(metricsRes.body), `checkout_submissions_total{result="completed"} 1`)
}

func TestCheckoutFailureAndCancel(t *testing.T) {
	h := newHarness(t, testConfig())
	sid := h.login("shopper@chieftain.co.ke", "shopper-pass-123")
	require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/v1/cart/items", sid, map[string]any{"productId": "prod-elitebook-840", "quantity": 2}).status)
	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/api/v1/checkout", sid, nil).status)
	require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/v1/checkout/address", sid, validAddress).status)
	require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/v1/checkout/payment", sid, map[string]string{"paymentMethod": "CASH_ON_DELIVERY"}).status)

	h.gw.SetStock("prod-elitebook-840", 1)
	failed := h.do(http.MethodPost, "/api/v1/checkout/submit", sid, nil)
	assert.Equal(t, http.StatusConflict, failed.status)

	var view checkoutView
	h.do(http.MethodGet, "/api/v1/checkout", sid, nil).data(t, &view)
	assert.Equal(t, "FAILED", view.Step)

	assert.Equal(t, http.StatusUnprocessableEntity, h.do(http.MethodPost, "/api/v1/checkout/retry", sid, nil).status, "stock conflicts are not retryable as is")
	back := h.do(http.MethodPost, "/api/v1/checkout/back", sid, nil)
	require.Equal(t, http.StatusOK, back.status)
	back.data(t, &view)
	assert.Equal(t, "REVIEWING", view.Step)

	assert.Equal(t, http.StatusNoContent, h.do(http.MethodDelete, "/api/v1/checkout", sid, nil).status)
	gone := h.do(http.MethodGet, "/api/v1/checkout", sid, nil)
	assert.Equal(t, http.StatusNotFound, gone.status)
}

func TestAdminRoutes(t *testing.T) {
	h := newHarness(t, testConfig())
	shopper := h.login("shopper@chieftain.co.ke", "shopper-pass-123")
	admin := h.login("admin@chieftain.co.ke", "admin-pass-123")

	require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/v1/cart/items", shopper, map[string]any{"productId": "prod-ssd-512", "quantity": 1}).status)
	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/api/v1/checkout", shopper, nil).status)
	require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/v1/checkout/address", shopper, validAddress).status)
	require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/v1/checkout/payment", shopper, map[string]string{"paymentMethod": "MPESA"}).status)
	submit := h.do(http.MethodPost, "/api/v1/checkout/submit", shopper, nil)
	require.Equal(t, http.StatusCreated, submit.status)
	var view checkoutView
	submit.data(t, &view)
	orderID := view.Order.ID

	assert.Equal(t, http.StatusForbidden, h.do(http.MethodGet, "/api/admin/v1/summary", shopper, nil).status)
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodPost, "/api/admin/v1/orders/"+orderID+"/advance", shopper, nil).status)

	summary := h.do(http.MethodGet, "/api/admin/v1/summary", admin, nil)
	require.Equal(t, http.StatusOK, summary.status)
	var sum struct {
		TotalOrders   int `json:"totalOrders"`
		PendingOrders int `json:"pendingOrders"`
	}
	summary.data(t, &sum)
	assert.Equal(t, 1, sum.TotalOrders)
	assert.Equal(t, 1, sum.PendingOrders)

	advance := h.do(http.MethodPost, "/api/admin/v1/orders/"+orderID+"/advance", admin, nil)
	require.Equal(t, http.StatusOK, advance.status, string(advance.body))
	assert.True(t, strings.Contains(string(advance.body), `"status":"CONFIRMED"`))

	cancel := h.do(http.MethodPost, "/api/admin/v1/orders/"+orderID+"/cancel", admin, nil)
	require.Equal(t, http.StatusOK, cancel.status)
	again := h.do(http.MethodPost, "/api/admin/v1/orders/"+orderID+"/cancel", admin, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, again.status, "a cancelled order is terminal")
}

func TestLogoutEndsSession(t *testing.T) {
	h := newHarness(t, testConfig())
	sid := h.login("shopper@chieftain.co.ke", "shopper-pass-123")
	require.True(t, h.mr.Exists("chieftain:session:"+sid))

	res := h.do(http.MethodPost, "/api/v1/auth/logout", sid, nil)
	assert.Equal(t, http.StatusNoContent, res.status)
	assert.False(t, h.mr.Exists("chieftain:session:"+sid))
	assert.Zero(t, h.reg.Len())
	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/api/v1/cart", sid, nil).status)

	assert.Equal(t, http.StatusNoContent, h.do(http.MethodPost, "/api/v1/auth/logout", "", nil).status)
}
