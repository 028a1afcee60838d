package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/chieftain/pkg/enums"
	pkgerrors "github.com/angelmondragon/chieftain/pkg/errors"
	"github.com/angelmondragon/chieftain/pkg/metrics"
)

func newTestClient(t *testing.T, handler http.Handler, maxFailures uint32) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewClient(ClientOptions{
		BaseURL:            srv.URL + "/api",
		Timeout:            2 * time.Second,
		BreakerMaxFailures: maxFailures,
		BreakerOpenTimeout: time.Minute,
		Metrics:            metrics.NewGatewayMetrics(prometheus.NewRegistry()),
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestNewClientValidatesBaseURL(t *testing.T) {
	if _, err := NewClient(ClientOptions{}); err == nil {
		t.Fatalf("expected missing base url to fail")
	}
	if _, err := NewClient(ClientOptions{BaseURL: "ftp://example.com"}); err == nil {
		t.Fatalf("expected non-http scheme to fail")
	}
}

func TestCodeForStatus(t *testing.T) {
	tests := []struct {
		status int
		code   pkgerrors.Code
	}{
		{http.StatusBadRequest, pkgerrors.CodeValidation},
		{http.StatusUnauthorized, pkgerrors.CodeUnauthorized},
		{http.StatusForbidden, pkgerrors.CodeForbidden},
		{http.StatusNotFound, pkgerrors.CodeNotFound},
		{http.StatusPaymentRequired, pkgerrors.CodeConflict},
		{http.StatusConflict, pkgerrors.CodeConflict},
		{http.StatusUnprocessableEntity, pkgerrors.CodeConflict},
		{http.StatusTooManyRequests, pkgerrors.CodeRateLimit},
		{http.StatusInternalServerError, pkgerrors.CodeDependency},
		{http.StatusBadGateway, pkgerrors.CodeDependency},
	}
	for _, tt := range tests {
		if got := CodeForStatus(tt.status); got != tt.code {
			t.Fatalf("status %d expected %s got %s", tt.status, tt.code, got)
		}
	}
}

func TestAddLineSendsBearerAndBody(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/cart/items" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"id":"cart-1","userId":"u1","items":[{"id":"line-1","product":{"id":"p1","name":"RAM","price":4500,"stock":3},"quantity":2}],"totalItems":2,"totalAmount":9000}`))
	}), 3)

	cart, err := client.ForToken("tok-1").AddLine(context.Background(), "p1", 2)
	if err != nil {
		t.Fatalf("add line: %v", err)
	}
	if gotAuth != "Bearer tok-1" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
	if gotBody["productId"] != "p1" || gotBody["quantity"] != float64(2) {
		t.Fatalf("unexpected body %v", gotBody)
	}
	if len(cart.Items) != 1 || !cart.Items[0].Product.Price.Equal(decimal.NewFromInt(4500)) {
		t.Fatalf("unexpected cart %+v", cart)
	}
}

func TestErrorResponsesCarryGatewayMessage(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"only 1 left in stock"}`))
	}), 3)

	_, err := client.ForToken("tok").AddLine(context.Background(), "p1", 5)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if typed.Message() != "only 1 left in stock" {
		t.Fatalf("expected gateway message, got %q", typed.Message())
	}
}

func TestDecodeFailureIsTransport(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	}), 3)

	_, err := client.ForToken("tok").FetchCart(context.Background())
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestBreakerTripsOnServerErrorsOnly(t *testing.T) {
	var calls atomic.Int32
	var status atomic.Int32
	status.Store(http.StatusNotFound)
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(int(status.Load()))
	}), 2)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := client.GetProduct(ctx, "missing"); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	}
	if calls.Load() != 3 {
		t.Fatalf("client errors should not trip the breaker, calls=%d", calls.Load())
	}

	status.Store(http.StatusServiceUnavailable)
	for i := 0; i < 2; i++ {
		if _, err := client.GetProduct(ctx, "p1"); !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
			t.Fatalf("expected dependency error, got %v", err)
		}
	}
	before := calls.Load()
	_, err := client.GetProduct(ctx, "p1")
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error from open breaker, got %v", err)
	}
	if calls.Load() != before {
		t.Fatalf("open breaker should short-circuit the request")
	}
}

func TestProductQueryValues(t *testing.T) {
	minPrice := decimal.NewFromInt(1000)
	q := ProductQuery{
		Page:          2,
		Size:          12,
		SortDirection: enums.SortDirectionAsc,
		Categories:    []string{"laptops", "ram"},
		MinPrice:      &minPrice,
		Conditions:    []enums.ProductCondition{enums.ProductConditionUsed},
		Query:         "thinkpad",
	}
	v := q.Values()
	if v.Get("page") != "2" || v.Get("size") != "12" {
		t.Fatalf("unexpected paging %v", v)
	}
	if got := v["categories"]; len(got) != 2 || got[1] != "ram" {
		t.Fatalf("expected repeated categories, got %v", got)
	}
	if v.Get("minPrice") != "1000" || v.Get("maxPrice") != "" {
		t.Fatalf("unexpected price bounds %v", v)
	}
	if v.Get("conditions") != "USED" || v.Get("query") != "thinkpad" || v.Get("sortDirection") != "ASC" {
		t.Fatalf("unexpected values %v", v)
	}
}

func TestClearCartAcceptsEmptyBody(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/api/cart" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}), 3)

	if err := client.ForToken("tok").ClearCart(context.Background()); err != nil {
		t.Fatalf("clear cart: %v", err)
	}
}
