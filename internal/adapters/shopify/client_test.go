package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"jewelry-repricer/internal/config"
)

type graphQLHandler func(t *testing.T, variables map[string]any) (int, string)

type fakeShopify struct {
	t        *testing.T
	mu       sync.Mutex
	handlers map[string]graphQLHandler
	calls    map[string]int
	tokens   []string
}

func newFakeShopify(t *testing.T, handlers map[string]graphQLHandler) (*fakeShopify, *httptest.Server) {
	t.Helper()
	fake := &fakeShopify{t: t, handlers: handlers, calls: make(map[string]int)}
	server := httptest.NewServer(http.HandlerFunc(fake.serve))
	t.Cleanup(server.Close)
	return fake, server
}

func (f *fakeShopify) serve(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/admin/api/2025-01/graphql.json" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	var req graphQLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	operation := operationName(req.Query)

	f.mu.Lock()
	f.calls[operation]++
	f.tokens = append(f.tokens, r.Header.Get("X-Shopify-Access-Token"))
	handler, ok := f.handlers[operation]
	f.mu.Unlock()

	if !ok {
		f.t.Errorf("unexpected operation %s", operation)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	status, body := handler(f.t, req.Variables)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func (f *fakeShopify) callCount(operation string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[operation]
}

type recordingObserver struct {
	mu         sync.Mutex
	operations []string
	statuses   []int
}

func (o *recordingObserver) ObserveRequest(operation string, statusCode int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.operations = append(o.operations, operation)
	o.statuses = append(o.statuses, statusCode)
}

func newTestClient(serverURL string, retryMax int, observer RequestObserver) *Client {
	return NewClient(config.ShopifyConfig{
		ShopDomain:        serverURL,
		APIVer:            "2025-01",
		Token:             "shpat_test",
		Timeout:           5 * time.Second,
		RequestsPerSecond: 1000,
		RetryMax:          retryMax,
	}, nil, nil, observer)
}

func dataBody(data string) string {
	return fmt.Sprintf(`{"data":%s}`, data)
}

func TestOperationName(t *testing.T) {
	cases := map[string]string{
		"\nquery products($first: Int!) { x }":            "products",
		"mutation productVariantsBulkUpdate($a: ID!) { }": "productVariantsBulkUpdate",
		"{ shop { id } }":                                 "graphql",
	}
	for query, want := range cases {
		if got := operationName(query); got != want {
			t.Fatalf("operationName(%q) = %s, want %s", query, got, want)
		}
	}
}

func TestEndpoint(t *testing.T) {
	c := NewClient(config.ShopifyConfig{ShopDomain: "gems.myshopify.com/", APIVer: "2025-01"}, nil, nil, nil)
	endpoint, err := c.endpoint()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if endpoint != "https://gems.myshopify.com/admin/api/2025-01/graphql.json" {
		t.Fatalf("unexpected endpoint %s", endpoint)
	}

	c = NewClient(config.ShopifyConfig{APIVer: "2025-01"}, nil, nil, nil)
	if _, err := c.endpoint(); err == nil {
		t.Fatalf("expected error for empty domain")
	}
}

func TestGraphqlRequest_RetriesThrottledResponses(t *testing.T) {
	attempts := 0
	fake, server := newFakeShopify(t, map[string]graphQLHandler{
		"shopMetafields": func(t *testing.T, _ map[string]any) (int, string) {
			attempts++
			if attempts == 1 {
				return http.StatusTooManyRequests, `{"errors":"Throttled"}`
			}
			if attempts == 2 {
				return http.StatusOK, `{"errors":[{"message":"Throttled","extensions":{"code":"THROTTLED"}}]}`
			}
			return http.StatusOK, dataBody(`{"shop":{"metafields":{"nodes":[],"pageInfo":{"hasNextPage":false}}}}`)
		},
	})
	observer := &recordingObserver{}
	client := newTestClient(server.URL, 3, observer)

	if _, err := client.ShopRates(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := fake.callCount("shopMetafields"); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
	if len(observer.statuses) != 3 || observer.statuses[0] != http.StatusTooManyRequests {
		t.Fatalf("unexpected observed statuses %v", observer.statuses)
	}
	if observer.operations[0] != "shopMetafields" {
		t.Fatalf("unexpected observed operation %s", observer.operations[0])
	}
	for _, token := range fake.tokens {
		if token != "shpat_test" {
			t.Fatalf("expected access token header, got %q", token)
		}
	}
}

func TestGraphqlRequest_GivesUpAfterRetryMax(t *testing.T) {
	fake, server := newFakeShopify(t, map[string]graphQLHandler{
		"shopMetafields": func(t *testing.T, _ map[string]any) (int, string) {
			return http.StatusServiceUnavailable, "down"
		},
	})
	client := newTestClient(server.URL, 0, nil)

	_, err := client.ShopRates(context.Background())
	var httpErr *httpStatusError
	if !errors.As(err, &httpErr) || httpErr.statusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 status error, got %v", err)
	}
	if got := fake.callCount("shopMetafields"); got != 1 {
		t.Fatalf("expected a single attempt, got %d", got)
	}
}

func TestGraphqlRequest_DoesNotRetryClientErrors(t *testing.T) {
	fake, server := newFakeShopify(t, map[string]graphQLHandler{
		"shopMetafields": func(t *testing.T, _ map[string]any) (int, string) {
			return http.StatusUnauthorized, `{"errors":"Invalid API key"}`
		},
	})
	client := newTestClient(server.URL, 5, nil)

	if _, err := client.ShopRates(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if got := fake.callCount("shopMetafields"); got != 1 {
		t.Fatalf("expected no retry on 401, got %d attempts", got)
	}
}

func TestRetryHelpers(t *testing.T) {
	if retryDelay(0) != 500*time.Millisecond || retryDelay(1) != time.Second {
		t.Fatalf("unexpected backoff %s %s", retryDelay(0), retryDelay(1))
	}
	if retryDelay(10) != graphqlRetryMaxDelay || retryDelay(64) != graphqlRetryMaxDelay {
		t.Fatalf("expected backoff to cap at %s", graphqlRetryMaxDelay)
	}
	if parseRetryAfter("2.0") != 2*time.Second || parseRetryAfter("soon") != 0 {
		t.Fatalf("unexpected Retry-After parsing")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleepWithContext(ctx, time.Minute); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}

func TestShopRates_MapsMetafieldsAcrossPages(t *testing.T) {
	_, server := newFakeShopify(t, map[string]graphQLHandler{
		"shopMetafields": func(t *testing.T, variables map[string]any) (int, string) {
			if variables["after"] == nil {
				return http.StatusOK, dataBody(`{"shop":{"metafields":{"nodes":[
					{"namespace":"custom","key":"fourteen_kt_gold_value","value":"5000"},
					{"namespace":"custom","key":"fourteen_kt_making_charge_pct","value":"0.1"},
					{"namespace":"custom","key":"tax_pct","value":"3"}
				],"pageInfo":{"hasNextPage":true,"endCursor":"c1"}}}}`)
			}
			if variables["after"] != "c1" {
				t.Errorf("unexpected cursor %v", variables["after"])
			}
			return http.StatusOK, dataBody(`{"shop":{"metafields":{"nodes":[
				{"namespace":"custom","key":"diamond_value_in_rs","value":"2000"},
				{"namespace":"legacy","key":"tax_pct","value":"18"},
				{"namespace":"custom","key":"solitaire_value_per_unit","value":"n/a"}
			],"pageInfo":{"hasNextPage":false}}}}`)
		},
	})
	client := newTestClient(server.URL, 0, nil)

	rates, err := client.ShopRates(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rates.FourteenKtGoldValue.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("expected 5000, got %s", rates.FourteenKtGoldValue)
	}
	if !rates.DiamondValuePerUnit.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("expected alias to map diamond rate, got %s", rates.DiamondValuePerUnit)
	}
	if !rates.TaxPct.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("expected first namespace to win for tax, got %s", rates.TaxPct)
	}
	if !rates.SolitaireValuePerUnit.IsZero() {
		t.Fatalf("expected unreadable value to be 0, got %s", rates.SolitaireValuePerUnit)
	}
}

func TestProductAttributes(t *testing.T) {
	_, server := newFakeShopify(t, map[string]graphQLHandler{
		"productMetafields": func(t *testing.T, variables map[string]any) (int, string) {
			if variables["id"] != "gid://shopify/Product/1" {
				t.Errorf("unexpected product id %v", variables["id"])
			}
			return http.StatusOK, dataBody(`{"product":{"id":"gid://shopify/Product/1","metafields":{"nodes":[
				{"namespace":"custom","key":"gold_weight","value":"2.5"},
				{"namespace":"custom","key":"diamond_weight","value":"0.75"}
			],"pageInfo":{"hasNextPage":false}}}}`)
		},
	})
	client := newTestClient(server.URL, 0, nil)

	attrs, err := client.ProductAttributes(context.Background(), "gid://shopify/Product/1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !attrs.GoldWeight.Equal(decimal.RequireFromString("2.5")) || !attrs.DiamondWeight.Equal(decimal.RequireFromString("0.75")) {
		t.Fatalf("unexpected attributes %+v", attrs)
	}
	if !attrs.SolitaireCount.IsZero() {
		t.Fatalf("expected missing solitaire count to be 0, got %s", attrs.SolitaireCount)
	}
}

func TestProductAttributes_ProductMissing(t *testing.T) {
	_, server := newFakeShopify(t, map[string]graphQLHandler{
		"productMetafields": func(t *testing.T, _ map[string]any) (int, string) {
			return http.StatusOK, dataBody(`{"product":null}`)
		},
	})
	client := newTestClient(server.URL, 0, nil)

	if _, err := client.ProductAttributes(context.Background(), "gid://shopify/Product/404"); err == nil {
		t.Fatalf("expected error for missing product")
	}
	if _, err := client.ProductAttributes(context.Background(), " "); err == nil {
		t.Fatalf("expected error for empty product id")
	}
}
