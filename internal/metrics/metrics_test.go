package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestBatchMetrics_Counts(t *testing.T) {
	m := NewBatchMetrics()
	m.ProductVisited(true)
	m.ProductVisited(false)
	m.VariantOutcome(OutcomeUpdated)
	m.VariantOutcome(OutcomeUpdated)
	m.VariantOutcome(OutcomeFailed)

	if got := testutil.ToFloat64(m.variants.WithLabelValues(OutcomeUpdated)); got != 2 {
		t.Fatalf("expected 2 updated, got %v", got)
	}
	if got := testutil.ToFloat64(m.variants.WithLabelValues(OutcomeFailed)); got != 1 {
		t.Fatalf("expected 1 failed, got %v", got)
	}
	if got := testutil.ToFloat64(m.products.WithLabelValues("failed")); got != 1 {
		t.Fatalf("expected 1 failed product, got %v", got)
	}
}

func TestBatchMetrics_NilIsSafe(t *testing.T) {
	var m *BatchMetrics
	m.ProductVisited(true)
	m.VariantOutcome(OutcomeUpdated)
	m.ObserveRequest("x", 200, time.Second)
	m.RunFinished(time.Second, true, time.Now())
}

func TestBatchMetrics_WriteTextfile(t *testing.T) {
	m := NewBatchMetrics()
	m.VariantOutcome(OutcomeUnchanged)
	m.ObserveRequest("productVariantsBulkUpdate", 200, 150*time.Millisecond)
	m.RunFinished(2*time.Second, true, time.Unix(1700000000, 0))

	path := filepath.Join(t.TempDir(), "repricer.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("write textfile: %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	for _, want := range []string{
		`jewelry_repricer_variants_total{outcome="unchanged"} 1`,
		`jewelry_repricer_run_duration_seconds 2`,
		`jewelry_repricer_last_success_timestamp_seconds `,
		`jewelry_repricer_shopify_request_duration_seconds_count{operation="productVariantsBulkUpdate",status="2xx"} 1`,
	} {
		if !strings.Contains(string(content), want) {
			t.Fatalf("expected %q in textfile:\n%s", want, content)
		}
	}
}

func TestClassifyStatus(t *testing.T) {
	cases := map[int]string{200: "2xx", 302: "3xx", 429: "4xx", 503: "5xx", 0: "transport_error", 700: "unknown"}
	for code, want := range cases {
		if got := classifyStatus(code); got != want {
			t.Fatalf("classifyStatus(%d) = %s, want %s", code, got, want)
		}
	}
}
