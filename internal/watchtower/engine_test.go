package watchtower

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"hostwatch/internal/alerts"
	"hostwatch/internal/db"
	"hostwatch/internal/metrics"
	"hostwatch/internal/notifier"
	"hostwatch/internal/triggerlog"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

type harness struct {
	engine   *Engine
	repo     *db.Repository
	rules    *alerts.Store
	triggers *triggerlog.Logger
	sent     *[]string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))

	sqldb, err := db.Open(dir + "/test.db")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = sqldb.Close() })
	if err := db.Migrate(sqldb); err != nil {
		t.Fatalf("migrate db: %v", err)
	}
	repo := db.NewRepository(sqldb)

	rules := alerts.NewStore(dir+"/alerts.json", discard)
	triggers, err := triggerlog.New(dir + "/triggers.log")
	if err != nil {
		t.Fatalf("new trigger log: %v", err)
	}

	var sent []string
	webhook := notifier.NewWebhook()
	webhook.HTTP = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		sent = append(sent, req.URL.String())
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("ok"))}, nil
	})}

	return &harness{
		engine:   NewEngine(repo, rules, webhook, triggers, discard),
		repo:     repo,
		rules:    rules,
		triggers: triggers,
		sent:     &sent,
	}
}

func (h *harness) triggerCount(t *testing.T) int {
	t.Helper()
	lines, err := h.triggers.Get(0)
	if err != nil {
		t.Fatalf("read trigger log: %v", err)
	}
	return len(lines)
}

func TestEvaluateFiresWhileConditionHolds(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	_, err := h.rules.Add(alerts.Rule{
		MetricID: "cpu_usage_percentage",
		Logic:    metrics.LogicGt,
		Value:    "50",
		Request:  alerts.Request{Type: alerts.RequestGet, URL: "http://hook.example/{metric}"},
	})
	if err != nil {
		t.Fatalf("add rule: %v", err)
	}

	if err := h.repo.InsertCPU(ctx, now, metrics.NewCPUMetrics(75.0, [3]float64{})); err != nil {
		t.Fatalf("insert cpu: %v", err)
	}

	h.engine.Evaluate(ctx)
	if len(*h.sent) != 1 || h.triggerCount(t) != 1 {
		t.Fatalf("after first cycle: dispatches=%d triggers=%d, want 1/1", len(*h.sent), h.triggerCount(t))
	}
	if (*h.sent)[0] != "http://hook.example/75" {
		t.Fatalf("dispatched url = %s", (*h.sent)[0])
	}

	// No suppression window: a second cycle fires again.
	h.engine.Evaluate(ctx)
	if len(*h.sent) != 2 || h.triggerCount(t) != 2 {
		t.Fatalf("after second cycle: dispatches=%d triggers=%d, want 2/2", len(*h.sent), h.triggerCount(t))
	}

	if err := h.repo.InsertCPU(ctx, now.Add(time.Second), metrics.NewCPUMetrics(10.0, [3]float64{})); err != nil {
		t.Fatalf("insert cpu: %v", err)
	}
	h.engine.Evaluate(ctx)
	if len(*h.sent) != 2 || h.triggerCount(t) != 2 {
		t.Fatalf("after condition cleared: dispatches=%d triggers=%d, want 2/2", len(*h.sent), h.triggerCount(t))
	}
}

func TestEvaluateSkipsInvalidMetricID(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.rules.Add(alerts.Rule{
		MetricID: "gpu_usage_percentage",
		Logic:    metrics.LogicGt,
		Value:    "1",
		Request:  alerts.Request{Type: alerts.RequestGet, URL: "http://hook.example/"},
	})
	if err != nil {
		t.Fatalf("add rule: %v", err)
	}

	h.engine.Evaluate(ctx)
	if len(*h.sent) != 0 {
		t.Fatalf("dispatches = %d, want 0", len(*h.sent))
	}
}

func TestEvaluateSkipsUnparsableThreshold(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if err := h.repo.InsertCPU(ctx, now, metrics.NewCPUMetrics(75.0, [3]float64{})); err != nil {
		t.Fatalf("insert cpu: %v", err)
	}
	_, err := h.rules.Add(alerts.Rule{
		MetricID: "cpu_usage_percentage",
		Logic:    metrics.LogicGt,
		Value:    "not-a-number",
		Request:  alerts.Request{Type: alerts.RequestGet, URL: "http://hook.example/"},
	})
	if err != nil {
		t.Fatalf("add rule: %v", err)
	}

	h.engine.Evaluate(ctx)
	if len(*h.sent) != 0 {
		t.Fatalf("dispatches = %d, want 0", len(*h.sent))
	}
}

func TestEvaluateEmptyTableUsesZeroSnapshot(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	// lte 0 matches the zero snapshot of an empty table.
	_, err := h.rules.Add(alerts.Rule{
		MetricID: "disk_usage_percentage",
		Logic:    metrics.LogicLte,
		Value:    "0",
		Request:  alerts.Request{Type: alerts.RequestGet, URL: "http://hook.example/{metric}"},
	})
	if err != nil {
		t.Fatalf("add rule: %v", err)
	}

	h.engine.Evaluate(ctx)
	if len(*h.sent) != 1 {
		t.Fatalf("dispatches = %d, want 1", len(*h.sent))
	}
	if (*h.sent)[0] != "http://hook.example/0" {
		t.Fatalf("dispatched url = %s", (*h.sent)[0])
	}
}
