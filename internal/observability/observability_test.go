package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/queuesmart/internal/config"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/tickets", "GET", 200, 10*time.Millisecond)
	m.RecordRequest("/tickets", "GET", 200, 30*time.Millisecond)
	m.RecordRequest("/auth/login", "POST", 401, time.Millisecond)
	m.RecordError("/auth/login", "POST", "UNAUTHORIZED")

	snap := m.Snapshot()
	if len(snap.Requests) != 2 || snap.Requests[0].Key != "/auth/login|POST|401" {
		t.Fatalf("requests = %+v", snap.Requests)
	}
	if got := snap.Requests[1]; got.Count != 2 || got.AvgMillis != 20 {
		t.Fatalf("tickets counter = %+v", got)
	}
	if len(snap.Errors) != 1 || snap.Errors[0].Count != 1 {
		t.Fatalf("errors = %+v", snap.Errors)
	}

	var nilMetrics *Metrics
	nilMetrics.RecordRequest("/", "GET", 200, 0)
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	metrics := NewMetrics()
	app := fiber.New()
	app.Use(RequestLogger(zap.New(core), metrics))
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.Header.Get(RequestIDHeader) != "req-1" {
		t.Fatalf("request id header = %q", resp.Header.Get(RequestIDHeader))
	}
	entries := logs.FilterMessage("request").All()
	if len(entries) != 1 || entries[0].ContextMap()["request_id"] != "req-1" {
		t.Fatalf("log entries = %+v", entries)
	}
	if snap := metrics.Snapshot(); len(snap.Requests) != 1 || snap.Requests[0].Key != "/ping|GET|200" {
		t.Fatalf("metrics = %+v", snap.Requests)
	}

	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil))
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Fatal("no request id assigned")
	}
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "loud", Name: "test", Output: "stderr"})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if !logger.Core().Enabled(zap.InfoLevel) || logger.Core().Enabled(zap.DebugLevel) {
		t.Fatal("unexpected level")
	}
}
