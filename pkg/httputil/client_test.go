package httputil

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/wonny/ainavigator/backend/pkg/config"
	"github.com/wonny/ainavigator/backend/pkg/logger"
	"github.com/wonny/ainavigator/backend/pkg/redis"
)

func testLogger(buf *bytes.Buffer) *logger.Logger {
	return logger.NewWithWriter(&config.Config{LogLevel: "debug", LogFormat: "json"}, buf)
}

func TestNew(t *testing.T) {
	client := New(5*time.Second, logger.Nop())
	if client.Timeout != 5*time.Second {
		t.Errorf("Expected timeout=5s, got %v", client.Timeout)
	}
	if _, ok := client.Transport.(*Transport); !ok {
		t.Errorf("Expected *Transport, got %T", client.Transport)
	}
}

func TestRoundTrip_LogsWithoutQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	var buf bytes.Buffer
	client := New(time.Second, testLogger(&buf))

	resp, err := client.Get(server.URL + "/v1/chat?api_key=secret")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	resp.Body.Close()

	out := buf.String()
	if !strings.Contains(out, "HTTP request completed") {
		t.Errorf("Expected completion log, got %q", out)
	}
	if !strings.Contains(out, "/v1/chat") {
		t.Errorf("Expected path in log, got %q", out)
	}
	if strings.Contains(out, "secret") {
		t.Errorf("Query string leaked into log: %q", out)
	}
}

func TestRoundTrip_RetryableStatusWarns(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	var buf bytes.Buffer
	client := New(time.Second, testLogger(&buf))

	resp, err := client.Get(server.URL)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("Expected 429 passed through, got %d", resp.StatusCode)
	}
	if !strings.Contains(buf.String(), "retryable status") {
		t.Errorf("Expected warning log, got %q", buf.String())
	}
}

type failingTransport struct{}

func (failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("dial refused")
}

func TestRoundTrip_TransportError(t *testing.T) {
	var buf bytes.Buffer
	client := New(time.Second, testLogger(&buf), WithBase(failingTransport{}))

	_, err := client.Get("http://example.invalid/")
	if err == nil {
		t.Fatal("Expected error")
	}
	if !strings.Contains(buf.String(), "dial refused") {
		t.Errorf("Expected error in log, got %q", buf.String())
	}
}

func TestRoundTrip_DisabledRateLimiterPasses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	rc, err := redis.New(&config.Config{})
	if err != nil {
		t.Fatalf("redis.New failed: %v", err)
	}
	limit := redis.RateLimitConfig{Key: "openai", Limit: 1, Window: time.Minute}
	client := New(time.Second, logger.Nop(), WithRateLimiter(redis.NewRateLimiter(rc, "test"), limit))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for i := 0; i < 3; i++ {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("request %d failed: %v", i, err)
		}
		resp.Body.Close()
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		statusCode int
		want       bool
	}{
		{200, false},
		{400, false},
		{404, false},
		{429, true},
		{500, true},
		{503, true},
	}

	for _, tt := range tests {
		if got := IsRetryableError(tt.statusCode); got != tt.want {
			t.Errorf("IsRetryableError(%d) = %v, want %v", tt.statusCode, got, tt.want)
		}
	}
}
