package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/reelmaker/reelmaker-backend/internal/config"
)

func testClient(url string, retries int) *Client {
	return NewClient(config.LLMConfig{
		BaseURL:    url,
		APIKey:     "test-key",
		Model:      "test-model",
		MaxRetries: retries,
	}, WithSleeper(func(time.Duration) {}))
}

func TestCompleteReturnsContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("missing bearer auth, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"{\"ok\":true}"}}]}`))
	}))
	defer srv.Close()

	content, err := testClient(srv.URL, 1).Complete(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if content != `{"ok":true}` {
		t.Fatalf("unexpected content: %q", content)
	}
}

func TestCompleteRetriesOnServerError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	content, err := testClient(srv.URL, 3).Complete(context.Background(), "", "user")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if content != "ok" {
		t.Fatalf("unexpected content: %q", content)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("expected 3 calls, got %d", got)
	}
}

func TestCompleteNoRetryOnBadRequest(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	if _, err := testClient(srv.URL, 3).Complete(context.Background(), "", "user"); err == nil {
		t.Fatal("expected error")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("bad request should not retry, got %d calls", got)
	}
}

func TestCompleteHonorsRetryAfter(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	var slept time.Duration
	c := NewClient(config.LLMConfig{
		BaseURL:    srv.URL,
		APIKey:     "k",
		Model:      "m",
		MaxRetries: 2,
	}, WithSleeper(func(d time.Duration) { slept += d }))

	if _, err := c.Complete(context.Background(), "", "user"); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if slept != time.Second {
		t.Fatalf("expected 1s retry-after sleep, got %s", slept)
	}
}

func TestCompleteAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"message":"model not found"}}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 1).Complete(context.Background(), "", "user")
	if err == nil {
		t.Fatal("expected api error")
	}
}

func TestCompleteRequiresAPIKey(t *testing.T) {
	c := NewClient(config.LLMConfig{BaseURL: "http://localhost:0", Model: "m"})
	if _, err := c.Complete(context.Background(), "", "user"); err == nil {
		t.Fatal("expected missing api key error")
	}
}
