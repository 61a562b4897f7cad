package transport

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestIsValidProxyAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		address string
		want    bool
	}{
		{"127.0.0.1:9050", true},
		{"localhost:1080", true},
		{"[::1]:9050", true},
		{"127.0.0.1", false},
		{":9050", false},
		{"127.0.0.1:0", false},
		{"127.0.0.1:65536", false},
		{"127.0.0.1:abc", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			t.Parallel()
			if got := IsValidProxyAddress(tt.address); got != tt.want {
				t.Errorf("IsValidProxyAddress(%q) = %v, want %v", tt.address, got, tt.want)
			}
		})
	}
}

func TestNewHTTPClient(t *testing.T) {
	t.Parallel()

	t.Run("invalid proxy address", func(t *testing.T) {
		t.Parallel()
		_, err := NewHTTPClient(Options{ProxyAddress: "nope"})
		if !errors.Is(err, ErrInvalidProxyAddress) {
			t.Errorf("expected ErrInvalidProxyAddress, got %v", err)
		}
	})

	t.Run("timeout is applied", func(t *testing.T) {
		t.Parallel()
		client, err := NewHTTPClient(Options{Timeout: 5 * time.Second})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if client.Timeout != 5*time.Second {
			t.Errorf("expected 5s timeout, got %v", client.Timeout)
		}
	})

	t.Run("zero timeout keeps default", func(t *testing.T) {
		t.Parallel()
		client, err := NewHTTPClient(Options{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if client.Timeout != 0 {
			t.Errorf("expected no timeout, got %v", client.Timeout)
		}
	})

	t.Run("proxy address creates client", func(t *testing.T) {
		t.Parallel()
		if _, err := NewHTTPClient(Options{ProxyAddress: "127.0.0.1:9050"}); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

// TestHeaderInjection tests that configured headers reach the server
// without overriding headers the request already carries.
func TestHeaderInjection(t *testing.T) {
	t.Parallel()

	var gotCookie, gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		gotAgent = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewHTTPClient(Options{Headers: map[string]string{
		"Cookie":     "storefront_digest=abc",
		"User-Agent": "injected",
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, server.URL, nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("User-Agent", "explicit")

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	_ = resp.Body.Close()

	if gotCookie != "storefront_digest=abc" {
		t.Errorf("expected injected cookie, got %q", gotCookie)
	}
	if gotAgent != "explicit" {
		t.Errorf("expected explicit user agent to win, got %q", gotAgent)
	}
}
