package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/hitsheet/packages/params"
)

func strPtr(s string) *string { return &s }

func TestEndpointURL(t *testing.T) {
	tests := []struct {
		base     string
		endpoint string
		want     string
	}{
		{"https://api.test", "/auth/login", "https://api.test/auth/login"},
		{"https://api.test/", "auth/login", "https://api.test/auth/login"},
		{"https://api.test/v1", "/token", "https://api.test/v1/token"},
		{"https://api.test/v1/", "token?scope=all", "https://api.test/v1/token?scope=all"},
	}
	for _, tt := range tests {
		t.Run(tt.base+tt.endpoint, func(t *testing.T) {
			got, err := EndpointURL(tt.base, tt.endpoint)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFetch(t *testing.T) {
	var gotMethod, gotType string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"access_token":"abc123"},"token":"top"}`))
	}))
	defer server.Close()

	t.Run("default token path", func(t *testing.T) {
		token, err := Fetch(context.Background(), server.URL, Config{
			Endpoint: "/login",
			Body:     map[string]any{"user": "qa"},
		})
		require.NoError(t, err)
		assert.Equal(t, "top", token)
		assert.Equal(t, http.MethodPost, gotMethod)
		assert.Contains(t, gotType, "application/json")
		assert.Equal(t, "qa", gotBody["user"])
	})

	t.Run("dotted token path", func(t *testing.T) {
		token, err := Fetch(context.Background(), server.URL, Config{
			Endpoint:  "login",
			Method:    "put",
			TokenPath: "data.access_token",
		})
		require.NoError(t, err)
		assert.Equal(t, "abc123", token)
		assert.Equal(t, http.MethodPut, gotMethod)
	})

	t.Run("missing token", func(t *testing.T) {
		_, err := Fetch(context.Background(), server.URL, Config{Endpoint: "login", TokenPath: "data.refresh"})
		var authErr *Error
		require.ErrorAs(t, err, &authErr)
		assert.Contains(t, authErr.Error(), `"data.refresh"`)
	})
}

func TestFetchErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/denied":
			w.WriteHeader(http.StatusUnauthorized)
		case "/html":
			_, _ = w.Write([]byte("<html>login</html>"))
		case "/empty":
			_, _ = w.Write([]byte(`{"token":""}`))
		default:
			_, _ = w.Write([]byte(`{"token":null}`))
		}
	}))
	defer server.Close()

	tests := []struct {
		name    string
		baseURL string
		cfg     Config
	}{
		{"no base url", "", Config{Endpoint: "/x"}},
		{"no endpoint", server.URL, Config{}},
		{"http error", server.URL, Config{Endpoint: "/denied"}},
		{"non json", server.URL, Config{Endpoint: "/html"}},
		{"empty token", server.URL, Config{Endpoint: "/empty"}},
		{"null token", server.URL, Config{Endpoint: "/null"}},
		{"unreachable", "http://127.0.0.1:1", Config{Endpoint: "/x", Timeout: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Fetch(context.Background(), tt.baseURL, tt.cfg)
			var authErr *Error
			assert.True(t, errors.As(err, &authErr), "got %v", err)
		})
	}
}

func TestHeadersAndBearer(t *testing.T) {
	tests := []struct {
		name       string
		cfg        Config
		wantHeader params.Pairs
		wantBearer string
	}{
		{
			name:       "defaults",
			cfg:        Config{},
			wantHeader: params.Pairs{{Key: "Authorization", Value: "Bearer tok"}},
			wantBearer: "tok",
		},
		{
			name:       "empty prefix",
			cfg:        Config{HeaderPrefix: strPtr("")},
			wantHeader: params.Pairs{{Key: "Authorization", Value: "tok"}},
		},
		{
			name:       "custom header",
			cfg:        Config{HeaderName: "X-Api-Key", HeaderPrefix: strPtr("")},
			wantHeader: params.Pairs{{Key: "X-Api-Key", Value: "tok"}},
		},
		{
			name:       "lowercase bearer prefix",
			cfg:        Config{HeaderName: "authorization", HeaderPrefix: strPtr("bearer ")},
			wantHeader: params.Pairs{{Key: "authorization", Value: "bearer tok"}},
			wantBearer: "tok",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantHeader, Headers(tt.cfg, "tok"))
			assert.Equal(t, tt.wantBearer, BearerToken(tt.cfg, "tok"))
		})
	}
}

func TestCache(t *testing.T) {
	calls := 0
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewCache(time.Minute)
	c.now = func() time.Time { return now }
	c.fetch = func(ctx context.Context, baseURL string, cfg Config) (string, error) {
		calls++
		return "tok", nil
	}
	cfg := Config{Endpoint: "/login"}

	for i := 0; i < 3; i++ {
		token, err := c.Token(context.Background(), "https://api.test", cfg)
		require.NoError(t, err)
		assert.Equal(t, "tok", token)
	}
	assert.Equal(t, 1, calls)

	now = now.Add(2 * time.Minute)
	_, err := c.Token(context.Background(), "https://api.test", cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	c.Clear()
	_, err = c.Token(context.Background(), "https://api.test", cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestCacheDoesNotStoreErrors(t *testing.T) {
	c := NewCache(time.Hour)
	c.fetch = func(ctx context.Context, baseURL string, cfg Config) (string, error) {
		return "", &Error{Message: "down"}
	}
	_, err := c.Token(context.Background(), "https://api.test", Config{Endpoint: "/login"})
	require.Error(t, err)
	assert.Empty(t, c.tokens)
}

func TestConfigConfigured(t *testing.T) {
	tests := []struct {
		name       string
		cfg        Config
		configured bool
		enabled    bool
	}{
		{"empty", Config{}, false, false},
		{"cache ttl only", Config{CacheTTL: time.Minute}, false, false},
		{"endpoint", Config{Endpoint: "/login"}, true, true},
		{"base url without endpoint", Config{BaseURL: "https://auth.test"}, true, false},
		{"token path without endpoint", Config{TokenPath: "data.token"}, true, false},
		{"body without endpoint", Config{Body: map[string]any{"user": "qa"}}, true, false},
		{"prefix without endpoint", Config{HeaderPrefix: strPtr("")}, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.configured, tt.cfg.Configured())
			assert.Equal(t, tt.enabled, tt.cfg.Enabled())
		})
	}
}
