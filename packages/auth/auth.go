// Package auth fetches the bearer token applied to every generated request.
package auth

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"github.com/abdul-hamid-achik/hitsheet/packages/params"
)

const (
	DefaultMethod     = "POST"
	DefaultTokenPath  = "token"
	DefaultHeaderName = "Authorization"
	DefaultPrefix     = "Bearer "
	DefaultTimeout    = 30
)

// Config describes the token endpoint. Zero values take the defaults above.
type Config struct {
	BaseURL  string            `mapstructure:"base_url" yaml:"base_url,omitempty"`
	Endpoint string            `mapstructure:"endpoint" yaml:"endpoint"`
	Method   string            `mapstructure:"method" yaml:"method,omitempty"`
	Body     map[string]any    `mapstructure:"body" yaml:"body,omitempty"`
	Headers  map[string]string `mapstructure:"headers" yaml:"headers,omitempty"`
	// Timeout is in seconds.
	Timeout    int    `mapstructure:"timeout" yaml:"timeout,omitempty"`
	Verify     *bool  `mapstructure:"verify" yaml:"verify,omitempty"`
	TokenPath  string `mapstructure:"token_path" yaml:"token_path,omitempty"`
	HeaderName string `mapstructure:"header_name" yaml:"header_name,omitempty"`
	// HeaderPrefix is prepended to the token. Nil means "Bearer ", empty means none.
	HeaderPrefix *string `mapstructure:"header_prefix" yaml:"header_prefix,omitempty"`
	// CacheTTL is how long a fetched token is reused. Zero fetches on every run.
	CacheTTL time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl,omitempty"`
}

// Enabled reports whether a token endpoint is configured.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.Endpoint) != ""
}

// Configured reports whether any token setting is present. CacheTTL alone
// does not count.
func (c Config) Configured() bool {
	return c.Enabled() ||
		strings.TrimSpace(c.BaseURL) != "" ||
		strings.TrimSpace(c.Method) != "" ||
		len(c.Body) > 0 ||
		len(c.Headers) > 0 ||
		c.Timeout != 0 ||
		c.Verify != nil ||
		c.TokenPath != "" ||
		c.HeaderName != "" ||
		c.HeaderPrefix != nil
}

// ErrNoEndpoint is returned when token settings are present without an endpoint.
var ErrNoEndpoint = &Error{Message: "auth endpoint not configured"}

func (c Config) method() string {
	if m := strings.TrimSpace(c.Method); m != "" {
		return strings.ToUpper(m)
	}
	return DefaultMethod
}

func (c Config) timeout() time.Duration {
	if c.Timeout > 0 {
		return time.Duration(c.Timeout) * time.Second
	}
	return DefaultTimeout * time.Second
}

func (c Config) verify() bool {
	return c.Verify == nil || *c.Verify
}

func (c Config) tokenPath() string {
	if c.TokenPath == "" {
		return DefaultTokenPath
	}
	return c.TokenPath
}

func (c Config) headerName() string {
	if c.HeaderName == "" {
		return DefaultHeaderName
	}
	return c.HeaderName
}

func (c Config) prefix() string {
	if c.HeaderPrefix == nil {
		return DefaultPrefix
	}
	return *c.HeaderPrefix
}

// Error is returned for every token fetch failure.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth: %s: %v", e.Message, e.Err)
	}
	return "auth: " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// EndpointURL joins the endpoint onto the base URL.
func EndpointURL(baseURL, endpoint string) (string, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(strings.TrimLeft(endpoint, "/"))
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}

// Fetch calls the token endpoint and returns the token found at the configured path.
func Fetch(ctx context.Context, baseURL string, cfg Config) (string, error) {
	if strings.TrimSpace(baseURL) == "" {
		return "", &Error{Message: "base URL is required to fetch a token"}
	}
	if !cfg.Enabled() {
		return "", ErrNoEndpoint
	}

	endpoint, err := EndpointURL(baseURL, cfg.Endpoint)
	if err != nil {
		return "", &Error{Message: "invalid auth endpoint", Err: err}
	}

	client := resty.New().
		SetTimeout(cfg.timeout()).
		SetTLSClientConfig(&tls.Config{InsecureSkipVerify: !cfg.verify()})

	req := client.R().SetContext(ctx)
	if len(cfg.Headers) == 0 {
		req.SetHeader("Content-Type", "application/json")
	} else {
		req.SetHeaders(cfg.Headers)
	}
	body := cfg.Body
	if body == nil {
		body = map[string]any{}
	}
	req.SetBody(body)

	resp, err := req.Execute(cfg.method(), endpoint)
	if err != nil {
		return "", &Error{Message: "failed to call auth endpoint", Err: err}
	}
	if resp.IsError() {
		return "", &Error{Message: fmt.Sprintf("auth endpoint returned %s", resp.Status())}
	}
	if !gjson.ValidBytes(resp.Body()) {
		return "", &Error{Message: "auth response is not valid JSON"}
	}

	token := extract(resp.Body(), cfg.tokenPath())
	if token == "" {
		return "", &Error{Message: fmt.Sprintf("token not found at path %q", cfg.tokenPath())}
	}
	return token, nil
}

// extract walks a dotted path. Falsy values count as missing.
func extract(body []byte, path string) string {
	segments := strings.Split(path, ".")
	for i, s := range segments {
		segments[i] = gjsonEscaper.Replace(s)
	}
	res := gjson.GetBytes(body, strings.Join(segments, "."))
	switch res.Type {
	case gjson.Null, gjson.False:
		return ""
	case gjson.Number:
		if res.Num == 0 {
			return ""
		}
	case gjson.JSON:
		if res.Raw == "{}" || res.Raw == "[]" {
			return ""
		}
	}
	return res.String()
}

var gjsonEscaper = strings.NewReplacer("*", `\*`, "?", `\?`, "|", `\|`, "#", `\#`, "@", `\@`)

// Headers returns the header applied to every request for token.
func Headers(cfg Config, token string) params.Pairs {
	return params.Pairs{{Key: cfg.headerName(), Value: cfg.prefix() + token}}
}

// BearerToken returns the token for collection-level bearer auth, or "" when the
// configured header is not a bearer Authorization header.
func BearerToken(cfg Config, token string) string {
	if !strings.EqualFold(cfg.headerName(), "authorization") {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(cfg.prefix())), "bearer") {
		return ""
	}
	return token
}
