package executor

import (
	"context"
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/hitsheet/packages/assertions"
	"github.com/abdul-hamid-achik/hitsheet/packages/builtin"
	"github.com/abdul-hamid-achik/hitsheet/packages/collection"
	"github.com/abdul-hamid-achik/hitsheet/packages/http"
	"github.com/abdul-hamid-achik/hitsheet/packages/logging"
	"golang.org/x/time/rate"
)

// Native runs a compiled collection in-process. It needs the compiled statements
// of each request, so it only runs collections built in the same process.
type Native struct {
	client  *http.Client
	limiter *rate.Limiter
	vars    *builtin.Registry
	logger  *logging.Logger
}

type NativeOption func(*Native)

// WithClient sets the HTTP client used to send requests.
func WithClient(c *http.Client) NativeOption {
	return func(n *Native) {
		n.client = c
	}
}

// WithRate limits requests to rps per second. Zero or less means unlimited.
func WithRate(rps float64) NativeOption {
	return func(n *Native) {
		if rps > 0 {
			n.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

func WithNativeLogger(l *logging.Logger) NativeOption {
	return func(n *Native) {
		n.logger = l
	}
}

func NewNative(opts ...NativeOption) *Native {
	n := &Native{vars: builtin.NewRegistry()}
	for _, opt := range opts {
		opt(n)
	}
	if n.client == nil {
		n.client = http.NewClient()
	}
	n.logger = logging.OrDefault(n.logger).WithComponent("native")
	return n
}

// Execute sends every request of the collection in document order. When the job
// names a report path, a newman-shaped report is written there.
func (n *Native) Execute(ctx context.Context, job Job) ([]Execution, error) {
	if job.Collection == nil {
		return nil, fmt.Errorf("native runner needs a compiled collection")
	}

	var out []Execution
	for _, item := range job.Collection.Requests() {
		if n.limiter != nil {
			if err := n.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = append(out, n.run(ctx, item))
	}

	if job.ReportPath != "" {
		if err := WriteReport(job.ReportPath, job.Collection.Info.Name, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (n *Native) run(ctx context.Context, item *collection.Item) Execution {
	req := BuildRequest(item, n.vars.Resolve)
	exec := Execution{
		ItemID: item.ID,
		Name:   item.Name,
		Method: req.Method,
		URL:    req.URL,
	}
	log := n.logger.WithRequest(req.Method, req.URL)

	resp, err := n.client.Do(ctx, req)
	if err != nil {
		log.Warn("request failed", "error", err)
		exec.RequestError = err.Error()
		for _, s := range item.Tests {
			exec.Assertions = append(exec.Assertions, Assertion{Name: s.Name, Failed: true, Error: err.Error()})
		}
		return exec
	}

	code := resp.StatusCode
	exec.Code = &code
	exec.ResponseTime = resp.Duration
	for _, r := range assertions.EvaluateAll(resp, item.Tests) {
		exec.Assertions = append(exec.Assertions, Assertion{Name: r.Name, Failed: !r.Passed, Error: r.Message})
		if !r.Passed {
			log.Debug("assertion failed", "assertion", r.Name, "body", truncateBody(resp.BodyString()))
		}
	}
	log.Debug("request complete",
		"status", code,
		"content_type", resp.Header("Content-Type"),
		"duration_ms", resp.DurationMs(),
	)
	return exec
}

const maxLoggedBody = 512

func truncateBody(s string) string {
	if len(s) <= maxLoggedBody {
		return s
	}
	return s[:maxLoggedBody] + "..."
}

// BuildRequest converts a collection request item into a transport request.
// Bearer auth is applied unless the item already sets an Authorization header.
// resolve, when set, rewrites the URL, header values and body.
func BuildRequest(item *collection.Item, resolve func(string) string) *http.Request {
	if resolve == nil {
		resolve = func(s string) string { return s }
	}
	r := item.Request
	req := http.NewRequest(r.Method, resolve(r.URL.Raw))
	for _, h := range r.Header {
		req.SetHeader(h.Key, resolve(h.Value))
	}
	if token := r.Auth.Token(); token != "" && req.Header("Authorization") == "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	if r.Body != nil && strings.TrimSpace(r.Body.Raw) != "" {
		req.SetBody(resolve(r.Body.Raw))
	}
	return req
}
