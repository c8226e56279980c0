package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/hitsheet/packages/auth"
	"github.com/abdul-hamid-achik/hitsheet/packages/collection"
	"github.com/abdul-hamid-achik/hitsheet/packages/core/config"
	"github.com/abdul-hamid-achik/hitsheet/packages/executor"
	"github.com/abdul-hamid-achik/hitsheet/packages/generator"
	"github.com/abdul-hamid-achik/hitsheet/packages/http"
	"github.com/abdul-hamid-achik/hitsheet/packages/logging"
	"github.com/abdul-hamid-achik/hitsheet/packages/notify"
	"github.com/abdul-hamid-achik/hitsheet/packages/params"
	"github.com/abdul-hamid-achik/hitsheet/packages/reconcile"
	"github.com/abdul-hamid-achik/hitsheet/packages/workbook"
)

type Runner struct {
	cfg      *config.Config
	logger   *logging.Logger
	executor executor.Executor
	tokens   *auth.Cache
	notifier *notify.Manager
	stdout   io.Writer
	stderr   io.Writer
}

type Option func(*Runner)

// WithExecutor replaces the executor chosen by runner.executor.
func WithExecutor(e executor.Executor) Option {
	return func(r *Runner) {
		r.executor = e
	}
}

func WithLogger(l *logging.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithTokenCache shares a token cache across runs.
func WithTokenCache(c *auth.Cache) Option {
	return func(r *Runner) {
		r.tokens = c
	}
}

// WithNotifier replaces the notifiers built from configuration.
func WithNotifier(m *notify.Manager) Option {
	return func(r *Runner) {
		r.notifier = m
	}
}

// WithOutput sets where newman output goes.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(r *Runner) {
		r.stdout = stdout
		r.stderr = stderr
	}
}

// New creates a runner for cfg. It fails when the configured executor is unknown.
func New(cfg *config.Config, opts ...Option) (*Runner, error) {
	r := &Runner{cfg: cfg, stdout: os.Stdout, stderr: os.Stderr}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.OrDefault(r.logger).WithComponent("runner")
	if r.tokens == nil {
		r.tokens = auth.NewCache(cfg.Auth.CacheTTL)
	}
	if r.executor == nil {
		e, err := NewExecutor(cfg.Runner, r.logger, r.stdout, r.stderr)
		if err != nil {
			return nil, stageErr(StageConfig, err)
		}
		r.executor = e
	}
	if r.notifier == nil {
		r.notifier = NewNotifier(cfg, r.logger)
	}
	return r, nil
}

// NewExecutor builds the executor named by rc.Executor.
func NewExecutor(rc config.RunnerConfig, logger *logging.Logger, stdout, stderr io.Writer) (executor.Executor, error) {
	switch strings.ToLower(strings.TrimSpace(rc.Executor)) {
	case "", "newman":
		args := rc.Args
		if !rc.GetFollowRedirects() {
			args = append([]string{"--ignore-redirects"}, args...)
		}
		return executor.NewNewman(
			executor.WithCommand(rc.Command),
			executor.WithExtraArgs(args...),
			executor.WithKeepReport(rc.KeepReport),
			executor.WithOutput(stdout, stderr),
			executor.WithNewmanLogger(logger),
		), nil
	case "native":
		clientOpts := []http.ClientOption{
			http.WithTimeout(rc.RequestTimeout()),
			http.WithValidateSSL(rc.GetValidateSSL()),
			http.WithFollowRedirects(rc.GetFollowRedirects()),
			http.WithMaxRedirects(rc.MaxRedirects),
		}
		if rc.Proxy != "" {
			clientOpts = append(clientOpts, http.WithProxy(rc.Proxy))
		}
		client := http.NewClient(clientOpts...)
		return executor.NewNative(
			executor.WithClient(client),
			executor.WithRate(rc.Rate),
			executor.WithNativeLogger(logger),
		), nil
	default:
		return nil, fmt.Errorf("unknown executor %q (want newman or native)", rc.Executor)
	}
}

// NewNotifier builds the notification manager from the email and notify sections.
func NewNotifier(cfg *config.Config, logger *logging.Logger) *notify.Manager {
	m := notify.NewManager(notify.ParseNotifyOn(cfg.Notify.On), logger)
	if email := notify.NewEmailNotifier(cfg.Email); len(cfg.Email.Recipients) > 0 {
		if !email.Configured() {
			logging.OrDefault(logger).Warn("email recipients configured without SMTP host or sender; email disabled")
		}
		m.AddNotifier(email)
	}
	if cfg.Notify.SlackWebhook != "" {
		var opts []notify.SlackOption
		if cfg.Notify.SlackChannel != "" {
			opts = append(opts, notify.WithSlackChannel(cfg.Notify.SlackChannel))
		}
		m.AddNotifier(notify.NewSlackNotifier(cfg.Notify.SlackWebhook, opts...))
	}
	if cfg.Notify.TeamsWebhook != "" {
		m.AddNotifier(notify.NewTeamsNotifier(cfg.Notify.TeamsWebhook))
	}
	return m
}

// Generation is a compiled workbook. The caller closes Workbook.
type Generation struct {
	Workbook *workbook.Workbook
	Sheets   []workbook.Sheet
	*generator.Result
}

// Close releases the workbook.
func (g *Generation) Close() error {
	if g == nil || g.Workbook == nil {
		return nil
	}
	return g.Workbook.Close()
}

// Result is the outcome of a run.
type Result struct {
	CollectionName string
	CollectionPath string
	ResultsPath    string
	Generation     *Generation
	Executions     []executor.Execution
	Report         *reconcile.Report
	// Problems lists collection schema violations; they do not stop a run.
	Problems []string
	Duration time.Duration
}

// Passed reports whether every reconciled row passed.
func (r *Result) Passed() bool {
	return r.Report != nil && r.Report.Failed() == 0
}

// Token fetches the auth token and returns the headers to merge into every
// request and the bearer token for collection auth. Without an auth section
// both are empty; an auth section without an endpoint is an error.
func (r *Runner) Token(ctx context.Context) (params.Pairs, string, error) {
	if !r.cfg.Auth.Configured() {
		return nil, "", nil
	}
	if !r.cfg.Auth.Enabled() {
		return nil, "", stageErr(StageAuth, auth.ErrNoEndpoint)
	}
	token, err := r.tokens.Token(ctx, r.cfg.AuthBaseURL(), r.cfg.Auth)
	if err != nil {
		return nil, "", stageErr(StageAuth, err)
	}
	r.logger.Info("auth token fetched; it will be applied to all requests")
	return auth.Headers(r.cfg.Auth, token), auth.BearerToken(r.cfg.Auth, token), nil
}

// Generate opens the workbook and compiles it. Auth is applied when withAuth is set.
func (r *Runner) Generate(ctx context.Context, withAuth bool) (*Generation, error) {
	if err := r.cfg.Validate(); err != nil {
		return nil, stageErr(StageConfig, err)
	}

	var headers params.Pairs
	var bearer string
	if withAuth {
		var err error
		if headers, bearer, err = r.Token(ctx); err != nil {
			return nil, err
		}
	}

	wb, err := workbook.Open(r.cfg.ExcelPath)
	if err != nil {
		return nil, stageErr(StageWorkbook, err)
	}
	sheets, err := wb.Sheets()
	if err != nil {
		wb.Close()
		return nil, stageErr(StageWorkbook, err)
	}

	gen := generator.New(r.cfg.CollectionName,
		generator.WithBaseURL(r.cfg.GatewayBaseURL),
		generator.WithAuthHeaders(headers),
		generator.WithBearerToken(bearer),
		generator.WithLogger(r.logger),
	)
	res := gen.Generate(sheets)
	r.logger.Info("compiled workbook",
		"workbook", r.cfg.ExcelPath,
		"requests", len(res.Linkage),
		"skipped_sheets", len(res.Skipped),
		"dropped_rows", res.Dropped,
	)
	return &Generation{Workbook: wb, Sheets: sheets, Result: res}, nil
}

// WriteCollection validates and writes the collection file. Validation
// problems are logged and returned, not treated as errors.
func (r *Runner) WriteCollection(gen *Generation) (string, []string, error) {
	var problems []string
	if err := collection.ValidateCollection(gen.Collection); err != nil {
		var verr *collection.ValidationError
		if !errors.As(err, &verr) {
			return "", nil, stageErr(StageWrite, err)
		}
		problems = verr.Problems
		for _, p := range problems {
			r.logger.Warn("collection schema violation", "problem", p)
		}
	}

	dir := r.cfg.CollectionDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", problems, stageErr(StageWrite, err)
	}
	path, err := collection.Write(gen.Collection, dir)
	if err != nil {
		return "", problems, stageErr(StageWrite, err)
	}
	r.logger.Info("collection ready", "path", path)
	return path, problems, nil
}

// Run executes the whole pipeline once.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	gen, err := r.Generate(ctx, true)
	if err != nil {
		return nil, err
	}
	defer gen.Close()

	path, problems, err := r.WriteCollection(gen)
	if err != nil {
		return nil, err
	}

	execs, err := r.executor.Execute(ctx, executor.Job{
		Collection:     gen.Collection,
		CollectionPath: path,
		ReportPath:     filepath.Join(filepath.Dir(path), executor.DefaultReportName),
	})
	if err != nil {
		return nil, stageErr(StageExecute, err)
	}

	res := &Result{CollectionPath: path, Problems: problems}
	return r.finish(ctx, gen, res, execs, start)
}

// ReconcileReport writes the results of an existing runner report into a copy
// of the workbook, without fetching a token or running anything.
func (r *Runner) ReconcileReport(ctx context.Context, reportPath string) (*Result, error) {
	start := time.Now()

	gen, err := r.Generate(ctx, false)
	if err != nil {
		return nil, err
	}
	defer gen.Close()

	execs, err := executor.ReadReport(reportPath)
	if err != nil {
		return nil, stageErr(StageExecute, err)
	}
	return r.finish(ctx, gen, &Result{}, execs, start)
}

func (r *Runner) finish(ctx context.Context, gen *Generation, res *Result, execs []executor.Execution, start time.Time) (*Result, error) {
	res.CollectionName = gen.Collection.Info.Name
	res.Generation = gen
	res.Executions = execs

	rec := reconcile.New(reconcile.WithStrict(r.cfg.Reconcile.Strict), reconcile.WithLogger(r.logger))
	report, err := rec.Reconcile(reconciledSheets(gen), gen.Linkage, execs)
	if err != nil {
		return nil, stageErr(StageReconcile, err)
	}
	res.Report = report

	res.ResultsPath = workbook.ResultsPath(r.cfg.ExcelPath)
	if err := gen.Workbook.SaveAs(res.ResultsPath); err != nil {
		return nil, stageErr(StageSave, err)
	}
	r.logger.Info("test results saved", "path", res.ResultsPath)

	res.Duration = time.Since(start)

	var attachments []string
	for _, p := range []string{res.CollectionPath, res.ResultsPath} {
		if p != "" {
			attachments = append(attachments, p)
		}
	}
	r.notifier.Notify(ctx, notify.NewRunSummary(res.CollectionName, report, res.Duration, attachments...))
	return res, nil
}

// reconciledSheets returns the sheets that were compiled, in workbook order.
func reconciledSheets(gen *Generation) []reconcile.Sheet {
	skipped := make(map[string]bool, len(gen.Skipped))
	for _, name := range gen.Skipped {
		skipped[name] = true
	}
	var out []reconcile.Sheet
	for _, s := range gen.Sheets {
		if !skipped[s.Name] {
			out = append(out, gen.Workbook.Worksheet(s.Name))
		}
	}
	return out
}
