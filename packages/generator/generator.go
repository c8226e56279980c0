// Package generator compiles the visible sheets of a workbook into a collection.
package generator

import (
	"strings"

	"github.com/abdul-hamid-achik/hitsheet/packages/assertions"
	"github.com/abdul-hamid-achik/hitsheet/packages/collection"
	"github.com/abdul-hamid-achik/hitsheet/packages/logging"
	"github.com/abdul-hamid-achik/hitsheet/packages/params"
	"github.com/abdul-hamid-achik/hitsheet/packages/schema"
	"github.com/abdul-hamid-achik/hitsheet/packages/testcase"
	"github.com/abdul-hamid-achik/hitsheet/packages/workbook"
)

// DefaultCollectionName is used when no collection name is configured.
const DefaultCollectionName = "API Tests"

type Generator struct {
	name        string
	baseURL     string
	authHeaders params.Pairs
	bearer      string
	logger      *logging.Logger
}

type Option func(*Generator)

// WithBaseURL overrides the host of every row that has a path.
func WithBaseURL(url string) Option {
	return func(g *Generator) {
		g.baseURL = url
	}
}

// WithAuthHeaders merges headers into every request.
func WithAuthHeaders(headers params.Pairs) Option {
	return func(g *Generator) {
		g.authHeaders = headers
	}
}

// WithBearerToken attaches bearer auth metadata to the collection.
func WithBearerToken(token string) Option {
	return func(g *Generator) {
		g.bearer = token
	}
}

func WithLogger(l *logging.Logger) Option {
	return func(g *Generator) {
		g.logger = l
	}
}

func New(name string, opts ...Option) *Generator {
	if name == "" {
		name = DefaultCollectionName
	}
	g := &Generator{name: name}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = logging.OrDefault(g.logger).WithComponent("generator")
	return g
}

// Result is a generated collection with its row linkage.
type Result struct {
	Collection *collection.Collection
	Linkage    collection.Linkage
	// Skipped lists sheets that were hidden or had no usable header row.
	Skipped []string
	// Dropped counts non-blank rows that resolved to no URL.
	Dropped int
}

// Generate compiles every visible sheet with a header row, in workbook order.
func (g *Generator) Generate(sheets []workbook.Sheet) *Result {
	var opts []collection.AssemblerOption
	if g.bearer != "" {
		opts = append(opts, collection.WithBearerToken(g.bearer))
	}
	asm := collection.NewAssembler(g.name, opts...)
	res := &Result{}

	for _, sheet := range sheets {
		log := g.logger.WithSheet(sheet.Name)
		if !sheet.Visible {
			log.Debug("skipping hidden sheet")
			res.Skipped = append(res.Skipped, sheet.Name)
			continue
		}
		cols, ok := schema.Resolve(sheet.Header())
		if !ok {
			log.Debug("skipping sheet without header row")
			res.Skipped = append(res.Skipped, sheet.Name)
			continue
		}
		log.Debug("resolved columns", "fields", cols.Resolved())

		records := testcase.NewNormalizer(sheet.Name, cols, g.baseURL).Records(sheet.Rows)
		res.Dropped += nonBlankRows(sheet.Rows) - len(records)
		for _, rec := range records {
			asm.Add(rec.Folder, rec.Sheet, rec.Row, g.Compile(rec))
		}
		log.Info("compiled sheet", "requests", len(records))
	}

	res.Collection, res.Linkage = asm.Build()
	return res
}

// Compile builds the request item for one record.
func (g *Generator) Compile(rec *testcase.Record) *collection.Item {
	headers := params.MergeHeaders(params.ParseKV(rec.Headers), g.authHeaders)
	rawURL := params.SubstitutePath(rec.URL, params.ParseKV(rec.PathParams))
	url := params.MergeQuery(rawURL, params.ParseKV(rec.QueryParams))

	var expected *int
	if status, ok := params.ParseStatus(rec.ExpectedStatus); ok {
		expected = &status
	}
	stmts := assertions.Compile(expected, assertions.ParseSpec(rec.Assertions))

	return &collection.Item{
		Name: rec.Name,
		Request: &collection.Request{
			Method: rec.Method,
			Header: headers,
			URL:    collection.NewURL(url),
			Body:   collection.NewBody(params.BuildBody(rec.Method, rec.Payload)),
		},
		Event: collection.TestEvent(assertions.Script(stmts)),
		Tests: stmts,
	}
}

func nonBlankRows(rows [][]string) int {
	n := 0
	for i := 1; i < len(rows); i++ {
		for _, c := range rows[i] {
			if strings.TrimSpace(c) != "" {
				n++
				break
			}
		}
	}
	return n
}
