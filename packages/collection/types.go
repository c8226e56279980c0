package collection

import (
	"github.com/abdul-hamid-achik/hitsheet/packages/assertions"
	"github.com/abdul-hamid-achik/hitsheet/packages/params"
)

// SchemaURL identifies the Postman Collection v2.1 format.
const SchemaURL = "https://schema.getpostman.com/json/collection/v2.1.0/collection.json"

// Collection is a Postman Collection v2.1 document.
type Collection struct {
	Info Info    `json:"info"`
	Item []*Item `json:"item"`
	Auth *Auth   `json:"auth,omitempty"`
}

type Info struct {
	PostmanID string `json:"_postman_id,omitempty"`
	Name      string `json:"name"`
	Schema    string `json:"schema"`
}

// Item is either a folder (Item set) or a request (Request set).
type Item struct {
	ID      string   `json:"id,omitempty"`
	Name    string   `json:"name"`
	Item    []*Item  `json:"item,omitempty"`
	Request *Request `json:"request,omitempty"`
	Event   []Event  `json:"event,omitempty"`

	// Tests are the statements the test script was rendered from.
	Tests []assertions.Statement `json:"-"`
}

// IsFolder reports whether the item groups other items.
func (i *Item) IsFolder() bool {
	return i.Request == nil
}

type Request struct {
	Method string       `json:"method"`
	Header params.Pairs `json:"header"`
	URL    URL          `json:"url"`
	Body   *Body        `json:"body,omitempty"`
	Auth   *Auth        `json:"auth,omitempty"`
}

type URL struct {
	Raw      string       `json:"raw"`
	Protocol string       `json:"protocol,omitempty"`
	Host     []string     `json:"host,omitempty"`
	Path     []string     `json:"path,omitempty"`
	Query    params.Pairs `json:"query,omitempty"`
}

type Body struct {
	Mode    string       `json:"mode"`
	Raw     string       `json:"raw"`
	Options *BodyOptions `json:"options,omitempty"`
}

type BodyOptions struct {
	Raw RawOptions `json:"raw"`
}

type RawOptions struct {
	Language string `json:"language"`
}

type Auth struct {
	Type   string          `json:"type"`
	Bearer []AuthAttribute `json:"bearer,omitempty"`
}

type AuthAttribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Type  string `json:"type"`
}

// BearerAuth returns bearer auth metadata for token.
func BearerAuth(token string) *Auth {
	return &Auth{
		Type:   "bearer",
		Bearer: []AuthAttribute{{Key: "token", Value: token, Type: "string"}},
	}
}

// Token returns the bearer token, if any.
func (a *Auth) Token() string {
	if a == nil {
		return ""
	}
	for _, attr := range a.Bearer {
		if attr.Key == "token" {
			return attr.Value
		}
	}
	return ""
}

type Event struct {
	Listen string `json:"listen"`
	Script Script `json:"script"`
}

type Script struct {
	Type string   `json:"type,omitempty"`
	Exec []string `json:"exec"`
}

// NewURL converts a merged request URL into its collection form.
func NewURL(u params.URL) URL {
	out := URL{
		Raw:      u.Raw,
		Protocol: u.Protocol,
		Path:     u.Path,
		Query:    u.Query,
	}
	if u.Host != "" {
		out.Host = []string{u.Host}
	}
	return out
}

// NewBody converts a request payload into its collection form.
func NewBody(b *params.Body) *Body {
	if b == nil {
		return nil
	}
	body := &Body{Mode: "raw", Raw: b.Raw}
	if b.JSON {
		body.Options = &BodyOptions{Raw: RawOptions{Language: "json"}}
	}
	return body
}

// TestEvent wraps test script lines in a "test" event.
func TestEvent(lines []string) []Event {
	if len(lines) == 0 {
		return nil
	}
	return []Event{{Listen: "test", Script: Script{Type: "text/javascript", Exec: lines}}}
}

// Requests returns every request item, depth first, in document order.
func (c *Collection) Requests() []*Item {
	var out []*Item
	var walk func(items []*Item)
	walk = func(items []*Item) {
		for _, it := range items {
			if it.IsFolder() {
				walk(it.Item)
				continue
			}
			out = append(out, it)
		}
	}
	walk(c.Item)
	return out
}
