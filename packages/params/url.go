package params

import (
	"net/url"
	"strings"
)

// URL is a request URL broken into the components a collection document records.
// Components that are absent stay empty and are omitted downstream.
type URL struct {
	Raw      string
	Protocol string
	Host     string
	Path     []string
	Query    Pairs
}

// SubstitutePath replaces every {key} placeholder with its value. Placeholders
// without a value are left intact.
func SubstitutePath(rawURL string, pathParams Pairs) string {
	for _, kv := range pathParams {
		rawURL = strings.ReplaceAll(rawURL, "{"+kv.Key+"}", kv.Value)
	}
	return rawURL
}

// MergeQuery overlays query onto the query string already present in rawURL.
// Existing blank-valued or key-only entries are dropped, row values override
// existing keys, and new keys are appended. The result is re-serialised with
// form encoding.
func MergeQuery(rawURL string, query Pairs) URL {
	parts := splitURL(rawURL)

	merged := parseQuery(parts.query)
	for _, kv := range query {
		merged.Set(kv.Key, kv.Value)
	}
	parts.query = encodeQuery(merged)

	u := URL{
		Raw:      parts.String(),
		Protocol: parts.scheme,
		Host:     parts.host,
		Query:    merged,
	}
	for _, segment := range strings.Split(parts.path, "/") {
		if segment != "" {
			u.Path = append(u.Path, segment)
		}
	}
	return u
}

type urlParts struct {
	scheme   string
	host     string
	path     string
	query    string
	fragment string
}

// splitURL splits a URL textually. Unlike url.Parse it accepts unresolved
// placeholders and other characters a sheet cell may carry.
func splitURL(raw string) urlParts {
	var p urlParts
	rest, fragment, found := strings.Cut(raw, "#")
	if found {
		p.fragment = fragment
	}
	rest, p.query, _ = strings.Cut(rest, "?")

	if i := strings.Index(rest, ":"); i > 0 && validScheme(rest[:i]) {
		p.scheme = strings.ToLower(rest[:i])
		rest = rest[i+1:]
	}
	if strings.HasPrefix(rest, "//") {
		rest = rest[2:]
		if i := strings.Index(rest, "/"); i >= 0 {
			p.host, rest = rest[:i], rest[i:]
		} else {
			p.host, rest = rest, ""
		}
	}
	p.path = rest
	return p
}

func validScheme(s string) bool {
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return true
}

func (p urlParts) String() string {
	var b strings.Builder
	if p.scheme != "" {
		b.WriteString(p.scheme)
		b.WriteString(":")
	}
	if p.host != "" || p.scheme == "http" || p.scheme == "https" {
		b.WriteString("//")
		b.WriteString(p.host)
		if p.path != "" && !strings.HasPrefix(p.path, "/") {
			b.WriteString("/")
		}
	}
	b.WriteString(p.path)
	if p.query != "" {
		b.WriteString("?")
		b.WriteString(p.query)
	}
	if p.fragment != "" {
		b.WriteString("#")
		b.WriteString(p.fragment)
	}
	return b.String()
}

func parseQuery(query string) Pairs {
	var out Pairs
	for _, segment := range strings.Split(query, "&") {
		k, v, found := strings.Cut(segment, "=")
		if !found || v == "" {
			continue
		}
		key, err := url.QueryUnescape(k)
		if err != nil {
			key = k
		}
		value, err := url.QueryUnescape(v)
		if err != nil {
			value = v
		}
		out.Set(key, value)
	}
	return out
}

func encodeQuery(query Pairs) string {
	parts := make([]string, 0, len(query))
	for _, kv := range query {
		parts = append(parts, url.QueryEscape(kv.Key)+"="+url.QueryEscape(kv.Value))
	}
	return strings.Join(parts, "&")
}
