package params

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Pair is a single key/value entry.
type Pair struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Pairs is an ordered key/value list. Setting an existing key overrides it in
// place; new keys are appended.
type Pairs []Pair

// Get returns the value stored under key.
func (p Pairs) Get(key string) (string, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// Set stores value under key, matching keys exactly.
func (p *Pairs) Set(key, value string) {
	for i := range *p {
		if (*p)[i].Key == key {
			(*p)[i].Value = value
			return
		}
	}
	*p = append(*p, Pair{Key: key, Value: value})
}

// SetFold stores value under key, matching keys case-insensitively. The
// existing spelling of the key is kept.
func (p *Pairs) SetFold(key, value string) {
	for i := range *p {
		if strings.EqualFold((*p)[i].Key, key) {
			(*p)[i].Value = value
			return
		}
	}
	*p = append(*p, Pair{Key: key, Value: value})
}

// Keys returns the keys in order.
func (p Pairs) Keys() []string {
	keys := make([]string, len(p))
	for i, kv := range p {
		keys[i] = kv.Key
	}
	return keys
}

// Map returns the pairs as a map.
func (p Pairs) Map() map[string]string {
	m := make(map[string]string, len(p))
	for _, kv := range p {
		m[kv.Key] = kv.Value
	}
	return m
}

var fragmentDelimiters = []string{";", "\n", ","}

// ParseKV parses key/value text. The first format that applies wins:
// a JSON object, then a query string (text containing both '&' and '='),
// then "key: value" fragments.
func ParseKV(text string) Pairs {
	s := strings.TrimSpace(text)
	if s == "" {
		return nil
	}

	if pairs, ok := parseObject(s); ok {
		return pairs
	}

	var out Pairs
	if strings.Contains(s, "&") && strings.Contains(s, "=") {
		for _, segment := range strings.Split(s, "&") {
			k, v, found := strings.Cut(segment, "=")
			if !found {
				continue
			}
			if k = strings.TrimSpace(k); k != "" {
				out.Set(k, strings.TrimSpace(v))
			}
		}
		return out
	}

	parts := []string{s}
	for _, d := range fragmentDelimiters {
		if !strings.Contains(s, d) {
			continue
		}
		var next []string
		for _, chunk := range parts {
			next = append(next, strings.Split(chunk, d)...)
		}
		parts = next
	}
	for _, part := range parts {
		k, v, found := strings.Cut(part, ":")
		if !found {
			continue
		}
		if k = strings.TrimSpace(k); k != "" {
			out.Set(k, strings.TrimSpace(v))
		}
	}
	return out
}

// parseObject reads a JSON object literal preserving key order. String values
// are unquoted; other values keep their JSON text.
func parseObject(s string) (Pairs, bool) {
	if !gjson.Valid(s) {
		return nil, false
	}
	obj := gjson.Parse(s)
	if !obj.IsObject() {
		return nil, false
	}
	out := Pairs{}
	obj.ForEach(func(key, value gjson.Result) bool {
		out.Set(key.String(), ValueString(value))
		return true
	})
	return out, true
}

// ValueString renders a JSON value as plain text: strings unquoted, null empty,
// everything else as its JSON text.
func ValueString(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return v.String()
	case gjson.Null:
		return ""
	default:
		return v.Raw
	}
}
