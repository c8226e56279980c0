package params

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// DefaultContentType is applied when a row specifies no headers.
const DefaultContentType = "application/json"

// MergeHeaders returns the row headers with the auth headers merged in. Keys
// are unique case-insensitively; a later value wins and the first spelling is
// kept. A row without headers gets a JSON Content-Type.
func MergeHeaders(row, auth Pairs) Pairs {
	headers := make(Pairs, 0, len(row)+len(auth)+1)
	for _, kv := range row {
		headers.SetFold(kv.Key, kv.Value)
	}
	if len(headers) == 0 {
		headers = append(headers, Pair{Key: "Content-Type", Value: DefaultContentType})
	}
	for _, kv := range auth {
		if kv.Key == "" {
			continue
		}
		headers.SetFold(kv.Key, kv.Value)
	}
	return headers
}

// Body is a request payload. JSON payloads are pretty-printed.
type Body struct {
	Raw  string
	JSON bool
}

// BuildBody returns the payload for methods that carry one, or nil.
func BuildBody(method, payload string) *Body {
	if !MethodHasBody(method) || strings.TrimSpace(payload) == "" {
		return nil
	}
	trimmed := strings.TrimSpace(payload)
	if json.Valid([]byte(trimmed)) {
		var buf bytes.Buffer
		if err := json.Indent(&buf, []byte(trimmed), "", "  "); err == nil {
			return &Body{Raw: string(unescapeStrings(buf.Bytes())), JSON: true}
		}
	}
	return &Body{Raw: payload}
}

// unescapeStrings rewrites \uXXXX and \/ escapes inside JSON strings as the
// characters they stand for. Quotes, backslashes and control characters stay
// escaped.
func unescapeStrings(b []byte) []byte {
	out := make([]byte, 0, len(b))
	inString := false
	for i := 0; i < len(b); i++ {
		c := b[i]
		if !inString {
			out = append(out, c)
			inString = c == '"'
			continue
		}
		switch {
		case c == '"':
			inString = false
			out = append(out, c)
		case c == '\\' && i+1 < len(b):
			switch b[i+1] {
			case '/':
				out = append(out, '/')
			case 'u':
				if r, n := decodeEscape(b[i:]); n > 0 {
					out = utf8.AppendRune(out, r)
					i += n - 1
					continue
				}
				out = append(out, b[i:i+2]...)
			default:
				out = append(out, b[i:i+2]...)
			}
			i++
		default:
			out = append(out, c)
		}
	}
	return out
}

// decodeEscape reads a \uXXXX escape, or a surrogate pair of them, at the
// start of b. n is zero when the escape should be kept.
func decodeEscape(b []byte) (r rune, n int) {
	first, ok := hexRune(b)
	if !ok || first < 0x20 || first == '"' || first == '\\' {
		return 0, 0
	}
	if !utf16.IsSurrogate(first) {
		return first, 6
	}
	second, ok := hexRune(b[6:])
	if !ok {
		return 0, 0
	}
	if r = utf16.DecodeRune(first, second); r == utf8.RuneError {
		return 0, 0
	}
	return r, 12
}

func hexRune(b []byte) (rune, bool) {
	if len(b) < 6 || b[0] != '\\' || b[1] != 'u' {
		return 0, false
	}
	v, err := strconv.ParseUint(string(b[2:6]), 16, 32)
	if err != nil {
		return 0, false
	}
	return rune(v), true
}

// MethodHasBody reports whether a payload is attached for method.
func MethodHasBody(method string) bool {
	switch strings.ToUpper(method) {
	case "POST", "PUT", "PATCH":
		return true
	}
	return false
}

// ParseStatus reads an expected status cell, tolerating numeric formatting
// such as "200.0". ok is false for blank or non-numeric input.
func ParseStatus(cell string) (int, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0, false
	}
	whole, _, _ := strings.Cut(s, ".")
	n, err := strconv.Atoi(whole)
	if err != nil {
		return 0, false
	}
	return n, true
}
