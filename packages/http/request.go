package http

import "strings"

// Header is a request header. Requests keep headers in declaration order.
type Header struct {
	Key   string
	Value string
}

type Request struct {
	Method  string
	URL     string
	Headers []Header
	Body    string
}

func NewRequest(method, requestURL string) *Request {
	return &Request{
		Method: strings.ToUpper(method),
		URL:    requestURL,
	}
}

// SetHeader replaces a header with the same case-insensitive name or appends it.
func (r *Request) SetHeader(key, value string) *Request {
	for i, h := range r.Headers {
		if strings.EqualFold(h.Key, key) {
			r.Headers[i].Value = value
			return r
		}
	}
	r.Headers = append(r.Headers, Header{Key: key, Value: value})
	return r
}

// Header returns the value of a header, matched case-insensitively.
func (r *Request) Header(key string) string {
	for _, h := range r.Headers {
		if strings.EqualFold(h.Key, key) {
			return h.Value
		}
	}
	return ""
}

func (r *Request) SetBody(body string) *Request {
	r.Body = body
	return r
}

