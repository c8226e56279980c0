// Package http is the transport used to execute compiled requests in-process.
//
// It wraps the standard library's http package with:
//   - Configurable timeouts and TLS verification
//   - Redirect handling
//   - Ordered request headers
//   - Fully read responses with timing
package http
