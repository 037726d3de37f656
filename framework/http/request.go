// Package http wraps the live request and response handles the dispatcher
// hands to controllers.
package http

import (
	"net/http"
	"strings"
)

// Request wraps *http.Request with parameter lookup helpers.
type Request struct {
	raw *http.Request
}

// NewRequest wraps a standard *http.Request.
func NewRequest(r *http.Request) *Request {
	return &Request{raw: r}
}

// Raw returns the underlying *http.Request.
func (req *Request) Raw() *http.Request { return req.raw }

// ── Parameters ───────────────────────────────────────────────────────────────

// Param returns the first value of the request parameter name, from the
// query string or a form body. ok is false when the name is absent.
func (req *Request) Param(name string) (value string, ok bool) {
	_ = req.raw.ParseForm()
	values, ok := req.raw.Form[name]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// Present reports whether name has a non-blank value.
func (req *Request) Present(name string) bool {
	v, ok := req.Param(name)
	return ok && strings.TrimSpace(v) != ""
}
