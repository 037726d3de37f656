package http

import (
	"io"
	"net/http"
)

// Response wraps http.ResponseWriter with plain-text helpers.
type Response struct {
	w http.ResponseWriter
}

// NewResponse wraps a ResponseWriter.
func NewResponse(w http.ResponseWriter) *Response {
	return &Response{w: w}
}

// Raw returns the underlying ResponseWriter.
func (res *Response) Raw() http.ResponseWriter { return res.w }

// Text writes s as a text/plain body. The status stays whatever the
// writer defaults to, which is 200 unless a header was already sent.
//
//	res.Text("404 Not Found")
func (res *Response) Text(s string) error {
	if res.w.Header().Get("Content-Type") == "" {
		res.w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	_, err := io.WriteString(res.w, s)
	return err
}
