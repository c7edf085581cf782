// Package nethttp fabricates net/http responses.
package nethttp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"time"

	"github.com/swaggest/mockish/response"
)

// Adapter creates Response from response.Data.
var Adapter response.Adapter[*Response] = response.AdapterFunc[*Response](Create)

// Response is a fabricated *http.Response.
//
// Embedded *http.Response can be passed to code under test, Body reader is not shared
// between responses made with Clone.
type Response struct {
	*http.Response

	// Elapsed is a time between sending request and receiving response.
	Elapsed time.Duration

	data response.Data
}

// Create builds Response from prepared data.
//
// Request is populated with an inert placeholder, no network calls are made.
// Content-Type header is not set for empty content, zero status code means 200.
func Create(d response.Data) *Response {
	d = d.Clone()

	if d.StatusCode == 0 {
		d.StatusCode = http.StatusOK
	}

	resp := &http.Response{
		Status:     fmt.Sprintf("%d %s", d.StatusCode, http.StatusText(d.StatusCode)),
		StatusCode: d.StatusCode,
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     make(http.Header, len(d.Headers)),
		Body:       http.NoBody,
		Request:    httptest.NewRequest(http.MethodGet, "/", nil),
	}

	for _, k := range d.HeaderNames() {
		resp.Header.Set(k, d.Headers[k])
	}

	if len(d.Content) > 0 {
		resp.Body = io.NopCloser(bytes.NewReader(d.Content))
		resp.ContentLength = int64(len(d.Content))
	}

	if cl := resp.Header.Get(response.HeaderContentLength); cl != "" {
		resp.ContentLength = -1

		if n, err := strconv.ParseInt(cl, 10, 64); err == nil {
			resp.ContentLength = n
		}
	}

	r := &Response{
		Response: resp,
		data:     d,
	}

	if d.Elapsed != nil {
		r.Elapsed = *d.Elapsed
	}

	return r
}

// NewResponse creates response from options.
func NewResponse(options ...response.Option) (*Response, error) {
	return response.New(Adapter, options...)
}

// FromJSON creates response with v encoded as JSON.
func FromJSON(v interface{}, options ...response.Option) (*Response, error) {
	return response.FromJSON(Adapter, v, options...)
}

// FromFile creates response with file contents.
func FromFile(path string, options ...response.Option) (*Response, error) {
	return response.FromFile(Adapter, path, options...)
}

// Data returns a copy of data the response was created from.
func (r *Response) Data() response.Data {
	return r.data.Clone()
}

// Clone creates a new response from the same data, with unread Body.
func (r *Response) Clone() *Response {
	return Create(r.data)
}

// Content returns response body bytes, reading Body is not required.
func (r *Response) Content() []byte {
	return append([]byte(nil), r.data.Content...)
}

// Text returns response body decoded with charset of Content-Type, default UTF-8.
func (r *Response) Text() (string, error) {
	return response.DecodeText(r.data.Content, r.Header.Get(response.HeaderContentType))
}

// JSON unmarshals response body into v.
func (r *Response) JSON(v interface{}) error {
	return json.Unmarshal(r.data.Content, v)
}
