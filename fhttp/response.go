// Package fhttp fabricates fasthttp responses.
package fhttp

import (
	"encoding/json"
	"time"

	"github.com/swaggest/mockish/response"
	"github.com/valyala/fasthttp"
)

// Adapter creates Response from response.Data.
var Adapter response.Adapter[*Response] = response.AdapterFunc[*Response](Create)

// Response is a fabricated *fasthttp.Response.
//
// Fasthttp clients fill a response provided by caller, use CopyTo to serve a fabricated one:
//
//	doer := mockish.MustNew(mockish.ReturnCall(func(args ...interface{}) (interface{}, error) {
//		resp.CopyTo(args[1].(*fasthttp.Response))
//		return nil, nil
//	}))
type Response struct {
	*fasthttp.Response

	// Request is an inert placeholder of outgoing request.
	Request *fasthttp.Request

	// Elapsed is a time between sending request and receiving response.
	Elapsed time.Duration

	data response.Data
}

// Create builds Response from prepared data.
//
// Body is only set for non-empty content. Without Content-Type header,
// fasthttp default "text/plain; charset=utf-8" is reported. Zero status code means 200.
func Create(d response.Data) *Response {
	d = d.Clone()

	if d.StatusCode == 0 {
		d.StatusCode = fasthttp.StatusOK
	}

	resp := &fasthttp.Response{}
	resp.SetStatusCode(d.StatusCode)

	for _, k := range d.HeaderNames() {
		resp.Header.Set(k, d.Headers[k])
	}

	if len(d.Content) > 0 {
		resp.SetBody(d.Content)
	}

	r := &Response{
		Response: resp,
		Request:  &fasthttp.Request{},
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

// Clone creates a new response from the same data.
func (r *Response) Clone() *Response {
	return Create(r.data)
}

// Text returns response body decoded with charset of Content-Type.
func (r *Response) Text() (string, error) {
	return response.DecodeText(r.Body(), string(r.Header.ContentType()))
}

// JSON unmarshals response body into v.
func (r *Response) JSON(v interface{}) error {
	return json.Unmarshal(r.Body(), v)
}
