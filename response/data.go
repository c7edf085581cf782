// Package response prepares data for fabricated HTTP responses.
//
// Library specific responses are built by adapters, see packages nethttp and fhttp.
package response

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/swaggest/usecase/status"
)

// Content types and header names used in preparation.
const (
	ContentTypeDefault = "text/plain"
	ContentTypeJSON    = "application/json"

	HeaderContentType   = "Content-Type"
	HeaderContentLength = "Content-Length"
	HeaderETag          = "Etag"
)

// DefaultFileEncoding is used by PrepareFile to read files.
const DefaultFileEncoding = "utf-8"

// ErrUnknownEncoding is returned when named text encoding is not supported.
var ErrUnknownEncoding = status.Wrap(errors.New("unknown encoding"), status.InvalidArgument)

// Data is a library-agnostic description of HTTP response.
type Data struct {
	StatusCode int
	Headers    map[string]string
	Content    []byte         // Nil when response has no content.
	Elapsed    *time.Duration // Nil when elapsed time is not set.
}

// Header returns value of header with case-insensitive name.
func (d Data) Header(name string) (string, bool) {
	for k, v := range d.Headers {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}

	return "", false
}

// HeaderNames returns sorted names of headers.
func (d Data) HeaderNames() []string {
	names := make([]string, 0, len(d.Headers))
	for k := range d.Headers {
		names = append(names, k)
	}

	sort.Strings(names)

	return names
}

// Clone returns a deep copy of Data.
func (d Data) Clone() Data {
	c := Data{
		StatusCode: d.StatusCode,
		Headers:    make(map[string]string, len(d.Headers)),
	}

	for k, v := range d.Headers {
		c.Headers[k] = v
	}

	if d.Content != nil {
		c.Content = append([]byte(nil), d.Content...)
	}

	if d.Elapsed != nil {
		e := *d.Elapsed
		c.Elapsed = &e
	}

	return c
}

// Options describes raw response inputs.
type Options struct {
	StatusCode  int
	Headers     map[string]string
	Content     string
	ContentType string

	// Encoding is a name of text encoding for Content, charset is appended to Content-Type when set.
	Encoding string

	Elapsed *time.Duration

	// FileEncoding is a name of text encoding of file read by PrepareFile, default "utf-8".
	FileEncoding string

	// ETag enables Etag header with hash of encoded content.
	ETag bool
}

// Option sets up preparation options.
type Option func(o *Options)

// WithStatusCode sets HTTP status code, default 200.
func WithStatusCode(code int) Option {
	return func(o *Options) {
		o.StatusCode = code
	}
}

// WithHeaders adds response headers.
//
// Names are case-insensitive, a value replaces previous one with any case of the name.
func WithHeaders(headers map[string]string) Option {
	return func(o *Options) {
		if o.Headers == nil {
			o.Headers = make(map[string]string, len(headers))
		}

		mergeHeaders(o.Headers, headers)
	}
}

// WithHeader adds response header.
func WithHeader(name, value string) Option {
	return WithHeaders(map[string]string{name: value})
}

// WithContent sets response content text.
func WithContent(content string) Option {
	return func(o *Options) {
		o.Content = content
	}
}

// WithContentType sets Content-Type of non-empty content, default "text/plain".
func WithContentType(contentType string) Option {
	return func(o *Options) {
		o.ContentType = contentType
	}
}

// WithEncoding sets text encoding of content, for example "utf-8" or "iso-8859-1".
//
// WHATWG labels and IANA names are accepted, separators are optional ("latin-1", "utf_8").
func WithEncoding(encoding string) Option {
	return func(o *Options) {
		o.Encoding = encoding
	}
}

// WithElapsed sets time elapsed between sending request and receiving response.
func WithElapsed(elapsed time.Duration) Option {
	return func(o *Options) {
		o.Elapsed = &elapsed
	}
}

// WithFileEncoding sets text encoding of file read by PrepareFile.
func WithFileEncoding(encoding string) Option {
	return func(o *Options) {
		o.FileEncoding = encoding
	}
}

// WithETag enables Etag header with hash of encoded content.
func WithETag() Option {
	return func(o *Options) {
		o.ETag = true
	}
}

func newOptions(options []Option) Options {
	o := Options{}

	for _, option := range options {
		option(&o)
	}

	return o
}

// Prepare builds response data from options.
func Prepare(options ...Option) (Data, error) {
	return newOptions(options).Prepare()
}

// Prepare builds response data.
//
// Non-empty content gets Content-Type (default "text/plain") and Content-Length headers,
// Content-Length provided by caller is kept intact.
func (o Options) Prepare() (Data, error) {
	d := Data{
		StatusCode: o.StatusCode,
		Headers:    make(map[string]string, len(o.Headers)+2),
	}

	if d.StatusCode == 0 {
		d.StatusCode = 200
	}

	mergeHeaders(d.Headers, o.Headers)

	if o.Elapsed != nil {
		e := *o.Elapsed
		d.Elapsed = &e
	}

	if o.Content == "" {
		return d, nil
	}

	contentType := o.ContentType
	if contentType == "" {
		contentType = ContentTypeDefault
	}

	if o.Encoding != "" {
		content, err := encode(o.Content, o.Encoding)
		if err != nil {
			return Data{}, err
		}

		d.Content = content
		contentType += "; charset=" + o.Encoding
	} else {
		d.Content = []byte(o.Content)
	}

	setHeader(d.Headers, HeaderContentType, contentType)

	if _, found := d.Header(HeaderContentLength); !found {
		d.Headers[HeaderContentLength] = strconv.Itoa(len(d.Content))
	}

	if _, found := d.Header(HeaderETag); o.ETag && !found {
		d.Headers[HeaderETag] = strconv.FormatUint(xxhash.Sum64(d.Content), 36)
	}

	return d, nil
}

// setHeader replaces header value regardless of name case.
func setHeader(headers map[string]string, name, value string) {
	for k := range headers {
		if strings.EqualFold(k, name) {
			delete(headers, k)
		}
	}

	headers[name] = value
}

// mergeHeaders sets headers in sorted name order, the last sorted case variant wins.
func mergeHeaders(dst, src map[string]string) {
	names := make([]string, 0, len(src))
	for k := range src {
		names = append(names, k)
	}

	sort.Strings(names)

	for _, k := range names {
		setHeader(dst, k, src[k])
	}
}

func (o Options) fileEncoding() string {
	if o.FileEncoding == "" {
		return DefaultFileEncoding
	}

	return o.FileEncoding
}
