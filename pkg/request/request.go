// Package request provides the canonical, immutable shape of an outbound HTTP
// call as seen by the cassette and the matchers.
package request

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidURL is returned when a request URL cannot be parsed.
var ErrInvalidURL = errors.New("invalid request URL")

// defaultPorts maps schemes to the port used when the URL does not name one.
var defaultPorts = map[string]int{
	"http":  80,
	"https": 443,
}

// QueryParam is a single key/value pair from a URL query string.
type QueryParam struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Request is one outbound call. It is never mutated after construction;
// the With* methods return modified copies.
type Request struct {
	method  string
	url     *url.URL
	port    int
	query   []QueryParam
	body    []byte
	headers http.Header
}

// New builds a Request from its parts. Header names are canonicalized so
// lookups are case-insensitive.
func New(method, rawURL string, body []byte, headers http.Header) (*Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidURL, rawURL, err)
	}
	return build(method, u, body, headers)
}

// MustNew is like New but panics on an invalid URL. Intended for fixtures.
func MustNew(method, rawURL string, body []byte, headers http.Header) *Request {
	r, err := New(method, rawURL, body, headers)
	if err != nil {
		panic(err)
	}
	return r
}

// FromHTTP converts a live *http.Request into a Request. The request body is
// read fully and replaced with an equivalent reader so the call can still be
// performed.
func FromHTTP(r *http.Request) (*Request, error) {
	if r == nil || r.URL == nil {
		return nil, fmt.Errorf("%w: nil request", ErrInvalidURL)
	}

	var body []byte
	if r.Body != nil && r.Body != http.NoBody {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
		_ = r.Body.Close()
		body = data
		r.Body = io.NopCloser(bytes.NewReader(data))
		r.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		}
	}

	u := *r.URL
	if u.Host == "" {
		u.Host = r.Host
	}
	if u.Scheme == "" {
		u.Scheme = "http"
		if r.TLS != nil {
			u.Scheme = "https"
		}
	}

	return build(r.Method, &u, body, r.Header)
}

func build(method string, u *url.URL, body []byte, headers http.Header) (*Request, error) {
	query := parseQuery(u.RawQuery)

	port := defaultPorts[u.Scheme]
	if p := u.Port(); p != "" {
		var err error
		port, err = strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("%w: port %q", ErrInvalidURL, p)
		}
	}

	h := make(http.Header, len(headers))
	for name, values := range headers {
		key := http.CanonicalHeaderKey(name)
		h[key] = append(h[key], values...)
	}

	clone := *u
	return &Request{
		method:  method,
		url:     &clone,
		port:    port,
		query:   query,
		body:    bytes.Clone(body),
		headers: h,
	}, nil
}

// parseQuery decodes a raw query into pairs sorted by key then value.
// Duplicate keys and blank values are kept. It accepts anything a client can
// send: pieces are split on '&' only, and a side that does not unescape is
// kept as written.
func parseQuery(raw string) []QueryParam {
	if raw == "" {
		return nil
	}
	var pairs []QueryParam
	for piece := range strings.SplitSeq(raw, "&") {
		if piece == "" {
			continue
		}
		key, value, _ := strings.Cut(piece, "=")
		pairs = append(pairs, QueryParam{Key: unescape(key), Value: unescape(value)})
	}
	sortPairs(pairs)
	return pairs
}

func unescape(s string) string {
	if u, err := url.QueryUnescape(s); err == nil {
		return u
	}
	return s
}

// SortedPairs flattens url.Values into pairs ordered by key, then value.
func SortedPairs(values url.Values) []QueryParam {
	pairs := make([]QueryParam, 0, len(values))
	for k, vs := range values {
		for _, v := range vs {
			pairs = append(pairs, QueryParam{Key: k, Value: v})
		}
	}
	sortPairs(pairs)
	return pairs
}

func sortPairs(pairs []QueryParam) {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Key != pairs[j].Key {
			return pairs[i].Key < pairs[j].Key
		}
		return pairs[i].Value < pairs[j].Value
	})
}

// Method returns the request method exactly as given.
func (r *Request) Method() string { return r.method }

// URL returns the full request URL.
func (r *Request) URL() string { return r.url.String() }

// Scheme returns the URL scheme.
func (r *Request) Scheme() string { return r.url.Scheme }

// Host returns the URL host without the port.
func (r *Request) Host() string { return r.url.Hostname() }

// Port returns the explicit port, or the scheme default when none is given.
func (r *Request) Port() int { return r.port }

// Path returns the URL path.
func (r *Request) Path() string { return r.url.Path }

// RawQuery returns the query string as it appeared in the URL.
func (r *Request) RawQuery() string { return r.url.RawQuery }

// Query returns a copy of the sorted query pairs.
func (r *Request) Query() []QueryParam {
	out := make([]QueryParam, len(r.query))
	copy(out, r.query)
	return out
}

// QueryValues returns the query as url.Values.
func (r *Request) QueryValues() url.Values {
	v := make(url.Values, len(r.query))
	for _, p := range r.query {
		v[p.Key] = append(v[p.Key], p.Value)
	}
	return v
}

// Body returns a copy of the raw body.
func (r *Request) Body() []byte { return bytes.Clone(r.body) }

// BodyString returns the body as a string without copying into a new slice.
func (r *Request) BodyString() string { return string(r.body) }

// Headers returns a copy of the header map.
func (r *Request) Headers() http.Header { return r.headers.Clone() }

// Header returns the first value of the named header. The lookup is
// case-insensitive.
func (r *Request) Header(name string) string { return r.headers.Get(name) }

// ContentType returns the lower-cased Content-Type header.
func (r *Request) ContentType() string {
	return strings.ToLower(r.headers.Get("Content-Type"))
}

// WithBody returns a copy of r carrying body.
func (r *Request) WithBody(body []byte) *Request {
	c := r.clone()
	c.body = bytes.Clone(body)
	return c
}

// WithHeaders returns a copy of r carrying headers.
func (r *Request) WithHeaders(headers http.Header) *Request {
	c := r.clone()
	c.headers = make(http.Header, len(headers))
	for name, values := range headers {
		key := http.CanonicalHeaderKey(name)
		c.headers[key] = append(c.headers[key], values...)
	}
	return c
}

// WithURL returns a copy of r pointed at rawURL.
func (r *Request) WithURL(rawURL string) (*Request, error) {
	return New(r.method, rawURL, r.body, r.headers)
}

// ToHTTP converts r into a live *http.Request.
func (r *Request) ToHTTP() (*http.Request, error) {
	req, err := http.NewRequest(r.method, r.URL(), bytes.NewReader(r.body))
	if err != nil {
		return nil, err
	}
	req.Header = r.headers.Clone()
	return req, nil
}

// String returns "<METHOD> <url>".
func (r *Request) String() string {
	return r.method + " " + r.URL()
}

func (r *Request) clone() *Request {
	u := *r.url
	query := make([]QueryParam, len(r.query))
	copy(query, r.query)
	return &Request{
		method:  r.method,
		url:     &u,
		port:    r.port,
		query:   query,
		body:    bytes.Clone(r.body),
		headers: r.headers.Clone(),
	}
}
