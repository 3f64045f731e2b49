package cassette

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	"github.com/getmockd/vcr/pkg/request"
)

// FilterHeaders removes the named request headers.
func FilterHeaders(names ...string) RequestFilter {
	return func(r *request.Request) *request.Request {
		h := r.Headers()
		changed := false
		for _, name := range names {
			if len(h.Values(name)) > 0 {
				h.Del(name)
				changed = true
			}
		}
		if !changed {
			return r
		}
		return r.WithHeaders(h)
	}
}

// ReplaceHeaders sets request headers to fixed values. An empty value
// removes the header.
func ReplaceHeaders(values map[string]string) RequestFilter {
	return func(r *request.Request) *request.Request {
		h := r.Headers()
		for name, v := range values {
			if v == "" {
				h.Del(name)
				continue
			}
			h.Set(name, v)
		}
		return r.WithHeaders(h)
	}
}

// FilterQueryParameters removes the named query parameters.
func FilterQueryParameters(names ...string) RequestFilter {
	return func(r *request.Request) *request.Request {
		values := r.QueryValues()
		changed := false
		for _, name := range names {
			if _, ok := values[name]; ok {
				values.Del(name)
				changed = true
			}
		}
		if !changed {
			return r
		}
		u, err := url.Parse(r.URL())
		if err != nil {
			return r
		}
		u.RawQuery = values.Encode()
		filtered, err := r.WithURL(u.String())
		if err != nil {
			return r
		}
		return filtered
	}
}

// FilterPostDataParameters removes the named parameters from form and JSON
// bodies. For JSON bodies a name starting with "$" is a JSONPath expression;
// any other name is a top-level member. Other bodies are left alone.
func FilterPostDataParameters(names ...string) RequestFilter {
	return func(r *request.Request) *request.Request {
		ct := r.ContentType()
		switch {
		case strings.Contains(ct, "application/x-www-form-urlencoded"):
			return filterFormBody(r, names)
		case strings.Contains(ct, "json"):
			return filterJSONBody(r, names)
		}
		return r
	}
}

func filterFormBody(r *request.Request, names []string) *request.Request {
	values, err := url.ParseQuery(r.BodyString())
	if err != nil {
		return r
	}
	for _, name := range names {
		values.Del(name)
	}
	return r.WithBody([]byte(values.Encode()))
}

func filterJSONBody(r *request.Request, names []string) *request.Request {
	data, err := oj.Parse(r.Body())
	if err != nil {
		return r
	}
	for _, name := range names {
		x := jp.C(name)
		if strings.HasPrefix(name, "$") {
			if x, err = jp.ParseString(name); err != nil {
				continue
			}
		}
		_ = x.Del(data)
	}
	return r.WithBody([]byte(oj.JSON(data, &oj.Options{Sort: true})))
}

// FilterResponseHeaders removes the named response headers.
func FilterResponseHeaders(names ...string) ResponseFilter {
	return func(resp *Response) *Response {
		for _, name := range names {
			resp.Headers.Del(name)
		}
		return resp
	}
}

// IgnoreHosts ignores requests to the given hosts. Ignored requests bypass
// the cassette entirely.
func IgnoreHosts(hosts ...string) RequestFilter {
	set := make(map[string]struct{}, len(hosts))
	for _, h := range hosts {
		set[strings.ToLower(h)] = struct{}{}
	}
	return func(r *request.Request) *request.Request {
		if _, ok := set[strings.ToLower(r.Host())]; ok {
			return nil
		}
		return r
	}
}

// IgnoreLocalhost ignores requests to loopback hosts.
func IgnoreLocalhost() RequestFilter {
	return IgnoreHosts("localhost", "127.0.0.1", "::1", "0.0.0.0")
}

// ReplaceBodyLength fixes the Content-Length header of a response after a
// filter changed its body.
func ReplaceBodyLength(resp *Response) *Response {
	if resp.Headers != nil && resp.Headers.Get("Content-Length") != "" {
		resp.Headers.Set("Content-Length", strconv.Itoa(len(resp.Body)))
	}
	return resp
}
