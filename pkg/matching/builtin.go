package matching

import (
	"net/http"
	"slices"
	"strings"

	"github.com/getmockd/vcr/pkg/request"
)

// Built-in matchers.
var (
	Method  Matcher = AssertFunc(matchMethod)
	Scheme  Matcher = AssertFunc(matchScheme)
	Host    Matcher = AssertFunc(matchHost)
	Port    Matcher = AssertFunc(matchPort)
	Path    Matcher = AssertFunc(matchPath)
	Query   Matcher = AssertFunc(matchQuery)
	URI     Matcher = AssertFunc(matchURI)
	Body    Matcher = AssertFunc(matchBody)
	Headers Matcher = AssertFunc(matchHeaders)
)

func builtins() map[string]Matcher {
	return map[string]Matcher{
		"method":  Method,
		"scheme":  Scheme,
		"host":    Host,
		"port":    Port,
		"path":    Path,
		"query":   Query,
		"uri":     URI,
		"body":    Body,
		"headers": Headers,
	}
}

func matchMethod(a, b *request.Request) error {
	if a.Method() != b.Method() {
		return Fail("%s != %s", a.Method(), b.Method())
	}
	return nil
}

func matchScheme(a, b *request.Request) error {
	if a.Scheme() != b.Scheme() {
		return Fail("%s != %s", a.Scheme(), b.Scheme())
	}
	return nil
}

func matchHost(a, b *request.Request) error {
	if a.Host() != b.Host() {
		return Fail("%s != %s", a.Host(), b.Host())
	}
	return nil
}

func matchPort(a, b *request.Request) error {
	if a.Port() != b.Port() {
		return Fail("%d != %d", a.Port(), b.Port())
	}
	return nil
}

func matchPath(a, b *request.Request) error {
	if a.Path() != b.Path() {
		return Fail("%s != %s", a.Path(), b.Path())
	}
	return nil
}

func matchQuery(a, b *request.Request) error {
	qa, qb := a.Query(), b.Query()
	if !slices.Equal(qa, qb) {
		return Fail("%s != %s", formatPairs(qa), formatPairs(qb))
	}
	return nil
}

// matchURI requires scheme, host, port, path and query to match together.
func matchURI(a, b *request.Request) error {
	for _, f := range []func(a, b *request.Request) error{
		matchScheme, matchHost, matchPort, matchPath, matchQuery,
	} {
		if err := f(a, b); err != nil {
			return err
		}
	}
	return nil
}

func matchHeaders(a, b *request.Request) error {
	ha, hb := a.Headers(), b.Headers()
	if !headersEqual(ha, hb) {
		return Fail("%s != %s", formatHeaders(ha), formatHeaders(hb))
	}
	return nil
}

func headersEqual(a, b http.Header) bool {
	if len(a) != len(b) {
		return false
	}
	for name, va := range a {
		vb, ok := b[name]
		if !ok || !slices.Equal(va, vb) {
			return false
		}
	}
	return true
}

func formatPairs(pairs []request.QueryParam) string {
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = p.Key + "=" + p.Value
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func formatHeaders(h http.Header) string {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	slices.Sort(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + ": " + strings.Join(h[name], ", ")
	}
	return "{" + strings.Join(parts, "; ") + "}"
}
