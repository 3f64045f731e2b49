package cassette

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/vcr/pkg/request"
)

func TestFilterHeaders(t *testing.T) {
	r := request.MustNew("GET", "http://host.com/", nil, http.Header{
		"Authorization": {"secret"},
		"X-Api-Key":     {"k"},
		"Accept":        {"*/*"},
	})

	got := FilterHeaders("authorization", "X-API-KEY")(r)
	assert.Empty(t, got.Header("Authorization"))
	assert.Empty(t, got.Header("X-Api-Key"))
	assert.Equal(t, "*/*", got.Header("Accept"))
	assert.Equal(t, "secret", r.Header("Authorization"), "original request is untouched")

	assert.Same(t, r, FilterHeaders("X-Missing")(r))
}

func TestReplaceHeaders(t *testing.T) {
	r := request.MustNew("GET", "http://host.com/", nil, http.Header{
		"Authorization": {"secret"},
		"User-Agent":    {"curl"},
	})

	got := ReplaceHeaders(map[string]string{
		"Authorization": "REDACTED",
		"User-Agent":    "",
	})(r)
	assert.Equal(t, "REDACTED", got.Header("Authorization"))
	assert.Empty(t, got.Headers().Values("User-Agent"))
}

func TestFilterQueryParameters(t *testing.T) {
	r := request.MustNew("GET", "http://host.com/search?q=go&api_key=abc&page=2", nil, nil)

	got := FilterQueryParameters("api_key")(r)
	assert.Equal(t, "http://host.com/search?page=2&q=go", got.URL())
	assert.Equal(t, "/search", got.Path())

	assert.Same(t, r, FilterQueryParameters("token")(r))
}

func TestFilterPostDataParameters_Form(t *testing.T) {
	r := request.MustNew("POST", "http://host.com/login", []byte("user=bob&password=hunter2&remember=1"),
		http.Header{"Content-Type": {"application/x-www-form-urlencoded"}})

	got := FilterPostDataParameters("password")(r)
	assert.Equal(t, "remember=1&user=bob", got.BodyString())
}

func TestFilterPostDataParameters_JSON(t *testing.T) {
	r := request.MustNew("POST", "http://host.com/login",
		[]byte(`{"user":"bob","password":"hunter2","session":{"token":"t","ttl":60}}`),
		http.Header{"Content-Type": {"application/json; charset=utf-8"}})

	got := FilterPostDataParameters("password", "$.session.token")(r)
	assert.JSONEq(t, `{"user":"bob","session":{"ttl":60}}`, got.BodyString())
}

func TestFilterPostDataParameters_LeavesOtherBodiesAlone(t *testing.T) {
	plain := request.MustNew("POST", "http://host.com/", []byte("password=x"), http.Header{"Content-Type": {"text/plain"}})
	assert.Same(t, plain, FilterPostDataParameters("password")(plain))

	broken := request.MustNew("POST", "http://host.com/", []byte(`{"password":`), http.Header{"Content-Type": {"application/json"}})
	assert.Same(t, broken, FilterPostDataParameters("password")(broken))
}

func TestIgnoreLocalhost(t *testing.T) {
	f := IgnoreLocalhost()
	assert.Nil(t, f(request.MustNew("GET", "http://localhost:8080/", nil, nil)))
	assert.Nil(t, f(request.MustNew("GET", "http://127.0.0.1/", nil, nil)))
	assert.Nil(t, f(request.MustNew("GET", "http://[::1]:9000/", nil, nil)))

	r := request.MustNew("GET", "http://example.com/", nil, nil)
	assert.Same(t, r, f(r))
}

func TestReplaceBodyLength(t *testing.T) {
	resp := &Response{Headers: http.Header{"Content-Length": {"100"}}, Body: []byte("short")}
	require.Same(t, resp, ReplaceBodyLength(resp))
	assert.Equal(t, "5", resp.Headers.Get("Content-Length"))

	noHeader := &Response{Headers: http.Header{}, Body: []byte("x")}
	ReplaceBodyLength(noHeader)
	assert.Empty(t, noHeader.Headers.Get("Content-Length"))
}
