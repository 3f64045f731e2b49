package request

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DecomposesURL(t *testing.T) {
	r, err := New("GET", "https://api.example.com:8443/v1/items?b=2&a=1&a=0", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "GET", r.Method())
	assert.Equal(t, "https", r.Scheme())
	assert.Equal(t, "api.example.com", r.Host())
	assert.Equal(t, 8443, r.Port())
	assert.Equal(t, "/v1/items", r.Path())
	assert.Equal(t, []QueryParam{
		{Key: "a", Value: "0"},
		{Key: "a", Value: "1"},
		{Key: "b", Value: "2"},
	}, r.Query())
}

func TestNew_LenientQuery(t *testing.T) {
	tests := []struct {
		url  string
		want []QueryParam
	}{
		{"http://host.com/q?a=1;b=2", []QueryParam{{Key: "a", Value: "1;b=2"}}},
		{"http://host.com/q?q=100%", []QueryParam{{Key: "q", Value: "100%"}}},
		{"http://host.com/q?q=100%25", []QueryParam{{Key: "q", Value: "100%"}}},
		{"http://host.com/q?b&&a=x+y", []QueryParam{{Key: "a", Value: "x y"}, {Key: "b", Value: ""}}},
		{"http://host.com/q?", []QueryParam{}},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			r, err := New("GET", tt.url, nil, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.Query())
		})
	}
}

func TestNew_DefaultPorts(t *testing.T) {
	tests := []struct {
		url  string
		port int
	}{
		{"http://host.com/", 80},
		{"https://host.com/", 443},
		{"https://host.com:443/", 443},
		{"https://host.com:80/", 80},
		{"ftp://host.com/", 0},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			r := MustNew("GET", tt.url, nil, nil)
			assert.Equal(t, tt.port, r.Port())
		})
	}
}

func TestNew_InvalidURL(t *testing.T) {
	_, err := New("GET", "http://host.com/%zz", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidURL)
}

func TestNew_HeadersCaseInsensitive(t *testing.T) {
	r := MustNew("POST", "http://host.com/", nil, http.Header{"content-type": {"application/json"}})
	assert.Equal(t, "application/json", r.Header("Content-Type"))
	assert.Equal(t, "application/json", r.Header("CONTENT-TYPE"))
	assert.Equal(t, "application/json", r.ContentType())
}

func TestRequest_Immutable(t *testing.T) {
	body := []byte("hello")
	headers := http.Header{"X-A": {"1"}}
	r := MustNew("POST", "http://host.com/", body, headers)

	body[0] = 'j'
	headers.Set("X-A", "2")
	assert.Equal(t, "hello", r.BodyString())
	assert.Equal(t, "1", r.Header("X-A"))

	got := r.Body()
	got[0] = 'y'
	h := r.Headers()
	h.Set("X-A", "3")
	assert.Equal(t, "hello", r.BodyString())
	assert.Equal(t, "1", r.Header("X-A"))

	r2 := r.WithBody([]byte("other"))
	assert.Equal(t, "hello", r.BodyString())
	assert.Equal(t, "other", r2.BodyString())
}

func TestFromHTTP_RestoresBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "http://example.com/submit?x=1", bytes.NewBufferString("payload"))
	req.Header.Set("Content-Type", "text/plain")

	r, err := FromHTTP(req)
	require.NoError(t, err)
	assert.Equal(t, "payload", r.BodyString())
	assert.Equal(t, "example.com", r.Host())
	assert.Equal(t, 80, r.Port())

	rest, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(rest))
}

func TestFromHTTP_RelativeURL(t *testing.T) {
	req := &http.Request{
		Method: http.MethodGet,
		URL:    &url.URL{Path: "/p"},
		Host:   "svc.local:9000",
		Header: http.Header{},
	}
	r, err := FromHTTP(req)
	require.NoError(t, err)
	assert.Equal(t, "http", r.Scheme())
	assert.Equal(t, "svc.local", r.Host())
	assert.Equal(t, 9000, r.Port())
}

func TestToHTTP_RoundTrip(t *testing.T) {
	r := MustNew("PUT", "http://host.com/a?b=c", []byte("body"), http.Header{"X-K": {"v"}})
	req, err := r.ToHTTP()
	require.NoError(t, err)

	back, err := FromHTTP(req)
	require.NoError(t, err)
	assert.Equal(t, r.String(), back.String())
	assert.Equal(t, r.BodyString(), back.BodyString())
	assert.Equal(t, "v", back.Header("x-k"))
}
