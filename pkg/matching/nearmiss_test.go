package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/vcr/pkg/request"
)

func TestExplain_EvaluatesEveryMatcher(t *testing.T) {
	set, err := Default().Resolve("method", "host", "path")
	require.NoError(t, err)

	a := request.MustNew("GET", "http://host.com/a", nil, nil)
	b := request.MustNew("POST", "http://host.com/b", nil, nil)

	bd, err := Explain(set, a, b)
	require.NoError(t, err)
	assert.Equal(t, []string{"host"}, bd.Succeeded)
	assert.Equal(t, []Failure{
		{Matcher: "method", Message: "GET != POST"},
		{Matcher: "path", Message: "/a != /b"},
	}, bd.Failed)
}

func TestClosest(t *testing.T) {
	set, err := Default().Resolve("method", "host", "path", "query")
	require.NoError(t, err)

	req := request.MustNew("GET", "http://host.com/a?x=1", nil, nil)
	candidates := []*request.Request{
		request.MustNew("POST", "http://other.com/z", nil, nil),   // 0 matchers
		request.MustNew("GET", "http://host.com/b?x=1", nil, nil), // 3 matchers
		request.MustNew("GET", "http://host.com/a?x=2", nil, nil), // 3 matchers
		request.MustNew("GET", "http://host.com/c", nil, nil),     // 2 matchers
	}

	best, err := Closest(set, req, candidates)
	require.NoError(t, err)
	require.Len(t, best, 2)
	assert.Equal(t, 1, best[0].Index)
	assert.Equal(t, 2, best[1].Index)
	assert.Equal(t, "path", best[0].Failed[0].Matcher)
	assert.Equal(t, "query", best[1].Failed[0].Matcher)
	assert.Same(t, candidates[1], best[0].Request)
}

func TestClosest_NothingInCommon(t *testing.T) {
	set, err := Default().Resolve("method", "host")
	require.NoError(t, err)

	req := request.MustNew("GET", "http://host.com/", nil, nil)
	best, err := Closest(set, req, []*request.Request{request.MustNew("POST", "http://x.com/", nil, nil)})
	require.NoError(t, err)
	assert.Empty(t, best)
}

func TestBreakdown_Reason(t *testing.T) {
	tests := []struct {
		name string
		bd   Breakdown
		want string
	}{
		{"no failures", Breakdown{Succeeded: []string{"method"}}, "all matchers succeeded"},
		{"only failure", Breakdown{Failed: []Failure{{Matcher: "path"}}}, "path did not match"},
		{
			"two matched",
			Breakdown{Succeeded: []string{"method", "host"}, Failed: []Failure{{Matcher: "path", Message: "/a != /b"}}},
			"method and host matched, but path did not match (/a != /b)",
		},
		{
			"three matched",
			Breakdown{Succeeded: []string{"method", "scheme", "host"}, Failed: []Failure{{Matcher: "port"}}},
			"method, scheme, and host matched, but port did not match",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.bd.Reason())
		})
	}
}

func TestBreakdown_Format(t *testing.T) {
	bd := Breakdown{
		Index:     0,
		Request:   request.MustNew("GET", "http://host.com/b", nil, nil),
		Succeeded: []string{"method"},
		Failed:    []Failure{{Matcher: "path", Message: "/a != /b"}, {Matcher: "query"}},
	}
	want := "1 - (GET http://host.com/b).\n" +
		"Matchers succeeded : [method]\n" +
		"Matchers failed :\n" +
		"path - assertion failure :\n" +
		Details("/a != /b") +
		"query - assertion failure :\n"
	assert.Equal(t, want, bd.Format())
}
