package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/vcr/pkg/request"
)

func TestDefault_HasBuiltins(t *testing.T) {
	assert.Equal(t,
		[]string{"body", "headers", "host", "method", "path", "port", "query", "scheme", "uri"},
		Default().Names())
}

func TestDefault_IndependentRegistries(t *testing.T) {
	r1 := Default()
	r2 := Default()
	require.NoError(t, r1.RegisterFunc("always", func(a, b *request.Request) bool { return true }))

	_, ok := r2.Lookup("always")
	assert.False(t, ok)
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	assert.ErrorIs(t, r.Register("", Method), ErrInvalidMatcher)
	assert.ErrorIs(t, r.Register("x", nil), ErrInvalidMatcher)
	assert.ErrorIs(t, r.RegisterFunc("x", nil), ErrInvalidMatcher)

	require.NoError(t, r.Register("m", Method))
	require.NoError(t, r.Register("m", Path))
	m, ok := r.Lookup("m")
	require.True(t, ok)
	assert.NotNil(t, m)
}

func TestRegistry_Resolve(t *testing.T) {
	r := Default()

	set, err := r.Resolve("path", "method")
	require.NoError(t, err)
	require.Len(t, set, 2)
	assert.Equal(t, "path", set[0].Name)
	assert.Equal(t, "method", set[1].Name)

	_, err = r.Resolve()
	assert.ErrorIs(t, err, ErrEmptyMatcherSet)

	_, err = r.Resolve("method", "nope")
	assert.ErrorIs(t, err, ErrUnknownMatcher)
	assert.Contains(t, err.Error(), `"nope"`)
}

func TestMatchAll_ShortCircuitsInOrder(t *testing.T) {
	var calls []string
	tracking := func(name string, result bool) Matcher {
		return BoolFunc(func(a, b *request.Request) bool {
			calls = append(calls, name)
			return result
		})
	}
	set := []Named{
		{Name: "first", Matcher: tracking("first", true)},
		{Name: "second", Matcher: tracking("second", false)},
		{Name: "third", Matcher: tracking("third", true)},
	}

	ok, failure, err := MatchAll(set, nil, nil)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NotNil(t, failure)
	assert.Equal(t, "second", failure.Matcher)
	assert.Empty(t, failure.Message)
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestMatchAll_AllMatch(t *testing.T) {
	set, err := Default().Resolve(DefaultMatchOn...)
	require.NoError(t, err)

	a := request.MustNew("GET", "http://host.com/p?a=1&b=2", nil, nil)
	b := request.MustNew("GET", "http://host.com/p?b=2&a=1", []byte("ignored"), nil)
	ok, failure, err := MatchAll(set, a, b)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Nil(t, failure)
}

func TestMatchAll_ReportsMessage(t *testing.T) {
	set, err := Default().Resolve("method", "path")
	require.NoError(t, err)

	a := request.MustNew("GET", "http://host.com/a", nil, nil)
	b := request.MustNew("GET", "http://host.com/b", nil, nil)
	ok, failure, err := MatchAll(set, a, b)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, Failure{Matcher: "path", Message: "/a != /b"}, *failure)
	assert.Contains(t, failure.Details(), "/a != /b")
}

func TestMatchAll_PropagatesEvaluationErrors(t *testing.T) {
	set := []Named{{Name: "broken", Matcher: BoolFunc(func(a, b *request.Request) bool { panic("oops") })}}
	_, _, err := MatchAll(set, nil, nil)

	var mee *MatcherEvaluationError
	require.ErrorAs(t, err, &mee)
	assert.Equal(t, "broken", mee.Matcher)
}
