package matching

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/vcr/pkg/request"
)

func TestEvaluate_Matches(t *testing.T) {
	matchers := map[string]Matcher{
		"bool": BoolFunc(func(a, b *request.Request) bool { return true }),
		"assertion": AssertFunc(func(a, b *request.Request) error {
			return nil
		}),
	}
	for name, m := range matchers {
		t.Run(name, func(t *testing.T) {
			res, err := Evaluate(m, nil, nil)
			require.NoError(t, err)
			assert.True(t, res.Matched)
			assert.Nil(t, res.Message)
		})
	}
}

func TestEvaluate_DoesNotMatch(t *testing.T) {
	t.Run("bool", func(t *testing.T) {
		res, err := Evaluate(BoolFunc(func(a, b *request.Request) bool { return false }), nil, nil)
		require.NoError(t, err)
		assert.False(t, res.Matched)
		assert.Nil(t, res.Message)
	})

	t.Run("assertion without message", func(t *testing.T) {
		res, err := Evaluate(AssertFunc(func(a, b *request.Request) error { return Fail("") }), nil, nil)
		require.NoError(t, err)
		assert.False(t, res.Matched)
		require.NotNil(t, res.Message)
		assert.Empty(t, *res.Message)
	})

	t.Run("assertion with message", func(t *testing.T) {
		res, err := Evaluate(AssertFunc(func(a, b *request.Request) error { return Fail("Failing matcher") }), nil, nil)
		require.NoError(t, err)
		assert.False(t, res.Matched)
		require.NotNil(t, res.Message)
		assert.Equal(t, "Failing matcher", *res.Message)
	})

	t.Run("wrapped assertion", func(t *testing.T) {
		res, err := Evaluate(AssertFunc(func(a, b *request.Request) error {
			return errors.Join(errors.New("context"), Fail("inner"))
		}), nil, nil)
		require.NoError(t, err)
		assert.False(t, res.Matched)
		assert.Equal(t, "inner", *res.Message)
	})
}

func TestEvaluate_UnexpectedFailures(t *testing.T) {
	boom := errors.New("boom")

	t.Run("plain error", func(t *testing.T) {
		_, err := Evaluate(AssertFunc(func(a, b *request.Request) error { return boom }), nil, nil)
		var mee *MatcherEvaluationError
		require.ErrorAs(t, err, &mee)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("panic", func(t *testing.T) {
		_, err := Evaluate(BoolFunc(func(a, b *request.Request) bool { panic("kaput") }), nil, nil)
		var mee *MatcherEvaluationError
		require.ErrorAs(t, err, &mee)
		assert.Contains(t, err.Error(), "kaput")
	})

	t.Run("nil matcher", func(t *testing.T) {
		_, err := Evaluate(nil, nil, nil)
		var mee *MatcherEvaluationError
		assert.ErrorAs(t, err, &mee)
	})
}

func TestDetails(t *testing.T) {
	assert.Equal(t, "", FormatDetails(nil))
	empty := ""
	assert.Equal(t, "", FormatDetails(&empty))
	assert.Equal(t, "", Details(""))

	msg := "q1=1 != q2=1"
	expected := "--------------- DETAILS ---------------\n" +
		msg + "\n" +
		"----------------------------------------\n"
	assert.Equal(t, expected, Details(msg))
	assert.Equal(t, expected, FormatDetails(&msg))
}

func TestFail(t *testing.T) {
	err := Fail("%s != %s", "GET", "POST")
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "GET != POST", ae.Message)

	assert.Equal(t, "100%", Fail("%s", "100%").(*AssertionError).Message)
	assert.Equal(t, "assertion failed", Fail("").Error())
}
