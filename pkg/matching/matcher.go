package matching

import (
	"errors"
	"fmt"

	"github.com/getmockd/vcr/pkg/request"
)

// Result is the outcome of comparing two requests.
type Result struct {
	Matched bool
	// Message is the mismatch explanation from an assertion-style matcher.
	// It is nil for boolean matchers and for matches.
	Message *string
}

// Matcher compares two requests. A non-nil error means the matcher itself
// failed, which is distinct from a mismatch.
type Matcher interface {
	Match(a, b *request.Request) (Result, error)
}

// BoolFunc adapts a boolean predicate to the Matcher interface.
type BoolFunc func(a, b *request.Request) bool

// Match implements Matcher.
func (f BoolFunc) Match(a, b *request.Request) (Result, error) {
	return Result{Matched: f(a, b)}, nil
}

// AssertFunc adapts an assertion-style predicate to the Matcher interface.
// Returning nil means the requests match. Returning an *AssertionError means
// they do not; any other error is reported as a MatcherEvaluationError.
type AssertFunc func(a, b *request.Request) error

// Match implements Matcher.
func (f AssertFunc) Match(a, b *request.Request) (Result, error) {
	err := f(a, b)
	if err == nil {
		return Result{Matched: true}, nil
	}
	var ae *AssertionError
	if errors.As(err, &ae) {
		msg := ae.Message
		return Result{Matched: false, Message: &msg}, nil
	}
	return Result{}, &MatcherEvaluationError{Err: err}
}

// AssertionError signals a mismatch from an AssertFunc.
type AssertionError struct {
	Message string
}

func (e *AssertionError) Error() string {
	if e.Message == "" {
		return "assertion failed"
	}
	return e.Message
}

// Fail returns an *AssertionError with a formatted message. Fail("") yields a
// mismatch with an empty message.
func Fail(format string, args ...any) error {
	if len(args) == 0 {
		return &AssertionError{Message: format}
	}
	return &AssertionError{Message: fmt.Sprintf(format, args...)}
}

// MatcherEvaluationError reports a matcher that failed for a reason other
// than a mismatch, including a recovered panic.
type MatcherEvaluationError struct {
	Matcher string
	Err     error
}

func (e *MatcherEvaluationError) Error() string {
	if e.Matcher == "" {
		return fmt.Sprintf("matcher evaluation failed: %v", e.Err)
	}
	return fmt.Sprintf("matcher %q evaluation failed: %v", e.Matcher, e.Err)
}

func (e *MatcherEvaluationError) Unwrap() error { return e.Err }

// Evaluate runs m against a and b and normalizes the outcome. A panic inside
// the matcher is converted into a MatcherEvaluationError.
func Evaluate(m Matcher, a, b *request.Request) (res Result, err error) {
	if m == nil {
		return Result{}, &MatcherEvaluationError{Err: errors.New("nil matcher")}
	}
	defer func() {
		if p := recover(); p != nil {
			res = Result{}
			err = &MatcherEvaluationError{Err: fmt.Errorf("panic: %v", p)}
		}
	}()

	res, err = m.Match(a, b)
	if err != nil {
		var mee *MatcherEvaluationError
		if !errors.As(err, &mee) {
			err = &MatcherEvaluationError{Err: err}
		}
		return Result{}, err
	}
	return res, nil
}

const (
	detailsHeader = "--------------- DETAILS ---------------\n"
	detailsFooter = "----------------------------------------\n"
)

// Details wraps a mismatch message in the delimiter block used by no-match
// reports. An empty message yields an empty string.
func Details(msg string) string {
	if msg == "" {
		return ""
	}
	return detailsHeader + msg + "\n" + detailsFooter
}

// FormatDetails is Details for an optional message.
func FormatDetails(msg *string) string {
	if msg == nil {
		return ""
	}
	return Details(*msg)
}
