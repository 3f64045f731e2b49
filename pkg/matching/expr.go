package matching

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/getmockd/vcr/pkg/request"
)

// ExprRequest is the view of a request exposed to expression matchers as
// the variables a and b. Query and Headers hold the first value per name.
type ExprRequest struct {
	Method  string
	Scheme  string
	Host    string
	Port    int
	Path    string
	Query   map[string]string
	Headers map[string]string
	Body    string
}

func exprView(r *request.Request) ExprRequest {
	headers := make(map[string]string)
	for name := range r.Headers() {
		headers[name] = r.Header(name)
	}
	query := make(map[string]string)
	for k, v := range r.QueryValues() {
		query[k] = v[0]
	}
	return ExprRequest{
		Method:  r.Method(),
		Scheme:  r.Scheme(),
		Host:    r.Host(),
		Port:    r.Port(),
		Path:    r.Path(),
		Query:   query,
		Headers: headers,
		Body:    r.BodyString(),
	}
}

// ExprMatcher evaluates a boolean expr-lang program over two requests.
type ExprMatcher struct {
	source  string
	program *vm.Program
}

// CompileExpr compiles src into a matcher. The expression sees the two
// requests as a and b, for example:
//
//	a.Headers["X-Tenant"] == b.Headers["X-Tenant"]
//
// The expression should treat a and b symmetrically.
func CompileExpr(src string) (*ExprMatcher, error) {
	env := map[string]any{"a": ExprRequest{}, "b": ExprRequest{}}
	program, err := expr.Compile(src, expr.Env(env), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile matcher expression %q: %w", src, err)
	}
	return &ExprMatcher{source: src, program: program}, nil
}

// Source returns the expression text.
func (m *ExprMatcher) Source() string { return m.source }

// Match implements Matcher.
func (m *ExprMatcher) Match(a, b *request.Request) (Result, error) {
	env := map[string]any{"a": exprView(a), "b": exprView(b)}
	out, err := expr.Run(m.program, env)
	if err != nil {
		return Result{}, &MatcherEvaluationError{Err: fmt.Errorf("eval %q: %w", m.source, err)}
	}
	matched, ok := out.(bool)
	if !ok {
		return Result{}, &MatcherEvaluationError{Err: fmt.Errorf("eval %q: result %T is not a bool", m.source, out)}
	}
	return Result{Matched: matched}, nil
}
