package matching

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/getmockd/vcr/pkg/request"
)

// Registry errors.
var (
	ErrUnknownMatcher  = errors.New("unknown matcher")
	ErrEmptyMatcherSet = errors.New("matcher set is empty")
	ErrInvalidMatcher  = errors.New("invalid matcher")
)

// DefaultMatchOn is the matcher set used when none is configured.
var DefaultMatchOn = []string{"method", "scheme", "host", "port", "path", "query"}

// Named is one member of a resolved matcher set.
type Named struct {
	Name    string
	Matcher Matcher
}

// Failure identifies the matcher that rejected a pair of requests.
type Failure struct {
	Matcher string `json:"matcher"`
	Message string `json:"message,omitempty"`
}

// Details returns the failure message wrapped in the details block.
func (f Failure) Details() string {
	return Details(f.Message)
}

// Registry maps matcher names to matchers. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	matchers map[string]Matcher
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{matchers: make(map[string]Matcher)}
}

// Default returns a new registry holding every built-in matcher.
func Default() *Registry {
	r := NewRegistry()
	for name, m := range builtins() {
		r.matchers[name] = m
	}
	return r
}

// Register adds or replaces the matcher stored under name.
func (r *Registry) Register(name string, m Matcher) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidMatcher)
	}
	if m == nil {
		return fmt.Errorf("%w: %q is nil", ErrInvalidMatcher, name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matchers[name] = m
	return nil
}

// RegisterFunc registers a boolean predicate under name.
func (r *Registry) RegisterFunc(name string, f func(a, b *request.Request) bool) error {
	if f == nil {
		return fmt.Errorf("%w: %q is nil", ErrInvalidMatcher, name)
	}
	return r.Register(name, BoolFunc(f))
}

// Lookup returns the matcher registered under name.
func (r *Registry) Lookup(name string) (Matcher, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.matchers[name]
	return m, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.matchers))
	for name := range r.matchers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve turns an ordered list of names into a matcher set. Every name must
// be registered and the list must not be empty.
func (r *Registry) Resolve(names ...string) ([]Named, error) {
	if len(names) == 0 {
		return nil, ErrEmptyMatcherSet
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := make([]Named, 0, len(names))
	for _, name := range names {
		m, ok := r.matchers[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownMatcher, name)
		}
		set = append(set, Named{Name: name, Matcher: m})
	}
	return set, nil
}

// MatchAll reports whether every matcher in set accepts the pair. Evaluation
// follows set order and stops at the first mismatch, which is returned.
func MatchAll(set []Named, a, b *request.Request) (bool, *Failure, error) {
	for _, n := range set {
		res, err := evaluateNamed(n, a, b)
		if err != nil {
			return false, nil, err
		}
		if !res.Matched {
			f := &Failure{Matcher: n.Name}
			if res.Message != nil {
				f.Message = *res.Message
			}
			return false, f, nil
		}
	}
	return true, nil, nil
}

func evaluateNamed(n Named, a, b *request.Request) (Result, error) {
	res, err := Evaluate(n.Matcher, a, b)
	if err != nil {
		var mee *MatcherEvaluationError
		if errors.As(err, &mee) && mee.Matcher == "" {
			mee.Matcher = n.Name
		}
		return Result{}, err
	}
	return res, nil
}
