package cassette

import (
	"log/slog"

	"github.com/getmockd/vcr/pkg/matching"
	"github.com/getmockd/vcr/pkg/request"
)

// RequestFilter rewrites a request before it is matched or recorded.
// Returning nil ignores the request: it is never played and never recorded.
type RequestFilter func(*request.Request) *request.Request

// ResponseFilter rewrites a response before it is recorded. It receives a
// copy it may modify. Returning nil skips recording the interaction.
type ResponseFilter func(*Response) *Response

// Options configures a cassette.
type Options struct {
	Mode                 Mode
	MatchOn              []string
	Registry             *matching.Registry
	Persister            Persister
	Logger               *slog.Logger
	AllowPlaybackRepeats bool
	DropUnused           bool
	BeforeRecordRequest  []RequestFilter
	BeforeRecordResponse []ResponseFilter
}

// Option applies a configuration to Options.
type Option func(*Options)

// WithMode sets the record mode.
func WithMode(m Mode) Option {
	return func(o *Options) { o.Mode = m }
}

// WithMatchers sets the matcher set by name. An empty list keeps the default
// set.
func WithMatchers(names ...string) Option {
	return func(o *Options) { o.MatchOn = append([]string(nil), names...) }
}

// WithRegistry sets the registry matcher names are resolved against.
func WithRegistry(r *matching.Registry) Option {
	return func(o *Options) { o.Registry = r }
}

// WithPersister sets where interactions are loaded from and saved to.
func WithPersister(p Persister) Option {
	return func(o *Options) { o.Persister = p }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithAllowPlaybackRepeats lets an interaction be played more than once.
func WithAllowPlaybackRepeats(allow bool) Option {
	return func(o *Options) { o.AllowPlaybackRepeats = allow }
}

// WithDropUnused drops loaded interactions that were never played when the
// cassette is saved.
func WithDropUnused(drop bool) Option {
	return func(o *Options) { o.DropUnused = drop }
}

// WithBeforeRecordRequest appends request filters. Filters run in order.
func WithBeforeRecordRequest(filters ...RequestFilter) Option {
	return func(o *Options) { o.BeforeRecordRequest = append(o.BeforeRecordRequest, filters...) }
}

// WithBeforeRecordResponse appends response filters. Filters run in order.
func WithBeforeRecordResponse(filters ...ResponseFilter) Option {
	return func(o *Options) { o.BeforeRecordResponse = append(o.BeforeRecordResponse, filters...) }
}
