// Package vcr records HTTP interactions made by code under test and replays
// them on later runs.
//
//	v, err := vcr.New(cfg)
//	...
//	err = v.Use(ctx, "github/list_repos", func(c *cassette.Cassette, client *http.Client) error {
//		resp, err := client.Get("https://api.github.com/users/octocat/repos")
//		...
//	})
//
// The cassette is always saved when Use returns, including on error.
package vcr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/getmockd/vcr/pkg/cassette"
	"github.com/getmockd/vcr/pkg/config"
	"github.com/getmockd/vcr/pkg/logging"
	"github.com/getmockd/vcr/pkg/matching"
	"github.com/getmockd/vcr/pkg/persister"
	"github.com/getmockd/vcr/pkg/transport"
)

// VCR creates cassettes from one configuration.
type VCR struct {
	cfg          *config.Config
	registry     *matching.Registry
	persister    cassette.Persister
	logger       *slog.Logger
	interceptors *transport.Registry
	base         http.RoundTripper
}

// Option configures a VCR.
type Option func(*VCR)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(v *VCR) { v.logger = l }
}

// WithPersister replaces the file-system persister.
func WithPersister(p cassette.Persister) Option {
	return func(v *VCR) { v.persister = p }
}

// WithRegistry sets the matcher registry. Custom matchers from the
// configuration are added to it.
func WithRegistry(r *matching.Registry) Option {
	return func(v *VCR) { v.registry = r }
}

// WithInterceptor adds an interceptor activated by Use and UseT.
func WithInterceptor(i transport.Interceptor) Option {
	return func(v *VCR) { v.interceptors.Register(i) }
}

// WithBaseTransport sets the transport used for live calls.
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(v *VCR) { v.base = rt }
}

// New builds a VCR from cfg. A nil cfg uses config.Default.
func New(cfg *config.Config, opts ...Option) (*VCR, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	v := &VCR{cfg: cfg, interceptors: transport.NewRegistry()}
	for _, opt := range opts {
		opt(v)
	}

	if v.logger == nil {
		v.logger = logging.New(cfg.Logging())
	}
	if v.registry == nil {
		v.registry = matching.Default()
	}
	for name, src := range cfg.CustomMatchers {
		m, err := matching.CompileExpr(src)
		if err != nil {
			return nil, fmt.Errorf("custom matcher %q: %w", name, err)
		}
		if err := v.registry.Register(name, m); err != nil {
			return nil, err
		}
	}
	if v.persister == nil {
		s, err := persister.SerializerFor(cfg.Serializer)
		if err != nil {
			return nil, err
		}
		v.persister = persister.NewFileSystem(cfg.CassetteDir, s)
	}
	return v, nil
}

// Config returns the configuration.
func (v *VCR) Config() *config.Config { return v.cfg }

// Registry returns the matcher registry.
func (v *VCR) Registry() *matching.Registry { return v.registry }

// Persister returns the persister cassettes are loaded from.
func (v *VCR) Persister() cassette.Persister { return v.persister }

// CassetteOptions translates the configuration into cassette options.
func (v *VCR) CassetteOptions() []cassette.Option {
	cfg := v.cfg
	mode, _ := cfg.Mode()

	opts := []cassette.Option{
		cassette.WithMode(mode),
		cassette.WithMatchers(cfg.MatchOn...),
		cassette.WithRegistry(v.registry),
		cassette.WithPersister(v.persister),
		cassette.WithLogger(v.logger),
		cassette.WithAllowPlaybackRepeats(cfg.AllowPlaybackRepeats),
		cassette.WithDropUnused(cfg.DropUnused),
	}

	var reqFilters []cassette.RequestFilter
	if cfg.IgnoreLocalhost {
		reqFilters = append(reqFilters, cassette.IgnoreLocalhost())
	}
	if len(cfg.IgnoreHosts) > 0 {
		reqFilters = append(reqFilters, cassette.IgnoreHosts(cfg.IgnoreHosts...))
	}
	if len(cfg.FilterHeaders) > 0 {
		reqFilters = append(reqFilters, cassette.FilterHeaders(cfg.FilterHeaders...))
	}
	if len(cfg.FilterQueryParameters) > 0 {
		reqFilters = append(reqFilters, cassette.FilterQueryParameters(cfg.FilterQueryParameters...))
	}
	if len(cfg.FilterPostDataParameters) > 0 {
		reqFilters = append(reqFilters, cassette.FilterPostDataParameters(cfg.FilterPostDataParameters...))
	}
	if len(reqFilters) > 0 {
		opts = append(opts, cassette.WithBeforeRecordRequest(reqFilters...))
	}
	if cfg.DecodeCompressedResponse {
		opts = append(opts, cassette.WithBeforeRecordResponse(transport.DecodeCompressedResponse))
	}
	return opts
}

// Insert loads the named cassette with the configured defaults. opts are
// applied after them and win.
func (v *VCR) Insert(ctx context.Context, name string, opts ...cassette.Option) (*cassette.Cassette, error) {
	return cassette.Load(ctx, name, append(v.CassetteOptions(), opts...)...)
}

// Client returns an HTTP client whose calls go through c.
func (v *VCR) Client(c *cassette.Cassette) *http.Client {
	return &http.Client{Transport: &transport.Transport{Cassette: c, Base: v.base, Logger: v.logger}}
}

// Use loads the named cassette, activates the registered interceptors and
// runs fn. The interceptors are released and the cassette saved however fn
// returns; a save error is joined with fn's error.
func (v *VCR) Use(ctx context.Context, name string, fn func(*cassette.Cassette, *http.Client) error, opts ...cassette.Option) (err error) {
	c, err := v.Insert(ctx, name, opts...)
	if err != nil {
		return err
	}

	release := v.interceptors.Activate(c)
	defer func() {
		release()
		err = errors.Join(err, c.Close(ctx))
	}()

	return fn(c, v.Client(c))
}

// UseT loads the named cassette for the duration of a test and returns a
// client that goes through it. An empty name uses t.Name(). Cassette logs go
// to t.Log. The cassette is saved in t.Cleanup and a failed load or save
// fails the test.
func (v *VCR) UseT(t testing.TB, name string, opts ...cassette.Option) *http.Client {
	t.Helper()
	if name == "" {
		name = CassetteNameForTest(t.Name())
	}

	logger := slog.New(logging.Tee(v.logger.Handler(), logging.TBHandler(t, logging.LevelDebug)))
	opts = append([]cassette.Option{cassette.WithLogger(logger)}, opts...)

	ctx := context.Background()
	c, err := v.Insert(ctx, name, opts...)
	if err != nil {
		t.Fatalf("vcr: load cassette %q: %v", name, err)
	}

	release := v.interceptors.Activate(c)
	t.Cleanup(func() {
		release()
		if err := c.Close(ctx); err != nil {
			t.Errorf("vcr: save cassette %q: %v", name, err)
		}
	})

	return &http.Client{Transport: &transport.Transport{Cassette: c, Base: v.base, Logger: logger}}
}

// CassetteNameForTest turns a test name into a cassette name. Subtests become
// subdirectories.
func CassetteNameForTest(testName string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', ':', '\\', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, testName)
}
