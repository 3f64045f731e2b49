package cassette

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/getmockd/vcr/pkg/logging"
	"github.com/getmockd/vcr/pkg/matching"
	"github.com/getmockd/vcr/pkg/request"
)

// Stats counts what happened to a cassette's interactions.
type Stats struct {
	Loaded   int `json:"loaded"`
	Recorded int `json:"recorded"`
	Played   int `json:"played"`
}

// Cassette holds the interactions of one named recording and decides, per
// request, whether to play back, record, or fail. It is safe for concurrent
// use.
type Cassette struct {
	name string
	opts Options
	set  []matching.Named
	log  *slog.Logger

	mu           sync.Mutex
	interactions []*Interaction
	playCounts   []int
	loaded       int // interactions[:loaded] came from the persister
	rewound      bool
	dirty        bool
	recorded     int
	played       int
	closed       bool
}

// New creates an empty cassette. The matcher set is resolved once and is
// fixed for the cassette's lifetime.
func New(name string, opts ...Option) (*Cassette, error) {
	if name == "" {
		return nil, ErrInvalidName
	}

	o := Options{Mode: DefaultMode}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.Mode.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, o.Mode)
	}
	if o.Registry == nil {
		o.Registry = matching.Default()
	}
	if len(o.MatchOn) == 0 {
		o.MatchOn = append([]string(nil), matching.DefaultMatchOn...)
	}
	if o.Logger == nil {
		o.Logger = logging.Nop()
	}

	set, err := o.Registry.Resolve(o.MatchOn...)
	if err != nil {
		return nil, fmt.Errorf("cassette %q: %w", name, err)
	}

	return &Cassette{
		name: name,
		opts: o,
		set:  set,
		log:  o.Logger.With("cassette", name),
	}, nil
}

// Load creates a cassette and fills it from its persister. A cassette that
// is not stored yet starts empty. In ModeAll nothing is loaded.
func Load(ctx context.Context, name string, opts ...Option) (*Cassette, error) {
	c, err := New(name, opts...)
	if err != nil {
		return nil, err
	}
	if c.opts.Mode == ModeAll || c.opts.Persister == nil {
		return c, nil
	}

	interactions, err := c.opts.Persister.Load(ctx, name)
	if errors.Is(err, ErrCassetteNotFound) {
		c.log.Debug("cassette not stored yet", "mode", c.opts.Mode)
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cassette %q: %w", name, err)
	}

	c.interactions = interactions
	c.playCounts = make([]int, len(interactions))
	c.loaded = len(interactions)
	c.rewound = true
	c.log.Debug("cassette loaded", "interactions", len(interactions), "mode", c.opts.Mode)
	return c, nil
}

// Name returns the cassette name.
func (c *Cassette) Name() string { return c.name }

// Mode returns the record mode.
func (c *Cassette) Mode() Mode { return c.opts.Mode }

// Matchers returns the names of the active matcher set in evaluation order.
func (c *Cassette) Matchers() []string {
	names := make([]string, len(c.set))
	for i, n := range c.set {
		names[i] = n.Name
	}
	return names
}

// Rewound reports whether the cassette was loaded from storage.
func (c *Cassette) Rewound() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rewound
}

// WriteProtected reports whether Record is refused: always in ModeNone, and
// in ModeOnce once the cassette was loaded from storage.
func (c *Cassette) WriteProtected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writeProtectedLocked()
}

func (c *Cassette) writeProtectedLocked() bool {
	return c.opts.Mode == ModeNone || (c.opts.Mode == ModeOnce && c.rewound)
}

// Ignored reports whether the request filters drop r. Ignored requests are
// neither played nor recorded.
func (c *Cassette) Ignored(r *request.Request) bool {
	return c.filterRequest(r) == nil
}

func (c *Cassette) filterRequest(r *request.Request) *request.Request {
	for _, f := range c.opts.BeforeRecordRequest {
		if r = f(r); r == nil {
			return nil
		}
	}
	return r
}

func (c *Cassette) filterResponse(resp *Response) *Response {
	for _, f := range c.opts.BeforeRecordResponse {
		if resp = f(resp); resp == nil {
			return nil
		}
	}
	return resp
}

func (c *Cassette) canPlayLocked() bool {
	return c.opts.Mode != ModeAll && c.rewound
}

func (c *Cassette) eligible(i int) bool {
	return c.playCounts[i] == 0 || c.opts.AllowPlaybackRepeats
}

// locate returns the index of the first eligible interaction matching r, or
// -1. The caller holds c.mu.
func (c *Cassette) locate(r *request.Request) (int, error) {
	for i, in := range c.interactions {
		if !c.eligible(i) {
			continue
		}
		ok, _, err := matching.MatchAll(c.set, r, in.Request)
		if err != nil {
			return -1, err
		}
		if ok {
			return i, nil
		}
	}
	return -1, nil
}

// CanPlay reports whether Play would serve r. It is always false in ModeAll
// and for cassettes that were not loaded from storage.
func (c *Cassette) CanPlay(r *request.Request) (bool, error) {
	fr := c.filterRequest(r)
	if fr == nil {
		return false, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.canPlayLocked() {
		return false, nil
	}
	idx, err := c.locate(fr)
	return idx >= 0, err
}

// Play serves the first eligible interaction matching r and counts it as
// played. Selection and counting happen atomically, so concurrent callers
// never receive the same single-use interaction. When nothing can be played
// Play returns a *NoMatchError.
func (c *Cassette) Play(r *request.Request) (*Response, error) {
	fr := c.filterRequest(r)

	c.mu.Lock()
	defer c.mu.Unlock()

	if fr != nil && c.canPlayLocked() {
		idx, err := c.locate(fr)
		if err != nil {
			return nil, err
		}
		if idx >= 0 {
			c.playCounts[idx]++
			c.played++
			c.log.Debug("played interaction", "request", fr.String(), "index", idx, "plays", c.playCounts[idx])
			return c.interactions[idx].Response.Clone(), nil
		}
	}

	if fr == nil {
		fr = r
	}
	return nil, c.noMatchLocked(fr)
}

// Record appends an interaction for r and resp after running the filters.
// It returns a *RecordingForbiddenError when the cassette is write
// protected. Filtered-out requests and responses are silently skipped.
func (c *Cassette) Record(r *request.Request, resp *Response) error {
	c.mu.Lock()
	protected := c.writeProtectedLocked()
	c.mu.Unlock()
	if protected {
		return &RecordingForbiddenError{Cassette: c.name, Mode: c.opts.Mode}
	}

	if resp == nil {
		return fmt.Errorf("cassette %q: record %s: nil response", c.name, r)
	}

	fr := c.filterRequest(r)
	if fr == nil {
		return nil
	}
	fresp := c.filterResponse(resp.Clone())
	if fresp == nil {
		c.log.Debug("response filtered, not recording", "request", fr.String())
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.interactions = append(c.interactions, NewInteraction(fr, fresp))
	c.playCounts = append(c.playCounts, 0)
	c.dirty = true
	c.recorded++
	c.log.Debug("recorded interaction", "request", fr.String(), "status", fresp.StatusCode)
	return nil
}

// NoMatch builds the error reported when r cannot be played and the
// cassette may not record it. The error lists the closest eligible
// interactions.
func (c *Cassette) NoMatch(r *request.Request) error {
	fr := c.filterRequest(r)
	if fr == nil {
		fr = r
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.noMatchLocked(fr)
}

func (c *Cassette) noMatchLocked(r *request.Request) error {
	var (
		candidates []*request.Request
		indexes    []int
	)
	for i, in := range c.interactions {
		if c.eligible(i) {
			candidates = append(candidates, in.Request)
			indexes = append(indexes, i)
		}
	}

	closest, err := matching.Closest(c.set, r, candidates)
	if err != nil {
		return err
	}
	for i := range closest {
		closest[i].Index = indexes[closest[i].Index]
	}

	c.log.Debug("no matching interaction", "request", r.String(), "candidates", len(candidates), "closest", len(closest))
	return &NoMatchError{
		Cassette: c.name,
		Mode:     c.opts.Mode,
		Request:  r,
		Closest:  closest,
	}
}

// Responses returns the responses of every interaction matching r, played
// or not, in recording order.
func (c *Cassette) Responses(r *request.Request) ([]*Response, error) {
	fr := c.filterRequest(r)
	if fr == nil {
		return nil, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*Response
	for _, in := range c.interactions {
		ok, _, err := matching.MatchAll(c.set, fr, in.Request)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, in.Response.Clone())
		}
	}
	return out, nil
}

// Interactions returns a copy of the interactions in recording order.
func (c *Cassette) Interactions() []*Interaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Interaction, len(c.interactions))
	for i, in := range c.interactions {
		out[i] = in.Clone()
	}
	return out
}

// Len returns the number of interactions.
func (c *Cassette) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.interactions)
}

// PlayCount returns how often interaction i was played.
func (c *Cassette) PlayCount(i int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.playCounts) {
		return 0
	}
	return c.playCounts[i]
}

// TotalPlays returns the number of plays across all interactions.
func (c *Cassette) TotalPlays() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.played
}

// AllPlayed reports whether every interaction was played at least once.
func (c *Cassette) AllPlayed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, n := range c.playCounts {
		if n == 0 {
			return false
		}
	}
	return true
}

// Stats returns the cassette counters.
func (c *Cassette) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Loaded: c.loaded, Recorded: c.recorded, Played: c.played}
}

// Save persists the interactions if anything was recorded. With drop-unused
// enabled, loaded interactions that were never played are left out and the
// cassette is rewritten whenever that removes something.
func (c *Cassette) Save(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.save(ctx)
}

func (c *Cassette) save(ctx context.Context) error {
	if c.opts.Persister == nil {
		return nil
	}

	out := make([]*Interaction, 0, len(c.interactions))
	dropped := 0
	for i, in := range c.interactions {
		if c.opts.DropUnused && i < c.loaded && c.playCounts[i] == 0 {
			dropped++
			continue
		}
		out = append(out, in)
	}
	if !c.dirty && dropped == 0 {
		return nil
	}

	if err := c.opts.Persister.Save(ctx, c.name, out); err != nil {
		return fmt.Errorf("failed to save cassette %q: %w", c.name, err)
	}
	c.dirty = false
	c.log.Debug("cassette saved", "interactions", len(out), "dropped", dropped)
	return nil
}

// Close saves the cassette. Calls after the first successful one are no-ops;
// a failed save is retried by the next Close.
func (c *Cassette) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	if err := c.save(ctx); err != nil {
		return err
	}
	c.closed = true
	return nil
}
