package transport

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/getmockd/vcr/pkg/cassette"
)

// Interceptor routes one HTTP client stack through a cassette while active.
type Interceptor interface {
	Name() string
	// Activate starts routing through c. The returned func undoes it.
	Activate(c *cassette.Cassette) (release func())
}

// ClientInterceptor swaps the Transport of an *http.Client.
type ClientInterceptor struct {
	Client *http.Client
	Logger *slog.Logger

	mu sync.Mutex
}

// NewClientInterceptor returns an interceptor for client.
func NewClientInterceptor(client *http.Client) *ClientInterceptor {
	return &ClientInterceptor{Client: client}
}

// Name implements Interceptor.
func (i *ClientInterceptor) Name() string { return "http.Client" }

// Activate implements Interceptor. The client's previous Transport becomes
// the base for live calls.
func (i *ClientInterceptor) Activate(c *cassette.Cassette) func() {
	i.mu.Lock()
	prev := i.Client.Transport
	i.Client.Transport = &Transport{Cassette: c, Base: prev, Logger: i.Logger}
	i.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			i.mu.Lock()
			i.Client.Transport = prev
			i.mu.Unlock()
		})
	}
}

// Registry holds the interceptors activated for each cassette use.
type Registry struct {
	mu           sync.RWMutex
	interceptors []Interceptor
}

// NewRegistry returns a registry holding interceptors.
func NewRegistry(interceptors ...Interceptor) *Registry {
	return &Registry{interceptors: append([]Interceptor(nil), interceptors...)}
}

// Register adds an interceptor.
func (r *Registry) Register(i Interceptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.interceptors = append(r.interceptors, i)
}

// Names returns the registered interceptor names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.interceptors))
	for i, in := range r.interceptors {
		names[i] = in.Name()
	}
	return names
}

// Activate activates every registered interceptor for c. The returned func
// releases them in reverse order and is safe to call more than once.
func (r *Registry) Activate(c *cassette.Cassette) func() {
	r.mu.RLock()
	interceptors := append([]Interceptor(nil), r.interceptors...)
	r.mu.RUnlock()

	releases := make([]func(), 0, len(interceptors))
	for _, in := range interceptors {
		releases = append(releases, in.Activate(c))
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			for i := len(releases) - 1; i >= 0; i-- {
				releases[i]()
			}
		})
	}
}
