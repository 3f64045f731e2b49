package persister

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/getmockd/vcr/pkg/cassette"
)

// Memory keeps cassettes in memory. It is safe for concurrent use.
type Memory struct {
	mu        sync.RWMutex
	cassettes map[string][]*cassette.Interaction
}

// NewMemory returns an empty in-memory persister.
func NewMemory() *Memory {
	return &Memory{cassettes: make(map[string][]*cassette.Interaction)}
}

// Load implements cassette.Persister.
func (m *Memory) Load(_ context.Context, name string) ([]*cassette.Interaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored, ok := m.cassettes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", cassette.ErrCassetteNotFound, name)
	}
	return cloneInteractions(stored), nil
}

// Save implements cassette.Persister.
func (m *Memory) Save(_ context.Context, name string, interactions []*cassette.Interaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cassettes[name] = cloneInteractions(interactions)
	return nil
}

// Names returns the stored cassette names, sorted.
func (m *Memory) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.cassettes))
	for name := range m.cassettes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Delete removes a cassette.
func (m *Memory) Delete(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cassettes, name)
}

func cloneInteractions(in []*cassette.Interaction) []*cassette.Interaction {
	out := make([]*cassette.Interaction, len(in))
	for i, interaction := range in {
		out[i] = interaction.Clone()
	}
	return out
}
