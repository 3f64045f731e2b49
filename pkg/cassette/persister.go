package cassette

import "context"

// Persister loads and saves the interactions of named cassettes.
//
// Load returns ErrCassetteNotFound when nothing is stored under name.
// Interactions are returned and accepted in recording order.
type Persister interface {
	Load(ctx context.Context, name string) ([]*Interaction, error)
	Save(ctx context.Context, name string, interactions []*Interaction) error
}
