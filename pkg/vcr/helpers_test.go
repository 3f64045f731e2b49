package vcr

import (
	"context"
	"errors"
	"testing"

	"github.com/getmockd/vcr/pkg/cassette"
	"github.com/getmockd/vcr/pkg/request"
)

var errDiskFull = errors.New("disk full")

type failingPersister struct{}

func (failingPersister) Load(context.Context, string) ([]*cassette.Interaction, error) {
	return nil, cassette.ErrCassetteNotFound
}

func (failingPersister) Save(context.Context, string, []*cassette.Interaction) error {
	return errDiskFull
}

func mustRequest(t *testing.T) *request.Request {
	t.Helper()
	r, err := request.New("GET", "http://host.com/", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	return r
}
