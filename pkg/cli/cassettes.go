package cli

import (
	"fmt"

	"github.com/getmockd/vcr/pkg/cassette"
	"github.com/getmockd/vcr/pkg/persister"
)

// readCassette loads a cassette file in any supported format.
func readCassette(path string) ([]*cassette.Interaction, error) {
	doc, err := persister.ReadFile(path)
	if err != nil {
		return nil, err
	}
	interactions, err := doc.ToInteractions()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return interactions, nil
}

// interactionSummary is the one-line view of an interaction.
type interactionSummary struct {
	Index      int    `json:"index"`
	ID         string `json:"id,omitempty"`
	Method     string `json:"method"`
	URI        string `json:"uri"`
	Status     int    `json:"status"`
	RecordedAt string `json:"recorded_at,omitempty"`
}

func summarize(i int, in *cassette.Interaction) interactionSummary {
	s := interactionSummary{
		Index:  i,
		ID:     in.ID,
		Method: in.Request.Method(),
		URI:    in.Request.URL(),
	}
	if in.Response != nil {
		s.Status = in.Response.StatusCode
	}
	if !in.RecordedAt.IsZero() {
		s.RecordedAt = in.RecordedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return s
}
