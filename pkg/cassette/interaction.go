package cassette

import (
	"bytes"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/getmockd/vcr/pkg/request"
)

// Response is a recorded HTTP response.
type Response struct {
	StatusCode int
	Status     string
	Headers    http.Header
	Body       []byte
}

// Clone returns a deep copy of the response.
func (r *Response) Clone() *Response {
	if r == nil {
		return nil
	}
	return &Response{
		StatusCode: r.StatusCode,
		Status:     r.Status,
		Headers:    r.Headers.Clone(),
		Body:       bytes.Clone(r.Body),
	}
}

// Interaction pairs a recorded request with the response it received.
type Interaction struct {
	ID         string
	Request    *request.Request
	Response   *Response
	RecordedAt time.Time
}

// NewInteraction creates an interaction with a fresh ID, recorded now.
func NewInteraction(req *request.Request, resp *Response) *Interaction {
	return &Interaction{
		ID:         uuid.NewString(),
		Request:    req,
		Response:   resp,
		RecordedAt: time.Now().UTC(),
	}
}

// Clone returns a copy of the interaction with its response deep-copied.
// Requests are immutable and shared.
func (i *Interaction) Clone() *Interaction {
	if i == nil {
		return nil
	}
	c := *i
	c.Response = i.Response.Clone()
	return &c
}
