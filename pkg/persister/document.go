package persister

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/getmockd/vcr/pkg/cassette"
	"github.com/getmockd/vcr/pkg/request"
)

// FormatVersion is the cassette document version written by this package.
const FormatVersion = 1

// Body encodings.
const (
	EncodingText   = ""
	EncodingBase64 = "base64"
)

// Document is the serialized form of a cassette.
type Document struct {
	Version      int                   `json:"version" yaml:"version"`
	Interactions []RecordedInteraction `json:"interactions" yaml:"interactions"`
}

// RecordedInteraction is one serialized request/response pair.
type RecordedInteraction struct {
	ID         string           `json:"id,omitempty" yaml:"id,omitempty"`
	RecordedAt time.Time        `json:"recorded_at" yaml:"recorded_at"`
	Request    RecordedRequest  `json:"request" yaml:"request"`
	Response   RecordedResponse `json:"response" yaml:"response"`
}

// RecordedRequest is a serialized request.
type RecordedRequest struct {
	Method  string              `json:"method" yaml:"method"`
	URI     string              `json:"uri" yaml:"uri"`
	Headers map[string][]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body    Body                `json:"body" yaml:"body"`
}

// RecordedResponse is a serialized response.
type RecordedResponse struct {
	Status  Status              `json:"status" yaml:"status"`
	Headers map[string][]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body    Body                `json:"body" yaml:"body"`
}

// Status is a response status line.
type Status struct {
	Code    int    `json:"code" yaml:"code"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// Body holds a payload as text, or base64 when it is not valid UTF-8.
type Body struct {
	Encoding string `json:"encoding,omitempty" yaml:"encoding,omitempty"`
	String   string `json:"string" yaml:"string"`
}

// NewBody encodes data.
func NewBody(data []byte) Body {
	if utf8.Valid(data) {
		return Body{String: string(data)}
	}
	return Body{Encoding: EncodingBase64, String: base64.StdEncoding.EncodeToString(data)}
}

// Bytes decodes the payload.
func (b Body) Bytes() ([]byte, error) {
	switch b.Encoding {
	case EncodingText:
		if b.String == "" {
			return nil, nil
		}
		return []byte(b.String), nil
	case EncodingBase64:
		return base64.StdEncoding.DecodeString(b.String)
	default:
		return nil, fmt.Errorf("unknown body encoding %q", b.Encoding)
	}
}

// ToDocument converts interactions into their serialized form.
func ToDocument(interactions []*cassette.Interaction) *Document {
	doc := &Document{
		Version:      FormatVersion,
		Interactions: make([]RecordedInteraction, 0, len(interactions)),
	}
	for _, in := range interactions {
		ri := RecordedInteraction{
			ID:         in.ID,
			RecordedAt: in.RecordedAt,
			Request: RecordedRequest{
				Method:  in.Request.Method(),
				URI:     in.Request.URL(),
				Headers: headerMap(in.Request.Headers()),
				Body:    NewBody(in.Request.Body()),
			},
		}
		if resp := in.Response; resp != nil {
			ri.Response = RecordedResponse{
				Status:  Status{Code: resp.StatusCode, Message: resp.Status},
				Headers: headerMap(resp.Headers),
				Body:    NewBody(resp.Body),
			}
		}
		doc.Interactions = append(doc.Interactions, ri)
	}
	return doc
}

// ToInteractions converts the document back into cassette interactions.
func (d *Document) ToInteractions() ([]*cassette.Interaction, error) {
	if d.Version > FormatVersion {
		return nil, fmt.Errorf("unsupported cassette version %d", d.Version)
	}
	out := make([]*cassette.Interaction, 0, len(d.Interactions))
	for i, ri := range d.Interactions {
		reqBody, err := ri.Request.Body.Bytes()
		if err != nil {
			return nil, fmt.Errorf("interaction %d: request body: %w", i, err)
		}
		req, err := request.New(ri.Request.Method, ri.Request.URI, reqBody, http.Header(ri.Request.Headers))
		if err != nil {
			return nil, fmt.Errorf("interaction %d: %w", i, err)
		}
		respBody, err := ri.Response.Body.Bytes()
		if err != nil {
			return nil, fmt.Errorf("interaction %d: response body: %w", i, err)
		}
		out = append(out, &cassette.Interaction{
			ID:         ri.ID,
			RecordedAt: ri.RecordedAt,
			Request:    req,
			Response: &cassette.Response{
				StatusCode: ri.Response.Status.Code,
				Status:     ri.Response.Status.Message,
				Headers:    http.Header(ri.Response.Headers).Clone(),
				Body:       respBody,
			},
		})
	}
	return out, nil
}

func headerMap(h http.Header) map[string][]string {
	if len(h) == 0 {
		return nil
	}
	return map[string][]string(h.Clone())
}
