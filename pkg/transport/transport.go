// Package transport connects cassettes to HTTP clients.
package transport

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/getmockd/vcr/pkg/cassette"
	"github.com/getmockd/vcr/pkg/logging"
	"github.com/getmockd/vcr/pkg/request"
)

// DefaultMaxBodySize is the default maximum response body size to record (10MB).
const DefaultMaxBodySize = 10 * 1024 * 1024

// ErrBodyTooLarge is returned when a live response body exceeds MaxBodySize.
var ErrBodyTooLarge = errors.New("response body too large to record")

// Transport is an http.RoundTripper that plays requests back from a
// cassette, or performs them with Base and records the result.
type Transport struct {
	Cassette *cassette.Cassette
	// Base performs live calls. Defaults to http.DefaultTransport.
	Base   http.RoundTripper
	Logger *slog.Logger
	// MaxBodySize bounds recorded response bodies. Defaults to
	// DefaultMaxBodySize.
	MaxBodySize int64
}

// NewTransport returns a Transport playing through c.
func NewTransport(c *cassette.Cassette, base http.RoundTripper) *Transport {
	return &Transport{Cassette: c, Base: base}
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *Transport) logger() *slog.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return logging.Nop()
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	c := t.Cassette
	// FromHTTP buffers and replaces the body; the caller's request stays as given.
	outbound := req.Clone(req.Context())
	r, err := request.FromHTTP(outbound)
	if err != nil {
		return nil, fmt.Errorf("vcr: %w", err)
	}

	if c.Ignored(r) {
		return t.base().RoundTrip(outbound)
	}

	ok, err := c.CanPlay(r)
	if err != nil {
		return nil, err
	}
	if ok {
		resp, err := c.Play(r)
		switch {
		case err == nil:
			return toHTTP(req, resp), nil
		case !errors.Is(err, cassette.ErrNoMatch):
			return nil, err
		}
		// Another caller took the interaction between CanPlay and Play.
	}

	if c.WriteProtected() {
		return nil, c.NoMatch(r)
	}

	return t.live(req, outbound, r)
}

func (t *Transport) live(req, outbound *http.Request, r *request.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.base().RoundTrip(outbound)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	limit := t.MaxBodySize
	if limit <= 0 {
		limit = DefaultMaxBodySize
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrBodyTooLarge, r, limit)
	}

	recorded := &cassette.Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Headers:    resp.Header.Clone(),
		Body:       body,
	}
	if err := t.Cassette.Record(r, recorded); err != nil {
		return nil, err
	}
	t.logger().Debug("recorded live call",
		"cassette", t.Cassette.Name(),
		"method", r.Method(),
		"url", r.URL(),
		"status", resp.StatusCode,
		"duration", time.Since(start))

	out := *resp
	out.Body = io.NopCloser(bytes.NewReader(body))
	out.ContentLength = int64(len(body))
	out.Request = req
	return &out, nil
}

// toHTTP builds the response a client sees for a played interaction.
func toHTTP(req *http.Request, resp *cassette.Response) *http.Response {
	status := resp.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	header := resp.Headers.Clone()
	if header == nil {
		header = make(http.Header)
	}
	return &http.Response{
		Status:        status,
		StatusCode:    resp.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(resp.Body)),
		ContentLength: int64(len(resp.Body)),
		Request:       req,
	}
}
