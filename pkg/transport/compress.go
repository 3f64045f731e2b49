package transport

import (
	"bytes"
	"io"
	"strconv"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"

	"github.com/getmockd/vcr/pkg/cassette"
)

// DecodeCompressedResponse is a cassette.ResponseFilter that stores gzip,
// deflate and zstd bodies decoded, so cassettes stay readable. The
// Content-Encoding header is removed and Content-Length corrected. Bodies
// that fail to decode are recorded unchanged.
func DecodeCompressedResponse(resp *cassette.Response) *cassette.Response {
	encoding := strings.ToLower(strings.TrimSpace(resp.Headers.Get("Content-Encoding")))
	if encoding == "" || encoding == "identity" {
		return resp
	}

	decoded, err := decompress(encoding, resp.Body)
	if err != nil {
		return resp
	}

	resp.Body = decoded
	resp.Headers.Del("Content-Encoding")
	if resp.Headers.Get("Content-Length") != "" {
		resp.Headers.Set("Content-Length", strconv.Itoa(len(decoded)))
	}
	return resp
}

type unsupportedEncodingError string

func (e unsupportedEncodingError) Error() string {
	return "unsupported content encoding " + strconv.Quote(string(e))
}

func decompress(encoding string, body []byte) ([]byte, error) {
	switch encoding {
	case "gzip", "x-gzip":
		r, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		defer func() { _ = r.Close() }()
		return io.ReadAll(r)

	case "deflate":
		// "deflate" is zlib-wrapped per RFC 9110, but raw deflate is common.
		if r, err := zlib.NewReader(bytes.NewReader(body)); err == nil {
			defer func() { _ = r.Close() }()
			return io.ReadAll(r)
		}
		r := flate.NewReader(bytes.NewReader(body))
		defer func() { _ = r.Close() }()
		return io.ReadAll(r)

	case "zstd":
		d, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer d.Close()
		return d.DecodeAll(body, nil)
	}
	return nil, unsupportedEncodingError(encoding)
}
