package matching

import (
	"bytes"
	"mime"
	"net/url"
	"strings"

	"github.com/getmockd/vcr/pkg/request"
)

// BodyKind identifies how a request body is decoded before comparison.
type BodyKind uint8

// Body kinds.
const (
	BodyRaw BodyKind = iota
	BodyForm
	BodyJSON
	BodyXMLRPC
)

func (k BodyKind) String() string {
	switch k {
	case BodyForm:
		return "form"
	case BodyJSON:
		return "json"
	case BodyXMLRPC:
		return "xml-rpc"
	default:
		return "raw"
	}
}

// maxBodyDisplay bounds how much of a body appears in mismatch messages.
const maxBodyDisplay = 200

// BodyKindOf picks the decoder for r from its Content-Type and, for
// XML-RPC, its User-Agent.
func BodyKindOf(r *request.Request) BodyKind {
	ct := r.ContentType()
	if ct == "" {
		return BodyRaw
	}
	media := ct
	if parsed, _, err := mime.ParseMediaType(ct); err == nil {
		media = parsed
	}

	switch {
	case strings.Contains(ct, "application/x-www-form-urlencoded"):
		return BodyForm
	case strings.Contains(ct, "application/json") || strings.HasSuffix(media, "+json"):
		return BodyJSON
	case (strings.Contains(ct, "text/xml") || strings.Contains(ct, "application/xml")) &&
		strings.Contains(strings.ToLower(r.Header("User-Agent")), "xmlrpc"):
		return BodyXMLRPC
	}
	return BodyRaw
}

// matchBody compares bodies after decoding them by content type. When the
// two requests call for different decoders, or either body fails to decode,
// the raw bytes are compared instead.
func matchBody(a, b *request.Request) error {
	ba, bb := a.Body(), b.Body()

	kind := BodyKindOf(a)
	if BodyKindOf(b) != kind {
		kind = BodyRaw
	}

	if kind != BodyRaw {
		if len(ba) == 0 && len(bb) == 0 {
			return nil
		}
		ta, errA := bodyTrees.tree(kind, ba)
		tb, errB := bodyTrees.tree(kind, bb)
		if errA == nil && errB == nil {
			if ta.Equal(tb) {
				return nil
			}
			return Fail("%s body %s != %s", kind, truncate(ta.String(), maxBodyDisplay), truncate(tb.String(), maxBodyDisplay))
		}
	}

	if !bytes.Equal(ba, bb) {
		return Fail("body %q != %q", truncate(string(ba), maxBodyDisplay), truncate(string(bb), maxBodyDisplay))
	}
	return nil
}

// decodeBody parses body according to kind.
func decodeBody(kind BodyKind, body []byte) (*Node, error) {
	switch kind {
	case BodyForm:
		return parseForm(body)
	case BodyJSON:
		return ParseJSON(body)
	case BodyXMLRPC:
		return ParseXMLRPC(body)
	}
	return &Node{Kind: KindBytes, Str: string(body)}, nil
}

// parseForm decodes a form body into an object of key to the sorted list of
// its values, so both key order and value order are ignored.
func parseForm(body []byte) (*Node, error) {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, err
	}
	members := make(map[string]*Node, len(values))
	for _, p := range request.SortedPairs(values) {
		arr, ok := members[p.Key]
		if !ok {
			arr = &Node{Kind: KindArray}
			members[p.Key] = arr
		}
		arr.Items = append(arr.Items, &Node{Kind: KindString, Str: p.Value})
	}
	return &Node{Kind: KindObject, Members: members}, nil
}

// truncate shortens a string to maxLen, appending "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
