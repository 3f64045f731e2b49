package matching

import (
	"fmt"
	"strings"

	"github.com/getmockd/vcr/pkg/request"
)

// Breakdown describes how one recorded request fared against an incoming
// one, matcher by matcher.
type Breakdown struct {
	// Index is the candidate's position in the list passed to Closest.
	Index     int              `json:"index"`
	Request   *request.Request `json:"-"`
	Succeeded []string         `json:"succeeded"`
	Failed    []Failure        `json:"failed"`
}

// Explain evaluates every matcher in set against the pair without stopping
// at the first mismatch.
func Explain(set []Named, a, b *request.Request) (Breakdown, error) {
	var bd Breakdown
	bd.Request = b
	for _, n := range set {
		res, err := evaluateNamed(n, a, b)
		if err != nil {
			return Breakdown{}, err
		}
		if res.Matched {
			bd.Succeeded = append(bd.Succeeded, n.Name)
			continue
		}
		f := Failure{Matcher: n.Name}
		if res.Message != nil {
			f.Message = *res.Message
		}
		bd.Failed = append(bd.Failed, f)
	}
	return bd, nil
}

// Closest returns the candidates that satisfied the most matchers for req.
// Ties are all returned in candidate order. Candidates that satisfied no
// matcher at all are never reported.
func Closest(set []Named, req *request.Request, candidates []*request.Request) ([]Breakdown, error) {
	var best []Breakdown
	most := 0
	for i, c := range candidates {
		bd, err := Explain(set, req, c)
		if err != nil {
			return nil, err
		}
		bd.Index = i
		n := len(bd.Succeeded)
		switch {
		case n == 0 || n < most:
			continue
		case n > most:
			most = n
			best = best[:0]
		}
		best = append(best, bd)
	}
	return best, nil
}

// Reason creates a one-line explanation of why the candidate did not match.
func (b Breakdown) Reason() string {
	if len(b.Failed) == 0 {
		return "all matchers succeeded"
	}
	first := b.Failed[0]
	mismatch := first.Matcher + " did not match"
	if first.Message != "" {
		mismatch = fmt.Sprintf("%s did not match (%s)", first.Matcher, first.Message)
	}
	if len(b.Succeeded) == 0 {
		return mismatch
	}
	return joinFields(b.Succeeded) + " matched, but " + mismatch
}

// Format renders the breakdown as a multi-line report with a details block
// per failed matcher.
func (b Breakdown) Format() string {
	var sb strings.Builder
	if b.Request != nil {
		fmt.Fprintf(&sb, "%d - (%s).\n", b.Index+1, b.Request)
	}
	fmt.Fprintf(&sb, "Matchers succeeded : %v\n", b.Succeeded)
	sb.WriteString("Matchers failed :\n")
	for _, f := range b.Failed {
		fmt.Fprintf(&sb, "%s - assertion failure :\n%s", f.Matcher, f.Details())
	}
	return sb.String()
}

// joinFields joins field names with commas and "and".
func joinFields(fields []string) string {
	switch len(fields) {
	case 0:
		return ""
	case 1:
		return fields[0]
	case 2:
		return fields[0] + " and " + fields[1]
	default:
		return strings.Join(fields[:len(fields)-1], ", ") + ", and " + fields[len(fields)-1]
	}
}
