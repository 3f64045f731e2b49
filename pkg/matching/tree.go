package matching

import (
	"encoding/json"
	"fmt"
	"math/big"
	"slices"
	"strings"

	"github.com/ohler55/ojg/oj"
)

// Kind tags the variant held by a Node.
type Kind uint8

// Node kinds.
const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindBytes
	KindTime
	KindArray
	KindObject
	KindCall
)

var kindNames = [...]string{"null", "bool", "number", "string", "bytes", "time", "array", "object", "call"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Node is a decoded structured body. Objects compare as mappings, so member
// order never matters; arrays and call parameters compare in order.
type Node struct {
	Kind  Kind
	Bool  bool
	Int   int64
	Float float64
	IsInt bool
	// Big holds the exact value of numbers that overflow Int and Float.
	Big *big.Rat
	// Str holds string, time and decoded bytes values, and a call's method
	// name.
	Str     string
	Items   []*Node
	Members map[string]*Node
}

// Equal reports whether n and o are structurally equal.
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.Kind != o.Kind {
		return false
	}
	switch n.Kind {
	case KindNull:
		return true
	case KindBool:
		return n.Bool == o.Bool
	case KindNumber:
		if n.Big != nil || o.Big != nil {
			a, b := n.rat(), o.rat()
			if a == nil || b == nil {
				return false
			}
			return a.Cmp(b) == 0
		}
		if n.IsInt && o.IsInt {
			return n.Int == o.Int
		}
		return n.float() == o.float()
	case KindString, KindBytes, KindTime:
		return n.Str == o.Str
	case KindArray:
		return itemsEqual(n.Items, o.Items)
	case KindObject:
		if len(n.Members) != len(o.Members) {
			return false
		}
		for k, v := range n.Members {
			ov, ok := o.Members[k]
			if !ok || !v.Equal(ov) {
				return false
			}
		}
		return true
	case KindCall:
		return n.Str == o.Str && itemsEqual(n.Items, o.Items)
	}
	return false
}

func (n *Node) float() float64 {
	if n.Big != nil {
		f, _ := n.Big.Float64()
		return f
	}
	if n.IsInt {
		return float64(n.Int)
	}
	return n.Float
}

// rat returns the exact value of a number node, or nil for NaN and infinities.
func (n *Node) rat() *big.Rat {
	switch {
	case n.Big != nil:
		return n.Big
	case n.IsInt:
		return new(big.Rat).SetInt64(n.Int)
	default:
		return new(big.Rat).SetFloat64(n.Float)
	}
}

func itemsEqual(a, b []*Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// String renders the node compactly with object members sorted, so equal
// trees render identically.
func (n *Node) String() string {
	var sb strings.Builder
	n.write(&sb)
	return sb.String()
}

func (n *Node) write(sb *strings.Builder) {
	if n == nil {
		sb.WriteString("<nil>")
		return
	}
	switch n.Kind {
	case KindNull:
		sb.WriteString("null")
	case KindBool:
		fmt.Fprintf(sb, "%t", n.Bool)
	case KindNumber:
		if n.Big != nil {
			sb.WriteString(n.Big.RatString())
		} else if n.IsInt {
			fmt.Fprintf(sb, "%d", n.Int)
		} else {
			fmt.Fprintf(sb, "%g", n.Float)
		}
	case KindString, KindTime:
		fmt.Fprintf(sb, "%q", n.Str)
	case KindBytes:
		fmt.Fprintf(sb, "bytes(%d)", len(n.Str))
	case KindArray:
		writeItems(sb, "[", n.Items, "]")
	case KindObject:
		keys := make([]string, 0, len(n.Members))
		for k := range n.Members {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		sb.WriteString("{")
		for i, k := range keys {
			if i > 0 {
				sb.WriteString(",")
			}
			fmt.Fprintf(sb, "%q:", k)
			n.Members[k].write(sb)
		}
		sb.WriteString("}")
	case KindCall:
		sb.WriteString(n.Str)
		writeItems(sb, "(", n.Items, ")")
	}
}

func writeItems(sb *strings.Builder, open string, items []*Node, closing string) {
	sb.WriteString(open)
	for i, item := range items {
		if i > 0 {
			sb.WriteString(",")
		}
		item.write(sb)
	}
	sb.WriteString(closing)
}

// ParseJSON decodes a JSON document into a Node.
func ParseJSON(body []byte) (*Node, error) {
	v, err := oj.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return fromGeneric(v)
}

// fromGeneric converts the generic values produced by the JSON parser.
func fromGeneric(v any) (*Node, error) {
	switch t := v.(type) {
	case nil:
		return &Node{Kind: KindNull}, nil
	case bool:
		return &Node{Kind: KindBool, Bool: t}, nil
	case int64:
		return &Node{Kind: KindNumber, Int: t, IsInt: true}, nil
	case int:
		return &Node{Kind: KindNumber, Int: int64(t), IsInt: true}, nil
	case float64:
		return &Node{Kind: KindNumber, Float: t}, nil
	case json.Number:
		return bigNumber(string(t))
	case *big.Float:
		if t.IsInf() {
			f, _ := t.Float64()
			return &Node{Kind: KindNumber, Float: f}, nil
		}
		r, _ := t.Rat(nil)
		return &Node{Kind: KindNumber, Big: r}, nil
	case *big.Int:
		return &Node{Kind: KindNumber, Big: new(big.Rat).SetInt(t)}, nil
	case string:
		return &Node{Kind: KindString, Str: t}, nil
	case []any:
		items := make([]*Node, len(t))
		for i, item := range t {
			n, err := fromGeneric(item)
			if err != nil {
				return nil, err
			}
			items[i] = n
		}
		return &Node{Kind: KindArray, Items: items}, nil
	case map[string]any:
		members := make(map[string]*Node, len(t))
		for k, item := range t {
			n, err := fromGeneric(item)
			if err != nil {
				return nil, err
			}
			members[k] = n
		}
		return &Node{Kind: KindObject, Members: members}, nil
	default:
		return nil, fmt.Errorf("unsupported json value %T", v)
	}
}

// bigNumber keeps a numeric literal exactly, narrowing to int64 when it fits.
func bigNumber(lit string) (*Node, error) {
	r, ok := new(big.Rat).SetString(lit)
	if !ok {
		return nil, fmt.Errorf("invalid json number %q", lit)
	}
	if r.IsInt() && r.Num().IsInt64() {
		return &Node{Kind: KindNumber, Int: r.Num().Int64(), IsInt: true}, nil
	}
	return &Node{Kind: KindNumber, Big: r}, nil
}
