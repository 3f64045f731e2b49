package matching

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

var errNotXMLRPC = errors.New("not an xml-rpc document")

// ParseXMLRPC decodes an XML-RPC methodCall or methodResponse into a Node.
// A call becomes a KindCall node named after the method with its params as
// items. A response becomes an array of its params, or an object for a fault.
// Struct members decode into objects, so their order does not matter.
func ParseXMLRPC(body []byte) (*Node, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, fmt.Errorf("parse xml: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, errNotXMLRPC
	}

	switch root.Tag {
	case "methodCall":
		nameEl := root.SelectElement("methodName")
		if nameEl == nil {
			return nil, fmt.Errorf("%w: methodCall without methodName", errNotXMLRPC)
		}
		params, err := decodeParams(root.SelectElement("params"))
		if err != nil {
			return nil, err
		}
		return &Node{Kind: KindCall, Str: strings.TrimSpace(nameEl.Text()), Items: params}, nil

	case "methodResponse":
		if fault := root.SelectElement("fault"); fault != nil {
			v := fault.SelectElement("value")
			if v == nil {
				return nil, fmt.Errorf("%w: fault without value", errNotXMLRPC)
			}
			return decodeValue(v)
		}
		params, err := decodeParams(root.SelectElement("params"))
		if err != nil {
			return nil, err
		}
		return &Node{Kind: KindArray, Items: params}, nil
	}

	return nil, fmt.Errorf("%w: root element %q", errNotXMLRPC, root.Tag)
}

func decodeParams(params *etree.Element) ([]*Node, error) {
	if params == nil {
		return nil, nil
	}
	var out []*Node
	for _, p := range params.SelectElements("param") {
		v := p.SelectElement("value")
		if v == nil {
			return nil, fmt.Errorf("%w: param without value", errNotXMLRPC)
		}
		n, err := decodeValue(v)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// decodeValue decodes a <value> element. A value without a type element is
// a string.
func decodeValue(v *etree.Element) (*Node, error) {
	children := v.ChildElements()
	if len(children) == 0 {
		return &Node{Kind: KindString, Str: v.Text()}, nil
	}
	typed := children[0]
	text := typed.Text()

	switch typed.Tag {
	case "string":
		return &Node{Kind: KindString, Str: text}, nil
	case "int", "i4", "i8":
		i, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("xml-rpc %s: %w", typed.Tag, err)
		}
		return &Node{Kind: KindNumber, Int: i, IsInt: true}, nil
	case "double":
		f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return nil, fmt.Errorf("xml-rpc double: %w", err)
		}
		return &Node{Kind: KindNumber, Float: f}, nil
	case "boolean":
		switch strings.TrimSpace(text) {
		case "1":
			return &Node{Kind: KindBool, Bool: true}, nil
		case "0":
			return &Node{Kind: KindBool, Bool: false}, nil
		}
		return nil, fmt.Errorf("xml-rpc boolean: invalid value %q", text)
	case "dateTime.iso8601":
		return &Node{Kind: KindTime, Str: strings.TrimSpace(text)}, nil
	case "base64":
		data, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(text), ""))
		if err != nil {
			return nil, fmt.Errorf("xml-rpc base64: %w", err)
		}
		return &Node{Kind: KindBytes, Str: string(data)}, nil
	case "nil":
		return &Node{Kind: KindNull}, nil
	case "array":
		data := typed.SelectElement("data")
		if data == nil {
			return &Node{Kind: KindArray}, nil
		}
		var items []*Node
		for _, item := range data.SelectElements("value") {
			n, err := decodeValue(item)
			if err != nil {
				return nil, err
			}
			items = append(items, n)
		}
		return &Node{Kind: KindArray, Items: items}, nil
	case "struct":
		members := make(map[string]*Node)
		for _, m := range typed.SelectElements("member") {
			nameEl := m.SelectElement("name")
			valueEl := m.SelectElement("value")
			if nameEl == nil || valueEl == nil {
				return nil, fmt.Errorf("%w: incomplete struct member", errNotXMLRPC)
			}
			n, err := decodeValue(valueEl)
			if err != nil {
				return nil, err
			}
			members[nameEl.Text()] = n
		}
		return &Node{Kind: KindObject, Members: members}, nil
	}

	return nil, fmt.Errorf("%w: unknown value type %q", errNotXMLRPC, typed.Tag)
}
