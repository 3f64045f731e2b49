package persister

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

// Serializer encodes cassette documents.
type Serializer interface {
	// Name identifies the serializer in configuration.
	Name() string
	// Ext is the file extension, without the dot.
	Ext() string
	Marshal(doc *Document) ([]byte, error)
	Unmarshal(data []byte) (*Document, error)
}

// Built-in serializers.
var (
	YAML Serializer = yamlSerializer{}
	JSON Serializer = jsonSerializer{}
	CBOR Serializer = newCBORSerializer()
)

// DefaultSerializer is used when none is configured.
var DefaultSerializer = YAML

// SerializerFor returns the serializer with the given name.
func SerializerFor(name string) (Serializer, error) {
	switch strings.ToLower(name) {
	case "yaml", "yml", "":
		return YAML, nil
	case "json":
		return JSON, nil
	case "cbor":
		return CBOR, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSerializer, name)
}

// SerializerForPath picks a serializer from a file extension.
func SerializerForPath(path string) (Serializer, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return nil, fmt.Errorf("%w: %s has no extension", ErrUnknownSerializer, path)
	}
	return SerializerFor(ext)
}

type yamlSerializer struct{}

func (yamlSerializer) Name() string { return "yaml" }
func (yamlSerializer) Ext() string  { return "yaml" }

func (yamlSerializer) Marshal(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (yamlSerializer) Unmarshal(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

type jsonSerializer struct{}

func (jsonSerializer) Name() string { return "json" }
func (jsonSerializer) Ext() string  { return "json" }

func (jsonSerializer) Marshal(doc *Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func (jsonSerializer) Unmarshal(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// cborSerializer writes Core Deterministic CBOR, so the same cassette always
// produces the same bytes.
type cborSerializer struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

func newCBORSerializer() cborSerializer {
	opts := cbor.CoreDetEncOptions()
	opts.Time = cbor.TimeRFC3339Nano
	enc, err := opts.EncMode()
	if err != nil {
		panic("persister: CBOR encoder initialization failed: " + err.Error())
	}
	dec, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("persister: CBOR decoder initialization failed: " + err.Error())
	}
	return cborSerializer{enc: enc, dec: dec}
}

func (cborSerializer) Name() string { return "cbor" }
func (cborSerializer) Ext() string  { return "cbor" }

func (s cborSerializer) Marshal(doc *Document) ([]byte, error) {
	return s.enc.Marshal(doc)
}

func (s cborSerializer) Unmarshal(data []byte) (*Document, error) {
	var doc Document
	if err := s.dec.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
