package persister

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/getmockd/vcr/pkg/cassette"
)

// FileSystem stores each cassette as one file, <Dir>/<name>.<ext>.
type FileSystem struct {
	Dir        string
	Serializer Serializer
}

// NewFileSystem returns a file-system persister rooted at dir. A nil
// serializer selects DefaultSerializer.
func NewFileSystem(dir string, s Serializer) *FileSystem {
	if s == nil {
		s = DefaultSerializer
	}
	return &FileSystem{Dir: dir, Serializer: s}
}

// Path returns the file backing the named cassette. A name that already
// carries a known extension keeps it and selects the matching serializer.
func (p *FileSystem) Path(name string) (string, Serializer, error) {
	if name == "" || !filepath.IsLocal(name) {
		return "", nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if s, err := SerializerForPath(name); err == nil {
		return filepath.Join(p.Dir, name), s, nil
	}
	s := p.Serializer
	if s == nil {
		s = DefaultSerializer
	}
	return filepath.Join(p.Dir, name+"."+s.Ext()), s, nil
}

// Load implements cassette.Persister.
func (p *FileSystem) Load(ctx context.Context, name string) ([]*cassette.Interaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, s, err := p.Path(name)
	if err != nil {
		return nil, err
	}
	doc, err := readDocument(path, s)
	if err != nil {
		return nil, err
	}
	interactions, err := doc.ToInteractions()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorrupted, path, err)
	}
	return interactions, nil
}

// Save implements cassette.Persister. The file is replaced atomically.
func (p *FileSystem) Save(ctx context.Context, name string, interactions []*cassette.Interaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, s, err := p.Path(name)
	if err != nil {
		return err
	}
	return writeDocument(path, s, ToDocument(interactions))
}

// ReadFile decodes the cassette document at path, choosing the serializer
// from its extension.
func ReadFile(path string) (*Document, error) {
	s, err := SerializerForPath(path)
	if err != nil {
		return nil, err
	}
	return readDocument(path, s)
}

// WriteFile encodes doc to path, choosing the serializer from its extension.
func WriteFile(path string, doc *Document) error {
	s, err := SerializerForPath(path)
	if err != nil {
		return err
	}
	return writeDocument(path, s, doc)
}

func readDocument(path string, s Serializer) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", cassette.ErrCassetteNotFound, path)
		}
		return nil, fmt.Errorf("failed to read cassette: %w", err)
	}
	doc, err := s.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorrupted, path, err)
	}
	return doc, nil
}

func writeDocument(path string, s Serializer, doc *Document) error {
	data, err := s.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal cassette: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	// Write to a temporary file in the same directory, then rename over the
	// target so readers never see a partial cassette.
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}
