package persister

import "errors"

// Persister errors.
var (
	ErrCorrupted         = errors.New("cassette file is corrupted")
	ErrUnknownSerializer = errors.New("unknown serializer")
	ErrInvalidName       = errors.New("invalid cassette name")
)
