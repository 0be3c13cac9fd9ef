package appstate

import (
	"fmt"

	"github.com/goliatone/go-appstate/internal/hydrate"
)

// Decode reads path and decodes it into T through its JSON representation.
// A missing path returns ErrNotFound.
func Decode[T any](s *Store, path string) (T, error) {
	return decodePath(s, path, hydrate.NewDecoder[T]())
}

// DecodeStrict is Decode but fails when the value carries fields T does not
// declare.
func DecodeStrict[T any](s *Store, path string) (T, error) {
	return decodePath(s, path, hydrate.NewDecoder[T](hydrate.WithDisallowUnknownFields[T]()))
}

func decodePath[T any](s *Store, path string, decoder *hydrate.Decoder[T]) (T, error) {
	var zero T
	value, ok := s.Lookup(path)
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrNotFound, describePath(path))
	}
	result, err := decoder.Decode(hydrate.Context{Path: path}, value)
	if err != nil {
		return zero, fmt.Errorf("appstate: decode %s: %w", describePath(path), err)
	}
	return result, nil
}
