package appstate

import "fmt"

// Call dispatches on argument count: no arguments reads the whole document,
// one reads a path, two or more write args[1] at args[0] (extra arguments are
// ignored). The value is never inspected, so Call("a", false) and
// Call("a", nil) are both writes. Writes return a nil value.
func (s *Store) Call(args ...any) (any, error) {
	if len(args) == 0 {
		return s.Get(""), nil
	}
	path, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrInvalidShortcut, args[0])
	}
	if len(args) == 1 {
		return s.Get(path), nil
	}
	return nil, s.Set(path, args[1])
}
