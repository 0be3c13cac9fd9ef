package appstate

import (
	"reflect"
	"strconv"
)

// Tree is the built-in Model: a nested map[string]any document whose root is
// always a map. Values are copied on the way in and on the way out so callers
// never hold a reference into the tree.
type Tree struct {
	root map[string]any
}

// NewTree builds a tree seeded with a copy of data.
func NewTree(data map[string]any) *Tree {
	if data == nil {
		return &Tree{root: map[string]any{}}
	}
	return &Tree{root: cloneDocument(data)}
}

// Get implements Model.
func (t *Tree) Get(path string) (any, bool) {
	segments, err := ParsePath(path)
	if err != nil {
		return nil, false
	}
	value, ok := readPath(t.root, segments)
	if !ok {
		return nil, false
	}
	return cloneValue(value), true
}

// Set implements Model. Intermediate segments must hold map[string]any, nil
// or nothing; Get also descends typed string-keyed maps and slices, Set does
// not.
func (t *Tree) Set(path string, value any) error {
	segments, err := ParsePath(path)
	if err != nil {
		return err
	}
	return writePath(t.root, segments, cloneValue(value))
}

func readPath(doc map[string]any, segments []string) (any, bool) {
	var current any = doc
	for _, segment := range segments {
		next, ok := child(current, segment)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

func child(node any, segment string) (any, bool) {
	switch typed := node.(type) {
	case map[string]any:
		value, ok := typed[segment]
		return value, ok
	case []any:
		index, err := strconv.Atoi(segment)
		if err != nil || index < 0 || index >= len(typed) {
			return nil, false
		}
		return typed[index], true
	case nil:
		return nil, false
	}

	rv := reflect.ValueOf(node)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		value := rv.MapIndex(reflect.ValueOf(segment).Convert(rv.Type().Key()))
		if !value.IsValid() {
			return nil, false
		}
		return value.Interface(), true
	case reflect.Slice, reflect.Array:
		index, err := strconv.Atoi(segment)
		if err != nil || index < 0 || index >= rv.Len() {
			return nil, false
		}
		return rv.Index(index).Interface(), true
	}
	return nil, false
}

// writePath assigns value at segments, creating maps for absent intermediate
// segments. Absent means a missing key or an explicit nil; any other non-map
// value (including 0, false and "") is a conflict and nothing is modified.
func writePath(doc map[string]any, segments []string, value any) error {
	if len(segments) == 0 {
		return replaceRoot(doc, value)
	}

	if err := checkWritable(doc, segments); err != nil {
		return err
	}

	node := doc
	for _, segment := range segments[:len(segments)-1] {
		next, ok := node[segment].(map[string]any)
		if !ok {
			next = map[string]any{}
			node[segment] = next
		}
		node = next
	}
	node[segments[len(segments)-1]] = value
	return nil
}

func checkWritable(doc map[string]any, segments []string) error {
	node := doc
	for i, segment := range segments[:len(segments)-1] {
		current, exists := node[segment]
		if !exists || current == nil {
			return nil
		}
		next, ok := current.(map[string]any)
		if !ok {
			return &PathConflictError{
				Path:    JoinPath(segments),
				Segment: JoinPath(segments[:i+1]),
				Value:   current,
			}
		}
		node = next
	}
	return nil
}

// replaceRoot swaps the contents of doc rather than the map itself.
func replaceRoot(doc map[string]any, value any) error {
	next, ok := value.(map[string]any)
	if !ok {
		return ErrInvalidRoot
	}
	for key := range doc {
		delete(doc, key)
	}
	for key, v := range next {
		doc[key] = v
	}
	return nil
}
