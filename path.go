package appstate

import (
	"fmt"
	"strings"
)

// PathSeparator delimits segments in a state path.
const PathSeparator = "."

// ParsePath splits a dot-delimited path into its segments. The empty string is
// the root and yields an empty, non-nil slice. Empty segments are rejected so
// that joining the result reproduces the input.
func ParsePath(path string) ([]string, error) {
	if path == "" {
		return []string{}, nil
	}
	segments := strings.Split(path, PathSeparator)
	for i, segment := range segments {
		if segment == "" {
			return nil, fmt.Errorf("%w: %q has an empty segment at position %d", ErrInvalidPath, path, i)
		}
	}
	return segments, nil
}

// JoinPath is the inverse of ParsePath.
func JoinPath(segments []string) string {
	return strings.Join(segments, PathSeparator)
}

// Matches reports whether a write at changed can affect a subscription to
// subscribed: one is an ancestor of, or equal to, the other. Comparison is by
// whole segments, so "user" never matches "username". Invalid paths never match.
func Matches(subscribed, changed string) bool {
	sub, err := ParsePath(subscribed)
	if err != nil {
		return false
	}
	chg, err := ParsePath(changed)
	if err != nil {
		return false
	}
	return segmentsOverlap(sub, chg)
}

func segmentsOverlap(a, b []string) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
