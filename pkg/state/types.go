package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

var ErrETagMismatch = errors.New("state: etag mismatch")

var ErrInvalidRef = errors.New("state: invalid ref")

// DefaultNamespace is used when Ref.Namespace is empty.
const DefaultNamespace = "default"

// Ref identifies one persisted snapshot.
type Ref struct {
	Namespace string
	Name      string
}

// Meta is storage-owned metadata used for audit and concurrency control.
type Meta struct {
	SnapshotID string            `json:"snapshot_id,omitempty"`
	ETag       string            `json:"etag,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// Store loads/saves one snapshot for a single reference.
type Store[T any] interface {
	Load(ctx context.Context, ref Ref) (snapshot T, meta Meta, ok bool, err error)
	Save(ctx context.Context, ref Ref, snapshot T, meta Meta) (Meta, error)
}

// Identifier renders the canonical storage key for r.
func (r Ref) Identifier() (string, error) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidRef)
	}
	namespace := strings.TrimSpace(r.Namespace)
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if strings.Contains(namespace, "/") || strings.Contains(name, "/") {
		return "", fmt.Errorf("%w: %q/%q must not contain '/'", ErrInvalidRef, namespace, name)
	}
	return namespace + "/" + name, nil
}

// ETag derives a content hash from the JSON encoding of snapshot. Map keys
// are encoded in sorted order, so equal documents share an etag.
func ETag[T any](snapshot T) (string, error) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("state: etag: %w", err)
	}
	return strconv.FormatUint(xxhash.Sum64(payload), 16), nil
}

// MergeMeta overlays the non-zero fields of override onto base.
func MergeMeta(base, override Meta) Meta {
	out := base
	if override.SnapshotID != "" {
		out.SnapshotID = override.SnapshotID
	}
	if override.ETag != "" {
		out.ETag = override.ETag
	}
	if !override.UpdatedAt.IsZero() {
		out.UpdatedAt = override.UpdatedAt
	}
	if override.Extra != nil {
		out.Extra = override.Extra
	}
	return out
}
