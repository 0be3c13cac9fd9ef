package activity

import (
	"strings"
	"time"
)

const (
	// VerbStateUpdated is used for writes below the root.
	VerbStateUpdated = "state.updated"
	// VerbStateReplaced is used for writes to the root path.
	VerbStateReplaced = "state.replaced"

	ObjectTypeState = "state"

	// SourceSet marks a write made through Set.
	SourceSet = "set"
	// SourceCalculated marks a calculated property written after a Set.
	SourceCalculated = "calculated"
)

// StateEventInput describes a committed mutation. Replaying the events of a
// store in order rebuilds its document.
type StateEventInput struct {
	StoreID string
	Path    string
	Value   any
	// Source is SourceSet or SourceCalculated; empty means SourceSet.
	Source string
	// Trigger is the path of the Set that caused a calculated write.
	Trigger    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildStateEvent picks the verb from the path: the empty path replaced the
// whole document, anything else updated part of it.
func BuildStateEvent(input StateEventInput) Event {
	if input.Path == "" {
		return BuildStateReplacedEvent(input)
	}
	return BuildStateUpdatedEvent(input)
}

// BuildStateUpdatedEvent constructs an event for a write below the root.
func BuildStateUpdatedEvent(input StateEventInput) Event {
	return buildStateEvent(VerbStateUpdated, input)
}

// BuildStateReplacedEvent constructs an event for a root replacement.
func BuildStateReplacedEvent(input StateEventInput) Event {
	return buildStateEvent(VerbStateReplaced, input)
}

func buildStateEvent(verb string, input StateEventInput) Event {
	metadata := ensureMetadata(cloneMap(input.Metadata))
	metadata["value"] = input.Value
	source := strings.TrimSpace(input.Source)
	if source == "" {
		source = SourceSet
	}
	metadata["source"] = source
	if source == SourceCalculated {
		metadata["trigger"] = input.Trigger
	}

	return Event{
		Verb:       verb,
		ObjectType: ObjectTypeState,
		ObjectID:   strings.TrimSpace(input.StoreID),
		Path:       input.Path,
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
