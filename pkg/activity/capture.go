package activity

import (
	"context"
	"sync"
)

// CaptureHook records events for assertions in tests. Err is returned from
// every Notify call.
type CaptureHook struct {
	Events []Event
	Err    error
	mu     sync.Mutex
}

// Notify records the event and returns the configured error.
func (h *CaptureHook) Notify(_ context.Context, event Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Events = append(h.Events, NormalizeEvent(event))
	return h.Err
}

// Len reports how many events were captured.
func (h *CaptureHook) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.Events)
}

// Paths lists the path of every captured event in arrival order.
func (h *CaptureHook) Paths() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	paths := make([]string, 0, len(h.Events))
	for _, event := range h.Events {
		paths = append(paths, event.Path)
	}
	return paths
}
