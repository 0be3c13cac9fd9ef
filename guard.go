package appstate

import "sync"

// mutationGuard is the single-writer flag for one store. It fails fast rather
// than queueing: a second acquire while held returns ErrConcurrentMutation
// unless concurrent writes were explicitly allowed.
type mutationGuard struct {
	mu              sync.Mutex
	depth           int
	allowConcurrent bool
}

// acquire marks a mutation in flight. The returned release must be deferred by
// the caller so that callback errors and panics cannot leave the guard held.
func (g *mutationGuard) acquire() (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.depth > 0 && !g.allowConcurrent {
		return nil, ErrConcurrentMutation
	}
	g.depth++
	var once sync.Once
	return func() {
		once.Do(g.release)
	}, nil
}

func (g *mutationGuard) release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.depth > 0 {
		g.depth--
	}
}

func (g *mutationGuard) held() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.depth > 0
}
