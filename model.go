package appstate

// Model is the backing document a Store reads from and writes to. Tree is the
// default; WithModel swaps in another implementation. Implementations are only
// ever called by the Store while it holds its mutation guard (for Set) or from
// the caller's goroutine (for Get), so they need no locking of their own.
type Model interface {
	Get(path string) (any, bool)
	Set(path string, value any) error
}

// CalculatingModel is a Model that derives calculated properties itself. A
// Store forwards Calculations to it instead of running its own recompute loop.
type CalculatingModel interface {
	Model
	Calculations(calcs ...Calculated) error
}

// snapshotter is implemented by models that can expose their whole document.
type snapshotter interface {
	Snapshot() map[string]any
}

// Snapshot returns a deep copy of the whole document.
func (t *Tree) Snapshot() map[string]any {
	return cloneDocument(t.root)
}
