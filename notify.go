package appstate

// notify fires the subscriptions affected by a write at path, in registration
// order. Values are read when each callback runs, so a callback sees writes
// made by earlier ones when concurrent writes are allowed. The first callback
// error stops the pass.
func (s *Store) notify(path string, changed []string) (int, error) {
	selected := s.registry.candidates(changed)
	for i, sub := range selected {
		values := make([]any, len(sub.paths))
		for j, subscribed := range sub.paths {
			values[j] = s.Get(subscribed)
		}
		if err := sub.callback(values...); err != nil {
			return i + 1, &NotifyError{Path: path, Subscription: sub.index, Err: err}
		}
	}
	return len(selected), nil
}
