package appstate

import (
	"context"
	"fmt"

	"github.com/goliatone/go-appstate/pkg/activity"
)

// mirror reports a write the model has committed to the configured activity
// hooks. It runs before subscribers are notified, so the events of a store
// arrive in commit order even when a later callback or compute fails. The
// mirrored value is read back from the model. Hook errors and panics are
// returned for logging and never fail the mutation.
func (s *Store) mirror(path, source, trigger string) (err error) {
	if !s.emitter.Enabled() {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("appstate: activity hook panic: %v", r)
		}
	}()
	event := activity.BuildStateEvent(activity.StateEventInput{
		StoreID: s.id,
		Path:    path,
		Value:   s.Get(path),
		Source:  source,
		Trigger: trigger,
	})
	return s.emitter.Emit(context.Background(), event)
}
