// Package activity mirrors committed store mutations to external observers.
//
// A Store built with appstate.WithActivityHooks hands every successful Set to
// an Emitter, which stamps defaults and fans the event out to Hooks. Mirroring
// is best effort: hook errors are joined and returned to the store, which logs
// them and never surfaces them from Set.
//
// The usersink subpackage forwards events to a go-users ActivitySink.
package activity
