package appstate

import "time"

// LogKind identifies what a MutationLogEvent describes.
type LogKind string

const (
	LogKindSet       LogKind = "set"
	LogKindCalculate LogKind = "calculate"
	LogKindEvaluate  LogKind = "evaluate"
	LogKindConfig    LogKind = "config"
	LogKindSnapshot  LogKind = "snapshot"
)

// MutationLogEvent describes one store operation for logging.
type MutationLogEvent struct {
	Kind       LogKind
	StoreID    string
	Path       string
	Expr       string
	Notified   int
	Calculated int
	Duration   time.Duration
	Err        error
	// ObserverErr is the error returned by activity hooks. It never reaches
	// the caller of Set.
	ObserverErr error
	Message     string
}

// Logger records store events.
type Logger interface {
	LogMutation(MutationLogEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(MutationLogEvent)

// LogMutation implements Logger.
func (f LoggerFunc) LogMutation(event MutationLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) LogMutation(MutationLogEvent) {}

// WithLogger attaches a logger to the store.
func WithLogger(logger Logger) Option {
	return func(cfg *storeConfig) {
		if logger == nil {
			cfg.logger = noopLogger{}
			return
		}
		cfg.logger = logger
	}
}
