package log

// MultiLogger fans out each event to multiple loggers.
type MultiLogger struct {
	loggers []Logger
}

var _ Logger = (*MultiLogger)(nil)

// NewMultiLogger creates a logger that forwards every event to each of
// the given loggers in order.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	return &MultiLogger{loggers: loggers}
}

// Log forwards the event to all wrapped loggers.
func (l *MultiLogger) Log(event Event) {
	for _, logger := range l.loggers {
		logger.Log(event)
	}
}
