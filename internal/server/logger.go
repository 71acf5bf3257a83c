package server

// Logger is the logging interface injected into the server. The package
// itself stays silent unless a caller wires an implementation in.
type Logger interface {
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Warnf(format string, v ...any)
	Errorf(format string, v ...any)
}

// NoOpLogger discards everything.
type NoOpLogger struct{}

func (NoOpLogger) Debugf(format string, v ...any) {}
func (NoOpLogger) Infof(format string, v ...any)  {}
func (NoOpLogger) Warnf(format string, v ...any)  {}
func (NoOpLogger) Errorf(format string, v ...any) {}

// NewNoOpLogger returns a logger that does nothing.
func NewNoOpLogger() Logger {
	return NoOpLogger{}
}
