package core

// Logger is implemented by the logging services.
// args may carry errors, maps or the attempt owner's username for error
// tracker person tracking.
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
