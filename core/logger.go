package core

// Logger is the application-wide logger.
// args may carry an error, a map[string]interface{} of extra context or an *http.Request.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
