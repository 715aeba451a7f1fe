package core

// Logger is any service that can report application events.
// args may contain errors, extra data (map[string]interface{}) or the acting user.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Person identifies the user behind a logged event.
type Person struct {
	ID    string
	Name  string
	Email string
}
