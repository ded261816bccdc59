package logger

import (
	"fmt"
	"log"
	"log/slog"
	"os"
)

// New returns a stdlib-backed logger with component prefix.
func New(component string) *log.Logger {
	prefix := fmt.Sprintf("[%s] ", component)
	return log.New(os.Stdout, prefix, log.LstdFlags|log.Lshortfile)
}

// FromSlog adapts a structured logger for libraries that only accept a Printf style logger.
// Every line is emitted at level with a component attribute.
func FromSlog(l *slog.Logger, component string, level slog.Level) *log.Logger {
	if l == nil {
		return New(component)
	}
	return slog.NewLogLogger(l.With("component", component).Handler(), level)
}
