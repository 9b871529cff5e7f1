package logging

import "fmt"

// Logger prefixes every line with the name of the component which wrote it.
type Logger struct {
	scope string
}

// Returns a logger writing through the package loggers with a "[scope]" prefix.
func For(scope string) *Logger {
	return &Logger{scope: scope}
}

func (l *Logger) Infof(format string, args ...interface{}) {
	WriteInfo(l.format(format, args...))
}

func (l *Logger) Successf(format string, args ...interface{}) {
	WriteSuccess(l.format(format, args...))
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	WriteWarn(l.format(format, args...))
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	WriteError(l.format(format, args...))
}

func (l *Logger) format(format string, args ...interface{}) string {
	return fmt.Sprintf("[%s] %s", l.scope, fmt.Sprintf(format, args...))
}
