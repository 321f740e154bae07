package assistant

import (
	"fmt"

	grovelogging "github.com/grovetools/core/logging"
	"github.com/sirupsen/logrus"
)

// Logger defines the logging interface the orchestrator writes to.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
}

// defaultLogger emits structured logs via logrus.
type defaultLogger struct {
	structuredLog *logrus.Entry
}

// NewDefaultLogger returns the logger used when none is injected.
func NewDefaultLogger() Logger {
	return &defaultLogger{
		structuredLog: grovelogging.NewLogger("chief"),
	}
}

func keyValsToFields(keysAndValues []interface{}) logrus.Fields {
	fields := make(logrus.Fields, len(keysAndValues)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 < len(keysAndValues) {
			fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
		}
	}
	return fields
}

func (l *defaultLogger) Info(msg string, keysAndValues ...interface{}) {
	l.structuredLog.WithFields(keyValsToFields(keysAndValues)).Info(msg)
}

func (l *defaultLogger) Error(msg string, keysAndValues ...interface{}) {
	l.structuredLog.WithFields(keyValsToFields(keysAndValues)).Error(msg)
}

func (l *defaultLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.structuredLog.WithFields(keyValsToFields(keysAndValues)).Debug(msg)
}
