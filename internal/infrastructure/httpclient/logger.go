package httpclient

import (
	"github.com/hashicorp/go-retryablehttp"
	logger "github.com/sirupsen/logrus"
)

// leveledLogger routes retryablehttp logging through logrus. Request and
// retry chatter goes to debug so a normal run only shows failures.
type leveledLogger struct {
	entry *logger.Entry
}

// NewLeveledLogger returns a retryablehttp.LeveledLogger backed by logrus.
func NewLeveledLogger() retryablehttp.LeveledLogger {
	return &leveledLogger{entry: logger.WithField("component", "http")}
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.with(keysAndValues).Error(msg)
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.with(keysAndValues).Debug(msg)
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.with(keysAndValues).Debug(msg)
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.with(keysAndValues).Warn(msg)
}

func (l *leveledLogger) with(keysAndValues []interface{}) *logger.Entry {
	fields := make(logger.Fields, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields[key] = keysAndValues[i+1]
	}
	return l.entry.WithFields(fields)
}
