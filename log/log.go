// Package log wraps a single logrus logger with a Sentry hook for
// error-and-above entries.
package log

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
)

var logger = logrus.New()

func init() {
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.JSONFormatter{})

	if hook := NewSentryHook(os.Getenv("GO_ENV"), os.Getenv("COMMIT_SHA")); hook != nil {
		logger.AddHook(hook)
	}
}

// SetOutput directs log output, primarily for tests
func SetOutput(w *os.File) {
	logger.SetOutput(w)
}

func WithContext(ctx context.Context) *logrus.Entry {
	return logger.WithContext(ctx)
}

func WithFields(fields map[string]interface{}) *logrus.Entry {
	return logger.WithFields(fields)
}

func Debug(args ...interface{}) {
	logger.Debug(args...)
}

func Debugf(format string, args ...interface{}) {
	logger.Debugf(format, args...)
}

func Info(args ...interface{}) {
	logger.Info(args...)
}

func Infof(format string, args ...interface{}) {
	logger.Infof(format, args...)
}

func Warning(args ...interface{}) {
	logger.Warning(args...)
}

func Warningf(format string, args ...interface{}) {
	logger.Warningf(format, args...)
}

func Error(args ...interface{}) {
	logger.Error(args...)
}

func Errorf(format string, args ...interface{}) {
	logger.Errorf(format, args...)
}

func Fatal(args ...interface{}) {
	logger.Fatal(args...)
}

func Fatalf(format string, args ...interface{}) {
	logger.Fatalf(format, args...)
}

// SetUser attaches user identifiers to the Sentry scope for the current
// request, if a hub is present on the context.
func SetUser(ctx context.Context, id, username, email string) {
	hub := hubFromContext(ctx)
	if hub == nil {
		return
	}
	setHubUser(hub, id, username, email)
}
