// Package logger provides the centralized logging facility for the scanner.
//
// It wraps logrus behind a small API so call sites never deal with
// formatter or output configuration:
//   - Package-level Errorf/Warnf/Infof/Debugf/Tracef helpers
//   - Component-tagged entries via WithComponent
//   - JSON or text output, optional rotating file via lumberjack
//
// The LOG_LEVEL environment variable always overrides configured levels.
package logger

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Fields aliases logrus.Fields so callers need not import logrus directly.
type Fields = logrus.Fields

var log = newDefault()

func newDefault() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	if lvl, err := logrus.ParseLevel(strings.ToLower(os.Getenv("LOG_LEVEL"))); err == nil {
		l.SetLevel(lvl)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}
	return l
}

// Configure applies logging settings from the application config.
// Typically called once during startup, after config parsing.
//
// output may be "stderr", "stdout", or a file path. File output rotates
// via lumberjack when maxAgeDays > 0.
func Configure(level, format, output string, maxAgeDays int) error {
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		level = env
	}

	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level %q", level)
	}
	log.SetLevel(lvl)

	switch format {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	case "text", "":
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	default:
		return fmt.Errorf("invalid log format %q", format)
	}

	switch output {
	case "stderr", "":
		log.SetOutput(os.Stderr)
	case "stdout":
		log.SetOutput(os.Stdout)
	default:
		if maxAgeDays > 0 {
			log.SetOutput(&lumberjack.Logger{
				Filename: output,
				MaxAge:   maxAgeDays,
				MaxSize:  100,
				Compress: true,
			})
		} else {
			f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
			if err != nil {
				return fmt.Errorf("open log file %q: %w", output, err)
			}
			log.SetOutput(f)
		}
	}

	return nil
}

// WithComponent returns an entry tagged with the originating component,
// e.g. "scanner", "chain", "store".
func WithComponent(component string) *logrus.Entry {
	return log.WithField("component", component)
}

// WithFields returns an entry carrying structured fields.
func WithFields(fields Fields) *logrus.Entry {
	return log.WithFields(fields)
}

// WithError returns an entry carrying an error field.
func WithError(err error) *logrus.Entry {
	return log.WithError(err)
}

// Errorf logs a failure that requires attention.
func Errorf(format string, args ...any) { log.Errorf(format, args...) }

// Warnf logs a recoverable anomaly.
func Warnf(format string, args ...any) { log.Warnf(format, args...) }

// Infof logs a major lifecycle event.
func Infof(format string, args ...any) { log.Infof(format, args...) }

// Debugf logs diagnostic detail.
func Debugf(format string, args ...any) { log.Debugf(format, args...) }

// Tracef logs fine-grained execution detail.
func Tracef(format string, args ...any) { log.Tracef(format, args...) }
