// dsklog package is just a simple wrapper around logrus
package dsklog

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// logLevelEnvVar overrides the default log level when set.
const logLevelEnvVar = "DSKSWAP_LOG_LEVEL"

// Global logger instance. It discards output until InitializeDlogger is
// called so packages can log unconditionally.
var Dlogger = newDiscardLogger()

func newDiscardLogger() *logrus.Logger {
	l := logrus.New()
	l.Out = io.Discard
	return l
}

// InitializeDlogger initializes or resets the global logger (Dlogger)
func InitializeDlogger(logFile string) {
	Dlogger = logrus.New()

	// #nosec G304
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		logrus.Fatalf("Failed to open log file: %v", err)
	}

	// Set the logger output to the log file
	Dlogger.Out = file
	Dlogger.SetLevel(logrus.InfoLevel)
	Dlogger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	if lvl := strings.TrimSpace(os.Getenv(logLevelEnvVar)); lvl != "" {
		if err := SetLevel(lvl); err != nil {
			Dlogger.Warnf("Ignoring %s: %v", logLevelEnvVar, err)
		}
	}
}

// SetLevel parses level and applies it to Dlogger. The current level is kept
// when level is not a valid logrus level name.
func SetLevel(level string) error {
	parsed, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	Dlogger.SetLevel(parsed)
	return nil
}

// Sink forwards report lines to Dlogger at info level.
type Sink struct {
	Fields logrus.Fields
}

// Append implements dmatch.LogSink.
func (s Sink) Append(line string) {
	Dlogger.WithFields(s.Fields).Info(line)
}
