// Package logging provides the module-wide leveled logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var logger = newBaseLogger()

func newBaseLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// SetupBaseLogger resets the logger to its stderr defaults. Safe to call more
// than once.
func SetupBaseLogger() {
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.InfoLevel)
}

// SetLevel adjusts the log level from its string form ("debug", "info", ...).
func SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("logging: parse level %q: %w", level, err)
	}
	logger.SetLevel(lvl)
	return nil
}

// SetOutput redirects log output, primarily for tests.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// ConfigureLogOutput routes logs to a rotating file under the user cache
// directory when toFile is set, otherwise back to stderr.
func ConfigureLogOutput(toFile bool) error {
	if !toFile {
		logger.SetOutput(os.Stderr)
		return nil
	}
	dir, err := logDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("logging: create log dir: %w", err)
	}
	logger.SetOutput(&lumberjack.Logger{
		Filename:   filepath.Join(dir, "llmstream.log"),
		MaxSize:    20, // megabytes
		MaxBackups: 3,
		MaxAge:     14, // days
		Compress:   true,
	})
	return nil
}

func logDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("logging: resolve cache dir: %w", err)
	}
	return filepath.Join(base, "llmstream"), nil
}

func Debugf(format string, args ...any) { logger.Debugf(format, args...) }

func Infof(format string, args ...any) { logger.Infof(format, args...) }

func Warnf(format string, args ...any) { logger.Warnf(format, args...) }

func Errorf(format string, args ...any) { logger.Errorf(format, args...) }

func Fatalf(format string, args ...any) { logger.Fatalf(format, args...) }
