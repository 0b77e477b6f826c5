// Package log writes diagnostics to a daily file through logrus. Nothing is written unless logs.write is set.
package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/reel-player/reel/filesystem"
	"github.com/reel-player/reel/key"
	"github.com/reel-player/reel/where"
	logrus "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var discard = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}()

// active is discard until Setup enables file logging.
var active = discard

// FileName is the log file written on day t.
func FileName(t time.Time) string {
	return t.Format("2006-01-02") + ".log"
}

// Setup opens today's log file and applies the format and level from the config.
func Setup() error {
	if !viper.GetBool(key.LogsWrite) {
		active = discard
		return nil
	}

	dir := where.Logs()
	if dir == "" {
		return errors.New("log directory path is empty")
	}

	f, err := filesystem.API().OpenFile(filepath.Join(dir, FileName(time.Now())), os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	logger := logrus.StandardLogger()
	logger.SetOutput(f)

	if viper.GetBool(key.LogsJson) {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(viper.GetString(key.LogsLevel))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	active = logger
	return nil
}

func Enabled() bool {
	return active != discard
}

// WithFields returns an entry carrying structured context, e.g. the media reference a message belongs to.
func WithFields(fields logrus.Fields) *logrus.Entry {
	return active.WithFields(fields)
}

func Error(args ...any) {
	active.Error(args...)
}

func Info(args ...any) {
	active.Info(args...)
}

func Warnf(format string, args ...any) {
	active.Warnf(format, args...)
}

func Debugf(format string, args ...any) {
	active.Debugf(format, args...)
}
