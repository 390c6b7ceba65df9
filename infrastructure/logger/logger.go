// Package logger holds the process wide logrus logger. Packages take a component
// entry at init time, Setup reconfigures the shared logger in place.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

type Fields = logrus.Fields

type Config struct {
	Level  string
	Format string
	// File enables a rotated log file next to stdout.
	File       string
	MaxSizeMB  int
	MaxAgeDays int
}

var base = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	return l
}

func Setup(cfg Config) error {
	level := strings.ToLower(cfg.Level)
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	base.SetLevel(lvl)

	switch strings.ToLower(cfg.Format) {
	case "", "text":
		base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	case "json":
		base.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "timestamp",
				logrus.FieldKeyMsg:  "message",
			},
		})
	default:
		return fmt.Errorf("unknown log format %q", cfg.Format)
	}

	var out io.Writer = os.Stdout
	if cfg.File != "" {
		maxSize := cfg.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 100
		}
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename: cfg.File,
			MaxSize:  maxSize,
			MaxAge:   cfg.MaxAgeDays,
			Compress: true,
		})
	}
	base.SetOutput(out)

	return nil
}

func Logger() *logrus.Logger {
	return base
}

func WithComponent(component string) *logrus.Entry {
	return base.WithField("component", component)
}
