// Package logging builds the process logger from launcher settings.
package logging

import (
	"fmt"
	"io"

	"github.com/evalphobia/logrus_sentry"
	"github.com/sirupsen/logrus"
)

// Config controls log output.
type Config struct {
	// Verbosity is 0=fatal, 1=error, 2=warn, 3=info, 4=debug, 5=trace.
	Verbosity int
	// Format is "text" or "json".
	Format string
	Color  bool

	// SentryDSN enables error reporting when set.
	SentryDSN string
}

// DefaultConfig logs at info level as plain text.
func DefaultConfig() Config {
	return Config{
		Verbosity: 3,
		Format:    "text",
	}
}

// Level converts a verbosity to the logrus level.
func Level(verbosity int) (logrus.Level, error) {
	if verbosity < 0 || verbosity > 5 {
		return 0, fmt.Errorf("verbosity %d out of range 0..5", verbosity)
	}
	return logrus.Level(verbosity + 1), nil
}

// New creates a logger writing to out.
func New(cfg Config, out io.Writer) (*logrus.Logger, error) {
	level, err := Level(cfg.Verbosity)
	if err != nil {
		return nil, err
	}

	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(level)

	switch cfg.Format {
	case "", "text":
		log.SetFormatter(&logrus.TextFormatter{
			ForceColors:   cfg.Color,
			DisableColors: !cfg.Color,
			FullTimestamp: true,
		})
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	if cfg.SentryDSN != "" {
		hook, err := logrus_sentry.NewSentryHook(cfg.SentryDSN, []logrus.Level{
			logrus.PanicLevel,
			logrus.FatalLevel,
			logrus.ErrorLevel,
		})
		if err != nil {
			return nil, fmt.Errorf("sentry hook: %w", err)
		}
		hook.StacktraceConfiguration.Enable = true
		log.AddHook(hook)
	}
	return log, nil
}
