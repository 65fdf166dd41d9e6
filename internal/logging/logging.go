package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

const timestampFormat = "2006-01-02T15:04:05-0700"

// Options controls how the logger is built.
type Options struct {
	Level  string // logrus level name, ignored when Debug is set
	Debug  bool
	Format string // "text" or "json"
	File   string // optional file the log is tee'd to
	Out    io.Writer
}

// New builds a logger from opts. The returned closer releases the log file
// and is never nil.
func New(opts Options) (*logrus.Logger, io.Closer, error) {
	log := logrus.New()

	level := logrus.InfoLevel
	if opts.Debug {
		level = logrus.DebugLevel
	} else if opts.Level != "" {
		parsed, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid log level: %s", opts.Level)
		}
		level = parsed
	}
	log.SetLevel(level)

	switch strings.ToLower(opts.Format) {
	case "", "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: timestampFormat})
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: timestampFormat})
	default:
		return nil, nil, fmt.Errorf("invalid log format: %s", opts.Format)
	}

	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		logFile, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = io.MultiWriter(out, logFile)
		closer = logFile
	}
	log.SetOutput(out)

	return log, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
