// Package log builds the run logger: styled output on stderr plus a
// persistent copy in a log file next to the working directory.
package log

import (
	"io"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"
)

// DefaultFile is the run log written alongside the working directory.
const DefaultFile = "nfosync.log"

// New returns a logger for one run and a closer for its log file. When the
// file cannot be opened the logger still works, writing to stderr only, and
// the returned closer is a no-op.
func New(file string) (*charmlog.Logger, io.Closer) {
	opts := charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	}

	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		logger := charmlog.NewWithOptions(os.Stderr, opts)
		logger.Warn("opening run log failed, logging to stderr only", "file", file, "error", err)
		return logger, nopCloser{}
	}

	logger := charmlog.NewWithOptions(io.MultiWriter(os.Stderr, f), opts)
	return logger, f
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
