// Package cli implements the orthoroute command-line interface.
//
// The commands are:
//   - route: route diagram files and write routed JSON next to them
//   - render: write SVG, PNG, PDF, DOT or text output
//   - check: list connectors that break the orthogonality, stem or port rules
//   - edit: move icons in a terminal view and watch connectors re-route
//   - serve: run the HTTP API
//   - cache: inspect or clear the local cache
//
// Every command takes its logger from the command context; --verbose on the
// binary lowers the level to debug.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns a logger writing to w at level, stamped "15:04:05.00".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times a command. step logs the time spent since the previous
// step at debug level; done logs the total at info level.
type progress struct {
	logger *log.Logger
	start  time.Time
	last   time.Time
}

func newProgress(l *log.Logger) *progress {
	now := time.Now()
	return &progress{logger: l, start: now, last: now}
}

func (p *progress) step(name string) {
	now := time.Now()
	p.logger.Debug(name, "took", now.Sub(p.last).Round(time.Millisecond))
	p.last = now
}

func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default when there is none.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
