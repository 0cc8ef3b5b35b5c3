// Package cli implements the equipneeds command-line interface.
//
// # Commands
//
//   - needs: report the base materials the crew still needs
//   - catalog sync: complete and cache the catalog for the current digest
//   - tree: render the recipe tree of an item as DOT or SVG
//   - voyage: rank ships for the next voyage, refresh a running one
//   - serve: expose the needs report over HTTP
//   - cache: clear or locate the response and catalog cache
//
// # Logging
//
// All commands support --verbose (-v). At debug level the catalog builder's
// batch progress is logged as well as shown on the spinner. The logger
// travels in the command context.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns a logger on w with "15:04:05.00" timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// phase times one stage of a command, such as the catalog build or the
// needs resolution, and logs its outcome with structured fields.
type phase struct {
	logger *log.Logger
	name   string
	start  time.Time
}

func startPhase(l *log.Logger, name string) *phase {
	return &phase{logger: l, name: name, start: time.Now()}
}

// done logs the phase name with kv and the elapsed time, e.g.
// "Resolved needs crew=2 materials=14 took=84ms".
func (p *phase) done(kv ...any) {
	fields := make([]any, 0, len(kv)+2)
	fields = append(fields, kv...)
	fields = append(fields, "took", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(p.name, fields...)
}

// catalogProgress returns the catalog builder's progress callback. Each
// status line goes to the debug log and, when s is not nil, onto the
// spinner.
func catalogProgress(l *log.Logger, s *Spinner) func(string) {
	return func(msg string) {
		l.Debug(msg)
		if s != nil {
			s.SetMessage(msg)
		}
	}
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the command logger, or log.Default() outside a
// command.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
