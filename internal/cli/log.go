package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates the scanner's stderr logger. Timestamps carry
// hundredths of a second so the scan, infer and render stage lines of a
// single run can be told apart.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// scanProgress times one command against one content package and reports
// the outcome as a single structured info line:
//
//	INFO graphed package package=site.zip nodes=5 associations=4 took=12ms
type scanProgress struct {
	logger *log.Logger
	pkg    string
	start  time.Time
}

func newProgress(l *log.Logger, pkg string) *scanProgress {
	return &scanProgress{logger: l, pkg: pkg, start: time.Now()}
}

// done logs msg with the package path, keyvals and the elapsed time.
func (p *scanProgress) done(msg string, keyvals ...any) {
	kv := append([]any{"package", p.pkg}, keyvals...)
	kv = append(kv, "took", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, kv...)
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger attaches l to ctx so commands and the pipeline runner share
// the level chosen by --verbose or --quiet.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached by the root command, or
// log.Default() when a command runs without one (direct calls in tests).
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
