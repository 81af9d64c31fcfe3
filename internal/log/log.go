// Package log is fortitude's structured logging seam: a single logrus
// logger configured once from resolved settings, used for run-level
// diagnostics that aren't part of the analysis result itself (warn-once
// internal-invariant violations, fix-engine pass-cap warnings, failures
// writing fixed files).
package log

import (
	"os"
	"strings"
	"sync"

	"github.com/armon/circbuf"
	"github.com/sirupsen/logrus"
)

// warnOnceWindow bounds the warn-once suppression key log: a scan touching
// thousands of distinct rule codes (each its own key) can't grow this past
// a fixed byte budget, at the cost of a key falling out of the window and
// re-warning once if it's pushed out by newer keys.
const warnOnceWindow = 1 << 16

var (
	base   = newDefault()
	onceMu sync.Mutex
	warned = newWarnOnceLog(warnOnceWindow)
)

// warnOnceLog is a bounded, append-only log of recently-warned keys backed
// by a fixed-size ring buffer, so WarnOnce's suppression state can't grow
// without bound across a huge repo scan the way an ever-growing map would.
type warnOnceLog struct {
	buf *circbuf.Buffer
}

func newWarnOnceLog(limit int64) *warnOnceLog {
	b, err := circbuf.NewBuffer(limit)
	if err != nil {
		// Only possible for a non-positive limit, which warnOnceWindow
		// never is; degrade to never-suppress rather than panic.
		return &warnOnceLog{}
	}
	return &warnOnceLog{buf: b}
}

// seen reports whether key was recorded within the current window.
func (l *warnOnceLog) seen(key string) bool {
	if l.buf == nil {
		return false
	}
	return strings.Contains(l.buf.String(), "\n"+key+"\n")
}

// record appends key to the window, each entry newline-framed so seen's
// substring match never spans two adjacent keys.
func (l *warnOnceLog) record(key string) {
	if l.buf == nil {
		return
	}
	l.buf.Write([]byte("\n" + key + "\n"))
}

func newDefault() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.WarnLevel)
	l.SetFormatter(&logrus.TextFormatter{DisableColors: false})
	return l
}

// Configure sets the base logger's level and formatter from a run's
// resolved settings ("warn"/"info"/"debug"/"error"; "text" or "json").
func Configure(level, format string) {
	if lvl, err := logrus.ParseLevel(level); err == nil {
		base.SetLevel(lvl)
	}
	if format == "json" {
		base.SetFormatter(&logrus.JSONFormatter{})
	} else {
		base.SetFormatter(&logrus.TextFormatter{})
	}
}

// L returns the package's shared logger.
func L() *logrus.Logger { return base }

// WarnOnce logs a warning for key at most once within the current
// suppression window, so a misbehaving rule doesn't flood the log once per
// offending file.
func WarnOnce(key string, args ...any) {
	onceMu.Lock()
	defer onceMu.Unlock()
	if warned.seen(key) {
		return
	}
	warned.record(key)
	base.WithField("once", key).Warn(args...)
}
