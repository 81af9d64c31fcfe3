package reporter

import (
	"github.com/fortitude-sh/fortitude/internal/rules"
	"github.com/fortitude-sh/fortitude/internal/sourcemap"
)

// resolved is a diagnostic's location translated to 1-based display
// positions, the form every line/column-oriented format wants. Line/Column
// are 0 for a file-level diagnostic.
type resolved struct {
	file                   string
	startLine, startColumn int
	endLine, endColumn     int
	fileLevel              bool
}

// resolvePosition derives display positions for loc against source, when
// available. Without a source map (the file failed to read, or a caller
// didn't supply sources), a byte-range diagnostic still reports file and
// zero positions rather than failing the whole report.
func resolvePosition(loc rules.Location, source []byte) resolved {
	r := resolved{file: loc.File, fileLevel: loc.IsFileLevel()}
	if r.fileLevel || source == nil {
		return r
	}
	sm := sourcemap.New(source)
	sl, sc := sm.PositionAt(loc.Range.Start)
	el, ec := sm.PositionAt(loc.Range.End)
	r.startLine, r.startColumn = sl+1, sc+1
	r.endLine, r.endColumn = el+1, ec+1
	return r
}
