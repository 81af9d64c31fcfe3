package rules

// TextRange is a half-open [Start, End) byte range within a file's source
// bytes. A TextRange with Start < 0 is a file-level sentinel carrying no
// position information.
type TextRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// NewTextRange builds a TextRange, panicking if the invariant start<=end is
// violated; callers sit close enough to the parser/sourcemap boundary that
// this should never fire outside a bug.
func NewTextRange(start, end int) TextRange {
	if start > end {
		panic("rules: text range start after end")
	}
	return TextRange{Start: start, End: end}
}

// PointRange returns a zero-width range at offset.
func PointRange(offset int) TextRange {
	return TextRange{Start: offset, End: offset}
}

// fileLevelRange is the sentinel used by Location for diagnostics that are
// not anchored to any byte span.
var fileLevelRange = TextRange{Start: -1, End: -1}

// Overlaps reports whether two half-open ranges share any byte. Two ranges
// that merely touch at an endpoint (a.End == b.Start) do not overlap.
func (r TextRange) Overlaps(other TextRange) bool {
	return r.Start < other.End && other.Start < r.End
}

// Contains reports whether other lies entirely within r.
func (r TextRange) Contains(other TextRange) bool {
	return r.Start <= other.Start && other.End <= r.End
}

// ContainsOffset reports whether offset lies within [Start, End).
func (r TextRange) ContainsOffset(offset int) bool {
	return r.Start <= offset && offset < r.End
}

// Len returns the byte length of the range.
func (r TextRange) Len() int {
	return r.End - r.Start
}

// Position is a human-facing (row, column) pair, 0-based, column counted in
// bytes. It is derived from a TextRange by a sourcemap.SourceMap and carried
// only for rendering; the core never compares Positions, only TextRanges.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Location pins a diagnostic or edit to a file and a byte range within it.
// Ordering and conflict detection operate on Range. Start/End are optional
// display fields set only through WithPositions; this module's reporters
// derive line and column from the source themselves and leave them zero.
type Location struct {
	File  string    `json:"file"`
	Range TextRange `json:"range"`
	Start Position  `json:"start,omitzero"`
	End   Position  `json:"end,omitzero"`
}

// NewFileLocation builds a location for diagnostics that apply to the whole
// file rather than any specific span (e.g. IoError, SyntaxError with no
// recoverable offset).
func NewFileLocation(file string) Location {
	return Location{File: file, Range: fileLevelRange}
}

// NewLocation builds a location from a byte range.
func NewLocation(file string, byteRange TextRange) Location {
	return Location{File: file, Range: byteRange}
}

// IsFileLevel reports whether this location is the file-level sentinel.
func (l Location) IsFileLevel() bool {
	return l.Range.Start < 0
}

// WithPositions returns a copy of l with Start/End populated for display.
func (l Location) WithPositions(start, end Position) Location {
	l.Start = start
	l.End = end
	return l
}
