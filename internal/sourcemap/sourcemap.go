// Package sourcemap maps a file's raw bytes to (line, column) positions and
// back, and answers the small set of text-geometry questions the rest of
// the pipeline needs: line slicing, newline-style detection, and
// indentation probing. It is the core's C2 locator.
package sourcemap

import (
	"bytes"
	"strings"
)

// Newline identifies the line-ending convention used in a file.
type Newline string

const (
	NewlineLF   Newline = "\n"
	NewlineCRLF Newline = "\r\n"
	NewlineCR   Newline = "\r"
)

// SourceMap provides byte-offset <-> (line, column) conversion and line
// slicing over an immutable source buffer. The line-start table is built
// once, eagerly, on construction (the file sizes this tool processes make a
// lazy-scan-on-first-query optimisation not worth the complexity); all
// queries thereafter are O(log N) via binary search over that table.
type SourceMap struct {
	source      []byte
	lines       []string // line text, newline stripped
	lineOffsets []int    // byte offset where line i starts
	newline     Newline
}

// New builds a SourceMap over source, recognising LF, CR, and CRLF line
// endings.
func New(source []byte) *SourceMap {
	lines := make([]string, 0, bytes.Count(source, []byte{'\n'})+1)
	lineOffsets := make([]int, 0, cap(lines))

	start := 0
	for i := 0; i < len(source); i++ {
		switch source[i] {
		case '\n':
			lineOffsets = append(lineOffsets, start)
			lines = append(lines, string(source[start:i]))
			start = i + 1
		case '\r':
			lineOffsets = append(lineOffsets, start)
			end := i
			if i+1 < len(source) && source[i+1] == '\n' {
				i++
			}
			lines = append(lines, string(source[start:end]))
			start = i + 1
		}
	}
	lineOffsets = append(lineOffsets, start)
	lines = append(lines, string(source[start:]))

	return &SourceMap{
		source:      source,
		lines:       lines,
		lineOffsets: lineOffsets,
		newline:     detectNewline(source),
	}
}

func detectNewline(source []byte) Newline {
	for i := 0; i < len(source); i++ {
		switch source[i] {
		case '\n':
			return NewlineLF
		case '\r':
			if i+1 < len(source) && source[i+1] == '\n' {
				return NewlineCRLF
			}
			return NewlineCR
		}
	}
	return NewlineLF
}

// Source returns the raw source bytes. Callers must not mutate the result.
func (sm *SourceMap) Source() []byte { return sm.source }

// LineCount returns the number of lines (a file with no trailing newline
// still counts its last partial line).
func (sm *SourceMap) LineCount() int { return len(sm.lines) }

// Line returns the text of line n (0-based), newline stripped, or "" if n is
// out of range.
func (sm *SourceMap) Line(n int) string {
	if n < 0 || n >= len(sm.lines) {
		return ""
	}
	return sm.lines[n]
}

// LineStart returns the byte offset at which line n (0-based) starts.
func (sm *SourceMap) LineStart(n int) int {
	if n < 0 {
		return 0
	}
	if n >= len(sm.lineOffsets) {
		return len(sm.source)
	}
	return sm.lineOffsets[n]
}

// LineEnd returns the byte offset of the end of line n's content, excluding
// its newline sequence.
func (sm *SourceMap) LineEnd(n int) int {
	return sm.LineStart(n) + len(sm.Line(n))
}

// DominantNewline returns the newline style detected from the first newline
// sequence in the file (LF if none is present).
func (sm *SourceMap) DominantNewline() Newline { return sm.newline }

// PositionAt converts a byte offset into a 0-based (line, column) pair; the
// column is a byte count, not a rune or UTF-16 count.
func (sm *SourceMap) PositionAt(offset int) (line, column int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(sm.source) {
		offset = len(sm.source)
	}
	// binary search over lineOffsets for the last start <= offset
	lo, hi := 0, len(sm.lineOffsets)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if sm.lineOffsets[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo, offset - sm.lineOffsets[lo]
}

// Slice returns the raw bytes covered by [start, end) as a string.
func (sm *SourceMap) Slice(start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(sm.source) {
		end = len(sm.source)
	}
	if start > end {
		return ""
	}
	return string(sm.source[start:end])
}

// Snippet extracts lines [startLine, endLine] (0-based, inclusive), joined
// by "\n".
func (sm *SourceMap) Snippet(startLine, endLine int) string {
	if startLine < 0 {
		startLine = 0
	}
	if endLine >= len(sm.lines) {
		endLine = len(sm.lines) - 1
	}
	if startLine > endLine || startLine >= len(sm.lines) {
		return ""
	}
	return strings.Join(sm.lines[startLine:endLine+1], "\n")
}

// SnippetAround extracts context lines around line (0-based), clamped to the
// file's bounds.
func (sm *SourceMap) SnippetAround(line, before, after int) string {
	return sm.Snippet(line-before, line+after)
}

// Indentation returns the whitespace prefix of the line containing offset,
// from the start of that line up to offset — provided that prefix is made
// entirely of spaces/tabs; otherwise it returns "".
func (sm *SourceMap) Indentation(offset int) string {
	line, col := sm.PositionAt(offset)
	text := sm.Line(line)
	if col > len(text) {
		col = len(text)
	}
	prefix := text[:col]
	for _, r := range prefix {
		if r != ' ' && r != '\t' {
			return ""
		}
	}
	return prefix
}
