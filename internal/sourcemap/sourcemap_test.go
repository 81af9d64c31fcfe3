package sourcemap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fortitude-sh/fortitude/internal/sourcemap"
)

func TestLineSplittingLF(t *testing.T) {
	sm := sourcemap.New([]byte("program p\n  x = 1\nend program p\n"))
	assert.Equal(t, 4, sm.LineCount())
	assert.Equal(t, "program p", sm.Line(0))
	assert.Equal(t, "  x = 1", sm.Line(1))
	assert.Equal(t, "", sm.Line(3))
	assert.Equal(t, sourcemap.NewlineLF, sm.DominantNewline())
}

func TestLineSplittingCRLF(t *testing.T) {
	sm := sourcemap.New([]byte("a\r\nb\r\n"))
	assert.Equal(t, sourcemap.NewlineCRLF, sm.DominantNewline())
	assert.Equal(t, "a", sm.Line(0))
	assert.Equal(t, "b", sm.Line(1))
}

func TestLineSplittingNoTrailingNewline(t *testing.T) {
	sm := sourcemap.New([]byte("only line"))
	assert.Equal(t, 1, sm.LineCount())
	assert.Equal(t, "only line", sm.Line(0))
}

func TestPositionAtRoundTrips(t *testing.T) {
	source := "abc\ndefgh\nij"
	sm := sourcemap.New([]byte(source))

	line, col := sm.PositionAt(0)
	assert.Equal(t, 0, line)
	assert.Equal(t, 0, col)

	line, col = sm.PositionAt(5) // "defgh"[1] == 'e'
	assert.Equal(t, 1, line)
	assert.Equal(t, 1, col)

	line, col = sm.PositionAt(len(source))
	assert.Equal(t, 2, line)
	assert.Equal(t, 2, col)
}

func TestLineStartAndEnd(t *testing.T) {
	sm := sourcemap.New([]byte("abc\ndefgh\n"))
	assert.Equal(t, 0, sm.LineStart(0))
	assert.Equal(t, 4, sm.LineStart(1))
	assert.Equal(t, 3, sm.LineEnd(0))
	assert.Equal(t, 9, sm.LineEnd(1))
}

func TestSliceClampsToBounds(t *testing.T) {
	sm := sourcemap.New([]byte("hello"))
	assert.Equal(t, "hello", sm.Slice(-3, 100))
	assert.Equal(t, "", sm.Slice(4, 2))
}

func TestSnippetJoinsRequestedLines(t *testing.T) {
	sm := sourcemap.New([]byte("l0\nl1\nl2\nl3\n"))
	assert.Equal(t, "l1\nl2", sm.Snippet(1, 2))
	assert.Equal(t, "l0\nl1\nl2\nl3\n", sm.Snippet(0, 10))
}

func TestIndentationReturnsLeadingWhitespaceOnly(t *testing.T) {
	sm := sourcemap.New([]byte("  x = 1\n"))
	assert.Equal(t, "  ", sm.Indentation(2))
	assert.Equal(t, "", sm.Indentation(4), "offset lands mid-token, not pure whitespace")
}
