package log

import (
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWarnOnceLogSuppressesRepeatedKey(t *testing.T) {
	l := newWarnOnceLog(1 << 10)
	assert.False(t, l.seen("range:C001"))
	l.record("range:C001")
	assert.True(t, l.seen("range:C001"))
	assert.False(t, l.seen("range:C002"), "an unrelated key is never suppressed")
}

func TestWarnOnceLogWindowEvictsOldestKeys(t *testing.T) {
	l := newWarnOnceLog(32)
	l.record("aaaaaaaaaaaaaaaa")
	l.record("bbbbbbbbbbbbbbbb")
	l.record("cccccccccccccccc")
	assert.False(t, l.seen("aaaaaaaaaaaaaaaa"), "a key pushed out of the bounded window is no longer suppressed")
	assert.True(t, l.seen("cccccccccccccccc"))
}

func TestNewWarnOnceLogDegradesOnInvalidLimit(t *testing.T) {
	l := newWarnOnceLog(0)
	require.Nil(t, l.buf)
	assert.False(t, l.seen("anything"), "a degraded log never suppresses")
	l.record("anything")
	assert.False(t, l.seen("anything"))
}

func TestWarnOnceLogsOnlyOnceForRepeatedKey(t *testing.T) {
	hook := test.NewLocal(base)
	defer hook.Reset()

	WarnOnce("test:repeat-key", "boom")
	WarnOnce("test:repeat-key", "boom")
	WarnOnce("test:repeat-key", "boom")

	n := 0
	for _, entry := range hook.Entries {
		if entry.Data["once"] == "test:repeat-key" {
			n++
		}
	}
	assert.Equal(t, 1, n, "a repeated key logs exactly once within the window")
}
