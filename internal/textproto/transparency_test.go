package textproto

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransparencyWriter_Basic(t *testing.T) {
	var buf bytes.Buffer
	w := newTransparencyWriter(bufio.NewWriter(&buf))

	_, err := w.Write([]byte("Hello, World!\r\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.Equal(t, "Hello, World!\r\n.\r\n", buf.String())
}

func TestTransparencyWriter_StuffsLeadingDots(t *testing.T) {
	var buf bytes.Buffer
	w := newTransparencyWriter(bufio.NewWriter(&buf))

	_, err := w.Write([]byte(".leading dot\r\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.Equal(t, "..leading dot\r\n.\r\n", buf.String())
}

func TestTransparencyWriter_NoTrailingCRLF(t *testing.T) {
	var buf bytes.Buffer
	w := newTransparencyWriter(bufio.NewWriter(&buf))

	_, err := w.Write([]byte("no trailing newline"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.Equal(t, "no trailing newline\r\n.\r\n", buf.String())
}

func TestTransparencyWriter_EmptyMessage(t *testing.T) {
	var buf bytes.Buffer
	w := newTransparencyWriter(bufio.NewWriter(&buf))
	require.NoError(t, w.Close())

	assert.Equal(t, ".\r\n", buf.String())
}

func TestTransparencyWriter_MultipleDotsOnLine(t *testing.T) {
	var buf bytes.Buffer
	w := newTransparencyWriter(bufio.NewWriter(&buf))

	_, err := w.Write([]byte("...three dots\r\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	// Only the leading dot gets doubled.
	assert.Equal(t, "....three dots\r\n.\r\n", buf.String())
}

func TestTransparencyWriter_MultiLine(t *testing.T) {
	var buf bytes.Buffer
	w := newTransparencyWriter(bufio.NewWriter(&buf))

	_, err := w.Write([]byte("Line 1\r\n.Line 2\r\n..Line 3\r\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.Equal(t, "Line 1\r\n..Line 2\r\n...Line 3\r\n.\r\n", buf.String())
}

func TestTransparencyWriter_BareCRTreatedAsLineStart(t *testing.T) {
	var buf bytes.Buffer
	w := newTransparencyWriter(bufio.NewWriter(&buf))

	// A bare CR (no following LF) must still flip the writer into
	// line-start state, so the dot right after it gets stuffed. A writer
	// that only resets on LF would let this dot slip through unstuffed.
	_, err := w.Write([]byte("before\r.after\r\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.Equal(t, "before\r..after\r\n.\r\n", buf.String())
}

func TestTransparencyWriter_ClosedReturnsError(t *testing.T) {
	var buf bytes.Buffer
	w := newTransparencyWriter(bufio.NewWriter(&buf))
	require.NoError(t, w.Close())

	_, err := w.Write([]byte("too late"))
	assert.Error(t, err)
}

func TestTransparencyWriter_CloseIsIdempotent(t *testing.T) {
	var buf bytes.Buffer
	w := newTransparencyWriter(bufio.NewWriter(&buf))
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	assert.Equal(t, ".\r\n", buf.String())
}
