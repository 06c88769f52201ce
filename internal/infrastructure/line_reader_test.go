package infrastructure

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAllLines(t *testing.T, r io.Reader) []string {
	t.Helper()
	lr := NewLineReader(r)
	var lines []string
	for {
		line, err := lr.Next()
		if err == io.EOF {
			return lines
		}
		require.NoError(t, err)
		lines = append(lines, line)
	}
}

func TestLineReader_NewlineSeparated(t *testing.T) {
	lines := readAllLines(t, strings.NewReader("first\nsecond\nthird\n"))
	assert.Equal(t, []string{"first", "second", "third"}, lines)
}

func TestLineReader_CarriageReturnOverwrites(t *testing.T) {
	// Progress writers rewrite the same line with \r instead of \n.
	input := "[download]  10.0% of 4.00MiB\r[download]  50.0% of 4.00MiB\r[download] 100.0% of 4.00MiB\n"
	lines := readAllLines(t, strings.NewReader(input))
	assert.Equal(t, []string{
		"[download]  10.0% of 4.00MiB",
		"[download]  50.0% of 4.00MiB",
		"[download] 100.0% of 4.00MiB",
	}, lines)
}

func TestLineReader_MixedTerminators(t *testing.T) {
	lines := readAllLines(t, strings.NewReader("a\r\nb\n\rc"))
	assert.Equal(t, []string{"a", "b", "c"}, lines)
}

func TestLineReader_TrailingTextWithoutTerminator(t *testing.T) {
	lines := readAllLines(t, strings.NewReader("complete line\n/tmp/final/path.mp4"))
	assert.Equal(t, []string{"complete line", "/tmp/final/path.mp4"}, lines)
}

func TestLineReader_SkipsBlankLines(t *testing.T) {
	lines := readAllLines(t, strings.NewReader("\n\n  \na\n\n"))
	assert.Equal(t, []string{"a"}, lines)
}

func TestLineReader_LinesLongerThanChunk(t *testing.T) {
	long := strings.Repeat("x", lineReaderChunkSize*3+17)
	lines := readAllLines(t, strings.NewReader(long+"\nshort\n"))
	require.Len(t, lines, 2)
	assert.Equal(t, long, lines[0])
	assert.Equal(t, "short", lines[1])
}

func TestLineReader_EmptyStream(t *testing.T) {
	lr := NewLineReader(strings.NewReader(""))
	_, err := lr.Next()
	assert.Equal(t, io.EOF, err)
}
