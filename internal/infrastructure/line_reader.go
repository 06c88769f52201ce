package infrastructure

import (
	"io"
	"strings"
)

const lineReaderChunkSize = 256

// LineReader reassembles logical lines from a stream where the writer
// overwrites progress in place using carriage returns instead of newlines.
// It reads small fixed-size chunks (never line-buffered) and splits on
// whichever of \r or \n occurs first, so progress updates surface in real
// time while the subprocess is still running.
//
// A LineReader is a finite, non-restartable sequence tied to the lifetime of
// its underlying reader: each Next call blocks until a line boundary or
// end-of-stream.
type LineReader struct {
	r       io.Reader
	buf     []byte
	pending string
	eof     bool
}

// NewLineReader wraps r.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{
		r:   r,
		buf: make([]byte, lineReaderChunkSize),
	}
}

// Next returns the next logical line with surrounding whitespace trimmed.
// Empty lines are skipped. io.EOF signals end of stream; any other error is
// from the underlying reader.
func (lr *LineReader) Next() (string, error) {
	for {
		if line, ok := lr.takeLine(); ok {
			if line != "" {
				return line, nil
			}
			continue
		}

		if lr.eof {
			// Flush whatever trails after the last terminator.
			rest := strings.TrimSpace(lr.pending)
			lr.pending = ""
			if rest != "" {
				return rest, nil
			}
			return "", io.EOF
		}

		n, err := lr.r.Read(lr.buf)
		if n > 0 {
			lr.pending += string(lr.buf[:n])
		}
		if err == io.EOF {
			lr.eof = true
		} else if err != nil {
			return "", err
		}
	}
}

// takeLine splits off the text before the first \r or \n in the pending
// buffer.
func (lr *LineReader) takeLine() (string, bool) {
	idx := strings.IndexAny(lr.pending, "\r\n")
	if idx < 0 {
		return "", false
	}
	line := strings.TrimSpace(lr.pending[:idx])
	lr.pending = lr.pending[idx+1:]
	return line, true
}
