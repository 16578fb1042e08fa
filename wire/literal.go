package wire

import "io"

// LiteralWriter streams a literal's payload to an underlying writer,
// refusing to write more than the declared size. Used by command
// builders that send an argument as a literal (because it contains bytes
// that can't be quoted) after the server's continuation request.
type LiteralWriter struct {
	w       io.Writer
	size    int64
	written int64
}

// NewLiteralWriter creates a LiteralWriter that will write exactly size
// bytes to w.
func NewLiteralWriter(w io.Writer, size int64) *LiteralWriter {
	return &LiteralWriter{w: w, size: size}
}

// Write writes p, truncating it if it would exceed the declared size.
func (lw *LiteralWriter) Write(p []byte) (int, error) {
	remaining := lw.size - lw.written
	if remaining <= 0 {
		return 0, io.ErrShortWrite
	}
	if int64(len(p)) > remaining {
		p = p[:remaining]
	}
	n, err := lw.w.Write(p)
	lw.written += int64(n)
	return n, err
}

// Remaining returns the number of bytes left to write.
func (lw *LiteralWriter) Remaining() int64 {
	return lw.size - lw.written
}
