package audit

import (
	"bytes"
	"io"
	"net/http"

	"golang.org/x/text/encoding"

	"github.com/getaudit/auditd/pkg/charset"
)

// ReadErrorPlaceholder is recorded in place of a body that could not be
// read. Body capture failure never fails the request.
const ReadErrorPlaceholder = "[error reading body]"

// captureRequestBody reads at most max raw bytes from the request body,
// decodes them with enc, and reports whether more data remained. The body
// is left re-readable: whatever was consumed is stitched back in front of
// the remainder so the downstream handler sees the original stream.
//
// A max of zero or below disables capture and yields an empty,
// non-truncated result.
func captureRequestBody(r *http.Request, max int, enc encoding.Encoding) (string, bool) {
	if max <= 0 {
		return "", false
	}

	// One byte past the budget distinguishes "exactly max" from "more
	// remains".
	prefix := make([]byte, max+1)
	n, err := io.ReadFull(r.Body, prefix)

	if n > 0 {
		r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(prefix[:n]), r.Body))
	}

	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return ReadErrorPlaceholder, false
	}

	truncated := n > max
	raw := prefix[:n]
	if truncated {
		raw = raw[:max]
	}

	text, decErr := charset.Decode(raw, enc)
	if decErr != nil {
		return ReadErrorPlaceholder, false
	}
	if truncated {
		text += TruncationMarker
	}
	return text, truncated
}

// captureWriter substitutes for the real http.ResponseWriter while the
// downstream handler runs. Writes go to an in-memory buffer only; nothing
// reaches the client until restore copies the buffered status and bytes to
// the real writer. restore runs on every exit path, so the client receives
// exactly what the handler wrote even when capture or sink submission
// fails, and a handler panic continues unwinding after the copy-back.
//
// Streaming responses are buffered whole; this middleware is not suitable
// in front of handlers that rely on incremental flushing.
type captureWriter struct {
	rw          http.ResponseWriter
	buf         bytes.Buffer
	status      int
	wroteHeader bool
	restored    bool
}

func newCaptureWriter(rw http.ResponseWriter) *captureWriter {
	return &captureWriter{rw: rw, status: http.StatusOK}
}

// Header returns the real writer's header map so handler-set headers are
// flushed by the server as usual.
func (cw *captureWriter) Header() http.Header {
	return cw.rw.Header()
}

// WriteHeader records the status code without forwarding it. The first
// call wins, matching net/http semantics.
func (cw *captureWriter) WriteHeader(code int) {
	if cw.wroteHeader {
		return
	}
	cw.status = code
	cw.wroteHeader = true
}

// Write buffers the response bytes. Like net/http, an implicit 200 is
// recorded if the handler writes without calling WriteHeader.
func (cw *captureWriter) Write(b []byte) (int, error) {
	if !cw.wroteHeader {
		cw.wroteHeader = true
	}
	return cw.buf.Write(b)
}

// restore copies the buffered status and body verbatim to the real writer
// and detaches the buffer. Idempotent; safe to defer unconditionally.
func (cw *captureWriter) restore() {
	if cw.restored {
		return
	}
	cw.restored = true

	if cw.wroteHeader {
		cw.rw.WriteHeader(cw.status)
	}
	if cw.buf.Len() > 0 {
		_, _ = cw.rw.Write(cw.buf.Bytes())
	}
}

// captureResponseBody decodes at most max bytes of the buffered response
// with enc. A max of zero or below, or an empty buffer, yields an empty,
// non-truncated result.
func captureResponseBody(cw *captureWriter, max int, enc encoding.Encoding) (string, bool) {
	if max <= 0 || cw.buf.Len() == 0 {
		return "", false
	}

	raw := cw.buf.Bytes()
	truncated := len(raw) > max
	if truncated {
		raw = raw[:max]
	}

	text, err := charset.Decode(raw, enc)
	if err != nil {
		return ReadErrorPlaceholder, false
	}
	if truncated {
		text += TruncationMarker
	}
	return text, truncated
}
