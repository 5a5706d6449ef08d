// Package charset resolves text encodings from HTTP Content-Type headers.
// Header values are untrusted input: anything malformed, unknown, or
// unsupported resolves to UTF-8 rather than an error.
package charset

import (
	"mime"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// Resolve returns the encoding named by the charset parameter of a
// Content-Type header value. The lookup uses the IANA MIME registry and is
// case-insensitive. An empty header, a malformed media type, an unknown
// charset name, or a charset with no usable decoder all resolve to UTF-8.
func Resolve(contentType string) encoding.Encoding {
	if strings.TrimSpace(contentType) == "" {
		return unicode.UTF8
	}

	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return unicode.UTF8
	}

	name := params["charset"]
	if name == "" {
		return unicode.UTF8
	}

	enc, err := ianaindex.MIME.Encoding(name)
	if err != nil || enc == nil {
		// Registered but unsupported names (e.g. UTF-7) come back as a
		// nil encoding with a nil error.
		return unicode.UTF8
	}

	return enc
}

// Decode converts raw bytes in the given encoding to a UTF-8 string.
// Undecodable byte sequences are replaced rather than rejected, so the
// returned error is rare; callers that must not fail can fall back to a
// placeholder on error.
func Decode(raw []byte, enc encoding.Encoding) (string, error) {
	if enc == nil || enc == unicode.UTF8 {
		return string(raw), nil
	}

	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
