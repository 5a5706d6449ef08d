package audit

import (
	"context"
)

// AnonymousUser is recorded when no principal is attached to the request.
const AnonymousUser = "anonymous"

// Entry is the structured record describing one request/response cycle.
// It is created once per request, serialized, handed to the sink, and
// discarded; it is never shared across requests. Field order is the wire
// order downstream consumers rely on.
type Entry struct {
	// Method is the HTTP method.
	Method string `json:"method"`

	// Path is the request path including the query string.
	Path string `json:"path"`

	// StatusCode is the status the handler produced.
	StatusCode int `json:"statusCode"`

	// Headers is the redacted, flattened header mapping. It is nil when
	// header logging is disabled, which serializes as null; an empty
	// mapping means headers were logged and all of them were excluded.
	Headers map[string]string `json:"headers"`

	// RequestBody is the captured request body text.
	RequestBody string `json:"requestBody"`

	// RequestTruncated marks a request body cut off by the size limit.
	RequestTruncated bool `json:"requestTruncated"`

	// ResponseBody is the captured response body text.
	ResponseBody string `json:"responseBody"`

	// ResponseTruncated marks a response body cut off by the size limit.
	ResponseTruncated bool `json:"responseTruncated"`

	// RemoteIP is the client address, omitted when unknown.
	RemoteIP string `json:"remoteIpAddress,omitempty"`

	// User is the authenticated principal, or "anonymous".
	User string `json:"user"`
}

type principalKey struct{}

// ContextWithPrincipal returns a context carrying the authenticated
// principal name. Upstream authentication middleware sets this so audit
// entries can attribute requests to a user.
func ContextWithPrincipal(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, principalKey{}, name)
}

// PrincipalFromContext returns the principal name attached to ctx,
// or the empty string when none is set.
func PrincipalFromContext(ctx context.Context) string {
	name, _ := ctx.Value(principalKey{}).(string)
	return name
}
