package audit

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/getaudit/auditd/pkg/charset"
	"github.com/getaudit/auditd/pkg/logging"
)

// ActionHTTPRequest is the sink action recorded for every audited exchange.
const ActionHTTPRequest = "http.request"

// PrincipalFunc resolves the authenticated principal for a request.
// Returning the empty string means anonymous.
type PrincipalFunc func(*http.Request) string

// Option configures optional middleware behavior.
type Option func(*Middleware)

// WithLogger sets the operational logger used to report internal capture
// and sink failures. These reports never affect the response.
func WithLogger(log *slog.Logger) Option {
	return func(m *Middleware) {
		if log != nil {
			m.log = logging.WithComponent(log, "audit")
		}
	}
}

// WithPrincipalFunc overrides how the principal is resolved. By default it
// is read from the request context via PrincipalFromContext.
func WithPrincipalFunc(fn PrincipalFunc) Option {
	return func(m *Middleware) {
		m.principal = fn
	}
}

// Middleware wraps an http.Handler and records an audit entry per request.
//
// The response stream the client observes is exactly what the wrapped
// handler wrote: the handler runs against a substituted in-memory writer
// whose contents are copied verbatim to the real writer as the last action
// on every exit path, including a panicking handler (the panic propagates
// unchanged after the copy-back). Failures inside capture or sink
// submission are logged operationally and never alter the response.
type Middleware struct {
	next      http.Handler
	cfg       *Config
	sink      Sink
	rules     *rules
	log       *slog.Logger
	principal PrincipalFunc
}

// NewMiddleware creates the audit middleware around next, submitting
// entries to sink. A nil config gets defaults; a nil sink discards entries.
func NewMiddleware(next http.Handler, sink Sink, cfg *Config, opts ...Option) *Middleware {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if sink == nil {
		sink = &NoOpSink{}
	}

	m := &Middleware{
		next:  next,
		cfg:   cfg,
		sink:  sink,
		rules: newRules(cfg),
		log:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ServeHTTP implements http.Handler.
func (m *Middleware) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !m.cfg.Enabled || m.rules.pathExcluded(r.URL.Path) {
		m.next.ServeHTTP(w, r)
		return
	}

	// The handler may consume the body; capture must happen first and
	// leave the stream re-readable.
	reqBody, reqTruncated := m.captureRequest(r)

	cw := newCaptureWriter(w)
	defer cw.restore()

	m.next.ServeHTTP(cw, r)

	// Entry assembly and submission strictly precede the copy-back so a
	// sink that inspects the response sees its final form, but neither
	// may prevent the deferred restore from running.
	m.record(r, cw, reqBody, reqTruncated)
}

// captureRequest applies the request-side skip conditions and captures the
// body. Failures degrade to a placeholder, never an error.
func (m *Middleware) captureRequest(r *http.Request) (body string, truncated bool) {
	defer func() {
		if rec := recover(); rec != nil {
			m.log.Error("audit: request body capture failed", "panic", rec)
			body, truncated = ReadErrorPlaceholder, false
		}
	}()

	if !m.cfg.LogRequestBodies {
		return "", false
	}
	if !m.rules.methodIncluded(r.Method) {
		return "", false
	}
	if r.Body == nil || r.ContentLength <= 0 {
		return "", false
	}

	enc := charset.Resolve(r.Header.Get("Content-Type"))
	return captureRequestBody(r, m.cfg.MaxRequestBodyBytes, enc)
}

// record builds the entry and submits it to the sink. Any failure here is
// operational only: it is logged and swallowed so the response copy-back
// still runs.
func (m *Middleware) record(r *http.Request, cw *captureWriter, reqBody string, reqTruncated bool) {
	defer func() {
		if rec := recover(); rec != nil {
			m.log.Error("audit: entry assembly failed", "panic", rec)
		}
	}()

	var respBody string
	var respTruncated bool
	if m.cfg.LogResponseBodies {
		enc := charset.Resolve(cw.Header().Get("Content-Type"))
		respBody, respTruncated = captureResponseBody(cw, m.cfg.MaxResponseBodyBytes, enc)
	}

	path := r.URL.Path
	if r.URL.RawQuery != "" {
		path += "?" + r.URL.RawQuery
	}

	user := ""
	if m.principal != nil {
		user = m.principal(r)
	} else {
		user = PrincipalFromContext(r.Context())
	}
	if user == "" {
		user = AnonymousUser
	}

	entry := Entry{
		Method:     r.Method,
		Path:       path,
		StatusCode: cw.status,
		RemoteIP:   r.RemoteAddr,
		User:       user,
	}

	if m.cfg.LogHeaders {
		entry.Headers = RedactHeaders(r.Header, m.cfg.ExcludedHeaders)
	}

	// Second bound on what enters the permanent record, applied with the
	// same configured maximum as the raw read.
	var passTruncated bool
	entry.RequestBody, passTruncated = Truncate(reqBody, m.cfg.MaxRequestBodyBytes)
	entry.RequestTruncated = reqTruncated || passTruncated

	entry.ResponseBody, passTruncated = Truncate(respBody, m.cfg.MaxResponseBodyBytes)
	entry.ResponseTruncated = respTruncated || passTruncated

	if filter := GetRegisteredEntryFilter(); filter != nil {
		if filtered := filter(&entry); filtered != nil {
			entry = *filtered
		}
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		m.log.Error("audit: failed to serialize entry", "error", err)
		return
	}

	if err := m.sink.Submit(ActionHTTPRequest, entry.Method+" "+entry.Path, string(payload), entry.User); err != nil {
		m.log.Warn("audit: sink submission failed", "error", err)
	}
}
