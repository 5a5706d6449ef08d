// Package audit provides HTTP traffic audit logging as a middleware.
//
// The middleware sits between the server and the application handler,
// captures request and response bodies and metadata, redacts and truncates
// sensitive content, and hands a structured entry to a durable sink —
// while guaranteeing the client receives the handler's response
// byte-for-byte on every exit path.
//
// # Basic Usage
//
//	cfg := audit.DefaultConfig()
//	cfg.Enabled = true
//	cfg.OutputFile = "/var/log/audit.log"
//
//	sink, err := audit.NewSink(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer sink.Close()
//
//	handler := audit.NewMiddleware(mux, sink, cfg)
//	http.ListenAndServe(":8080", handler)
//
// # Response Transparency
//
// The wrapped handler runs against a substituted in-memory writer. Its
// buffered status and bytes are copied verbatim to the real writer as the
// middleware's last action, on normal return, on internal capture or sink
// failure, and on handler panic (the panic propagates unchanged after the
// copy-back). The only externally observable effect of the middleware
// failing internally is a missing audit entry, never a different response.
//
// # Capture Bounds
//
// Body capture is bounded per side by MaxRequestBodyBytes and
// MaxResponseBodyBytes. Content over the bound is cut and suffixed with
// the truncation marker; a bound of zero disables that side's capture
// without disabling the rest of the entry. Text encodings are resolved
// from the Content-Type charset parameter, falling back to UTF-8 for
// anything malformed or unknown.
//
// # Sink Types
//
//   - FileSink: appends JSON-line records to a file
//   - StdoutSink: writes JSON-line records to stdout
//   - MultiSink: fans out to several sinks
//   - NoOpSink: discards everything, used when auditing is disabled
//
// Sink failures are reported to the operational logger and never retried
// by the middleware; retry, if any, is the sink's concern.
//
// # Thread Safety
//
// Config is read-only after construction and shared by all in-flight
// requests. Capture state is exclusively owned by a single request's
// invocation. All sink implementations are safe for concurrent use.
//
// # Extension Points
//
//   - RegisterSink: register custom sink backends (SIEM, databases, etc.)
//   - RegisterEntryFilter: rewrite entries before serialization
package audit
