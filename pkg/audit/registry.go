package audit

import "sync"

var (
	registryMu            sync.RWMutex
	registeredSinks       = make(map[string]SinkFactory)
	registeredEntryFilter EntryFilterFunc
)

// SinkFactory builds a Sink from its extension configuration block.
type SinkFactory func(config map[string]interface{}) (Sink, error)

// EntryFilterFunc rewrites an entry before it is serialized. External
// packages use this to scrub fields beyond the built-in header redaction.
// Returning nil leaves the entry unchanged.
type EntryFilterFunc func(entry *Entry) *Entry

// RegisterSink makes a named sink backend available to NewSink via the
// Extensions configuration block.
func RegisterSink(name string, factory SinkFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registeredSinks[name] = factory
}

// RegisterEntryFilter installs a process-wide entry filter.
func RegisterEntryFilter(fn EntryFilterFunc) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registeredEntryFilter = fn
}

// GetRegisteredSink returns the factory registered under name.
func GetRegisteredSink(name string) (SinkFactory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registeredSinks[name]
	return f, ok
}

// GetRegisteredEntryFilter returns the installed entry filter, or nil.
func GetRegisteredEntryFilter() EntryFilterFunc {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return registeredEntryFilter
}
