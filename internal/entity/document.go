package entity

import "time"

// RawDocument is the full markup of one memorial page as returned by a loader.
type RawDocument struct {
	URL        string
	Body       string
	StatusCode int
	FetchedAt  time.Time
	Source     string // "http", "chrome" or "cache"
}

// Payload is the flat mapping deserialized from the page's embedded
// `var findagrave = {...}` object literal. Values are string, int64,
// float64, bool or nil. Nested objects and arrays are kept as compact JSON text.
type Payload map[string]any

// Lookup returns the value for key and whether it was present.
func (p Payload) Lookup(key string) (any, bool) {
	v, ok := p[key]
	return v, ok
}
