package ports

import "context"

// Document is the shared key-value document of the host.
//
// The editor only ever replaces whole values with Set; it never mutates a value
// it previously handed over. Flush notifies the host observers of everything
// set since the last flush.
type Document interface {
	// Get returns the current value for key.
	Get(key string) (any, bool)

	// Set replaces the value for key.
	Set(key string, value any)

	// Flush publishes pending changes to the host.
	Flush(ctx context.Context) error
}
