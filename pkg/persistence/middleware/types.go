// Package middleware wraps a GraphStore to add behavior around persistence.
package middleware

import "github.com/aretw0/quiver/pkg/ports"

// Middleware allows wrapping a GraphStore to add behavior.
type Middleware func(ports.GraphStore) ports.GraphStore

// Chain applies mws to store; the first middleware is the outermost.
func Chain(store ports.GraphStore, mws ...Middleware) ports.GraphStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}

// Unwrap returns the innermost store below any middleware.
func Unwrap(store ports.GraphStore) ports.GraphStore {
	for {
		w, ok := store.(interface{ Unwrap() ports.GraphStore })
		if !ok {
			return store
		}
		store = w.Unwrap()
	}
}
