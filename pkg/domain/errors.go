package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrAutomatonNotFound is returned when a named automaton is missing from a library.
var ErrAutomatonNotFound = errors.New("automaton not found")

// ErrUnknownEvent is returned when an encoded event carries an unsupported type.
var ErrUnknownEvent = errors.New("unknown event type")

// ErrUnknownState is returned when an id does not resolve to a state of the graph.
var ErrUnknownState = errors.New("unknown state")
