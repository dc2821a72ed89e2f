/*
Package session implements editing sessions and their persistence orchestration.

A Manager owns the live editors of a process. Each session edits an in-memory
document; every flush is persisted through a ports.GraphStore and broadcast to
subscribers as a domain.GraphDiff. Access to a session is serialized with a
local reference-counted mutex and, optionally, a ports.DistributedLocker so
replicas sharing a store do not edit the same session concurrently.
*/
package session
