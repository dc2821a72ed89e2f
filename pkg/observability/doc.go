/*
Package observability provides Prometheus collectors for editing sessions.

Metrics are fed from domain.MutationHooks, so any host embedding an editor can
record what users do without touching the interaction code.
*/
package observability
