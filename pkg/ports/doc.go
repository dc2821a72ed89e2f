/*
Package ports defines the driven ports (interfaces) for the quiver editor.

These interfaces decouple the editor core from external implementations, allowing
the same session to be mirrored to different hosts and persisted in different backends.

# Key Interfaces

  - Document: The host key-value document the editor mirrors its graph into (ModelSync).
  - GraphStore: Responsible for persisting and loading session snapshots.
  - AutomatonLibrary: A named collection of automata (e.g., a Loam vault) used to seed sessions.
  - DistributedLocker: Provides distributed locking for handling concurrent session access.
  - DiffPublisher: Fans out structural diffs to external subscribers (e.g., NATS).
*/
package ports
