/*
Package domain contains the core domain models of the quiver automaton editor.

It defines the entities the editor manipulates (States, Transitions), the typed input
events a host delivers, the mutations the editor reports back, and the wire records
exchanged with a host document. This package is kept pure and free of external
dependencies like I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - State: A node of the automaton. Ordinary states carry integer ids; marker
    pseudo-states anchor the initial and final arrows of their owner.
  - Transition: A labeled edge between two States, referenced by identity.
  - Event: A pointer, keyboard or label-editor input delivered by the host.
  - Mutation: A structural change applied by the editor in response to an Event.
  - Snapshot: The wire form of a graph, using the "<id>.1" / "<id>.2" id convention.
*/
package domain
