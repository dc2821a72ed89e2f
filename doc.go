/*
Package quiver is an embeddable editor for labeled finite-state automata.

A host (a notebook widget, a web page, a terminal) delivers pointer and
keyboard events; the editor turns them into graph edits, keeps the graph
readable with a force-directed layout, computes how every transition is drawn,
and mirrors the graph into a key-value document the host shares with its
backend.

# Concept

The graph lives in the editor. The host document only receives whole
collections: "states", "transitions" and the derived "lastStateId". Ordinary
states have integer ids; the initial and final markers of state X are hidden
pseudo-states "X.1" and "X.2", each linked to X by one marker transition.

# Usage

	doc := memory.NewDocument()
	ed, err := quiver.New(ctx, doc)
	if err != nil {
		log.Fatal(err)
	}

	ed.Dispatch(ctx, domain.PointerDown{Pos: domain.Point{X: 100, Y: 100}}) // state 0
	ed.Dispatch(ctx, domain.PointerDown{Pos: domain.Point{X: 300, Y: 100}}) // state 1

	// drag 0 -> 1
	ed.Dispatch(ctx, domain.PointerDown{Target: domain.StateTarget("0")})
	ed.Dispatch(ctx, domain.PointerUp{OverStateID: "1"})

	for range time.Tick(16 * time.Millisecond) {
		ed.Tick()
		paint(ed.Frame())
	}

# Key Features

  - Typed events: the interaction state machine receives explicit events and returns the mutations it applied.
  - Deterministic layout: initial placement is seeded, so a layout can be replayed in tests.
  - Pluggable hosts: any ports.Document works (in-memory, Redis); sessions can be persisted through ports.GraphStore.
*/
package quiver
