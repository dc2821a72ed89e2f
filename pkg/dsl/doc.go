/*
Package dsl provides a fluent builder for automaton snapshots.

It is meant for tests, examples and seed graphs where writing the host wire
format by hand would be noisy. The result is an ordinary *domain.Snapshot that
any editor or store accepts.

Example usage:

	b := dsl.New()

	b.State(0).At(100, 200).Initial().Go(1, "a")
	b.State(1).At(300, 200).Loop("b").Final()

	snap, err := b.Build()
	if err != nil {
		return err
	}
	editor, err := quiver.New(ctx, memory.NewSnapshotDocument(snap))

Initial and final markers are written as one-sided transitions; the editor
repairs them into hidden marker states on load.
*/
package dsl
