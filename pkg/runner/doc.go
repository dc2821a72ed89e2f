/*
Package runner drives an editor from line-delimited JSON.

Each input line is either an editor event in its wire form
(`{"type":"pointer_down","x":120,"y":80}`) or one of the commands
"tick" (with optional "n"), "frame", "snapshot" and "export" (with "format").
Each output line is a Message: the mutations an event produced, a frame,
a snapshot, an export, a diff flushed by the editor, or an error.

# Usage

	r := runner.NewRunner(runner.WithTickInterval(16 * time.Millisecond))
	editor, err := quiver.New(ctx, doc, quiver.WithDiffListener(r.DiffListener()))
	if err != nil {
		return err
	}
	return r.Run(ctx, editor)
*/
package runner
