/*
Package operation implements the copy and paste commands.

	+-----------+      +-------------+
	|   copy    | ---> |  clipboard  |
	| (resolve) |      |   (Store)   |
	+-----------+      +------+------+
	                          |
	                   +------+------+      +------------+
	                   |    paste    | ---> |  transfer  |
	                   |  (conflict) |      |  (Engine)  |
	                   +-------------+      +-----+------+
	                                              |
	                                        +-----+------+
	                                        |  progress  |
	                                        |   (Sink)   |
	                                        +------------+

🎯 Purpose:
- Copy stages absolute paths; it never touches file contents
- Paste filters the staged paths against a destination and transfers the rest
- Show reports what is staged and whether it still exists

🔄 Flow (paste):
1. Read the staged entries; a missing clipboard is fatal
2. Resolve the destination (default ".")
3. conflict.Filter splits entries into kept and excluded
4. Each exclusion is printed with its reason
5. The engine's event sequence is driven through the progress sink
6. A PasteResult counts the entries that finished

⚡ Failure rules:
- A missing copy input is skipped; only an all-missing copy fails
- A conflicting paste entry is skipped; the rest still transfer
- A store or transfer error ends the command

🤝 Interfaces:
- clipboard.Store: where staged paths live
- Transferer: anything that turns requests into transfer events
- progress.Sink: what the user watches

Example:

	store, _ := clipboard.Open(cfg.Store)
	engine, _ := transfer.New(transfer.WithBufferSize(cfg.Transfer.BufferSize))

	op, err := operation.New(operation.Options{
		Store:  store,
		Engine: engine,
		Sink:   progress.NewPtermSink(nil),
	})
	if err != nil {
		return err
	}

	if _, err := op.Copy(ctx, []string{"a.txt", "dir"}); err != nil {
		return err
	}
	res, err := op.Paste(ctx, "./dst")
*/
package operation
