package commands

import (
	"github.com/docker/go-units"
	"github.com/spf13/cobra"
	"github.com/walteh/fsclip/cmd/fsclip/opts"
	"github.com/walteh/fsclip/pkg/log"
	"gitlab.com/tozd/go/errors"
)

// NewPasteCmd creates a new paste command
func NewPasteCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "paste [path]",
		Aliases: []string{"p", "v"},
		Short:   "Transfer the staged paths into a directory",
		Long: `Paste copies every staged path into the destination (default: the
working directory). It will:
1. Skip staged paths that no longer exist
2. Skip a path that is the destination itself or contains it
3. Skip a path whose name already exists in the destination
4. Copy the rest in order, showing progress

The staged paths are kept, so paste can run again elsewhere.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			console := log.FromContext(ctx)

			dest := "."
			if len(args) > 0 {
				dest = args[0]
			}

			console.Header("pasting into " + dest)

			res, err := opts.Operator.Paste(ctx, dest)
			if err != nil {
				if res != nil {
					console.Errorf("paste stopped after %d entries", res.Transferred)
				}
				return errors.Errorf("pasting: %w", err)
			}

			console.Successf("transferred %d entries (%s) into %s, %d skipped",
				res.Transferred, units.BytesSize(float64(res.Bytes)), res.Destination, len(res.Excluded))
			return nil
		},
	}

	return cmd
}
