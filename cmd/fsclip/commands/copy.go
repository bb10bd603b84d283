package commands

import (
	"github.com/spf13/cobra"
	"github.com/walteh/fsclip/cmd/fsclip/opts"
	"github.com/walteh/fsclip/pkg/log"
	"gitlab.com/tozd/go/errors"
)

// NewCopyCmd creates a new copy command
func NewCopyCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "copy <path>...",
		Aliases: []string{"c", "cp"},
		Short:   "Stage files and directories for a later paste",
		Long: `Copy records the absolute path of every argument that exists.
It will:
1. Resolve each path against the working directory
2. Warn about and skip paths that do not exist
3. Replace whatever was staged before

Nothing is read or duplicated until paste runs.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			res, err := opts.Operator.Copy(ctx, args)
			if err != nil {
				return errors.Errorf("copying: %w", err)
			}

			log.FromContext(ctx).Successf("staged %d of %d paths", len(res.Staged), len(args))
			return nil
		},
	}

	return cmd
}
