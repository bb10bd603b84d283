package commands

import (
	"github.com/spf13/cobra"
	"github.com/walteh/fsclip/cmd/fsclip/opts"
	"github.com/walteh/fsclip/pkg/log"
	"gitlab.com/tozd/go/errors"
)

// NewShowCmd creates a new show command
func NewShowCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "show",
		Aliases: []string{"ls"},
		Short:   "List the staged paths",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			console := log.FromContext(ctx)

			staged, err := opts.Operator.Show(ctx)
			if err != nil {
				return errors.Errorf("showing clipboard: %w", err)
			}

			missing := 0
			for _, s := range staged {
				if s.Exists {
					console.Staged(string(s.Entry))
					continue
				}
				missing++
				console.Ignored(string(s.Entry), "missing")
			}

			if len(staged) > 0 {
				console.LogNewline()
			}
			console.Infof("%d staged, %d missing", len(staged)-missing, missing)
			return nil
		},
	}

	return cmd
}
