package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/cursorctl/api/schemas"
	"github.com/xkilldash9x/cursorctl/internal/observability"
)

var errNotUnderstood = errors.New("command not understood")

func newDoCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "do <command...>",
		Short: "Run a single command and exit",
		Example: `  cursorctl do move to center
  cursorctl do "type \"hello\" and press enter"
  cursorctl --dry-run --json do double click at 200, 100`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := configFromContext(ctx)
			if err != nil {
				return err
			}

			rt, err := newRuntime(ctx, cfg, observability.GetLogger())
			if err != nil {
				return err
			}
			rt.Start(ctx)
			defer rt.Stop()

			text := strings.Join(args, " ")
			reply := rt.Session.Handle(ctx, text)
			if err := printReply(cmd.OutOrStdout(), reply, opts.json); err != nil {
				return err
			}

			switch {
			case reply.Err != nil:
				return reply.Err
			case reply.Intent.Kind == schemas.IntentUnrecognized:
				return fmt.Errorf("%w: %q", errNotUnderstood, text)
			}
			return nil
		},
	}
}
