package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/cursorctl/internal/observability"
	"github.com/xkilldash9x/cursorctl/internal/playbook"
)

var errPlaybookFailed = errors.New("playbook failed")

func newRunCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run <playbook>",
		Short: "Run a YAML or JSON playbook of commands and actions",
		Long: `Runs every step of a playbook in order and stops at the first failing step,
unless the step or the playbook sets continue_on_error.

  name: open-menu
  steps:
    - say: move to top left
    - action: {type: click, x: 40, y: 12}
    - say: type "settings" and press enter`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := configFromContext(ctx)
			if err != nil {
				return err
			}

			pb, err := playbook.Load(args[0])
			if err != nil {
				return err
			}

			logger := observability.GetLogger()
			rt, err := newRuntime(ctx, cfg, logger)
			if err != nil {
				return err
			}
			rt.Start(ctx)
			defer rt.Stop()

			report := playbook.NewRunner(rt.Session, rt.Queue, logger).Run(ctx, pb)
			if err := printReport(cmd.OutOrStdout(), report, opts.json); err != nil {
				return err
			}
			if !report.Success {
				return fmt.Errorf("%w: %s (%d of %d steps failed)", errPlaybookFailed, report.Playbook, report.Failures, len(pb.Steps))
			}
			return nil
		},
	}
}

func printReport(out io.Writer, report playbook.Report, asJSON bool) error {
	if asJSON {
		body, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		_, err = fmt.Fprintln(out, string(body))
		return err
	}

	for _, s := range report.Steps {
		mark := "ok"
		if s.Err != nil {
			mark = "FAILED"
		}
		line := fmt.Sprintf("[%d] %-6s %s", s.Index+1, mark, s.Label)
		switch {
		case s.Err != nil:
			line += ": " + s.Error
		case s.Reply != "":
			line += ": " + s.Reply
		}
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	status := "succeeded"
	if !report.Success {
		status = "failed"
	}
	_, err := fmt.Fprintf(out, "Playbook %s %s in %s.\n", report.Playbook, status, report.Elapsed.Round(time.Millisecond))
	return err
}
