package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/cursorctl/api/schemas"
	"github.com/xkilldash9x/cursorctl/internal/observability"
)

type positionEntry struct {
	Name schemas.NamedPosition `json:"name"`
	X    int                   `json:"x"`
	Y    int                   `json:"y"`
}

func newPositionsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "positions",
		Short: "List the coordinates of every named position on this screen",
		Args:  cobra.NoArgs,
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
			engine := rt.Engine
			geo := engine.Geometry()

			entries := make([]positionEntry, 0, len(schemas.NamedPositions))
			for _, pos := range schemas.NamedPositions {
				p, err := engine.Translator().Resolve(pos, geo)
				if err != nil {
					return err
				}
				entries = append(entries, positionEntry{Name: pos, X: p.X, Y: p.Y})
			}

			out := cmd.OutOrStdout()
			if opts.json {
				body, err := json.MarshalIndent(map[string]any{"screen": geo, "positions": entries}, "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, string(body))
				return err
			}

			fmt.Fprintf(out, "Screen %dx%d, margin %dpx\n", geo.Width, geo.Height, engine.Translator().Options().MarginPx)
			for _, e := range entries {
				fmt.Fprintf(out, "  %-14s %5d, %d\n", e.Name, e.X, e.Y)
			}
			return nil
		},
	}
}
