package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pinmap/internal/mapping/application"
	mapping "pinmap/internal/mapping/domain"
)

func newGenerateCommand(a *app) *cobra.Command {
	var (
		src     sourceFlags
		assigns []string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Build a session from options and mapping tables and export it",
		Long: `Build a session from an options table and a mapping table, apply the given
assignments in order and export the result with the configured backends.

Examples:
  pinmap generate --options options.csv --mapping mapping.csv
  pinmap generate --options pins.xlsx --mapping grid.xlsx --assign C3="J1.2 - P0_1 - SPI0 - MOSI"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			requests, err := parseAssignments(assigns)
			if err != nil {
				return err
			}
			events := &eventLog{log: a.log}
			s, stop, err := a.openSession(ctx, src, events)
			if err != nil {
				return err
			}
			defer stop()

			for _, req := range requests {
				if _, err := s.Submit(ctx, req); err != nil {
					return err
				}
			}
			data, err := a.dataBackend(ctx, a.cfg.Export)
			if err != nil {
				return err
			}
			if err := s.Export(ctx, data, a.reportBackend(), a.cfg.Export.Dir); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "exported %s to %s (%s)\n", s.Name(), a.cfg.Export.Dir, data.Name())
			if failed := events.failed(); len(failed) > 0 {
				return fmt.Errorf("%d assignment(s) rejected, first: %s", len(failed), failed[0].Error)
			}
			return nil
		},
	}
	src.register(cmd)
	cmd.Flags().StringArrayVar(&assigns, "assign", nil, `assignment POSITION=LABEL, e.g. C3="J1.2 - P0_1 - SPI0 - MOSI" (repeatable)`)
	return cmd
}

func parseAssignments(values []string) ([]application.Request, error) {
	requests := make([]application.Request, 0, len(values))
	for _, value := range values {
		position, label, ok := strings.Cut(value, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --assign %q: want POSITION=LABEL", value)
		}
		coord, err := mapping.ParseCoordinate(position)
		if err != nil {
			return nil, err
		}
		requests = append(requests, application.Assign{Entry: coord, Label: strings.TrimSpace(label)})
	}
	return requests, nil
}
