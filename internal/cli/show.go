package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"pinmap/internal/mapping/application"
)

func newShowCommand(a *app) *cobra.Command {
	var (
		src         sourceFlags
		showOptions bool
	)
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the grid with assignments and legal options",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, stop, err := a.openSession(ctx, src, &eventLog{log: a.log})
			if err != nil {
				return err
			}
			defer stop()

			p, err := s.Pipeline()
			if err != nil {
				return err
			}
			if err := p.Flush(ctx); err != nil {
				return err
			}
			printSnapshot(a, p.Snapshot(), showOptions)
			return nil
		},
	}
	src.register(cmd)
	cmd.Flags().BoolVarP(&showOptions, "list", "l", false, "list the legal options of every entry")
	return cmd
}

func printSnapshot(a *app, snap *application.Snapshot, showOptions bool) {
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "POS\tSIGNAL\tBUS\tPRIMARY\tASSIGNED")
	for _, e := range snap.Entries {
		primary := ""
		if e.Primary {
			primary = "x"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.Position, e.Signal, e.Bus, primary, e.Selected)
		if showOptions {
			for i, option := range e.Options[1:] {
				fmt.Fprintf(w, "\t\t\t%d\t%s\n", i+1, option)
			}
		}
	}
	_ = w.Flush()

	for _, bus := range snap.Buses {
		if bus.Tag == "" {
			continue
		}
		state := "free"
		if bus.Locked {
			state = "locked to " + bus.Module
		}
		fmt.Fprintf(a.out, "bus %s: %s\n", bus.Tag, state)
	}
}
