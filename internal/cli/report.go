package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newReportCommand(a *app) *cobra.Command {
	var src sourceFlags
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write the PDF report of an imported or generated session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			report := a.reportBackend()
			if report == nil {
				return errors.New("report backend is none")
			}
			s, stop, err := a.openSession(ctx, src, &eventLog{log: a.log})
			if err != nil {
				return err
			}
			defer stop()

			if err := s.WriteReport(ctx, report, a.cfg.Export.Dir); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "wrote %s report for %s to %s\n", report.Name(), s.Name(), a.cfg.Export.Dir)
			return nil
		},
	}
	src.register(cmd)
	return cmd
}
