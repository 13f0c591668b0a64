package cli

import (
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"pinmap/internal/config"
	"pinmap/internal/platform/logger"
)

// app carries state shared by the subcommands.
type app struct {
	configPath string
	logMode    string

	cfg config.Config
	log *logger.Logger
	out io.Writer
	db  *sql.DB
}

// NewRootCommand builds the pinmap command tree.
func NewRootCommand() *cobra.Command {
	a := &app{log: logger.Nop(), out: os.Stdout}
	root := &cobra.Command{
		Use:   "pinmap",
		Short: "Adapter pin assignment and conflict resolution",
		Long: `pinmap assigns MCU pin functions to the pin grid of a host board and keeps
every option list consistent with bus locks, pin sharing and function conflicts.

Examples:
  pinmap generate --options options.csv --mapping mapping.csv --assign C3="J1.2 - P0_1 - SPI0 - MOSI"
  pinmap show --options options.csv --mapping mapping.csv
  pinmap serve
  pinmap report`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.out = cmd.OutOrStdout()
			return a.init()
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			a.close()
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML config file (default $PINMAP_CONFIG)")
	root.PersistentFlags().StringVar(&a.logMode, "log-mode", "", "log mode: prod, debug or dev")

	root.AddCommand(
		newGenerateCommand(a),
		newShowCommand(a),
		newReportCommand(a),
		newServeCommand(a),
		newTokenCommand(a),
	)
	return root
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logMode != "" {
		cfg.LogMode = a.logMode
	}
	a.cfg = cfg
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return err
	}
	a.log = log
	return nil
}

func (a *app) close() {
	if a.db != nil {
		_ = a.db.Close()
		a.db = nil
	}
	a.log.Sync()
}
