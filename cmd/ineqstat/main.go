// Command ineqstat reports wage/profit composition and the Gini coefficient by population class.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seenimoa/ineqstat/internal/config"
	"github.com/seenimoa/ineqstat/internal/logging"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// app carries what PersistentPreRunE loads to every subcommand.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "ineqstat",
		Short: "ineqstat — income composition and Gini coefficient by class",
		Long: `ineqstat distributes the aggregate wage and profit bills of a decile table
across six population classes (Top 0.01% to Bottom 50%) using target share
vectors, reports each class's income and composition, and computes the Gini
coefficient of the resulting distribution from its Lorenz curve.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			configFile, _ := cmd.Flags().GetString("config")
			if configFile != "" {
				a.cfg, err = config.LoadFromFile(configFile)
			} else {
				a.cfg, err = config.Load()
			}
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			levelOverride, _ := cmd.Flags().GetString("log-level")
			a.logger, err = logging.New(a.cfg.Logging, levelOverride)
			if err != nil {
				return err
			}
			a.logger.Debug("configuration loaded",
				zap.String("report_format", a.cfg.Report.Format),
				zap.Int("precision", a.cfg.Report.Precision),
			)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	root.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(
		versionCmd(),
		reportCmd(a),
		giniCmd(a),
		validateCmd(a),
		referenceCmd(a),
		serveCmd(a),
		statusCmd(a),
	)
	return root
}
