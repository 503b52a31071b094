package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seenimoa/ineqstat/api"
	"github.com/seenimoa/ineqstat/internal/allocation"
	"github.com/seenimoa/ineqstat/internal/dataset"
	"github.com/seenimoa/ineqstat/internal/report"
	"github.com/seenimoa/ineqstat/pkg/utils"
)

// errInvalidInput is returned by validate when any finding exists, so the
// process exits non-zero.
var errInvalidInput = errors.New("input shares are malformed")

// reportConfig merges the loaded configuration with command flags.
func (a *app) reportConfig(cmd *cobra.Command) (report.ReportConfig, error) {
	cfg := report.DefaultReportConfig()
	cfg.Precision = a.cfg.Report.Precision
	cfg.IncludeReference = a.cfg.Report.IncludeReference
	cfg.Strict = a.cfg.Report.Strict
	cfg.Tolerance = a.cfg.Report.Tolerance

	format := a.cfg.Report.Format
	if cmd.Flags().Changed("format") {
		format, _ = cmd.Flags().GetString("format")
	}
	f, err := report.ParseFormat(format)
	if err != nil {
		return cfg, err
	}
	cfg.Format = f

	if cmd.Flags().Changed("reference") {
		cfg.IncludeReference, _ = cmd.Flags().GetBool("reference")
	}
	if cmd.Flags().Changed("strict") {
		cfg.Strict, _ = cmd.Flags().GetBool("strict")
	}
	if cmd.Flags().Changed("precision") {
		cfg.Precision, _ = cmd.Flags().GetInt("precision")
	}
	return cfg, nil
}

// --- Version Command ---

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ineqstat %s\n", version)
			fmt.Fprintf(out, "  commit:  %s\n", commit)
			fmt.Fprintf(out, "  built:   %s\n", date)
		},
	}
}

// --- Report Command ---

func reportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the full class allocation and Gini report",
		Long: `Allocate the decile table's wage and profit bills across the six classes,
verify the allocation reproduces the grand totals, and compute the Gini
coefficient.

Examples:
  ineqstat report
  ineqstat report --format json
  ineqstat report --reference --precision 0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.reportConfig(cmd)
			if err != nil {
				return err
			}

			r, err := report.Build(report.StudyInput(), cfg)
			if err != nil {
				return err
			}
			a.logger.Debug("report built",
				zap.Float64("gini", r.Gini.Coefficient),
				zap.Int("violations", len(r.Violations)),
				zap.Bool("verified", r.Verification.OK()),
			)
			if !r.Verification.OK() {
				a.logger.Warn("class bills do not reproduce the grand totals",
					zap.Float64("sum_wages", r.Verification.SumWages),
					zap.Float64("sum_profits", r.Verification.SumProfits),
				)
			}
			return report.Render(cmd.OutOrStdout(), r, cfg)
		},
	}
	cmd.Flags().String("format", "text", "output format (text, json)")
	cmd.Flags().Bool("reference", false, "include the decile-only reference bands")
	cmd.Flags().Bool("strict", false, "fail when input shares are malformed")
	cmd.Flags().Int("precision", 2, "decimals for amounts and percentages")
	return cmd
}

// --- Gini Command ---

func giniCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "gini",
		Short: "Print the Gini coefficient and its Lorenz curve",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := report.DefaultReportConfig()
			cfg.Tolerance = a.cfg.Report.Tolerance
			r, err := report.Build(report.StudyInput(), cfg)
			if err != nil {
				return err
			}
			if r.Gini.Degenerate {
				a.logger.Warn("total income is zero; Gini coefficient is degenerate")
			}
			return report.RenderLorenz(cmd.OutOrStdout(), r.Gini)
		},
	}
}

// --- Validate Command ---

func validateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the share vectors and class ordering",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := report.Build(report.StudyInput(), report.ReportConfig{Tolerance: a.cfg.Report.Tolerance})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(r.Violations) == 0 && r.Verification.OK() {
				fmt.Fprintln(out, "✓ All share vectors sum to 1 and classes are ordered poorest to richest.")
				return nil
			}
			for _, v := range r.Violations {
				fmt.Fprintf(out, "✗ [%s] %s\n", v.Kind, v.Detail)
			}
			if !r.Verification.OK() {
				fmt.Fprintln(out, "✗ class bills do not reproduce the grand totals")
			}
			a.logger.Warn("validation failed", zap.Int("violations", len(r.Violations)))
			return errInvalidInput
		},
	}
}

// --- Reference Command ---

func referenceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reference",
		Short: "Print the decile-only top 10% / middle 40% / bottom 50% bands",
		Long: `Aggregate raw deciles into the bands they can express directly. This view
ignores the target shares and does not feed the Gini coefficient.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := allocation.ReferenceClasses(dataset.Deciles())
			return report.RenderReference(cmd.OutOrStdout(), ref, a.cfg.Report.Precision)
		},
	}
}

// --- Serve Command (API Server) ---

func serveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			addr := a.cfg.API.Addr()
			if cmd.Flags().Changed("addr") {
				addr, _ = cmd.Flags().GetString("addr")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := api.NewServer(a.cfg, a.logger, api.WithVersion(version))
			fmt.Fprintf(cmd.OutOrStdout(), "🌐 Starting ineqstat API server on %s\n", addr)
			return srv.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().String("addr", "", "listen address, overrides api.host/api.port")
	return cmd
}

// --- Status Command ---

func statusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show configuration and input summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := report.StudyInput()
			totals := allocation.GrandTotals(in.Deciles)
			violations, _ := allocation.Validate(in)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "═══════════════════════════════════════")
			fmt.Fprintln(out, "  ineqstat — Status")
			fmt.Fprintln(out, "═══════════════════════════════════════")
			fmt.Fprintf(out, "  Version:       %s (%s)\n", version, commit)
			fmt.Fprintln(out)

			fmt.Fprintln(out, "  Configuration:")
			fmt.Fprintf(out, "    Report:        %s (precision %d, strict %t)\n",
				a.cfg.Report.Format, a.cfg.Report.Precision, a.cfg.Report.Strict)
			fmt.Fprintf(out, "    API Server:    %s\n", a.cfg.API.Addr())
			fmt.Fprintf(out, "    Logging:       %s (%s)\n", a.cfg.Logging.Level, a.cfg.Logging.Format)
			fmt.Fprintln(out)

			fmt.Fprintln(out, "  Input:")
			fmt.Fprintf(out, "    Deciles:       %d\n", len(in.Deciles))
			fmt.Fprintf(out, "    Wage bill:     %s\n", utils.FormatCompact(totals.Wages))
			fmt.Fprintf(out, "    Profit bill:   %s\n", utils.FormatCompact(totals.Profits))
			status := "✅ valid"
			if len(violations) > 0 {
				status = fmt.Sprintf("❌ %d finding(s)", len(violations))
			}
			fmt.Fprintf(out, "    Shares:        %s\n", status)
			fmt.Fprintln(out, "═══════════════════════════════════════")
			return nil
		},
	}
}
