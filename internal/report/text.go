package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/seenimoa/ineqstat/pkg/models"
	"github.com/seenimoa/ineqstat/pkg/utils"
)

// GiniDecimals is the precision of the Gini coefficient in text output.
const GiniDecimals = 4

// shareDecimals is the precision of internal wage/profit shares.
const shareDecimals = 4

// ════════════════════════════════════════════════════════════════════
// Plain-text renderer
// ════════════════════════════════════════════════════════════════════

// RenderText writes a terminal-friendly report. Amounts and percentages use
// precision decimals; internal shares and the Gini coefficient use four.
func RenderText(w io.Writer, r *models.InequalityReport, precision int) error {
	if r == nil {
		return fmt.Errorf("report is nil")
	}
	_, err := io.WriteString(w, renderText(r, precision))
	return err
}

func renderText(r *models.InequalityReport, precision int) string {
	var sb strings.Builder
	line := strings.Repeat("═", 72)
	thinLine := strings.Repeat("─", 72)
	amount := func(v float64) string { return utils.FormatAmount(v, precision) }
	pct := func(v float64) string { return utils.FormatPct(v, precision) }

	sb.WriteString("\n" + line + "\n")
	sb.WriteString("  Income Distribution by Class — Wages, Profits and Gini\n")
	sb.WriteString(fmt.Sprintf("  Generated: %s\n", utils.FormatTimestamp(r.GeneratedAt)))
	sb.WriteString(line + "\n\n")

	// Grand totals
	sb.WriteString("  ■ GRAND TOTALS (sum of D1–D10)\n")
	sb.WriteString(fmt.Sprintf("    %-22s %s\n", "Wages:", amount(r.Totals.Wages)))
	sb.WriteString(fmt.Sprintf("    %-22s %s\n", "Profits:", amount(r.Totals.Profits)))
	sb.WriteString(fmt.Sprintf("    %-22s %s (%s)\n", "Total income:", amount(r.Totals.Total()), utils.FormatCompact(r.Totals.Total())))
	sb.WriteString(thinLine + "\n")

	// Targets
	sb.WriteString("\n  ■ TARGET DISTRIBUTION\n")
	sb.WriteString(fmt.Sprintf("    %-24s %12s %12s %12s\n", "Class", "Profit bill", "Wage bill", "Population"))
	for _, c := range r.Classes {
		sb.WriteString(fmt.Sprintf("    %-24s %12s %12s %12s\n", c.Class,
			pct(c.ProfitShareTarget), pct(c.WageShareTarget), pct(r.PopulationShares[c.Class])))
	}
	sb.WriteString(thinLine + "\n")

	// Per-class derived data
	sb.WriteString("\n  ■ DERIVED CLASS DATA\n")
	for _, c := range r.Classes {
		sb.WriteString(fmt.Sprintf("  %s\n", c.Class))
		sb.WriteString(fmt.Sprintf("    %-22s %s\n", "Total income:", amount(c.TotalIncome)))
		sb.WriteString(fmt.Sprintf("    %-22s %s\n", "Absolute wages:", amount(c.Wages)))
		sb.WriteString(fmt.Sprintf("    %-22s %s\n", "Absolute profits:", amount(c.Profits)))
		sb.WriteString(fmt.Sprintf("    %-22s %s\n", "Internal wage share:", utils.FormatPlain(c.InternalWageShare, shareDecimals)))
		sb.WriteString(fmt.Sprintf("    %-22s %s\n", "Internal profit share:", utils.FormatPlain(c.InternalProfitShare, shareDecimals)))
	}
	sb.WriteString(thinLine + "\n")

	// Distribution of the bills vs. targets
	sb.WriteString("\n  ■ DISTRIBUTION OF TOTAL WAGES AND PROFITS\n")
	for _, c := range r.Classes {
		sb.WriteString(fmt.Sprintf("  %s\n", c.Class))
		sb.WriteString(fmt.Sprintf("    Wages:   %s | share %s (target %s)\n",
			amount(c.Wages), pct(c.ShareOfTotalWages), pct(c.WageShareTarget)))
		sb.WriteString(fmt.Sprintf("    Profits: %s | share %s (target %s)\n",
			amount(c.Profits), pct(c.ShareOfTotalProfits), pct(c.ProfitShareTarget)))
	}
	sb.WriteString(thinLine + "\n")

	// Verification
	v := r.Verification
	sb.WriteString("\n  ■ VERIFICATION\n")
	sb.WriteString(fmt.Sprintf("    Sum of class wages:   %s vs %s  %s\n", amount(v.SumWages), amount(r.Totals.Wages), checkMark(v.WagesMatch)))
	sb.WriteString(fmt.Sprintf("    Sum of class profits: %s vs %s  %s\n", amount(v.SumProfits), amount(r.Totals.Profits), checkMark(v.ProfitsMatch)))
	sb.WriteString(fmt.Sprintf("    Sum of wage shares:   %s%%\n", utils.FormatPlain(v.SumWageSharePct, precision)))
	sb.WriteString(fmt.Sprintf("    Sum of profit shares: %s%%\n", utils.FormatPlain(v.SumProfitSharePct, precision)))
	sb.WriteString(thinLine + "\n")

	// Findings
	if len(r.Violations) > 0 {
		sb.WriteString("\n  ■ INPUT FINDINGS\n")
		for _, viol := range r.Violations {
			sb.WriteString(fmt.Sprintf("    [%s] %s\n", viol.Kind, viol.Detail))
		}
		sb.WriteString(thinLine + "\n")
	}

	// Reference bands
	if len(r.Reference) > 0 {
		sb.WriteString("\n  ■ REFERENCE: DECILE-ONLY BANDS (not used for Gini)\n")
		writeReference(&sb, r.Reference, precision)
		sb.WriteString(thinLine + "\n")
	}

	// Gini
	sb.WriteString("\n  ★ GINI COEFFICIENT\n")
	sb.WriteString(fmt.Sprintf("    %s\n", utils.FormatPlain(r.Gini.Coefficient, GiniDecimals)))
	if r.Gini.Degenerate {
		sb.WriteString("    Warning: total income is zero; the coefficient is not meaningful.\n")
	}

	sb.WriteString("\n" + line + "\n")
	return sb.String()
}

// RenderReference writes only the decile-only reference bands.
func RenderReference(w io.Writer, ref []models.ReferenceClass, precision int) error {
	var sb strings.Builder
	writeReference(&sb, ref, precision)
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeReference(sb *strings.Builder, ref []models.ReferenceClass, precision int) {
	for _, rc := range ref {
		sb.WriteString(fmt.Sprintf("  %s\n", rc.Label))
		sb.WriteString(fmt.Sprintf("    %-22s %s\n", "Wages:", utils.FormatAmount(rc.Wages, precision)))
		sb.WriteString(fmt.Sprintf("    %-22s %s\n", "Profits:", utils.FormatAmount(rc.Profits, precision)))
		sb.WriteString(fmt.Sprintf("    %-22s %s\n", "Wage share:", utils.FormatPlain(rc.InternalWageShare, shareDecimals)))
		sb.WriteString(fmt.Sprintf("    %-22s %s\n", "Profit share:", utils.FormatPlain(rc.InternalProfitShare, shareDecimals)))
	}
}

// RenderLorenz writes the Gini coefficient and its Lorenz curve.
func RenderLorenz(w io.Writer, g models.GiniResult) error {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Gini: %s\n", utils.FormatPlain(g.Coefficient, GiniDecimals)))
	if g.Degenerate {
		sb.WriteString("Warning: total income is zero; the coefficient is not meaningful.\n")
	}
	sb.WriteString(fmt.Sprintf("%12s %12s\n", "cum. pop", "cum. income"))
	for _, p := range g.Lorenz {
		sb.WriteString(fmt.Sprintf("%12s %12s\n", utils.FormatPlain(p.CumPopulation, 4), utils.FormatPlain(p.CumIncome, 4)))
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func checkMark(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗ MISMATCH"
}
