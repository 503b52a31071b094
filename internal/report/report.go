// Package report runs the allocation and Gini pipeline over an input and
// renders the result as text or JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/seenimoa/ineqstat/internal/allocation"
	"github.com/seenimoa/ineqstat/internal/dataset"
	"github.com/seenimoa/ineqstat/internal/gini"
	"github.com/seenimoa/ineqstat/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Report Configuration
// ════════════════════════════════════════════════════════════════════

// ReportFormat specifies the output format.
type ReportFormat string

const (
	FormatText ReportFormat = "text"
	FormatJSON ReportFormat = "json"
)

// ReportConfig controls report generation behaviour.
type ReportConfig struct {
	Format           ReportFormat
	Precision        int     // decimals for amounts and percentages
	IncludeReference bool    // attach the decile-only reference bands
	Strict           bool    // fail instead of attaching violations
	Tolerance        float64 // relative tolerance for re-aggregation
	Now              func() time.Time
}

// DefaultReportConfig returns sensible defaults.
func DefaultReportConfig() ReportConfig {
	return ReportConfig{
		Format:    FormatText,
		Precision: 2,
		Tolerance: allocation.DefaultTolerance,
		Now:       time.Now,
	}
}

// ParseFormat maps a format name to a ReportFormat.
func ParseFormat(s string) (ReportFormat, error) {
	switch ReportFormat(s) {
	case FormatText, FormatJSON:
		return ReportFormat(s), nil
	default:
		return "", fmt.Errorf("unsupported report format %q (want text or json)", s)
	}
}

// StudyInput bundles the compiled-in decile table and share vectors.
func StudyInput() allocation.Input {
	return allocation.Input{
		Deciles:          dataset.Deciles(),
		WageTargets:      dataset.WageTargets(),
		ProfitTargets:    dataset.ProfitTargets(),
		PopulationShares: dataset.PopulationShares(),
	}
}

// ════════════════════════════════════════════════════════════════════
// Build
// ════════════════════════════════════════════════════════════════════

// Build runs Allocate, Verify, Validate and the Gini engine over in.
//
// Validation findings (malformed shares, groups out of income order) are
// attached to the report. With cfg.Strict they become an error instead; the
// error wraps allocation.ErrMalformedShares for share findings.
func Build(in allocation.Input, cfg ReportConfig) (*models.InequalityReport, error) {
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = allocation.DefaultTolerance
	}
	now := time.Now
	if cfg.Now != nil {
		now = cfg.Now
	}

	alloc := allocation.Allocate(in)
	verification := allocation.Verify(alloc, cfg.Tolerance)

	violations, verr := allocation.Validate(in)
	groups := gini.GroupsFromAllocation(alloc, in.PopulationShares)
	ordering := gini.CheckOrdering(groups)
	violations = append(violations, ordering...)

	if cfg.Strict {
		if verr != nil {
			return nil, fmt.Errorf("input validation failed: %w", verr)
		}
		if len(ordering) > 0 {
			return nil, fmt.Errorf("input validation failed: %s", ordering[0].Detail)
		}
	}

	r := &models.InequalityReport{
		GeneratedAt:      now().UTC(),
		Deciles:          in.Deciles,
		Totals:           alloc.Totals,
		Classes:          alloc.Classes,
		Verification:     verification,
		PopulationShares: in.PopulationShares,
		Gini:             gini.Coefficient(groups),
		Violations:       violations,
	}
	if cfg.IncludeReference {
		r.Reference = allocation.ReferenceClasses(in.Deciles)
	}
	return r, nil
}

// ════════════════════════════════════════════════════════════════════
// Render
// ════════════════════════════════════════════════════════════════════

// Render writes r to w in cfg.Format.
func Render(w io.Writer, r *models.InequalityReport, cfg ReportConfig) error {
	if r == nil {
		return fmt.Errorf("report is nil")
	}
	switch cfg.Format {
	case FormatJSON:
		return RenderJSON(w, r)
	case FormatText, "":
		return RenderText(w, r, cfg.Precision)
	default:
		return fmt.Errorf("unsupported report format %q", cfg.Format)
	}
}

// RenderJSON writes r as indented JSON.
func RenderJSON(w io.Writer, r *models.InequalityReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}
