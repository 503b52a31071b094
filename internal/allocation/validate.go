package allocation

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/hashicorp/go-multierror"

	"github.com/seenimoa/ineqstat/pkg/models"
)

// ShareTolerance is the absolute tolerance on a share vector summing to 1.
const ShareTolerance = 1e-9

// ErrMalformedShares is wrapped by every error Validate reports.
var ErrMalformedShares = errors.New("malformed shares")

// Vector names used in Violation.Vector.
const (
	VectorDeciles       = "deciles"
	VectorWageTargets   = "wage_targets"
	VectorProfitTargets = "profit_targets"
	VectorPopulation    = "population"
)

// Validate checks the input invariants the Allocator itself never enforces:
// non-negative deciles, every class present exactly in each vector, targets
// in [0,1], population shares in (0,1], and each vector summing to 1.
//
// It returns every finding, plus a combined error (nil when there are none)
// whose parts all wrap ErrMalformedShares. Allocate does not depend on it.
func Validate(in Input) ([]models.Violation, error) {
	var violations []models.Violation

	for _, d := range in.Deciles {
		if d.Wages < 0 || d.ProfitProxy < 0 {
			violations = append(violations, models.Violation{
				Kind:   models.ViolationOutOfRange,
				Vector: VectorDeciles,
				Value:  math.Min(d.Wages, d.ProfitProxy),
				Detail: fmt.Sprintf("decile %s has a negative value (wages=%g, profit proxy=%g)", d.Key, d.Wages, d.ProfitProxy),
			})
		}
	}

	violations = append(violations, checkVector(VectorWageTargets, in.WageTargets, false)...)
	violations = append(violations, checkVector(VectorProfitTargets, in.ProfitTargets, false)...)
	violations = append(violations, checkVector(VectorPopulation, in.PopulationShares, true)...)

	return violations, violationsError(violations)
}

// checkVector reports presence, range and sum findings for one share vector.
// When strictPositive is set, zero is out of range.
func checkVector(name string, v models.ShareVector, strictPositive bool) []models.Violation {
	var out []models.Violation

	known := make(map[models.ClassID]bool, len(models.AllClasses()))
	for _, id := range models.AllClasses() {
		known[id] = true
		share, ok := v[id]
		if !ok {
			out = append(out, models.Violation{
				Kind:   models.ViolationMissingClass,
				Vector: name,
				Class:  id,
				Detail: fmt.Sprintf("%s has no entry for %s", name, id),
			})
			continue
		}
		if share < 0 || share > 1 || (strictPositive && share == 0) || math.IsNaN(share) {
			want := "[0,1]"
			if strictPositive {
				want = "(0,1]"
			}
			out = append(out, models.Violation{
				Kind:   models.ViolationOutOfRange,
				Vector: name,
				Class:  id,
				Value:  share,
				Detail: fmt.Sprintf("%s share for %s is %g, want %s", name, id, share, want),
			})
		}
	}

	var unknown []string
	for id := range v {
		if !known[id] {
			unknown = append(unknown, string(id))
		}
	}
	sort.Strings(unknown)
	for _, id := range unknown {
		out = append(out, models.Violation{
			Kind:   models.ViolationUnknownClass,
			Vector: name,
			Class:  models.ClassID(id),
			Value:  v[models.ClassID(id)],
			Detail: fmt.Sprintf("%s has an entry for unknown class %q", name, id),
		})
	}

	if sum := v.Sum(); math.Abs(sum-1) > ShareTolerance {
		out = append(out, models.Violation{
			Kind:   models.ViolationSumNotOne,
			Vector: name,
			Value:  sum,
			Detail: fmt.Sprintf("%s sums to %.9f, want 1", name, sum),
		})
	}
	return out
}

func violationsError(violations []models.Violation) error {
	var result *multierror.Error
	for _, v := range violations {
		result = multierror.Append(result, fmt.Errorf("%w: %s", ErrMalformedShares, v.Detail))
	}
	return result.ErrorOrNil()
}
