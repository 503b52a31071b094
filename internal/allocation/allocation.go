// Package allocation distributes the aggregate wage and profit bills of a
// decile table across the six population classes according to target share
// vectors, and checks that the result reproduces the bills.
//
// Every function here is pure: no globals are read or written, and calling
// Allocate twice with the same Input yields identical output.
package allocation

import (
	"math"

	"github.com/seenimoa/ineqstat/pkg/models"
)

// DefaultTolerance is the relative tolerance used when re-aggregated class
// bills are compared against the grand totals.
const DefaultTolerance = 1e-6

// Input is everything the Allocator needs. Share vectors are used as given:
// they are not range-checked and need not sum to one (see Validate).
type Input struct {
	Deciles          models.DecileTable
	WageTargets      models.ShareVector
	ProfitTargets    models.ShareVector
	PopulationShares models.ShareVector
}

// GrandTotals sums wages and profit proxies over every decile.
func GrandTotals(table models.DecileTable) models.GrandTotals {
	var gt models.GrandTotals
	for _, d := range table {
		gt.Wages += d.Wages
		gt.Profits += d.ProfitProxy
	}
	return gt
}

// Allocate derives one ClassAllocation per class, richest first.
// A class missing from a share vector is allocated zero of that bill.
func Allocate(in Input) models.Allocation {
	totals := GrandTotals(in.Deciles)

	classes := make([]models.ClassAllocation, 0, len(models.AllClasses()))
	for _, id := range models.AllClasses() {
		classes = append(classes, allocateClass(id, totals, in.WageTargets[id], in.ProfitTargets[id]))
	}

	a := models.Allocation{
		Totals:  totals,
		Classes: classes,
	}
	a.Verification = Verify(a, DefaultTolerance)
	return a
}

func allocateClass(id models.ClassID, totals models.GrandTotals, wageTarget, profitTarget float64) models.ClassAllocation {
	wages := wageTarget * totals.Wages
	profits := profitTarget * totals.Profits
	total := wages + profits

	return models.ClassAllocation{
		Class:               id,
		WageShareTarget:     wageTarget,
		ProfitShareTarget:   profitTarget,
		Wages:               wages,
		Profits:             profits,
		TotalIncome:         total,
		InternalWageShare:   safeDiv(wages, total),
		InternalProfitShare: safeDiv(profits, total),
		ShareOfTotalWages:   safeDiv(wages, totals.Wages),
		ShareOfTotalProfits: safeDiv(profits, totals.Profits),
	}
}

// Verify re-sums the class bills and compares them with the grand totals
// within a relative tolerance. It never modifies a.
func Verify(a models.Allocation, tol float64) models.Verification {
	v := models.Verification{Tolerance: tol}
	for _, c := range a.Classes {
		v.SumWages += c.Wages
		v.SumProfits += c.Profits
		v.SumWageSharePct += c.ShareOfTotalWages * 100
		v.SumProfitSharePct += c.ShareOfTotalProfits * 100
	}
	v.WagesMatch = approxEqual(v.SumWages, a.Totals.Wages, tol)
	v.ProfitsMatch = approxEqual(v.SumProfits, a.Totals.Profits, tol)
	return v
}

// safeDiv returns a/b, or 0 when b is zero.
func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// approxEqual compares got and want relative to the larger magnitude; two
// zeros are equal.
func approxEqual(got, want, tol float64) bool {
	scale := math.Max(math.Abs(got), math.Abs(want))
	if scale == 0 {
		return true
	}
	return math.Abs(got-want) <= tol*scale
}
