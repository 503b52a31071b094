// Package models defines the data structures shared by the allocation,
// Gini, report and API layers of ineqstat.
package models

import "time"

// Decile is one tenth of the population ranked by income, with its wage bill
// and profit proxy (EOB/RMB) in the source table's currency units.
type Decile struct {
	Key         string  `json:"key"` // "D1".."D10"
	Wages       float64 `json:"wages"`
	ProfitProxy float64 `json:"profit_proxy"`
}

// DecileTable is an ordered D1..D10 table.
type DecileTable []Decile

// ClassID names one of the six population bands.
type ClassID string

const (
	ClassTop001   ClassID = "Class 1 (Top 0.01%)"
	ClassNext009  ClassID = "Class 2 (Next 0.09%)"
	ClassNext09   ClassID = "Class 3 (Next 0.9%)"
	ClassNext9    ClassID = "Class 4 (Next 9%)"
	ClassMiddle40 ClassID = "Class 5 (Middle 40%)"
	ClassBottom50 ClassID = "Class 6 (Bottom 50%)"
)

// AllClasses returns the six classes ordered richest to poorest.
func AllClasses() []ClassID {
	return []ClassID{
		ClassTop001,
		ClassNext009,
		ClassNext09,
		ClassNext9,
		ClassMiddle40,
		ClassBottom50,
	}
}

// ClassesPoorestFirst returns the six classes ordered poorest to richest,
// the order the Lorenz curve is built in.
func ClassesPoorestFirst() []ClassID {
	all := AllClasses()
	out := make([]ClassID, len(all))
	for i, c := range all {
		out[len(all)-1-i] = c
	}
	return out
}

// ShareVector maps each class to a fraction in [0,1].
// Wage targets, profit targets and population shares all use this shape.
type ShareVector map[ClassID]float64

// Sum returns the total of all shares.
func (s ShareVector) Sum() float64 {
	var total float64
	for _, v := range s {
		total += v
	}
	return total
}

// Clone returns an independent copy.
func (s ShareVector) Clone() ShareVector {
	out := make(ShareVector, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// GrandTotals holds the aggregate wage and profit bills of the decile table.
type GrandTotals struct {
	Wages   float64 `json:"wages"`
	Profits float64 `json:"profits"`
}

// Total returns wages plus profits.
func (g GrandTotals) Total() float64 {
	return g.Wages + g.Profits
}

// ClassAllocation is the derived income record for one class.
type ClassAllocation struct {
	Class               ClassID `json:"class"`
	WageShareTarget     float64 `json:"wage_share_target"`
	ProfitShareTarget   float64 `json:"profit_share_target"`
	Wages               float64 `json:"wages"`
	Profits             float64 `json:"profits"`
	TotalIncome         float64 `json:"total_income"`
	InternalWageShare   float64 `json:"internal_wage_share"`
	InternalProfitShare float64 `json:"internal_profit_share"`
	ShareOfTotalWages   float64 `json:"share_of_total_wages"`   // fraction of GrandTotals.Wages
	ShareOfTotalProfits float64 `json:"share_of_total_profits"` // fraction of GrandTotals.Profits
}

// Verification re-aggregates an allocation against its grand totals.
type Verification struct {
	SumWages          float64 `json:"sum_wages"`
	SumProfits        float64 `json:"sum_profits"`
	WagesMatch        bool    `json:"wages_match"`
	ProfitsMatch      bool    `json:"profits_match"`
	SumWageSharePct   float64 `json:"sum_wage_share_pct"`
	SumProfitSharePct float64 `json:"sum_profit_share_pct"`
	Tolerance         float64 `json:"tolerance"`
}

// OK reports whether both bills were reproduced.
func (v Verification) OK() bool {
	return v.WagesMatch && v.ProfitsMatch
}

// Allocation is the Allocator's output: totals plus one record per class,
// in richest-to-poorest order.
type Allocation struct {
	Totals       GrandTotals       `json:"totals"`
	Classes      []ClassAllocation `json:"classes"`
	Verification Verification      `json:"verification"`
}

// Class returns the record for id, if present.
func (a Allocation) Class(id ClassID) (ClassAllocation, bool) {
	for _, c := range a.Classes {
		if c.Class == id {
			return c, true
		}
	}
	return ClassAllocation{}, false
}

// IncomeGroup is one row of Gini input.
type IncomeGroup struct {
	Name            string  `json:"name"`
	PopulationShare float64 `json:"population_share"`
	Income          float64 `json:"income"`
}

// LorenzPoint is a (cumulative population, cumulative income) pair.
type LorenzPoint struct {
	CumPopulation float64 `json:"cum_population"`
	CumIncome     float64 `json:"cum_income"`
}

// GiniResult carries the coefficient and the curve it was computed from.
// Degenerate is set when total income was zero; the coefficient is then 1
// by construction and carries no meaning.
type GiniResult struct {
	Coefficient float64       `json:"coefficient"`
	Lorenz      []LorenzPoint `json:"lorenz"`
	Degenerate  bool          `json:"degenerate,omitempty"`
}

// ViolationKind classifies an input finding.
type ViolationKind string

const (
	ViolationSumNotOne    ViolationKind = "sum_not_one"
	ViolationOutOfRange   ViolationKind = "out_of_range"
	ViolationMissingClass ViolationKind = "missing_class"
	ViolationUnknownClass ViolationKind = "unknown_class"
	ViolationOrdering     ViolationKind = "ordering"
)

// Violation is one broken input invariant.
type Violation struct {
	Kind   ViolationKind `json:"kind"`
	Vector string        `json:"vector"` // "deciles", "wage_targets", "profit_targets", "population", "gini_input"
	Class  ClassID       `json:"class,omitempty"`
	Value  float64       `json:"value"`
	Detail string        `json:"detail"`
}

// ReferenceClass is a band aggregated straight from raw deciles, without
// target shares. Only decile-aligned bands (top 10%, middle 40%, bottom 50%)
// can be built this way; the top-percentile classes cannot.
type ReferenceClass struct {
	Label               string   `json:"label"`
	Deciles             []string `json:"deciles"`
	Wages               float64  `json:"wages"`
	Profits             float64  `json:"profits"`
	TotalIncome         float64  `json:"total_income"`
	InternalWageShare   float64  `json:"internal_wage_share"`
	InternalProfitShare float64  `json:"internal_profit_share"`
}

// InequalityReport is the full structured output of one run.
type InequalityReport struct {
	GeneratedAt      time.Time         `json:"generated_at"`
	Deciles          DecileTable       `json:"deciles"`
	Totals           GrandTotals       `json:"totals"`
	Classes          []ClassAllocation `json:"classes"`
	Verification     Verification      `json:"verification"`
	PopulationShares ShareVector       `json:"population_shares"`
	Gini             GiniResult        `json:"gini"`
	Violations       []Violation       `json:"violations,omitempty"`
	Reference        []ReferenceClass  `json:"reference,omitempty"`
}
