// Package gini reduces grouped income data to a Lorenz curve and a Gini
// coefficient.
//
// Groups must be ordered poorest to richest. The coefficient is the discrete
// form of 1 - 2∫L(p)dp:
//
//	G = 1 - Σ pop_i * (L_i + L_{i-1})
//
// where pop_i is the population share of the group that ends segment i, not
// an average of the two groups bounding it.
package gini

import (
	"fmt"

	"github.com/seenimoa/ineqstat/pkg/models"
)

// VectorGiniInput is the Violation.Vector value used by CheckOrdering.
const VectorGiniInput = "gini_input"

// Lorenz builds the cumulative (population, income) curve, seeded with (0,0).
// When total income is zero every cumulative income share stays 0.
func Lorenz(groups []models.IncomeGroup) []models.LorenzPoint {
	total := totalIncome(groups)

	points := make([]models.LorenzPoint, 0, len(groups)+1)
	points = append(points, models.LorenzPoint{})

	var cumPop, cumIncome float64
	for _, g := range groups {
		cumPop += g.PopulationShare
		if total > 0 {
			cumIncome += g.Income / total
		}
		points = append(points, models.LorenzPoint{CumPopulation: cumPop, CumIncome: cumIncome})
	}
	return points
}

// Coefficient computes the Gini coefficient of groups.
//
// Zero total income is a degenerate input: every L_i is 0, the sum of terms
// is 0 and the coefficient comes out as 1. The result is flagged Degenerate
// and should not be read as maximal inequality.
func Coefficient(groups []models.IncomeGroup) models.GiniResult {
	points := Lorenz(groups)

	var sum float64
	for i := 1; i < len(points); i++ {
		groupPop := groups[i-1].PopulationShare
		sum += groupPop * (points[i].CumIncome + points[i-1].CumIncome)
	}

	return models.GiniResult{
		Coefficient: 1 - sum,
		Lorenz:      points,
		Degenerate:  totalIncome(groups) == 0,
	}
}

// GroupsFromAllocation turns an allocation into Gini input, poorest class
// first. Population shares come from population; a class missing there gets 0.
func GroupsFromAllocation(a models.Allocation, population models.ShareVector) []models.IncomeGroup {
	groups := make([]models.IncomeGroup, 0, len(a.Classes))
	for _, id := range models.ClassesPoorestFirst() {
		c, ok := a.Class(id)
		if !ok {
			continue
		}
		groups = append(groups, models.IncomeGroup{
			Name:            string(id),
			PopulationShare: population[id],
			Income:          c.TotalIncome,
		})
	}
	return groups
}

// CheckOrdering reports every place where income per head falls from one
// group to the next. A sequence that is not poorest-to-richest produces a
// Gini value with no meaning (often negative).
func CheckOrdering(groups []models.IncomeGroup) []models.Violation {
	var out []models.Violation
	for i := 1; i < len(groups); i++ {
		prev, cur := perCapita(groups[i-1]), perCapita(groups[i])
		if cur < prev {
			out = append(out, models.Violation{
				Kind:   models.ViolationOrdering,
				Vector: VectorGiniInput,
				Class:  models.ClassID(groups[i].Name),
				Value:  cur,
				Detail: fmt.Sprintf("%s has income per head %.2f, below %.2f of preceding %s",
					groups[i].Name, cur, prev, groups[i-1].Name),
			})
		}
	}
	return out
}

func perCapita(g models.IncomeGroup) float64 {
	if g.PopulationShare == 0 {
		return 0
	}
	return g.Income / g.PopulationShare
}

func totalIncome(groups []models.IncomeGroup) float64 {
	var total float64
	for _, g := range groups {
		total += g.Income
	}
	return total
}
