package gini_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/ineqstat/internal/allocation"
	"github.com/seenimoa/ineqstat/internal/dataset"
	"github.com/seenimoa/ineqstat/internal/gini"
	"github.com/seenimoa/ineqstat/pkg/models"
)

// studyGroups returns the six study classes, poorest first.
func studyGroups() []models.IncomeGroup {
	a := allocation.Allocate(allocation.Input{
		Deciles:       dataset.Deciles(),
		WageTargets:   dataset.WageTargets(),
		ProfitTargets: dataset.ProfitTargets(),
	})
	return gini.GroupsFromAllocation(a, dataset.PopulationShares())
}

func groups(pairs ...[2]float64) []models.IncomeGroup {
	out := make([]models.IncomeGroup, len(pairs))
	for i, p := range pairs {
		out[i] = models.IncomeGroup{PopulationShare: p[0], Income: p[1]}
	}
	return out
}

func TestGroupsFromAllocation_PoorestFirst(t *testing.T) {
	g := studyGroups()
	require.Len(t, g, 6)

	want := []string{
		string(models.ClassBottom50),
		string(models.ClassMiddle40),
		string(models.ClassNext9),
		string(models.ClassNext09),
		string(models.ClassNext009),
		string(models.ClassTop001),
	}
	for i, name := range want {
		assert.Equal(t, name, g[i].Name)
	}
	assert.Equal(t, 0.50, g[0].PopulationShare)
	assert.InDelta(t, 380900.95, g[0].Income, 1e-6)
	assert.Equal(t, 0.0001, g[5].PopulationShare)
	assert.InDelta(t, 617129.55, g[5].Income, 1e-6)
}

func TestLorenz_Study(t *testing.T) {
	got := gini.Lorenz(studyGroups())
	want := []models.LorenzPoint{
		{CumPopulation: 0, CumIncome: 0},
		{CumPopulation: 0.5, CumIncome: 0.08657664218478989},
		{CumPopulation: 0.9, CumIncome: 0.23657664218478985},
		{CumPopulation: 0.99, CumIncome: 0.4731532843695797},
		{CumPopulation: 0.999, CumIncome: 0.7097299265543695},
		{CumPopulation: 0.9999, CumIncome: 0.8597299265543694},
		{CumPopulation: 1.0, CumIncome: 1.0},
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("Lorenz mismatch (-want +got):\n%s", diff)
	}
}

func TestLorenz_Monotonic(t *testing.T) {
	points := gini.Lorenz(studyGroups())
	for i := 1; i < len(points); i++ {
		assert.GreaterOrEqual(t, points[i].CumPopulation, points[i-1].CumPopulation)
		assert.GreaterOrEqual(t, points[i].CumIncome, points[i-1].CumIncome)
	}
}

func TestLorenz_Empty(t *testing.T) {
	points := gini.Lorenz(nil)
	assert.Equal(t, []models.LorenzPoint{{}}, points)
}

func TestCoefficient_Study(t *testing.T) {
	r := gini.Coefficient(studyGroups())
	assert.InDelta(t, 0.751330236011111, r.Coefficient, 1e-12)
	assert.False(t, r.Degenerate)
	assert.Len(t, r.Lorenz, 7)
}

// The segment ending at group i is weighted by group i's own population
// share. With pop (0.8, 0.2) and income (2, 8): L = (0, 0.2, 1), so
// G = 1 - [0.8*(0.2+0) + 0.2*(1+0.2)] = 0.6. Weighting by the next group's
// share instead would give 0.
func TestCoefficient_EndingGroupWeight(t *testing.T) {
	r := gini.Coefficient(groups([2]float64{0.8, 2}, [2]float64{0.2, 8}))
	assert.InDelta(t, 0.6, r.Coefficient, 1e-12)
}

func TestCoefficient_PerfectEquality(t *testing.T) {
	pops := []float64{0.5, 0.4, 0.09, 0.009, 0.0009, 0.0001}
	g := make([]models.IncomeGroup, len(pops))
	for i, p := range pops {
		g[i] = models.IncomeGroup{PopulationShare: p, Income: p * 1000}
	}
	assert.InDelta(t, 0, gini.Coefficient(g).Coefficient, 1e-12)
}

func TestCoefficient_MaximalInequality(t *testing.T) {
	r := gini.Coefficient(groups([2]float64{0.5, 0}, [2]float64{0.4, 0}, [2]float64{0.1, 100}))
	assert.InDelta(t, 0.9, r.Coefficient, 1e-12)

	// Concentrating everything in the top 0.01% pushes G towards 1.
	r = gini.Coefficient(groups(
		[2]float64{0.5, 0}, [2]float64{0.4, 0}, [2]float64{0.09, 0},
		[2]float64{0.009, 0}, [2]float64{0.0009, 0}, [2]float64{0.0001, 1},
	))
	assert.InDelta(t, 0.9999, r.Coefficient, 1e-12)
}

func TestCoefficient_ScaleInvariant(t *testing.T) {
	base := studyGroups()
	scaled := make([]models.IncomeGroup, len(base))
	for i, g := range base {
		g.Income *= 7.5
		scaled[i] = g
	}
	assert.InDelta(t, gini.Coefficient(base).Coefficient, gini.Coefficient(scaled).Coefficient, 1e-12)
}

func TestCoefficient_ZeroIncomeIsDegenerate(t *testing.T) {
	r := gini.Coefficient(groups([2]float64{0.5, 0}, [2]float64{0.5, 0}))
	assert.Equal(t, 1.0, r.Coefficient)
	assert.True(t, r.Degenerate)
	for _, p := range r.Lorenz {
		assert.Zero(t, p.CumIncome)
	}
}

func TestCoefficient_ReversedOrder(t *testing.T) {
	g := studyGroups()
	reversed := make([]models.IncomeGroup, len(g))
	for i := range g {
		reversed[len(g)-1-i] = g[i]
	}
	assert.InDelta(t, -0.7513302360111109, gini.Coefficient(reversed).Coefficient, 1e-12)
}

func TestCheckOrdering(t *testing.T) {
	assert.Empty(t, gini.CheckOrdering(studyGroups()))

	g := studyGroups()
	reversed := make([]models.IncomeGroup, len(g))
	for i := range g {
		reversed[len(g)-1-i] = g[i]
	}
	violations := gini.CheckOrdering(reversed)
	require.Len(t, violations, 5)
	for _, v := range violations {
		assert.Equal(t, models.ViolationOrdering, v.Kind)
		assert.Equal(t, gini.VectorGiniInput, v.Vector)
	}
	assert.Equal(t, models.ClassNext009, violations[0].Class)
}

func TestCoefficient_Deterministic(t *testing.T) {
	first := gini.Coefficient(studyGroups())
	second := gini.Coefficient(studyGroups())
	assert.Equal(t, first, second)
}
