// Package dataset holds the compiled-in study inputs: the decile wage and
// profit-proxy table (Figura 4) and the class share vectors applied to it.
//
// Every accessor returns a fresh copy so callers can never mutate the
// constants seen by another run.
package dataset

import "github.com/seenimoa/ineqstat/pkg/models"

var deciles = models.DecileTable{
	{Key: "D1", Wages: 27656, ProfitProxy: 17607},
	{Key: "D2", Wages: 68158, ProfitProxy: 29020},
	{Key: "D3", Wages: 99366, ProfitProxy: 37052},
	{Key: "D4", Wages: 137101, ProfitProxy: 46247},
	{Key: "D5", Wages: 184680, ProfitProxy: 59677},
	{Key: "D6", Wages: 221135, ProfitProxy: 73379},
	{Key: "D7", Wages: 279933, ProfitProxy: 92797},
	{Key: "D8", Wages: 369955, ProfitProxy: 122760},
	{Key: "D9", Wages: 545628, ProfitProxy: 188407},
	{Key: "D10", Wages: 1284826, ProfitProxy: 514197},
}

// Target distribution of the profit bill across classes.
var profitTargets = models.ShareVector{
	models.ClassTop001:   0.25,
	models.ClassNext009:  0.15,
	models.ClassNext09:   0.20,
	models.ClassNext9:    0.20,
	models.ClassMiddle40: 0.15,
	models.ClassBottom50: 0.05,
}

// Target distribution of the wage bill across classes.
var wageTargets = models.ShareVector{
	models.ClassTop001:   0.10,
	models.ClassNext009:  0.15,
	models.ClassNext09:   0.25,
	models.ClassNext9:    0.25,
	models.ClassMiddle40: 0.15,
	models.ClassBottom50: 0.10,
}

var populationShares = models.ShareVector{
	models.ClassTop001:   0.0001,
	models.ClassNext009:  0.0009,
	models.ClassNext09:   0.009,
	models.ClassNext9:    0.09,
	models.ClassMiddle40: 0.40,
	models.ClassBottom50: 0.50,
}

// Deciles returns the D1..D10 table.
func Deciles() models.DecileTable {
	out := make(models.DecileTable, len(deciles))
	copy(out, deciles)
	return out
}

// ProfitTargets returns the per-class share of the profit bill.
func ProfitTargets() models.ShareVector { return profitTargets.Clone() }

// WageTargets returns the per-class share of the wage bill.
func WageTargets() models.ShareVector { return wageTargets.Clone() }

// PopulationShares returns the per-class population share.
func PopulationShares() models.ShareVector { return populationShares.Clone() }
