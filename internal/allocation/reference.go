package allocation

import (
	"github.com/seenimoa/ineqstat/pkg/models"
)

// referenceBands are the decile-aligned bands that can be read straight off
// the table. The top-percentile classes have no decile equivalent.
var referenceBands = []struct {
	label   string
	deciles []string
}{
	{"Top 10% (D10)", []string{"D10"}},
	{"Middle 40% (D6-D9)", []string{"D6", "D7", "D8", "D9"}},
	{"Bottom 50% (D1-D5)", []string{"D1", "D2", "D3", "D4", "D5"}},
}

// ReferenceClasses aggregates raw deciles into the top 10%, middle 40% and
// bottom 50% bands, ignoring target shares. This is the decile-only view the
// target-share allocation superseded; it never feeds the Gini coefficient.
// Deciles absent from the table contribute zero.
func ReferenceClasses(table models.DecileTable) []models.ReferenceClass {
	byKey := make(map[string]models.Decile, len(table))
	for _, d := range table {
		byKey[d.Key] = d
	}

	out := make([]models.ReferenceClass, 0, len(referenceBands))
	for _, band := range referenceBands {
		var wages, profits float64
		for _, key := range band.deciles {
			wages += byKey[key].Wages
			profits += byKey[key].ProfitProxy
		}
		total := wages + profits
		out = append(out, models.ReferenceClass{
			Label:               band.label,
			Deciles:             append([]string(nil), band.deciles...),
			Wages:               wages,
			Profits:             profits,
			TotalIncome:         total,
			InternalWageShare:   safeDiv(wages, total),
			InternalProfitShare: safeDiv(profits, total),
		})
	}
	return out
}
