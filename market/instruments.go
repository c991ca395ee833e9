package market

import "sort"

// InstrumentPreset describes a commonly traded contract and the USD value of
// a one point move for a single contract.
type InstrumentPreset struct {
	Name          string
	Description   string
	PointValueUSD float64
}

var Presets = map[string]InstrumentPreset{
	"ES":  {Name: "ES", Description: "E-mini S&P 500", PointValueUSD: 50},
	"MES": {Name: "MES", Description: "Micro E-mini S&P 500", PointValueUSD: 5},
	"NQ":  {Name: "NQ", Description: "E-mini Nasdaq-100", PointValueUSD: 20},
	"MNQ": {Name: "MNQ", Description: "Micro E-mini Nasdaq-100", PointValueUSD: 2},
	"YM":  {Name: "YM", Description: "E-mini Dow", PointValueUSD: 5},
	"GC":  {Name: "GC", Description: "Gold", PointValueUSD: 100},
	"MGC": {Name: "MGC", Description: "Micro Gold", PointValueUSD: 10},
	"CL":  {Name: "CL", Description: "Crude Oil", PointValueUSD: 1000},
}

// PresetNames returns the preset names in alphabetical order.
func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for n := range Presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
