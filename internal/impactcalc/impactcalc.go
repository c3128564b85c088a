// Package impactcalc computes environmental impact figures from scan
// history. Constants follow EPA-derived per-item estimates; the client
// renders these figures verbatim and never recomputes them.
package impactcalc

import (
	"math"

	"github.com/example/ecolife/internal/aggregate"
)

// Scan is the slice of a scan record the calculator needs.
type Scan struct {
	WasteType  string
	Confidence float64
}

// Per-kilogram CO2 savings by waste type.
var co2SavingsPerKg = map[string]float64{
	"recyclable_paper":   3.2,
	"recyclable_plastic": 2.1,
	"recyclable_glass":   0.3,
	"recyclable_metal":   9.0,
	"organic_food":       0.5,
	"organic_yard":       0.4,
	"e_waste":            15.0,
}

// Average item weights in kilograms.
var averageWeightsKg = map[string]float64{
	"recyclable_paper":   0.05,
	"recyclable_plastic": 0.03,
	"recyclable_glass":   0.4,
	"recyclable_metal":   0.015,
	"organic_food":       0.2,
	"organic_yard":       1.0,
	"e_waste":            2.0,
	"hazardous":          0.5,
	"landfill_general":   0.1,
}

// Water savings in liters per recycled item.
var waterSavingsLiters = map[string]float64{
	"recyclable_paper":   50,
	"recyclable_plastic": 20,
	"recyclable_glass":   5,
	"recyclable_metal":   150,
}

// Energy savings in kWh per recycled item.
var energySavingsKwh = map[string]float64{
	"recyclable_paper":   4.0,
	"recyclable_plastic": 5.8,
	"recyclable_glass":   0.3,
	"recyclable_metal":   14.0,
}

const defaultWeightKg = 0.1

// ItemImpact is the impact of recycling one item.
type ItemImpact struct {
	WasteType        string
	CO2SavedKg       float64
	WeightKg         float64
	WaterSavedLiters float64
	EnergySavedKwh   float64
}

// SingleItem calculates the impact of one scanned item, scaled by the
// classification confidence.
func SingleItem(wasteType string, confidence float64) ItemImpact {
	weight, ok := averageWeightsKg[wasteType]
	if !ok {
		weight = defaultWeightKg
	}

	impact := ItemImpact{
		WasteType:  wasteType,
		WeightKg:   weight,
		CO2SavedKg: round(weight*co2SavingsPerKg[wasteType]*confidence, 4),
	}
	if liters, ok := waterSavingsLiters[wasteType]; ok {
		impact.WaterSavedLiters = round(liters*confidence, 2)
	}
	if kwh, ok := energySavingsKwh[wasteType]; ok {
		impact.EnergySavedKwh = round(kwh*confidence, 2)
	}
	return impact
}

// Cumulative aggregates the scan history into an impact snapshot.
func Cumulative(scans []Scan) aggregate.ImpactSnapshot {
	var totalCO2, totalWater, totalEnergy float64
	breakdown := make(map[string]int)

	for _, scan := range scans {
		impact := SingleItem(scan.WasteType, scan.Confidence)
		totalCO2 += impact.CO2SavedKg
		totalWater += impact.WaterSavedLiters
		totalEnergy += impact.EnergySavedKwh
		breakdown[scan.WasteType]++
	}

	return aggregate.ImpactSnapshot{
		TotalCO2SavedKg:       round(totalCO2, 2),
		TotalWaterSavedLiters: round(totalWater, 2),
		TotalEnergySavedKwh:   round(totalEnergy, 2),
		TotalItemsRecycled:    len(scans),
		WasteBreakdown:        breakdown,
		Equivalents:           equivalents(totalCO2, totalEnergy),
		EnvironmentalRank:     Rank(totalCO2),
	}
}

// equivalents converts savings to relatable units: 4.6 kg CO2 per car-day,
// 21 kg CO2 absorbed per tree per year, 12 Wh per phone charge, 0.411 kg
// CO2 per mile driven.
func equivalents(co2Kg, energyKwh float64) aggregate.Equivalents {
	return aggregate.Equivalents{
		CarsOffRoadDays:    round(co2Kg/4.6, 2),
		TreesPlanted:       round(co2Kg/21, 2),
		SmartphonesCharged: round(energyKwh/0.012, 0),
		MilesNotDriven:     round(co2Kg/0.411, 2),
	}
}

// Rank places a cumulative CO2 figure on the rank ladder. The top rank has
// no next level.
func Rank(totalCO2 float64) aggregate.EnvironmentalRank {
	ladder := []struct {
		threshold float64
		level     string
		icon      string
	}{
		{1, "Eco Beginner", "🌱"},
		{5, "Green Guardian", "♻️"},
		{20, "Recycling Hero", "🌿"},
		{50, "Sustainability Champion", "🌳"},
	}

	for _, step := range ladder {
		if totalCO2 < step.threshold {
			next := step.threshold
			return aggregate.EnvironmentalRank{Level: step.level, Icon: step.icon, NextLevel: &next}
		}
	}
	return aggregate.EnvironmentalRank{Level: "Eco Legend", Icon: "🌍", NextLevel: nil}
}

func round(v float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(v*factor) / factor
}
