// Package aggregate derives display-ready figures from profile and impact
// snapshots. Everything here is a pure function over fetched data; the
// equivalency figures are computed server-side and only formatted here.
package aggregate

import (
	"math"
	"strconv"
)

// WasteBreakdownItem is one waste type's share of the scan history.
type WasteBreakdownItem struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// AchievementItem is an earned achievement on the profile.
type AchievementItem struct {
	Type     string `json:"type"`
	EarnedAt string `json:"earned_at"`
}

// ProfileSnapshot is the /profile response. Replaced wholesale on each
// fetch, never mutated locally.
type ProfileSnapshot struct {
	Username       string               `json:"username"`
	Email          string               `json:"email"`
	TotalScans     int                  `json:"total_scans"`
	RecyclingScore int                  `json:"recycling_score"`
	CO2Saved       float64              `json:"co2_saved"`
	MemberSince    string               `json:"member_since"`
	Location       string               `json:"location"`
	WasteBreakdown []WasteBreakdownItem `json:"waste_breakdown"`
	Achievements   []AchievementItem    `json:"achievements"`
}

// Equivalents holds the server-computed relatable units.
type Equivalents struct {
	CarsOffRoadDays    float64 `json:"cars_off_road_days"`
	TreesPlanted       float64 `json:"trees_planted"`
	SmartphonesCharged float64 `json:"smartphones_charged"`
	MilesNotDriven     float64 `json:"miles_not_driven"`
}

// EnvironmentalRank is the user's rank on the impact ladder. NextLevel is
// nil at the top rank.
type EnvironmentalRank struct {
	Level     string   `json:"level"`
	Icon      string   `json:"icon"`
	NextLevel *float64 `json:"next_level"`
}

// ImpactSnapshot is the /impact response.
type ImpactSnapshot struct {
	TotalCO2SavedKg       float64           `json:"total_co2_saved_kg"`
	TotalWaterSavedLiters float64           `json:"total_water_saved_liters"`
	TotalEnergySavedKwh   float64           `json:"total_energy_saved_kwh"`
	TotalItemsRecycled    int               `json:"total_items_recycled"`
	WasteBreakdown        map[string]int    `json:"waste_breakdown"`
	Equivalents           Equivalents       `json:"equivalents"`
	EnvironmentalRank     EnvironmentalRank `json:"environmental_rank"`
}

// WasteSharePercent returns one waste type's share of all scans, rounded to
// one decimal. A zero total yields 0 rather than a division fault.
func WasteSharePercent(count, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(count)/float64(total)*1000) / 10
}

// RankProgressRatio returns progress toward the next rank, clamped to
// [0, 1]. A missing or non-positive threshold means the metric is
// inapplicable and nil is returned, not zero.
func RankProgressRatio(currentCO2 float64, nextLevel *float64) *float64 {
	if nextLevel == nil || *nextLevel <= 0 {
		return nil
	}
	ratio := currentCO2 / *nextLevel
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	return &ratio
}

// FormattedEquivalents is the Equivalents rendered for display. Trees and
// car-days carry one decimal, charge and mile counts are whole numbers.
type FormattedEquivalents struct {
	TreesPlanted       string
	CarsOffRoadDays    string
	SmartphonesCharged string
	MilesNotDriven     string
}

// Format renders the equivalency figures verbatim with their fixed decimal
// places.
func (e Equivalents) Format() FormattedEquivalents {
	return FormattedEquivalents{
		TreesPlanted:       strconv.FormatFloat(e.TreesPlanted, 'f', 1, 64),
		CarsOffRoadDays:    strconv.FormatFloat(e.CarsOffRoadDays, 'f', 1, 64),
		SmartphonesCharged: strconv.FormatFloat(e.SmartphonesCharged, 'f', 0, 64),
		MilesNotDriven:     strconv.FormatFloat(e.MilesNotDriven, 'f', 0, 64),
	}
}

// FormatKg renders a kilogram figure with one decimal for stat cards.
func FormatKg(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + " kg"
}
