package main

import (
	"sort"
	"time"
)

// mealSlots is the canonical slot ordering used wherever a stable per-meal
// layout is needed (summary rows, the calorie-source donut).
var mealSlots = []string{"breakfast", "lunch", "dinner", "snack"}

// legacyMealSlot is assigned to rows written before the meal column existed.
const legacyMealSlot = "snack"

// validMealSlots gates entry creation; unknown slots get a 400 up front
// rather than a junk bucket in the breakdown.
var validMealSlots = map[string]bool{
	"breakfast": true,
	"lunch":     true,
	"dinner":    true,
	"snack":     true,
}

// mealTotal is one slot's share of the day, in canonical slot order.
type mealTotal struct {
	Slot     string `json:"slot"`
	Calories int    `json:"calories"`
}

// daySummary is the fold of one owner's entries for a single calendar day.
type daySummary struct {
	Date          string
	TotalCalories int
	TotalProteinG int
	Meals         []mealTotal
}

// summarizeDay folds entries down to the given day's totals and per-meal
// breakdown. Day matching is exact string equality on the YYYY-MM-DD value;
// entries whose date doesn't parse are dropped, never raised. Slots with no
// entries are absent from Meals, so the per-slot sum always equals the total.
func summarizeDay(entries []foodLogEntry, date string) daySummary {
	s := daySummary{Date: date}
	bySlot := make(map[string]int, len(mealSlots))
	for _, e := range entries {
		if _, err := time.Parse("2006-01-02", e.Date); err != nil {
			continue
		}
		if e.Date != date {
			continue
		}
		s.TotalCalories += e.Calories
		s.TotalProteinG += e.ProteinG
		bySlot[e.Meal] += e.Calories
	}
	for _, slot := range mealSlots {
		if cal, ok := bySlot[slot]; ok {
			s.Meals = append(s.Meals, mealTotal{Slot: slot, Calories: cal})
		}
	}
	return s
}

// remainingCalories is the day's budget headroom. Negative means over budget,
// which is a normal state the UI renders in red — not an error.
func remainingCalories(target float64, totalCalories int) float64 {
	return target - float64(totalCalories)
}

// progressRatio is the intake fraction for the progress ring, clamped to 1.
// A non-positive target yields 0 rather than a division blowup.
func progressRatio(totalCalories int, target float64) float64 {
	if target <= 0 {
		return 0
	}
	r := float64(totalCalories) / target
	if r > 1 {
		return 1
	}
	return r
}

// weightSeries returns the owner's check-ins sorted date-ascending for the
// trend chart. YYYY-MM-DD sorts lexicographically in date order; the sort is
// stable so same-day check-ins keep their insert order. Entries with
// unparseable dates are dropped the same way summarizeDay drops them.
func weightSeries(entries []weightEntry) []weightEntry {
	series := make([]weightEntry, 0, len(entries))
	for _, e := range entries {
		if _, err := time.Parse("2006-01-02", e.Date); err != nil {
			continue
		}
		series = append(series, e)
	}
	sort.SliceStable(series, func(i, j int) bool {
		return series[i].Date < series[j].Date
	})
	return series
}
