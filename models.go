package main

import (
	"time"
)

/* ─── Domain structs ─────────────────────────────────────────────────── */

// user maps to the users table. AuthToken and Password are hidden from JSON responses.
type user struct {
	ID        int        `json:"id" db:"id"`
	Username  string     `json:"username" db:"username"`
	Email     string     `json:"email" db:"email"`
	AuthToken string     `json:"-" db:"auth_token"`
	Password  string     `json:"-" db:"password"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

// profileRecord is one row of the profiles sheet, keyed by owner name
// (case-sensitive — the name is the identity, one row per person).
// A profile is either absent or fully populated; saves always overwrite
// the whole record, never individual fields.
type profileRecord struct {
	Name           string  `json:"name" db:"name"`
	HeightCM       int     `json:"height_cm" db:"height_cm"`
	WeightKG       float64 `json:"weight_kg" db:"weight_kg"`
	Age            int     `json:"age" db:"age"`
	Gender         string  `json:"gender" db:"gender"`
	DietType       string  `json:"diet_type" db:"diet_type"`
	BodyFatPct     float64 `json:"body_fat_pct" db:"body_fat_pct"`
	Activity       string  `json:"activity" db:"activity"`
	TargetWeightKG float64 `json:"target_weight_kg" db:"target_weight_kg"`
	TargetDays     int     `json:"target_days" db:"target_days"`
	// ManualBMR > 0 replaces the computed BMR for all downstream math
	// until the user clears it back to 0.
	ManualBMR float64 `json:"manual_bmr" db:"manual_bmr"`
}

// foodLogEntry is one row of the food-log sheet. Immutable once written;
// rows are only ever appended or deleted whole. Date stays a plain
// YYYY-MM-DD string because the sheet is text-typed — rows with junk dates
// survive storage and get dropped at aggregation time instead.
type foodLogEntry struct {
	Name     string `json:"name"`
	Date     string `json:"date"`
	Meal     string `json:"meal"`
	Food     string `json:"food"`
	Calories int    `json:"calories"`
	ProteinG int    `json:"protein_g"`
}

// foodLogRow is the DB shape of a food-log sheet row. Meal is nullable so
// legacy rows written before the meal column existed still scan; they get
// the legacy default slot when converted to foodLogEntry.
type foodLogRow struct {
	Name     string  `db:"name"`
	Date     string  `db:"date"`
	Meal     *string `db:"meal"`
	Food     string  `db:"food"`
	Calories int     `db:"calories"`
	ProteinG int     `db:"protein_g"`
}

// weightEntry is one row of the weight-history sheet. Append-only; multiple
// check-ins on the same day are all kept (the chart just shows both points).
type weightEntry struct {
	Name       string  `json:"name" db:"name"`
	Date       string  `json:"date" db:"date"`
	WeightKG   float64 `json:"weight_kg" db:"weight_kg"`
	BodyFatPct float64 `json:"body_fat_pct" db:"body_fat_pct"`
}

// catalogFood is one entry of the fixed quick-add food catalog.
type catalogFood struct {
	Food     string `json:"food"`
	Calories int    `json:"calories"`
	ProteinG int    `json:"protein_g"`
}

/* ─── Request / response types ───────────────────────────────────────── */

// saveProfileRequest is the request body for PUT /api/diary/profile.
// All fields required — profile saves are wholesale overwrites, never patches.
type saveProfileRequest struct {
	HeightCM       int     `json:"height_cm"`
	WeightKG       float64 `json:"weight_kg"`
	Age            int     `json:"age"`
	Gender         string  `json:"gender"`
	DietType       string  `json:"diet_type"`
	BodyFatPct     float64 `json:"body_fat_pct"`
	Activity       string  `json:"activity"`
	TargetWeightKG float64 `json:"target_weight_kg"`
	TargetDays     int     `json:"target_days"`
	ManualBMR      float64 `json:"manual_bmr"`
}

// profileResponse is the response for GET/PUT /api/diary/profile.
// FirstTime is true when no saved profile exists and defaults were applied.
type profileResponse struct {
	Profile   profileRecord `json:"profile"`
	Budget    dailyBudget   `json:"budget"`
	FirstTime bool          `json:"first_time"`
}

// createEntryRequest is the request body for POST /api/diary/entries.
type createEntryRequest struct {
	Date     string `json:"date"`
	Meal     string `json:"meal"`
	Food     string `json:"food"`
	Calories int    `json:"calories"`
	ProteinG int    `json:"protein_g"`
}

// indexedEntry pairs a food-log entry with its position in the owner's full
// log list — the index DELETE /api/diary/entries/:index expects.
type indexedEntry struct {
	Index int `json:"index"`
	foodLogEntry
}

// dailyResponse is the response for GET /api/diary/daily: the day's entries,
// aggregated totals, the computed budget, and the menu recommendation.
type dailyResponse struct {
	Date           string         `json:"date"`
	Budget         dailyBudget    `json:"budget"`
	TotalCalories  int            `json:"total_calories"`
	TotalProteinG  int            `json:"total_protein_g"`
	Meals          []mealTotal    `json:"meals"`
	Remaining      float64        `json:"remaining"`
	Progress       float64        `json:"progress"`
	Recommendation planSelection  `json:"recommendation"`
	Entries        []indexedEntry `json:"entries"`
}

// checkInRequest is the request body for POST /api/diary/weight.
type checkInRequest struct {
	Date       string  `json:"date"`
	WeightKG   float64 `json:"weight_kg"`
	BodyFatPct float64 `json:"body_fat_pct"`
}
