package main

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks profile values outside their allowed bounds. Handlers
// translate it to a 400 so a formula never runs on bad input.
var ErrInvalidInput = errors.New("invalid input")

// activityMultipliers maps activity level strings to their TDEE multiplier.
// This is the single source of truth for valid activity levels — also used
// for input validation in saveProfile.
var activityMultipliers = map[string]float64{
	"sedentary": 1.2,
	"light":     1.375,
	"moderate":  1.55,
	"heavy":     1.725,
	"athlete":   1.9,
}

// kcalPerKG is the energy equivalent of one kilogram of body fat, used to
// convert a weight delta into a daily calorie deficit or surplus.
const kcalPerKG = 7700

// proteinPerKG is the daily protein target in grams per kilogram of body
// weight, applied regardless of goal direction or diet type.
const proteinPerKG = 1.5

// dailyBudget is the computed calorie/protein budget for one profile.
// Never persisted — recomputed from the current profile on every read, so
// historical days always reflect today's profile.
type dailyBudget struct {
	BMR            float64 `json:"bmr"`
	TDEE           float64 `json:"tdee"`
	TargetCalories float64 `json:"target_calories"`
	TargetProteinG float64 `json:"target_protein_g"`

	// UsedManualBMR reports that the user's BMR override replaced the
	// formula result. UsedActivityFallback reports that an unknown
	// activity tier was substituted with sedentary — a silent default in
	// the original, surfaced here so callers can log and tests can assert.
	UsedManualBMR        bool `json:"used_manual_bmr"`
	UsedActivityFallback bool `json:"used_activity_fallback"`
}

// validateProfile checks every numeric field against its allowed range.
// BodyFatPct of 0 means "not supplied" and selects the Mifflin-St Jeor path.
func validateProfile(p *profileRecord) error {
	switch {
	case p.HeightCM < 100 || p.HeightCM > 250:
		return fmt.Errorf("%w: height_cm must be 100-250", ErrInvalidInput)
	case p.WeightKG < 30 || p.WeightKG > 200:
		return fmt.Errorf("%w: weight_kg must be 30-200", ErrInvalidInput)
	case p.Age < 10 || p.Age > 100:
		return fmt.Errorf("%w: age must be 10-100", ErrInvalidInput)
	case p.Gender != "male" && p.Gender != "female":
		return fmt.Errorf("%w: gender must be male or female", ErrInvalidInput)
	case p.BodyFatPct != 0 && (p.BodyFatPct < 5 || p.BodyFatPct > 60):
		return fmt.Errorf("%w: body_fat_pct must be 5-60 (or 0 when unknown)", ErrInvalidInput)
	case p.TargetWeightKG < 30 || p.TargetWeightKG > 200:
		return fmt.Errorf("%w: target_weight_kg must be 30-200", ErrInvalidInput)
	case p.TargetDays < 1:
		return fmt.Errorf("%w: target_days must be at least 1", ErrInvalidInput)
	case p.ManualBMR < 0:
		return fmt.Errorf("%w: manual_bmr must not be negative", ErrInvalidInput)
	}
	return nil
}

// computeDailyBudget derives BMR, TDEE, and the daily calorie/protein targets
// from a profile. Pure — same profile in, same budget out, no I/O.
//
// BMR uses Katch-McArdle when a body-fat percentage is supplied, otherwise
// Mifflin-St Jeor; a positive ManualBMR overrides both. The daily target
// spreads the weight delta over target_days at 7700 kcal per kg: below TDEE
// when losing, above when gaining, exactly TDEE when already at target.
func computeDailyBudget(p *profileRecord) (dailyBudget, error) {
	if err := validateProfile(p); err != nil {
		return dailyBudget{}, err
	}

	var b dailyBudget
	switch {
	case p.ManualBMR > 0:
		b.BMR = p.ManualBMR
		b.UsedManualBMR = true
	case p.BodyFatPct > 0:
		// Katch-McArdle from lean body mass
		lbm := p.WeightKG * (1 - p.BodyFatPct/100)
		b.BMR = 370 + 21.6*lbm
	default:
		// Mifflin-St Jeor: different constant for male vs female
		b.BMR = 10*p.WeightKG + 6.25*float64(p.HeightCM) - 5*float64(p.Age)
		if p.Gender == "male" {
			b.BMR += 5
		} else {
			b.BMR -= 161
		}
	}

	mult, found := activityMultipliers[p.Activity]
	if !found {
		// Unknown tier degrades to sedentary rather than failing; the flag
		// keeps the substitution visible.
		mult = activityMultipliers["sedentary"]
		b.UsedActivityFallback = true
	}
	b.TDEE = b.BMR * mult

	// diff > 0 means losing; the same 7700 kcal/kg rule sizes the surplus
	// when gaining. At target, the budget is the TDEE exactly.
	diff := p.WeightKG - p.TargetWeightKG
	switch {
	case diff > 0:
		b.TargetCalories = b.TDEE - diff*kcalPerKG/float64(p.TargetDays)
	case diff < 0:
		b.TargetCalories = b.TDEE + (-diff)*kcalPerKG/float64(p.TargetDays)
	default:
		b.TargetCalories = b.TDEE
	}

	b.TargetProteinG = p.WeightKG * proteinPerKG
	return b, nil
}

// defaultProfile is the record shown to a first-time user before their first
// save. Values land on the vegan starter preset from the original diary.
func defaultProfile(name string) profileRecord {
	return profileRecord{
		Name:           name,
		HeightCM:       170,
		WeightKG:       60,
		Age:            30,
		Gender:         "female",
		DietType:       "vegan",
		BodyFatPct:     0,
		Activity:       "light",
		TargetWeightKG: 55,
		TargetDays:     90,
	}
}
