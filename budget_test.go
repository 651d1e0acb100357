package main

import (
	"errors"
	"math"
	"testing"
)

// makeProfile constructs a fully-populated valid profile for budget tests.
// Individual tests mutate fields to exercise specific formula paths.
func makeProfile() profileRecord {
	return profileRecord{
		Name:           "mei",
		HeightCM:       170,
		WeightKG:       60,
		Age:            30,
		Gender:         "female",
		DietType:       "vegan",
		BodyFatPct:     0,
		Activity:       "sedentary",
		TargetWeightKG: 55,
		TargetDays:     90,
	}
}

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

/* ─── BMR formula tests ──────────────────────────────────────────────── */

// TestComputeDailyBudget_MifflinFemale checks the female Mifflin-St Jeor path
// against hand-computed values: 10×60 + 6.25×170 − 5×30 − 161 = 1351.5.
func TestComputeDailyBudget_MifflinFemale(t *testing.T) {
	p := makeProfile()
	b, err := computeDailyBudget(&p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(b.BMR, 1351.5, 1e-9) {
		t.Errorf("female BMR = %f, want 1351.5", b.BMR)
	}
}

// TestComputeDailyBudget_MifflinMale verifies the male constant: +5 instead
// of −161, so male BMR is exactly 166 above female for identical inputs.
func TestComputeDailyBudget_MifflinMale(t *testing.T) {
	p := makeProfile()
	p.Gender = "male"
	b, err := computeDailyBudget(&p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(b.BMR, 1351.5+166, 1e-9) {
		t.Errorf("male BMR = %f, want 1517.5", b.BMR)
	}
}

// TestComputeDailyBudget_KatchMcArdle verifies the lean-body-mass path:
// weight 60 at 20% fat → lbm 48 → BMR = 370 + 21.6×48 = 1406.8.
func TestComputeDailyBudget_KatchMcArdle(t *testing.T) {
	p := makeProfile()
	p.BodyFatPct = 20
	b, err := computeDailyBudget(&p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(b.BMR, 1406.8, 1e-9) {
		t.Errorf("Katch-McArdle BMR = %f, want 1406.8", b.BMR)
	}
	if b.UsedManualBMR {
		t.Error("UsedManualBMR should be false without an override")
	}
}

// TestComputeDailyBudget_ManualOverride verifies that a positive ManualBMR
// replaces the formula result entirely, even when body fat is also supplied.
func TestComputeDailyBudget_ManualOverride(t *testing.T) {
	p := makeProfile()
	p.BodyFatPct = 20
	p.ManualBMR = 1500
	b, err := computeDailyBudget(&p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.BMR != 1500 {
		t.Errorf("BMR = %f, want manual override 1500", b.BMR)
	}
	if !b.UsedManualBMR {
		t.Error("UsedManualBMR should be true")
	}
	if !almostEqual(b.TDEE, 1500*1.2, 1e-9) {
		t.Errorf("TDEE = %f, want 1800 (manual BMR × sedentary)", b.TDEE)
	}
}

/* ─── Target calorie tests ───────────────────────────────────────────── */

// TestComputeDailyBudget_LosingDeficit checks the deficit math with a fixed
// TDEE: manual BMR 2000 × sedentary = 2400; dropping 70→65 kg over 30 days
// costs 5×7700/30 ≈ 1283.33 kcal/day, so the target is ≈ 1116.67.
func TestComputeDailyBudget_LosingDeficit(t *testing.T) {
	p := makeProfile()
	p.ManualBMR = 2000
	p.WeightKG = 70
	p.TargetWeightKG = 65
	p.TargetDays = 30
	b, err := computeDailyBudget(&p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 2400.0 - 5*7700.0/30.0
	if !almostEqual(b.TargetCalories, want, 1e-6) {
		t.Errorf("target calories = %f, want %f", b.TargetCalories, want)
	}
}

// TestComputeDailyBudget_GainingSurplus verifies the same 7700 rule applied
// as a surplus when the target weight is above the current weight.
func TestComputeDailyBudget_GainingSurplus(t *testing.T) {
	p := makeProfile()
	p.ManualBMR = 2000
	p.WeightKG = 60
	p.TargetWeightKG = 65
	p.TargetDays = 50
	b, err := computeDailyBudget(&p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 2400.0 + 5*7700.0/50.0
	if !almostEqual(b.TargetCalories, want, 1e-6) {
		t.Errorf("target calories = %f, want %f", b.TargetCalories, want)
	}
}

// TestComputeDailyBudget_AtTarget verifies that with no weight delta the
// daily target equals the TDEE exactly — not within tolerance, exactly.
func TestComputeDailyBudget_AtTarget(t *testing.T) {
	p := makeProfile()
	p.TargetWeightKG = p.WeightKG
	b, err := computeDailyBudget(&p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.TargetCalories != b.TDEE {
		t.Errorf("target calories = %f, want exactly TDEE %f", b.TargetCalories, b.TDEE)
	}
}

// TestComputeDailyBudget_ProteinTarget verifies the fixed 1.5 g/kg rule.
func TestComputeDailyBudget_ProteinTarget(t *testing.T) {
	p := makeProfile()
	b, err := computeDailyBudget(&p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(b.TargetProteinG, 90, 1e-9) {
		t.Errorf("protein target = %f, want 90 (60kg × 1.5)", b.TargetProteinG)
	}
}

/* ─── Activity tier tests ────────────────────────────────────────────── */

// TestComputeDailyBudget_TDEEAtLeastBMR verifies that every known tier keeps
// TDEE ≥ BMR (all multipliers are at least 1.2).
func TestComputeDailyBudget_TDEEAtLeastBMR(t *testing.T) {
	for tier := range activityMultipliers {
		p := makeProfile()
		p.Activity = tier
		b, err := computeDailyBudget(&p)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tier, err)
		}
		if b.TDEE < b.BMR {
			t.Errorf("%s: TDEE %f < BMR %f", tier, b.TDEE, b.BMR)
		}
		if b.UsedActivityFallback {
			t.Errorf("%s: fallback flagged for a known tier", tier)
		}
	}
}

// TestComputeDailyBudget_UnknownActivityFallsBack verifies the sedentary
// substitution for unknown tiers is applied and flagged, not failed.
func TestComputeDailyBudget_UnknownActivityFallsBack(t *testing.T) {
	p := makeProfile()
	p.Activity = "couch-to-5k"
	b, err := computeDailyBudget(&p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(b.TDEE, b.BMR*1.2, 1e-9) {
		t.Errorf("TDEE = %f, want BMR × 1.2 fallback", b.TDEE)
	}
	if !b.UsedActivityFallback {
		t.Error("UsedActivityFallback should be true for an unknown tier")
	}
}

/* ─── Validation tests ───────────────────────────────────────────────── */

// TestComputeDailyBudget_InvalidInputs verifies that out-of-bounds fields are
// rejected with ErrInvalidInput before any formula runs — in particular
// target_days 0 must never reach the division.
func TestComputeDailyBudget_InvalidInputs(t *testing.T) {
	cases := []struct {
		name  string
		mutFn func(p *profileRecord)
	}{
		{"zero target days", func(p *profileRecord) { p.TargetDays = 0 }},
		{"negative target days", func(p *profileRecord) { p.TargetDays = -5 }},
		{"height too low", func(p *profileRecord) { p.HeightCM = 90 }},
		{"height too high", func(p *profileRecord) { p.HeightCM = 260 }},
		{"weight too low", func(p *profileRecord) { p.WeightKG = 25 }},
		{"weight too high", func(p *profileRecord) { p.WeightKG = 230 }},
		{"age too low", func(p *profileRecord) { p.Age = 8 }},
		{"age too high", func(p *profileRecord) { p.Age = 120 }},
		{"bad gender", func(p *profileRecord) { p.Gender = "other" }},
		{"body fat too low", func(p *profileRecord) { p.BodyFatPct = 3 }},
		{"body fat too high", func(p *profileRecord) { p.BodyFatPct = 70 }},
		{"target weight too low", func(p *profileRecord) { p.TargetWeightKG = 20 }},
		{"negative manual bmr", func(p *profileRecord) { p.ManualBMR = -100 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := makeProfile()
			tc.mutFn(&p)
			_, err := computeDailyBudget(&p)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

/* ─── Purity tests ───────────────────────────────────────────────────── */

// TestComputeDailyBudget_Idempotent verifies that recomputing from an
// unchanged profile yields an identical budget — pure function, no hidden state.
func TestComputeDailyBudget_Idempotent(t *testing.T) {
	p := makeProfile()
	p.BodyFatPct = 24.5
	first, err := computeDailyBudget(&p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := computeDailyBudget(&p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Errorf("budgets differ across identical calls: %+v vs %+v", first, second)
	}
}

// TestComputeDailyBudget_NaNFree sweeps a spread of valid profiles and checks
// no output field is NaN or infinite.
func TestComputeDailyBudget_NaNFree(t *testing.T) {
	genders := []string{"male", "female"}
	fats := []float64{0, 5, 24.5, 60}
	targets := []float64{30, 60, 200}
	days := []int{1, 90, 365}

	for _, g := range genders {
		for _, bf := range fats {
			for _, tw := range targets {
				for _, d := range days {
					p := makeProfile()
					p.Gender = g
					p.BodyFatPct = bf
					p.TargetWeightKG = tw
					p.TargetDays = d
					b, err := computeDailyBudget(&p)
					if err != nil {
						t.Fatalf("unexpected error for %s/%.1f/%.0f/%d: %v", g, bf, tw, d, err)
					}
					for name, v := range map[string]float64{
						"BMR": b.BMR, "TDEE": b.TDEE,
						"TargetCalories": b.TargetCalories, "TargetProteinG": b.TargetProteinG,
					} {
						if math.IsNaN(v) || math.IsInf(v, 0) {
							t.Errorf("%s is not finite (%f) for %s/%.1f/%.0f/%d", name, v, g, bf, tw, d)
						}
					}
					if b.BMR <= 0 {
						t.Errorf("BMR %f not positive for %s/%.1f/%.0f/%d", b.BMR, g, bf, tw, d)
					}
				}
			}
		}
	}
}
