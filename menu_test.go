package main

import (
	"reflect"
	"testing"
)

// TestSelectMealPlan_KnownDiet verifies a straight lookup with no
// substitutions: vegan, comfortable budget.
func TestSelectMealPlan_KnownDiet(t *testing.T) {
	sel := selectMealPlan("vegan", 900, 2000)
	if sel.BudgetTight {
		t.Error("remaining 900 should not be tight")
	}
	if sel.UsedDietFallback || sel.UsedTightFallback {
		t.Errorf("no fallback expected, got %+v", sel)
	}
	if sel.DietUsed != "vegan" {
		t.Errorf("diet used = %s, want vegan", sel.DietUsed)
	}
	if sel.Plan.Breakfast.Name == "" || sel.Plan.Lunch.Name == "" || sel.Plan.Dinner.Name == "" {
		t.Errorf("plan has empty meals: %+v", sel.Plan)
	}
}

// TestSelectMealPlan_UnknownDietFallsBackToVegan verifies that an
// unrecognized preference resolves to the vegan table without error, with
// the substitution flagged.
func TestSelectMealPlan_UnknownDietFallsBackToVegan(t *testing.T) {
	sel := selectMealPlan("unknown-value", 900, 2000)
	if sel.DietUsed != "vegan" {
		t.Errorf("diet used = %s, want vegan fallback", sel.DietUsed)
	}
	if !sel.UsedDietFallback {
		t.Error("UsedDietFallback should be true")
	}
	want := mealPlans[planKey{diet: "vegan", tight: false}]
	if !reflect.DeepEqual(sel.Plan, want) {
		t.Errorf("plan = %+v, want the vegan ample plan", sel.Plan)
	}
}

// TestSelectMealPlan_ConvenienceAmpleFallsBackToTight verifies the legacy
// gap: convenience has no ample-budget menu, so ample lookups get the tight
// plan, flagged but silent to the user.
func TestSelectMealPlan_ConvenienceAmpleFallsBackToTight(t *testing.T) {
	sel := selectMealPlan("convenience", 1200, 2000)
	if sel.BudgetTight {
		t.Error("remaining 1200 should not be tight")
	}
	if !sel.UsedTightFallback {
		t.Error("UsedTightFallback should be true for convenience ample")
	}
	want := mealPlans[planKey{diet: "convenience", tight: true}]
	if !reflect.DeepEqual(sel.Plan, want) {
		t.Errorf("plan = %+v, want the convenience tight plan", sel.Plan)
	}
}

// TestSelectMealPlan_TightBoundary pins the tight-budget definition:
// remaining < 400 with a positive target, boundary exclusive.
func TestSelectMealPlan_TightBoundary(t *testing.T) {
	cases := []struct {
		name      string
		remaining float64
		target    float64
		wantTight bool
	}{
		{"just under threshold", 399.99, 2000, true},
		{"exactly threshold", 400, 2000, false},
		{"over budget", -200, 2000, true},
		{"zero target never tight", -200, 0, false},
		{"negative target never tight", 100, -50, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sel := selectMealPlan("vegan", tc.remaining, tc.target)
			if sel.BudgetTight != tc.wantTight {
				t.Errorf("tight = %v, want %v", sel.BudgetTight, tc.wantTight)
			}
		})
	}
}

// TestSelectMealPlan_Deterministic verifies that identical state always
// yields the identical plan — no randomness anywhere in selection.
func TestSelectMealPlan_Deterministic(t *testing.T) {
	first := selectMealPlan("lacto_ovo", 350, 1800)
	second := selectMealPlan("lacto_ovo", 350, 1800)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("selections differ: %+v vs %+v", first, second)
	}
}

// TestMealPlans_EveryDietHasTightPlan guards the selector's assumption that
// the tight variant always exists for every diet in the table.
func TestMealPlans_EveryDietHasTightPlan(t *testing.T) {
	seen := map[string]bool{}
	for key := range mealPlans {
		seen[key.diet] = true
	}
	for diet := range seen {
		if _, ok := mealPlans[planKey{diet: diet, tight: true}]; !ok {
			t.Errorf("diet %q has no tight plan", diet)
		}
	}
}
