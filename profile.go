package main

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// validDietTypes gates profile saves. Legacy rows may still hold other
// values; the menu selector resolves those with a tagged fallback instead of
// failing.
var validDietTypes = map[string]bool{
	"vegan":       true,
	"lacto_ovo":   true,
	"convenience": true,
}

// getProfile returns the owner's profile and its computed daily budget.
// GET /api/diary/profile. A first-time user gets the defaults with
// first_time=true; nothing is persisted until they save.
func (h *Handler) getProfile(c *gin.Context) {
	owner := c.GetString("username")

	profile, firstTime := findProfile(h.store.ReadProfilesOrEmpty(c), owner)
	budget := budgetFor(&profile)

	c.JSON(http.StatusOK, profileResponse{
		Profile:   profile,
		Budget:    budget,
		FirstTime: firstTime,
	})
}

// saveProfile overwrites the owner's profile wholesale.
// PUT /api/diary/profile. There is no per-field patch: the body must carry
// the full record, which replaces (or creates) the owner's row.
func (h *Handler) saveProfile(c *gin.Context) {
	owner := c.GetString("username")

	var body saveProfileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	record := profileRecord{
		Name:           owner,
		HeightCM:       body.HeightCM,
		WeightKG:       body.WeightKG,
		Age:            body.Age,
		Gender:         body.Gender,
		DietType:       body.DietType,
		BodyFatPct:     body.BodyFatPct,
		Activity:       body.Activity,
		TargetWeightKG: body.TargetWeightKG,
		TargetDays:     body.TargetDays,
		ManualBMR:      body.ManualBMR,
	}

	if err := validateProfile(&record); err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}
	// Saves only accept known enum values — the tagged fallbacks exist for
	// legacy rows, not as a write-path loophole.
	if !validDietTypes[record.DietType] {
		apiError(c, http.StatusBadRequest, "diet_type must be one of: vegan, lacto_ovo, convenience")
		return
	}
	if _, ok := activityMultipliers[record.Activity]; !ok {
		apiError(c, http.StatusBadRequest, "activity must be one of: sedentary, light, moderate, heavy, athlete")
		return
	}
	if record.TargetDays < 7 || record.TargetDays > 365 {
		apiError(c, http.StatusBadRequest, "target_days must be 7-365")
		return
	}

	// Whole-sheet read-modify-write: fresh read, replace the owner's row in
	// memory, overwrite the sheet.
	profiles, version, err := h.store.ReadProfilesFresh(c)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to read profiles")
		return
	}
	replaced := false
	for i := range profiles {
		if profiles[i].Name == owner {
			profiles[i] = record
			replaced = true
			break
		}
	}
	if !replaced {
		profiles = append(profiles, record)
	}

	if err := h.store.WriteProfiles(c, profiles, version); err != nil {
		if errors.Is(err, ErrVersionConflict) {
			apiError(c, http.StatusConflict, "profile was changed by another session, please retry")
			return
		}
		apiError(c, http.StatusInternalServerError, "failed to save profile")
		return
	}

	c.JSON(http.StatusOK, profileResponse{
		Profile: record,
		Budget:  budgetFor(&record),
	})
}

// findProfile locates the owner's row (case-sensitive name match) or returns
// the defaults with firstTime=true.
func findProfile(profiles []profileRecord, owner string) (profileRecord, bool) {
	for _, p := range profiles {
		if p.Name == owner {
			return p, false
		}
	}
	return defaultProfile(owner), true
}

// budgetFor computes the owner's budget, logging any fallback substitutions.
// A stored profile that no longer validates (hand-edited sheet rows) logs and
// yields a zero budget rather than failing the whole request.
func budgetFor(p *profileRecord) dailyBudget {
	budget, err := computeDailyBudget(p)
	if err != nil {
		log.Printf("[budget] profile %q failed validation, using zero budget: %v", p.Name, err)
		return dailyBudget{}
	}
	if budget.UsedActivityFallback {
		log.Printf("[budget] profile %q has unknown activity %q, fell back to sedentary", p.Name, p.Activity)
	}
	return budget
}
