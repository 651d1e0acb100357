package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// getWeightSeries returns the owner's check-ins sorted date-ascending, ready
// for the trend chart. GET /api/diary/weight.
// Returns an empty array (not null) when no check-ins exist.
func (h *Handler) getWeightSeries(c *gin.Context) {
	owner := c.GetString("username")

	history := h.store.ReadWeightHistoryOrEmpty(c)
	owned := make([]weightEntry, 0, len(history))
	for _, e := range history {
		if e.Name == owner {
			owned = append(owned, e)
		}
	}

	c.JSON(http.StatusOK, weightSeries(owned))
}

// recordCheckIn appends a weight check-in and mirrors the new weight and body
// fat onto the owner's profile in one transaction.
// POST /api/diary/weight. Body: { "date"?, "weight_kg", "body_fat_pct" }.
// Same-day check-ins are all kept — the history is append-only.
func (h *Handler) recordCheckIn(c *gin.Context) {
	owner := c.GetString("username")

	var body checkInRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Date == "" {
		body.Date = todayUTC()
	}
	if _, err := time.Parse("2006-01-02", body.Date); err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	// Same bounds as the profile fields the check-in will overwrite.
	if body.WeightKG < 30 || body.WeightKG > 200 {
		apiError(c, http.StatusBadRequest, "weight_kg must be 30-200")
		return
	}
	if body.BodyFatPct != 0 && (body.BodyFatPct < 5 || body.BodyFatPct > 60) {
		apiError(c, http.StatusBadRequest, "body_fat_pct must be 5-60 (or 0 when unknown)")
		return
	}

	entry := weightEntry{
		Name: owner, Date: body.Date,
		WeightKG: body.WeightKG, BodyFatPct: body.BodyFatPct,
	}
	profile, err := h.store.RecordCheckIn(c, entry)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to record check-in")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"entry":   entry,
		"profile": profile,
		"budget":  budgetFor(&profile),
	})
}
