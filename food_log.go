package main

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// foodCatalog is the fixed quick-add list shown in the entry form, taken from
// the diary's staple foods. Free-text foods are equally valid; the catalog
// only saves typing.
var foodCatalog = []catalogFood{
	{Food: "Unsweetened soy milk", Calories: 135, ProteinG: 7},
	{Food: "Sweet potato (medium)", Calories: 315, ProteinG: 4},
	{Food: "Veggie bento", Calories: 700, ProteinG: 18},
	{Food: "Avocado whole-wheat toast", Calories: 400, ProteinG: 15},
	{Food: "Chickpea quinoa salad", Calories: 350, ProteinG: 18},
	{Food: "Miso tofu soup", Calories: 200, ProteinG: 12},
	{Food: "Brown rice bowl", Calories: 260, ProteinG: 5},
	{Food: "Seared tofu (100g)", Calories: 120, ProteinG: 13},
	{Food: "Mixed nuts (30g)", Calories: 180, ProteinG: 6},
}

// todayUTC is the reference "today" for date defaults. Day matching is done
// on YYYY-MM-DD strings; the server's UTC day is the one explicit timezone
// policy (the original compared local-clock strings, undefined near midnight).
func todayUTC() string {
	return time.Now().UTC().Format("2006-01-02")
}

// getDaily returns everything the dashboard needs for one day: the owner's
// entries with their delete indexes, totals, per-meal breakdown, the computed
// budget, remaining calories, ring progress, and a menu recommendation.
// GET /api/diary/daily?date=YYYY-MM-DD (defaults to today, server UTC).
func (h *Handler) getDaily(c *gin.Context) {
	owner := c.GetString("username")
	date := c.DefaultQuery("date", todayUTC())

	// Validate date format up front — an invalid value would just match nothing.
	if _, err := time.Parse("2006-01-02", date); err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	// Store failures degrade to empty sheets; the dashboard still renders.
	logs := h.store.ReadLogsOrEmpty(c)
	profile, _ := findProfile(h.store.ReadProfilesOrEmpty(c), owner)
	budget := budgetFor(&profile)

	ownerLogs, dayEntries := ownerDayEntries(logs, owner, date)

	summary := summarizeDay(ownerLogs, date)
	remaining := remainingCalories(budget.TargetCalories, summary.TotalCalories)
	rec := selectMealPlan(profile.DietType, remaining, budget.TargetCalories)
	if rec.UsedDietFallback {
		log.Printf("[menu] unknown diet %q for %q, fell back to %s", profile.DietType, owner, fallbackDiet)
	}
	if rec.UsedTightFallback {
		log.Printf("[menu] no ample-budget menu for %q, fell back to tight plan", rec.DietUsed)
	}

	if summary.Meals == nil {
		summary.Meals = []mealTotal{}
	}
	c.JSON(http.StatusOK, dailyResponse{
		Date:           date,
		Budget:         budget,
		TotalCalories:  summary.TotalCalories,
		TotalProteinG:  summary.TotalProteinG,
		Meals:          summary.Meals,
		Remaining:      remaining,
		Progress:       progressRatio(summary.TotalCalories, budget.TargetCalories),
		Recommendation: rec,
		Entries:        dayEntries,
	})
}

// createEntry appends a food-log row for the owner.
// POST /api/diary/entries. Defaults date to today. The row is written by
// re-reading the whole sheet fresh, appending in memory, and overwriting it;
// a concurrent writer surfaces as 409 rather than a silent lost update.
func (h *Handler) createEntry(c *gin.Context) {
	owner := c.GetString("username")

	var body createEntryRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Food == "" {
		apiError(c, http.StatusBadRequest, "food is required")
		return
	}
	if !validMealSlots[body.Meal] {
		apiError(c, http.StatusBadRequest, "meal must be one of: breakfast, lunch, dinner, snack")
		return
	}
	if body.Calories < 0 || body.ProteinG < 0 {
		apiError(c, http.StatusBadRequest, "calories and protein_g must not be negative")
		return
	}
	if body.Date == "" {
		body.Date = todayUTC()
	}
	if _, err := time.Parse("2006-01-02", body.Date); err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	entries, version, err := h.store.ReadLogsFresh(c)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to read food log")
		return
	}

	entry := foodLogEntry{
		Name: owner, Date: body.Date, Meal: body.Meal,
		Food: body.Food, Calories: body.Calories, ProteinG: body.ProteinG,
	}
	entries = append(entries, entry)

	if err := h.store.WriteLogs(c, entries, version); err != nil {
		if errors.Is(err, ErrVersionConflict) {
			apiError(c, http.StatusConflict, "food log was changed by another session, please retry")
			return
		}
		apiError(c, http.StatusInternalServerError, "failed to save entry")
		return
	}

	c.JSON(http.StatusCreated, indexedEntry{
		Index:        countOwned(entries, owner) - 1,
		foodLogEntry: entry,
	})
}

// deleteEntry removes the owner's index-th food-log row (the index reported
// by getDaily). DELETE /api/diary/entries/:index. Returns 204 on success.
func (h *Handler) deleteEntry(c *gin.Context) {
	owner := c.GetString("username")

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		apiError(c, http.StatusBadRequest, "index must be a non-negative integer")
		return
	}

	entries, version, err := h.store.ReadLogsFresh(c)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to read food log")
		return
	}

	pos := ownerIndexToPos(entries, owner, index)
	if pos == -1 {
		apiError(c, http.StatusNotFound, "entry not found")
		return
	}

	entries = append(entries[:pos], entries[pos+1:]...)

	if err := h.store.WriteLogs(c, entries, version); err != nil {
		if errors.Is(err, ErrVersionConflict) {
			apiError(c, http.StatusConflict, "food log was changed by another session, please retry")
			return
		}
		apiError(c, http.StatusInternalServerError, "failed to delete entry")
		return
	}

	c.Status(http.StatusNoContent)
}

// getCatalog returns the fixed quick-add food catalog.
// GET /api/diary/catalog.
func (h *Handler) getCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, foodCatalog)
}

// countOwned counts the owner's rows in the full sheet.
func countOwned(entries []foodLogEntry, owner string) int {
	n := 0
	for _, e := range entries {
		if e.Name == owner {
			n++
		}
	}
	return n
}

// ownerDayEntries walks the full sheet once: it collects the owner's rows for
// the aggregator and remembers each day-matching row's position in the owner's
// list. That position is the index DELETE expects — it counts only the owner's
// rows, so other owners' rows never shift it.
func ownerDayEntries(logs []foodLogEntry, owner, date string) ([]foodLogEntry, []indexedEntry) {
	ownerLogs := make([]foodLogEntry, 0, len(logs))
	dayEntries := []indexedEntry{}
	for _, e := range logs {
		if e.Name != owner {
			continue
		}
		if e.Date == date {
			dayEntries = append(dayEntries, indexedEntry{Index: len(ownerLogs), foodLogEntry: e})
		}
		ownerLogs = append(ownerLogs, e)
	}
	return ownerLogs, dayEntries
}

// ownerIndexToPos maps an owner-relative index (the Index reported alongside
// daily entries) back to a position in the full sheet, skipping rows that
// belong to other owners. Returns -1 when the index is negative or past the
// owner's last row.
func ownerIndexToPos(entries []foodLogEntry, owner string, index int) int {
	if index < 0 {
		return -1
	}
	seen := 0
	for i, e := range entries {
		if e.Name != owner {
			continue
		}
		if seen == index {
			return i
		}
		seen++
	}
	return -1
}
