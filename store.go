package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// The diary's persistence keeps the original spreadsheet contract: each
// collection is a whole sheet, and every write re-reads the sheet fresh,
// mutates it in memory, and overwrites the entire thing. On top of that
// contract each sheet carries a version stamp bumped inside the replacing
// transaction, so a writer holding a stale read fails with
// ErrVersionConflict instead of silently clobbering a concurrent change.

// ErrVersionConflict is returned when a write was based on a sheet version
// that another writer already replaced.
var ErrVersionConflict = errors.New("sheet was modified by another writer")

type sheet string

const (
	sheetProfiles sheet = "profiles"
	sheetLogs     sheet = "food_log"
	sheetWeights  sheet = "weight_history"
)

// readCacheTTL bounds how stale a cached sheet read may be. Writes
// invalidate immediately; the TTL only limits cross-session staleness.
const readCacheTTL = 5 * time.Second

type cachedSheet struct {
	rows    any
	version int64
	expires time.Time
}

// SheetStore is the Postgres-backed sheet store. One instance is shared by
// all handlers; the cache is guarded by mu.
type SheetStore struct {
	db  *pgxpool.Pool
	ttl time.Duration
	now func() time.Time // swappable for cache-expiry tests

	mu    sync.Mutex
	cache map[sheet]cachedSheet
}

func NewSheetStore(db *pgxpool.Pool) *SheetStore {
	return &SheetStore{
		db:    db,
		ttl:   readCacheTTL,
		now:   time.Now,
		cache: make(map[sheet]cachedSheet),
	}
}

/* ─── Cache plumbing ─────────────────────────────────────────────────── */

func (s *SheetStore) cached(sh sheet) (cachedSheet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cache[sh]
	if !ok || s.now().After(c.expires) {
		return cachedSheet{}, false
	}
	return c, true
}

func (s *SheetStore) fill(sh sheet, rows any, version int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[sh] = cachedSheet{rows: rows, version: version, expires: s.now().Add(s.ttl)}
}

func (s *SheetStore) invalidate(sheets ...sheet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sh := range sheets {
		delete(s.cache, sh)
	}
}

/* ─── Generic read / replace ─────────────────────────────────────────── */

// readSheet loads a full sheet and its version. Cached reads may be up to
// readCacheTTL old; fresh reads always hit the database — every
// read-modify-write cycle must start from a fresh read.
func readSheet[T any](ctx context.Context, s *SheetStore, sh sheet, query string, fresh bool) ([]T, int64, error) {
	if !fresh {
		if c, ok := s.cached(sh); ok {
			if rows, ok := c.rows.([]T); ok {
				// Copy so callers can append/delete without poisoning the cache.
				return append([]T(nil), rows...), c.version, nil
			}
		}
	}

	var version int64
	err := s.db.QueryRow(ctx,
		"SELECT version FROM sheet_versions WHERE sheet = $1", string(sh)).Scan(&version)
	if err != nil {
		return nil, 0, fmt.Errorf("read %s version: %w", sh, err)
	}

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("read %s: %w", sh, err)
	}
	result, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, 0, fmt.Errorf("scan %s: %w", sh, err)
	}

	s.fill(sh, append([]T(nil), result...), version)
	return result, version, nil
}

// replaceSheet overwrites a whole sheet inside one transaction: lock the
// version row, verify the writer's read is still current, delete everything,
// re-insert, bump the version. The table name comes from the sheet constant,
// never from input.
func replaceSheet(ctx context.Context, s *SheetStore, sh sheet, expect int64, insert func(pgx.Tx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace %s: %w", sh, err)
	}
	defer tx.Rollback(ctx)

	var current int64
	err = tx.QueryRow(ctx,
		"SELECT version FROM sheet_versions WHERE sheet = $1 FOR UPDATE", string(sh)).Scan(&current)
	if err != nil {
		return fmt.Errorf("lock %s version: %w", sh, err)
	}
	if current != expect {
		return ErrVersionConflict
	}

	if _, err := tx.Exec(ctx, "DELETE FROM "+string(sh)); err != nil {
		return fmt.Errorf("clear %s: %w", sh, err)
	}
	if err := insert(tx); err != nil {
		return fmt.Errorf("rewrite %s: %w", sh, err)
	}
	if _, err := tx.Exec(ctx,
		"UPDATE sheet_versions SET version = version + 1 WHERE sheet = $1", string(sh)); err != nil {
		return fmt.Errorf("bump %s version: %w", sh, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit replace %s: %w", sh, err)
	}

	s.invalidate(sh)
	return nil
}

/* ─── Profiles sheet ─────────────────────────────────────────────────── */

const selectProfiles = `SELECT name, height_cm, weight_kg, age, gender, diet_type,
	body_fat_pct, activity, target_weight_kg, target_days, manual_bmr
	FROM profiles ORDER BY pos`

func (s *SheetStore) ReadProfiles(ctx context.Context) ([]profileRecord, int64, error) {
	return readSheet[profileRecord](ctx, s, sheetProfiles, selectProfiles, false)
}

func (s *SheetStore) ReadProfilesFresh(ctx context.Context) ([]profileRecord, int64, error) {
	return readSheet[profileRecord](ctx, s, sheetProfiles, selectProfiles, true)
}

// ReadProfilesOrEmpty degrades a failed read to an empty sheet so the
// calculation layer keeps working when the store is down; the failure is
// logged, not propagated.
func (s *SheetStore) ReadProfilesOrEmpty(ctx context.Context) []profileRecord {
	rows, _, err := s.ReadProfiles(ctx)
	if err != nil {
		log.Printf("[store] profiles read failed, using empty sheet: %v", err)
		return []profileRecord{}
	}
	return rows
}

func (s *SheetStore) WriteProfiles(ctx context.Context, rows []profileRecord, expect int64) error {
	return replaceSheet(ctx, s, sheetProfiles, expect, func(tx pgx.Tx) error {
		return insertProfiles(ctx, tx, rows)
	})
}

func insertProfiles(ctx context.Context, tx pgx.Tx, rows []profileRecord) error {
	for i, r := range rows {
		_, err := tx.Exec(ctx,
			`INSERT INTO profiles (pos, name, height_cm, weight_kg, age, gender, diet_type,
				body_fat_pct, activity, target_weight_kg, target_days, manual_bmr)
			 VALUES (@pos, @name, @heightCM, @weightKG, @age, @gender, @dietType,
				@bodyFatPct, @activity, @targetWeightKG, @targetDays, @manualBMR)`,
			pgx.NamedArgs{
				"pos": i, "name": r.Name, "heightCM": r.HeightCM, "weightKG": r.WeightKG,
				"age": r.Age, "gender": r.Gender, "dietType": r.DietType,
				"bodyFatPct": r.BodyFatPct, "activity": r.Activity,
				"targetWeightKG": r.TargetWeightKG, "targetDays": r.TargetDays,
				"manualBMR": r.ManualBMR,
			})
		if err != nil {
			return err
		}
	}
	return nil
}

/* ─── Food-log sheet ─────────────────────────────────────────────────── */

const selectLogs = `SELECT name, date, meal, food, calories, protein_g
	FROM food_log ORDER BY pos`

func (s *SheetStore) ReadLogs(ctx context.Context) ([]foodLogEntry, int64, error) {
	rows, version, err := readSheet[foodLogRow](ctx, s, sheetLogs, selectLogs, false)
	return logRowsToEntries(rows), version, err
}

func (s *SheetStore) ReadLogsFresh(ctx context.Context) ([]foodLogEntry, int64, error) {
	rows, version, err := readSheet[foodLogRow](ctx, s, sheetLogs, selectLogs, true)
	return logRowsToEntries(rows), version, err
}

func (s *SheetStore) ReadLogsOrEmpty(ctx context.Context) []foodLogEntry {
	rows, _, err := s.ReadLogs(ctx)
	if err != nil {
		log.Printf("[store] food log read failed, using empty sheet: %v", err)
		return []foodLogEntry{}
	}
	return rows
}

func (s *SheetStore) WriteLogs(ctx context.Context, entries []foodLogEntry, expect int64) error {
	return replaceSheet(ctx, s, sheetLogs, expect, func(tx pgx.Tx) error {
		for i, e := range entries {
			_, err := tx.Exec(ctx,
				`INSERT INTO food_log (pos, name, date, meal, food, calories, protein_g)
				 VALUES (@pos, @name, @date, @meal, @food, @calories, @proteinG)`,
				pgx.NamedArgs{
					"pos": i, "name": e.Name, "date": e.Date, "meal": e.Meal,
					"food": e.Food, "calories": e.Calories, "proteinG": e.ProteinG,
				})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// logRowsToEntries converts DB rows to entries, supplying the legacy default
// slot for rows written before the meal column existed. A malformed row
// never discards the sheet.
func logRowsToEntries(rows []foodLogRow) []foodLogEntry {
	entries := make([]foodLogEntry, 0, len(rows))
	for _, r := range rows {
		meal := legacyMealSlot
		if r.Meal != nil && *r.Meal != "" {
			meal = *r.Meal
		}
		entries = append(entries, foodLogEntry{
			Name: r.Name, Date: r.Date, Meal: meal,
			Food: r.Food, Calories: r.Calories, ProteinG: r.ProteinG,
		})
	}
	return entries
}

/* ─── Weight-history sheet ───────────────────────────────────────────── */

const selectWeights = `SELECT name, date, weight_kg, body_fat_pct
	FROM weight_history ORDER BY pos`

func (s *SheetStore) ReadWeightHistory(ctx context.Context) ([]weightEntry, int64, error) {
	return readSheet[weightEntry](ctx, s, sheetWeights, selectWeights, false)
}

func (s *SheetStore) ReadWeightHistoryOrEmpty(ctx context.Context) []weightEntry {
	rows, _, err := s.ReadWeightHistory(ctx)
	if err != nil {
		log.Printf("[store] weight history read failed, using empty sheet: %v", err)
		return []weightEntry{}
	}
	return rows
}

func (s *SheetStore) WriteWeightHistory(ctx context.Context, entries []weightEntry, expect int64) error {
	return replaceSheet(ctx, s, sheetWeights, expect, func(tx pgx.Tx) error {
		for i, e := range entries {
			if err := insertWeightEntry(ctx, tx, i, e); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertWeightEntry(ctx context.Context, tx pgx.Tx, pos int, e weightEntry) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO weight_history (pos, name, date, weight_kg, body_fat_pct)
		 VALUES (@pos, @name, @date, @weightKG, @bodyFatPct)`,
		pgx.NamedArgs{
			"pos": pos, "name": e.Name, "date": e.Date,
			"weightKG": e.WeightKG, "bodyFatPct": e.BodyFatPct,
		})
	return err
}

/* ─── Check-in transaction ───────────────────────────────────────────── */

// RecordCheckIn appends a weight-history row and mirrors the new weight and
// body fat onto the owner's profile in a single transaction — the two sheets
// can never disagree about the current weight. A first check-in with no
// saved profile creates one from the defaults. Returns the profile as
// written.
//
// Both version rows are locked in a fixed order (profiles, then weights) so
// two concurrent check-ins serialize instead of deadlocking.
func (s *SheetStore) RecordCheckIn(ctx context.Context, entry weightEntry) (profileRecord, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return profileRecord{}, fmt.Errorf("begin check-in: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, sh := range []sheet{sheetProfiles, sheetWeights} {
		if _, err := tx.Exec(ctx,
			"SELECT version FROM sheet_versions WHERE sheet = $1 FOR UPDATE", string(sh)); err != nil {
			return profileRecord{}, fmt.Errorf("lock %s version: %w", sh, err)
		}
	}

	rows, err := tx.Query(ctx, selectProfiles)
	if err != nil {
		return profileRecord{}, fmt.Errorf("read profiles: %w", err)
	}
	profiles, err := pgx.CollectRows(rows, pgx.RowToStructByName[profileRecord])
	if err != nil {
		return profileRecord{}, fmt.Errorf("scan profiles: %w", err)
	}

	// Mirror the check-in onto the profile; create a default profile on the
	// owner's first ever check-in.
	updated := -1
	for i := range profiles {
		if profiles[i].Name == entry.Name {
			profiles[i].WeightKG = entry.WeightKG
			profiles[i].BodyFatPct = entry.BodyFatPct
			updated = i
			break
		}
	}
	if updated == -1 {
		p := defaultProfile(entry.Name)
		p.WeightKG = entry.WeightKG
		p.BodyFatPct = entry.BodyFatPct
		profiles = append(profiles, p)
		updated = len(profiles) - 1
	}

	if _, err := tx.Exec(ctx, "DELETE FROM "+string(sheetProfiles)); err != nil {
		return profileRecord{}, fmt.Errorf("clear profiles: %w", err)
	}
	if err := insertProfiles(ctx, tx, profiles); err != nil {
		return profileRecord{}, fmt.Errorf("rewrite profiles: %w", err)
	}

	var nextPos int
	err = tx.QueryRow(ctx, "SELECT COALESCE(MAX(pos) + 1, 0) FROM weight_history").Scan(&nextPos)
	if err != nil {
		return profileRecord{}, fmt.Errorf("next weight pos: %w", err)
	}
	if err := insertWeightEntry(ctx, tx, nextPos, entry); err != nil {
		return profileRecord{}, fmt.Errorf("append weight entry: %w", err)
	}

	for _, sh := range []sheet{sheetProfiles, sheetWeights} {
		if _, err := tx.Exec(ctx,
			"UPDATE sheet_versions SET version = version + 1 WHERE sheet = $1", string(sh)); err != nil {
			return profileRecord{}, fmt.Errorf("bump %s version: %w", sh, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return profileRecord{}, fmt.Errorf("commit check-in: %w", err)
	}

	s.invalidate(sheetProfiles, sheetWeights)
	return profiles[updated], nil
}
