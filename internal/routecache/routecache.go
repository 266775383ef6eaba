// Package routecache stores previously computed site-to-facility route
// figures in a local SQLite side table.
//
// The engine never computes routes; it only reads this cache as an
// immutable snapshot. Figures are loaded in bulk from pre-computed tuples
// (the "distances import" flow); stale figures stay valid until the next
// import replaces them.
package routecache

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/reclaimops/wasteplan/internal/facility"
)

// Entry is one cached route figure for a stream/facility pair.
type Entry struct {
	Stream      string    `json:"stream"`
	FacilityID  string    `json:"facility_id"`
	DistanceKm  float64   `json:"distance_km"`
	DurationMin float64   `json:"duration_min"`
	ComputedAt  time.Time `json:"computed_at"`
}

// Validate checks that the entry can be cached.
func (e *Entry) Validate() error {
	if e.Stream == "" {
		return fmt.Errorf("route entry has no stream")
	}
	if e.FacilityID == "" {
		return fmt.Errorf("route entry has no facility ID")
	}
	if e.DistanceKm < 0 || math.IsNaN(e.DistanceKm) || math.IsInf(e.DistanceKm, 0) {
		return fmt.Errorf("route entry %s/%s has invalid distance %v", e.Stream, e.FacilityID, e.DistanceKm)
	}
	if e.DurationMin < 0 || math.IsNaN(e.DurationMin) || math.IsInf(e.DurationMin, 0) {
		return fmt.Errorf("route entry %s/%s has invalid duration %v", e.Stream, e.FacilityID, e.DurationMin)
	}
	return nil
}

// Store is the SQLite-backed route distance cache.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the cache database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure route cache dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open route cache: %w", err)
	}
	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func ensureSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS route_distances (
			stream TEXT NOT NULL,
			facility_id TEXT NOT NULL,
			distance_km REAL NOT NULL,
			duration_min REAL NOT NULL,
			computed_at DATETIME NOT NULL,
			PRIMARY KEY (stream, facility_id)
		)
	`)
	if err != nil {
		return fmt.Errorf("create route cache schema: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put upserts entries, last writer winning per stream/facility pair. The
// whole batch is one transaction so a failed import never leaves the cache
// half-updated.
func (s *Store) Put(ctx context.Context, entries []Entry) error {
	for i := range entries {
		if err := entries[i].Validate(); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin route cache import: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO route_distances (stream, facility_id, distance_km, duration_min, computed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(stream, facility_id) DO UPDATE SET
			distance_km = excluded.distance_km,
			duration_min = excluded.duration_min,
			computed_at = excluded.computed_at
	`)
	if err != nil {
		return fmt.Errorf("prepare route cache upsert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for i := range entries {
		e := &entries[i]
		computedAt := e.ComputedAt
		if computedAt.IsZero() {
			computedAt = time.Now().UTC()
		}
		if _, err := stmt.ExecContext(ctx, e.Stream, e.FacilityID, e.DistanceKm, e.DurationMin, computedAt); err != nil {
			return fmt.Errorf("upsert route entry %s/%s: %w", e.Stream, e.FacilityID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit route cache import: %w", err)
	}
	return nil
}

// Snapshot reads the whole cache into an immutable distance snapshot.
func (s *Store) Snapshot(ctx context.Context) (facility.DistanceSnapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT stream, facility_id, distance_km, duration_min, computed_at
		FROM route_distances
	`)
	if err != nil {
		return nil, fmt.Errorf("read route cache: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	snapshot := make(facility.DistanceSnapshot)
	for rows.Next() {
		var (
			stream, facilityID string
			km, durationMin    float64
			computedAt         time.Time
		)
		if err := rows.Scan(&stream, &facilityID, &km, &durationMin, &computedAt); err != nil {
			return nil, fmt.Errorf("scan route entry: %w", err)
		}
		snapshot[facility.DistanceKey{Stream: stream, FacilityID: facilityID}] = facility.Distance{
			Km:          km,
			DurationMin: durationMin,
			ComputedAt:  computedAt,
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate route cache: %w", err)
	}
	return snapshot, nil
}
