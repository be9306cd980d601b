package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/akivaschiff/israel-geolocation/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	// locations keeps its own sequence column so the published order
	// (population descending, stable) survives the round trip.
	schema := `
CREATE TABLE IF NOT EXISTS locations (
  seq INTEGER PRIMARY KEY AUTOINCREMENT,
  id INTEGER NOT NULL UNIQUE,
  name TEXT NOT NULL,
  nameEn TEXT,
  lat REAL NOT NULL,
  lon REAL NOT NULL,
  population INTEGER,
  district TEXT,
  type TEXT,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_locations_name ON locations(name);

CREATE TABLE IF NOT EXISTS unmatched (
  registryCode INTEGER PRIMARY KEY,
  hebrewName TEXT NOT NULL,
  englishName TEXT,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  kind TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  timingsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// ReplaceLocations swaps the stored resolved set for the given one,
// inserting in slice order so ListLocations replays it exactly.
func (d *DB) ReplaceLocations(locations []internal.ResolvedLocation) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM locations`); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
INSERT INTO locations (id, name, nameEn, lat, lon, population, district, type)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, l := range locations {
		if _, err := stmt.Exec(l.ID, l.Name, l.NameEn, l.Lat, l.Lon, l.Population, l.District, l.Type); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) ListLocations() ([]internal.ResolvedLocation, error) {
	rows, err := d.conn.Query(`
SELECT id, name, nameEn, lat, lon, population, district, type
FROM locations ORDER BY seq ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.ResolvedLocation
	for rows.Next() {
		var l internal.ResolvedLocation
		if err := rows.Scan(&l.ID, &l.Name, &l.NameEn, &l.Lat, &l.Lon, &l.Population, &l.District, &l.Type); err != nil {
			return nil, err
		}
		out = append(out, l)
	}

	return out, rows.Err()
}

// ReplaceUnmatched swaps the resume queue for the given one.
func (d *DB) ReplaceUnmatched(records []internal.UnmatchedRecord) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM unmatched`); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO unmatched (registryCode, hebrewName, englishName) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.Exec(r.RegistryCode, r.HebrewName, r.EnglishName); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) ListUnmatched() ([]internal.UnmatchedRecord, error) {
	rows, err := d.conn.Query(`SELECT registryCode, hebrewName, englishName FROM unmatched ORDER BY registryCode ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.UnmatchedRecord
	for rows.Next() {
		var r internal.UnmatchedRecord
		if err := rows.Scan(&r.RegistryCode, &r.HebrewName, &r.EnglishName); err != nil {
			return nil, err
		}
		out = append(out, r)
	}

	return out, rows.Err()
}

// DeleteUnmatched removes records that a geocoding pass resolved.
func (d *DB) DeleteUnmatched(registryCodes []int) error {
	if len(registryCodes) == 0 {
		return nil
	}

	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`DELETE FROM unmatched WHERE registryCode = ?`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, code := range registryCodes {
		if _, err := stmt.Exec(code); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) InsertRun(traceID, kind string, counts map[string]int, timings map[string]float64) error {
	countsJSON, _ := json.Marshal(counts)
	timingsJSON, _ := json.Marshal(timings)
	_, err := d.conn.Exec(`INSERT INTO runs (traceId, kind, countsJson, timingsJson) VALUES (?, ?, ?, ?)`,
		traceID, kind, string(countsJSON), string(timingsJSON))
	return err
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
