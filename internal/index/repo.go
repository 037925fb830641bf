package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/srtbspeeds/internal/apperr"
	"github.com/starford/srtbspeeds/internal/difficulty"
	"github.com/starford/srtbspeeds/internal/models"
)

// ChartRow represents a row in the charts table.
type ChartRow struct {
	Path      string
	Checksum  string
	UpdatedAt time.Time
}

// UpsertChart inserts or replaces a chart and its speed entries within a transaction.
func (db *DB) UpsertChart(c ChartRow, speeds []models.ChartSpeeds) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = time.Now()
	}
	_, err = tx.Exec(`
		INSERT INTO charts (path, checksum, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			checksum   = excluded.checksum,
			updated_at = excluded.updated_at
	`, c.Path, c.Checksum, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert chart: %w", err)
	}

	// Replace speeds: delete old then bulk insert.
	if _, err := tx.Exec(`DELETE FROM chart_speeds WHERE path = ?`, c.Path); err != nil {
		return fmt.Errorf("index: clear speeds: %w", err)
	}
	if len(speeds) > 0 {
		stmt, err := tx.Prepare(`
			INSERT OR REPLACE INTO chart_speeds (path, key, position, trigger_count, first_time, last_time)
			VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare speeds insert: %w", err)
		}
		defer stmt.Close()
		for i, s := range speeds {
			if _, err := stmt.Exec(c.Path, s.Key, i, s.TriggerCount, s.FirstTime, s.LastTime); err != nil {
				return fmt.Errorf("index: insert speeds: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteChart removes a chart and its speed entries.
func (db *DB) DeleteChart(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, _ = tx.Exec(`DELETE FROM chart_speeds WHERE path = ?`, path)
	_, _ = tx.Exec(`DELETE FROM charts WHERE path = ?`, path)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a chart, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM charts WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// AllChecksums returns the stored checksum of every catalogued chart.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM charts`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// GetChart returns one catalogued chart, or apperr.ErrNotFound.
func (db *DB) GetChart(path string) (*models.Chart, error) {
	c := models.Chart{Path: path}
	err := db.conn.QueryRow(`SELECT checksum, updated_at FROM charts WHERE path = ?`, path).
		Scan(&c.Checksum, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("index: get chart: %w", err)
	}
	speeds, err := db.speeds(`WHERE path = ?`, path)
	if err != nil {
		return nil, err
	}
	c.Speeds = nonNilSpeeds(speeds[path])
	return &c, nil
}

// ListCharts returns every catalogued chart ordered by path.
func (db *DB) ListCharts() ([]models.Chart, error) {
	rows, err := db.conn.Query(`SELECT path, checksum, updated_at FROM charts ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("index: list charts: %w", err)
	}
	defer rows.Close()

	var out []models.Chart
	for rows.Next() {
		var c models.Chart
		if err := rows.Scan(&c.Path, &c.Checksum, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	speeds, err := db.speeds("")
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Speeds = nonNilSpeeds(speeds[out[i].Path])
	}
	return out, nil
}

// speeds loads speed entries grouped by chart path.
func (db *DB) speeds(where string, args ...any) (map[string][]models.ChartSpeeds, error) {
	rows, err := db.conn.Query(`
		SELECT path, key, trigger_count, first_time, last_time
		FROM chart_speeds `+where+`
		ORDER BY path, position`, args...)
	if err != nil {
		return nil, fmt.Errorf("index: load speeds: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]models.ChartSpeeds)
	for rows.Next() {
		var p string
		var s models.ChartSpeeds
		if err := rows.Scan(&p, &s.Key, &s.TriggerCount, &s.FirstTime, &s.LastTime); err != nil {
			return nil, err
		}
		if d, ok := difficulty.FromKey(s.Key); ok {
			s.Difficulty = d.String()
		}
		out[p] = append(out[p], s)
	}
	return out, rows.Err()
}

func nonNilSpeeds(s []models.ChartSpeeds) []models.ChartSpeeds {
	if s == nil {
		return []models.ChartSpeeds{}
	}
	return s
}
