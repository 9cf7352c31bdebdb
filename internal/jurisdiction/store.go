package jurisdiction

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Store persists the historical case corpus and the calibrated
// jurisdiction modifiers in SQLite. Modifiers are written as a
// complete set inside one transaction so readers never observe a
// partial calibration.
type Store struct {
	db *sqlx.DB
}

const storeSchema = `
CREATE TABLE IF NOT EXISTS cases (
	case_id          TEXT PRIMARY KEY,
	source           TEXT NOT NULL DEFAULT '',
	jurisdiction     TEXT NOT NULL DEFAULT '',
	settlement_value TEXT NOT NULL DEFAULT '',
	incident_date    TEXT NOT NULL DEFAULT '',
	metadata         TEXT NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_cases_jurisdiction ON cases (jurisdiction);

CREATE TABLE IF NOT EXISTS jurisdiction_modifiers (
	jurisdiction         TEXT PRIMARY KEY,
	shrunk_estimate      REAL NOT NULL,
	shrinkage_confidence REAL NOT NULL,
	modifier             REAL NOT NULL,
	calibrated_at        TEXT NOT NULL
);
`

func OpenStore(dbPath string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(storeSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) InsertCase(rec CaseRecord) error {
	metaJSON, err := json.Marshal(rec.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata for %s: %w", rec.CaseID, err)
	}
	_, err = s.db.Exec(`INSERT OR REPLACE INTO cases (case_id, source, jurisdiction, settlement_value, incident_date, metadata)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.CaseID, rec.Source, rec.Jurisdiction, rec.SettlementValue, rec.IncidentDate, string(metaJSON))
	return err
}

func (s *Store) ListJurisdictions() ([]string, error) {
	var out []string
	err := s.db.Select(&out, `SELECT DISTINCT jurisdiction FROM cases WHERE jurisdiction != '' ORDER BY jurisdiction`)
	return out, err
}

func (s *Store) CasesByJurisdiction(jurisdiction string) ([]CaseRecord, error) {
	rows, err := s.db.Query(`SELECT case_id, source, jurisdiction, settlement_value, incident_date, metadata
		FROM cases WHERE jurisdiction = ?`, jurisdiction)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CaseRecord
	for rows.Next() {
		var rec CaseRecord
		var metaJSON string
		if err := rows.Scan(&rec.CaseID, &rec.Source, &rec.Jurisdiction, &rec.SettlementValue, &rec.IncidentDate, &metaJSON); err != nil {
			return nil, err
		}
		if metaJSON != "" {
			_ = json.Unmarshal([]byte(metaJSON), &rec.Metadata)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// SaveResults replaces the persisted calibration wholesale.
func (s *Store) SaveResults(results []ShrinkageResult) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM jurisdiction_modifiers`); err != nil {
		tx.Rollback()
		return err
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, r := range results {
		if _, err := tx.Exec(`INSERT INTO jurisdiction_modifiers (jurisdiction, shrunk_estimate, shrinkage_confidence, modifier, calibrated_at)
			VALUES (?, ?, ?, ?, ?)`,
			r.Jurisdiction, r.ShrunkEstimate, r.ShrinkageConfidence, r.Modifier, now); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) LoadResults() ([]ShrinkageResult, error) {
	var out []ShrinkageResult
	err := s.db.Select(&out, `SELECT jurisdiction, shrunk_estimate, shrinkage_confidence, modifier
		FROM jurisdiction_modifiers ORDER BY jurisdiction`)
	return out, err
}
