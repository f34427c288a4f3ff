package main

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    started_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS results (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL,
    image TEXT NOT NULL,
    width INTEGER NOT NULL,
    height INTEGER NOT NULL,
    strategy TEXT NOT NULL,
    codec TEXT NOT NULL,
    jpeg_quality INTEGER NOT NULL,
    ok INTEGER NOT NULL,
    reliable INTEGER NOT NULL,
    corrected_bits INTEGER NOT NULL,
    corrected_symbols INTEGER NOT NULL,
    accuracy REAL NOT NULL,
    duration_ms INTEGER NOT NULL,
    error TEXT,
    FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);
`

type store struct {
	db    *sql.DB
	runID int64
}

// openStore opens or creates the SQLite database at path and starts a new run.
func openStore(path string) (*store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	for _, stmt := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON", schema} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to prepare database: %w", err)
		}
	}
	res, err := db.Exec("INSERT INTO runs (started_at) VALUES (?)", time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		db.Close()
		return nil, err
	}
	return &store{db: db, runID: id}, nil
}

func (s *store) Close() error {
	return s.db.Close()
}

func (s *store) insert(r result) error {
	var errText sql.NullString
	if r.err != nil {
		errText = sql.NullString{String: r.err.Error(), Valid: true}
	}
	_, err := s.db.Exec(`INSERT INTO results
        (run_id, image, width, height, strategy, codec, jpeg_quality, ok, reliable,
         corrected_bits, corrected_symbols, accuracy, duration_ms, error)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.runID, r.image, r.width, r.height, r.strategy, r.codec, r.jpegQuality, r.ok, r.reliable,
		r.correctedBits, r.correctedSymbols, r.accuracy, r.duration.Milliseconds(), errText,
	)
	if err != nil {
		return fmt.Errorf("failed to insert result: %w", err)
	}
	return nil
}
