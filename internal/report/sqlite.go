// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		portal TEXT,
		filter_mode TEXT,
		filter_types TEXT,
		criteria TEXT,
		match_mode TEXT,
		fuzzy_threshold REAL,
		fetched INTEGER,
		queries INTEGER,
		duplicates_removed INTEGER,
		created_at TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS matches (
		run_id INTEGER NOT NULL REFERENCES runs(id),
		position INTEGER NOT NULL,
		id TEXT NOT NULL,
		owner TEXT,
		title TEXT,
		type TEXT,
		description TEXT,
		tags TEXT,
		categories TEXT,
		snippet TEXT,
		num_views INTEGER,
		PRIMARY KEY (run_id, position)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_matches_id ON matches(id)`,
	`CREATE TABLE IF NOT EXISTS warnings (
		run_id INTEGER NOT NULL REFERENCES runs(id),
		user TEXT NOT NULL,
		type TEXT NOT NULL
	)`,
}

// ExportSQLite appends r as a new run to the SQLite database at path,
// creating the file and schema if needed. It returns the run's row ID.
func ExportSQLite(ctx context.Context, path string, r Report) (int64, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return 0, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return 0, fmt.Errorf("executing schema statement: %w", err)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	runID, err := insertRun(ctx, tx, r)
	if err != nil {
		return 0, err
	}

	for i, it := range r.Matches {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO matches (run_id, position, id, owner, title, type, description, tags, categories, snippet, num_views)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, i, it.ID, it.Owner, it.Title, it.Type, it.Description,
			mustJSON(it.Tags), mustJSON(it.Categories), it.Snippet, it.NumViews,
		); err != nil {
			return 0, fmt.Errorf("inserting match %s: %w", it.ID, err)
		}
	}

	for _, w := range r.Warnings {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO warnings (run_id, user, type) VALUES (?, ?, ?)`,
			runID, w.User, w.Type,
		); err != nil {
			return 0, fmt.Errorf("inserting warning: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

func insertRun(ctx context.Context, tx *sql.Tx, r Report) (int64, error) {
	ts := r.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (portal, filter_mode, filter_types, criteria, match_mode, fuzzy_threshold, fetched, queries, duplicates_removed, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Portal, r.FilterMode, mustJSON(r.FilterTypes), mustJSON(r.Criteria), r.MatchMode,
		r.FuzzyThreshold, r.Fetched, r.Stats.Queries(), r.Stats.DuplicatesRemoved,
		ts.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}
	return id, nil
}

// mustJSON encodes string slices and maps, which cannot fail to marshal.
func mustJSON(v any) string {
	data, _ := json.Marshal(v)
	return string(data)
}
