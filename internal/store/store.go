// Package store provides SQLite persistence for analysis results.
package store

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/abelbrown/flashpoint/internal/pipeline"
)

// Store handles SQLite persistence. NOT an interface - concrete type.
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Store struct {
	db *sql.DB
	mu sync.RWMutex // Protects all database operations
}

// PageRow is a persisted per-page result summary.
type PageRow struct {
	Page          string
	TotalEdits    int
	Reverts       int
	Wars          int
	Violations    int
	UniqueEditors int
	BotEditors    int
	Score         float64
	RevertRate    float64
	AnalyzedAt    time.Time
}

// WarRow is a persisted edit war.
type WarRow struct {
	Page        string
	Start       time.Time
	End         time.Time
	Reverts     int
	Editors     []string
	AvgInterval float64 // minutes
}

// ViolationRow is a persisted three-revert-rule violation.
type ViolationRow struct {
	Page        string
	Editor      string
	WindowStart time.Time
	WindowEnd   time.Time
	Reverts     int
}

// Open creates a new Store with the given database path.
// Creates tables if they don't exist.
// Uses WAL mode for better concurrent read performance (file-based DBs only).
func Open(dbPath string) (*Store, error) {
	// Build connection string based on database type
	connStr := dbPath
	if dbPath == ":memory:" {
		// For in-memory databases, use shared cache mode so all connections
		// in the pool see the same database
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// For in-memory databases, limit to 1 connection to avoid issues
	// with multiple connections getting different databases
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Enable WAL mode for file-based databases (not :memory:)
	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db}

	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return s, nil
}

// createTables creates the required tables and indexes if they don't exist.
func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pages (
		title TEXT PRIMARY KEY,
		total_edits INTEGER NOT NULL,
		reverts INTEGER NOT NULL,
		wars INTEGER NOT NULL,
		violations INTEGER NOT NULL,
		unique_editors INTEGER NOT NULL,
		bot_editors INTEGER DEFAULT 0,
		score REAL NOT NULL,
		revert_rate REAL NOT NULL,
		analyzed_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_pages_score ON pages(score DESC);

	CREATE TABLE IF NOT EXISTS wars (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		page TEXT NOT NULL,
		start_at DATETIME NOT NULL,
		end_at DATETIME NOT NULL,
		reverts INTEGER NOT NULL,
		editors TEXT NOT NULL,
		avg_interval_min REAL NOT NULL,
		FOREIGN KEY (page) REFERENCES pages(title)
	);

	CREATE INDEX IF NOT EXISTS idx_wars_page ON wars(page);

	CREATE TABLE IF NOT EXISTS violations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		page TEXT NOT NULL,
		editor TEXT NOT NULL,
		window_start DATETIME NOT NULL,
		window_end DATETIME NOT NULL,
		reverts INTEGER NOT NULL,
		FOREIGN KEY (page) REFERENCES pages(title)
	);

	CREATE INDEX IF NOT EXISTS idx_violations_page ON violations(page);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
// Thread-safe: acquires write lock to prevent closing during in-flight operations.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// SaveReport persists all page results of a run, replacing any prior
// analysis of the same pages. Wars and violations are rewritten
// wholesale per page so re-analysis never leaves stale rows behind.
func (s *Store) SaveReport(report *pipeline.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	pageStmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO pages (
			title, total_edits, reverts, wars, violations,
			unique_editors, bot_editors, score, revert_rate, analyzed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer pageStmt.Close()

	warStmt, err := tx.Prepare(`
		INSERT INTO wars (page, start_at, end_at, reverts, editors, avg_interval_min)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer warStmt.Close()

	vioStmt, err := tx.Prepare(`
		INSERT INTO violations (page, editor, window_start, window_end, reverts)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer vioStmt.Close()

	for _, res := range report.Results {
		if _, err := tx.Exec("DELETE FROM wars WHERE page = ?", res.Page); err != nil {
			return err
		}
		if _, err := tx.Exec("DELETE FROM violations WHERE page = ?", res.Page); err != nil {
			return err
		}

		_, err := pageStmt.Exec(
			res.Page,
			res.TotalEdits,
			len(res.Reverts),
			len(res.Wars),
			len(res.Violations),
			res.UniqueEditors,
			res.BotEditors,
			res.Score.Value,
			res.RevertRate(),
			res.AnalyzedAt,
		)
		if err != nil {
			return fmt.Errorf("save page %q: %w", res.Page, err)
		}

		for _, w := range res.Wars {
			stats := w.Stats()
			_, err := warStmt.Exec(
				res.Page, w.Start, w.End, len(w.Reverts),
				strings.Join(w.Editors, ","), stats.AvgMinutes,
			)
			if err != nil {
				return fmt.Errorf("save war for %q: %w", res.Page, err)
			}
		}

		for _, v := range res.Violations {
			_, err := vioStmt.Exec(res.Page, v.Editor, v.WindowStart, v.WindowEnd, v.Reverts)
			if err != nil {
				return fmt.Errorf("save violation for %q: %w", res.Page, err)
			}
		}
	}

	return tx.Commit()
}

// TopPages returns up to limit pages ranked by controversy score
// descending, ties by revert count then title.
func (s *Store) TopPages(limit int) ([]PageRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT title, total_edits, reverts, wars, violations,
		       unique_editors, bot_editors, score, revert_rate, analyzed_at
		FROM pages
		ORDER BY score DESC, reverts DESC, title ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []PageRow
	for rows.Next() {
		var p PageRow
		if err := rows.Scan(
			&p.Page, &p.TotalEdits, &p.Reverts, &p.Wars, &p.Violations,
			&p.UniqueEditors, &p.BotEditors, &p.Score, &p.RevertRate, &p.AnalyzedAt,
		); err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// PageWars returns the persisted edit wars for a page in time order.
func (s *Store) PageWars(page string) ([]WarRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT page, start_at, end_at, reverts, editors, avg_interval_min
		FROM wars WHERE page = ? ORDER BY start_at ASC
	`, page)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var wars []WarRow
	for rows.Next() {
		var w WarRow
		var editors string
		if err := rows.Scan(&w.Page, &w.Start, &w.End, &w.Reverts, &editors, &w.AvgInterval); err != nil {
			return nil, err
		}
		if editors != "" {
			w.Editors = strings.Split(editors, ",")
		}
		wars = append(wars, w)
	}
	return wars, rows.Err()
}

// PageViolations returns the persisted violations for a page.
func (s *Store) PageViolations(page string) ([]ViolationRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT page, editor, window_start, window_end, reverts
		FROM violations WHERE page = ? ORDER BY window_end ASC, editor ASC
	`, page)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var violations []ViolationRow
	for rows.Next() {
		var v ViolationRow
		if err := rows.Scan(&v.Page, &v.Editor, &v.WindowStart, &v.WindowEnd, &v.Reverts); err != nil {
			return nil, err
		}
		violations = append(violations, v)
	}
	return violations, rows.Err()
}

// Totals is the aggregate row for the stats command.
type Totals struct {
	Pages      int
	Reverts    int
	Wars       int
	Violations int
}

// Totals returns corpus-wide counts over all persisted pages.
func (s *Store) Totals() (Totals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var t Totals
	err := s.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(reverts), 0), COALESCE(SUM(wars), 0), COALESCE(SUM(violations), 0)
		FROM pages
	`).Scan(&t.Pages, &t.Reverts, &t.Wars, &t.Violations)
	return t, err
}
