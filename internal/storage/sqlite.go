package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a SQLite database holding feedback records.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database in dataDir and runs pending migrations.
// Pass ":memory:" as dataDir for an in-memory database (used by tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "revu.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	// Set busy timeout so concurrent access waits briefly instead of failing immediately.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate reads embedded SQL migration files and applies any that haven't been run yet.
func (s *Store) migrate() error {
	// Ensure schema_version table exists (bootstrap).
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort by filename to guarantee ascending order.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		// Check if already applied.
		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}

		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}

	return nil
}

func parseMigrationVersion(filename string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, fmt.Errorf("parsing migration version from %q: %w", filename, err)
	}
	return version, nil
}

// AppliedMigrations returns the list of applied migration versions in ascending order.
func (s *Store) AppliedMigrations() ([]int, error) {
	rows, err := s.db.Query("SELECT version FROM schema_version ORDER BY version ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

const feedbackColumns = "id, user_name, email, category, rating, message, sentiment, summary, ai_response, recommendations, created_at"

// InsertFeedback writes a new feedback record and returns its assigned id.
// CreatedAt is set by the store at insertion time (UTC); any value on f is
// ignored. Sentiment defaults to neutral when empty.
func (s *Store) InsertFeedback(f Feedback) (int64, error) {
	sentiment := f.Sentiment
	if sentiment == "" {
		sentiment = SentimentNeutral
	}
	createdAt := time.Now().UTC()

	res, err := s.db.Exec(`
		INSERT INTO feedback (user_name, email, category, rating, message, sentiment, summary, ai_response, recommendations, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.UserName, f.Email, f.Category, f.Rating, f.Message,
		sentiment, f.Summary, f.AIResponse, f.Recommendations,
		createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting feedback: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading inserted feedback id: %w", err)
	}
	return id, nil
}

// GetFeedback returns the feedback record with the given id, or ErrNotFound.
func (s *Store) GetFeedback(id int64) (Feedback, error) {
	row := s.db.QueryRow(`SELECT `+feedbackColumns+` FROM feedback WHERE id = ?`, id)
	f, err := scanFeedback(row)
	if err == sql.ErrNoRows {
		return Feedback{}, ErrNotFound
	}
	if err != nil {
		return Feedback{}, err
	}
	return f, nil
}

// ListFeedback returns all feedback records, newest first. An empty store
// yields an empty slice, not an error.
func (s *Store) ListFeedback() ([]Feedback, error) {
	return s.queryFeedback(`SELECT ` + feedbackColumns + ` FROM feedback ORDER BY created_at DESC, id DESC`)
}

// ListFeedbackByCategory returns feedback records with the given category, newest first.
func (s *Store) ListFeedbackByCategory(category string) ([]Feedback, error) {
	return s.queryFeedback(`SELECT `+feedbackColumns+` FROM feedback WHERE category = ? ORDER BY created_at DESC, id DESC`, category)
}

// ListFeedbackBySentiment returns feedback records with the given sentiment, newest first.
func (s *Store) ListFeedbackBySentiment(sentiment string) ([]Feedback, error) {
	return s.queryFeedback(`SELECT `+feedbackColumns+` FROM feedback WHERE sentiment = ? ORDER BY created_at DESC, id DESC`, sentiment)
}

// ListFeedbackByRatingRange returns feedback records with min <= rating <= max, newest first.
func (s *Store) ListFeedbackByRatingRange(min, max int) ([]Feedback, error) {
	return s.queryFeedback(`SELECT `+feedbackColumns+` FROM feedback WHERE rating >= ? AND rating <= ? ORDER BY created_at DESC, id DESC`, min, max)
}

func (s *Store) queryFeedback(query string, args ...any) ([]Feedback, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []Feedback{}
	for rows.Next() {
		f, err := scanFeedback(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, f)
	}
	return results, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanFeedback(row rowScanner) (Feedback, error) {
	var f Feedback
	var email, recommendations sql.NullString
	var createdAt string
	err := row.Scan(&f.ID, &f.UserName, &email, &f.Category, &f.Rating, &f.Message,
		&f.Sentiment, &f.Summary, &f.AIResponse, &recommendations, &createdAt)
	if err != nil {
		return Feedback{}, err
	}
	f.Email = email.String
	f.Recommendations = recommendations.String
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return Feedback{}, fmt.Errorf("parsing created_at: %w", err)
	}
	f.CreatedAt = t
	return f, nil
}
