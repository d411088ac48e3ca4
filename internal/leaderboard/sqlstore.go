package leaderboard

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"scalpr/internal/game"
	"scalpr/internal/ids"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationFS embed.FS

// Dialect selects the SQL flavor the store speaks.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// SQLStore is a Store backed by SQLite or Postgres. The two dialects share
// one query set; placeholders are rewritten per dialect.
type SQLStore struct {
	dialect Dialect
	db      *sql.DB
	log     *slog.Logger
}

// OpenFromEnv builds a store from LEADERBOARD_DIALECT and its companion
// variables. An empty dialect means no database; the caller should fall back
// to a MemoryStore.
func OpenFromEnv(logger *slog.Logger) (*SQLStore, error) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv("LEADERBOARD_DIALECT")))
	if raw == "" {
		return nil, nil
	}
	dialect := Dialect(raw)

	var driverName, dsn string
	switch dialect {
	case DialectSQLite:
		driverName = "sqlite"
		path := strings.TrimSpace(os.Getenv("LEADERBOARD_SQLITE_PATH"))
		if path == "" {
			path = filepath.Join("tmp", "scalpr.sqlite")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
		dsn = path
	case DialectPostgres:
		driverName = "pgx"
		dsn = strings.TrimSpace(os.Getenv("LEADERBOARD_POSTGRES_DSN"))
		if dsn == "" {
			dsn = strings.TrimSpace(os.Getenv("DATABASE_URL"))
		}
		if dsn == "" {
			return nil, errors.New("LEADERBOARD_DIALECT=postgres requires LEADERBOARD_POSTGRES_DSN or DATABASE_URL")
		}
	default:
		return nil, fmt.Errorf("unsupported LEADERBOARD_DIALECT %q", raw)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", dialect, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s database: %w", dialect, err)
	}

	store, err := NewSQLStore(ctx, db, dialect, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLStore wraps an open connection and applies pending migrations.
func NewSQLStore(ctx context.Context, db *sql.DB, dialect Dialect, logger *slog.Logger) (*SQLStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &SQLStore{dialect: dialect, db: db, log: logger}
	if err := s.applyMigrations(ctx); err != nil {
		return nil, err
	}
	s.log.Info("leaderboard store ready", "dialect", string(dialect))
	return s, nil
}

func (s *SQLStore) Close() error { return s.db.Close() }

func (s *SQLStore) Submit(ctx context.Context, score game.Score) (Entry, error) {
	e := Entry{
		ID:        ids.New(),
		Initials:  score.Initials,
		Money:     score.Money,
		Days:      score.Days,
		Bought:    score.Bought,
		Sold:      score.Sold,
		CreatedAt: time.Now().UTC(),
	}
	q := s.insertQuery("scores", []string{"id", "initials", "money", "days", "bought", "sold", "created_at"})
	if _, err := s.db.ExecContext(ctx, q, e.ID, e.Initials, e.Money, e.Days, e.Bought, e.Sold, e.CreatedAt); err != nil {
		return Entry{}, fmt.Errorf("insert score: %w", err)
	}
	return e, nil
}

// Top returns the richest entries. The query only narrows the candidate
// set; final ordering is always re-established client-side.
func (s *SQLStore) Top(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultTopLimit
	}
	q := fmt.Sprintf(`
		SELECT id, initials, money, days, bought, sold, created_at
		FROM scores
		ORDER BY money DESC
		LIMIT %s
	`, s.bind(1))
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("query top scores: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Initials, &e.Money, &e.Days, &e.Bought, &e.Sold, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scores: %w", err)
	}
	sortDescending(out)
	return out, nil
}

func (s *SQLStore) bind(pos int) string {
	if s.dialect == DialectPostgres {
		return fmt.Sprintf("$%d", pos)
	}
	return "?"
}

func (s *SQLStore) insertQuery(table string, cols []string) string {
	ph := make([]string, len(cols))
	for i := range cols {
		ph[i] = s.bind(i + 1)
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(cols, ", "),
		strings.Join(ph, ", "),
	)
}

func (s *SQLStore) applyMigrations(ctx context.Context) error {
	create := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL
		)
	`
	if _, err := s.db.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	applied := map[string]bool{}
	rows, err := s.db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return fmt.Errorf("read schema_migrations: %w", err)
	}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return fmt.Errorf("scan schema migration: %w", err)
		}
		applied[v] = true
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("iterate schema migrations: %w", err)
	}
	rows.Close()

	pattern := fmt.Sprintf("migrations/%s/*.sql", s.dialect)
	files, err := fs.Glob(migrationFS, pattern)
	if err != nil {
		return fmt.Errorf("glob migrations: %w", err)
	}
	sort.Strings(files)
	for _, file := range files {
		base := filepath.Base(file)
		if applied[base] {
			continue
		}
		sqlBytes, err := migrationFS.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration tx %s: %w", file, err)
		}
		if _, err := tx.ExecContext(ctx, string(sqlBytes)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %s: %w", file, err)
		}
		q := s.insertQuery("schema_migrations", []string{"version", "applied_at"})
		if _, err := tx.ExecContext(ctx, q, base, time.Now().UTC()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", file, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", file, err)
		}
	}
	return nil
}
