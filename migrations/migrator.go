package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"sort"
	"strings"
	"time"
)

//go:embed sql/*.sql
var embedded embed.FS

const migrationLockID = 604712389

var ErrLocked = errors.New("another migration process is running")

// Files returns the migrations compiled into the binary.
func Files() fs.FS {
	sub, err := fs.Sub(embedded, "sql")
	if err != nil {
		panic(err)
	}
	return sub
}

// Source returns dir as a filesystem when it holds at least one .sql file,
// and the embedded migrations otherwise.
func Source(dir string) fs.FS {
	if strings.TrimSpace(dir) == "" {
		return Files()
	}
	fsys := os.DirFS(dir)
	if files, err := Pending(fsys); err == nil && len(files) > 0 {
		return fsys
	}
	return Files()
}

// Pending lists .sql files in fsys in apply order.
func Pending(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(e.Name()), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// Run applies every migration in fsys that is not yet recorded in
// schema_migrations. Each file runs in its own transaction under a
// session-level advisory lock.
func Run(ctx context.Context, db *sql.DB, fsys fs.FS, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		id VARCHAR(100) PRIMARY KEY,
		file_name TEXT NOT NULL,
		executed_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		duration_ms INTEGER NOT NULL
	)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	// Advisory locks belong to a session, so pin one connection for the
	// lock and the unlock.
	conn, err := db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	var gotLock bool
	if err := conn.QueryRowContext(ctx, `SELECT pg_try_advisory_lock($1)`, migrationLockID).Scan(&gotLock); err != nil {
		return err
	}
	if !gotLock {
		return ErrLocked
	}
	defer conn.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, migrationLockID)

	files, err := Pending(fsys)
	if err != nil {
		return err
	}

	applied := 0
	for _, file := range files {
		id := strings.TrimSuffix(file, path.Ext(file))
		var exists int
		err := conn.QueryRowContext(ctx, `SELECT 1 FROM schema_migrations WHERE id = $1`, id).Scan(&exists)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		sqlBytes, err := fs.ReadFile(fsys, file)
		if err != nil {
			return err
		}
		started := time.Now()
		tx, err := conn.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, string(sqlBytes)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %s failed: %w", file, err)
		}
		dur := time.Since(started).Milliseconds()
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (id, file_name, duration_ms) VALUES ($1,$2,$3)`, id, file, dur); err != nil {
			_ = tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		applied++
		logger.Info("migration applied", "file", file, "duration_ms", dur)
	}
	logger.Info("migrations up to date", "applied", applied, "total", len(files))
	return nil
}
