// Package load persists transformed tables into a local SQLite database.
// Each load replaces the entire previous contents of a named table, and one
// metadata row per run is written to the etl_runs table.
package load

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/valsync/valsync/entity"
	"github.com/valsync/valsync/pkg/notify"
)

const (
	runStatusSuccess = "success"
	runStatusFailed  = "failed"
)

const createRunsTableStmt = `
CREATE TABLE IF NOT EXISTS etl_runs (
	run_id TEXT PRIMARY KEY,
	started_at TEXT,
	completed_at TEXT,
	status TEXT,
	tables_loaded INTEGER,
	total_rows INTEGER,
	duration_seconds REAL
)`

type Config struct {

	// Path to the SQLite database file. The parent directory is created if
	// missing.
	DBPath string
}

type Loader struct {
	db       *sqlx.DB
	notifier *notify.Notifier
}

func NewLoader(cfg Config, notifier *notify.Notifier) (*Loader, error) {

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	db, err := sqlx.Connect("sqlite3", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(createRunsTableStmt); err != nil {
		db.Close()
		return nil, fmt.Errorf("create etl_runs table: %w", err)
	}

	return &Loader{db: db, notifier: notifier}, nil
}

// LoadAll writes all non-empty tables to the database, each table replaced
// wholesale, with _run_id and _loaded_at stamped onto every row. Empty tables
// are skipped with a warning. Exactly one etl_runs row is written per run ID;
// on a load error a failure-tagged row is written before the error is
// returned.
func (l *Loader) LoadAll(ctx context.Context, tables map[string]*entity.Table, runID string) error {

	n := l.notifier.WithRun(runID)
	startedAt := time.Now().UTC()

	var (
		loadErr      error
		tablesLoaded int
		totalRows    int
	)

	for _, name := range sortedNames(tables) {
		table := tables[name]
		if table.NumRows() == 0 {
			n.Notify(entity.NotifyLevelWarn, "Skipping empty table: %s", name)
			continue
		}
		if err := l.replaceTable(ctx, table, runID, startedAt); err != nil {
			loadErr = fmt.Errorf("load table %s: %w", name, err)
			break
		}
		tablesLoaded++
		totalRows += table.NumRows()
		n.Notify(entity.NotifyLevelInfo, "Loaded %s: %d rows", name, table.NumRows())
	}

	duration := time.Now().UTC().Sub(startedAt)
	status := runStatusSuccess
	if loadErr != nil {
		status = fmt.Sprintf("%s: %s", runStatusFailed, loadErr.Error())
		tablesLoaded, totalRows = 0, 0
		n.Notify(entity.NotifyLevelError, "Load failed: %v", loadErr)
	} else {
		n.Notify(entity.NotifyLevelInfo, "Total: %d rows across %d tables in %.2fs", totalRows, tablesLoaded, duration.Seconds())
	}

	if err := l.recordRun(ctx, runID, startedAt, status, tablesLoaded, totalRows, duration); err != nil {
		if loadErr == nil {
			loadErr = err
		}
	}

	return loadErr
}

// replaceTable drops and recreates the table and inserts all rows, within one
// transaction so downstream consumers never see partial contents.
func (l *Loader) replaceTable(ctx context.Context, table *entity.Table, runID string, loadedAt time.Time) error {

	tx, err := l.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table.Name); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, createTableStmt(table)); err != nil {
		return err
	}

	insert := insertStmt(table)
	ts := loadedAt.Format(time.RFC3339)
	for _, row := range table.Rows {
		args := make([]any, 0, len(row)+2)
		args = append(args, row...)
		args = append(args, runID, ts)
		if _, err := tx.ExecContext(ctx, insert, args...); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (l *Loader) recordRun(ctx context.Context, runID string, startedAt time.Time, status string, tablesLoaded, totalRows int, duration time.Duration) error {

	_, err := l.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO etl_runs VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID,
		startedAt.Format(time.RFC3339),
		time.Now().UTC().Format(time.RFC3339),
		status,
		tablesLoaded,
		totalRows,
		duration.Seconds(),
	)
	if err != nil {
		return fmt.Errorf("record run %s: %w", runID, err)
	}
	return nil
}

func (l *Loader) Close() error {
	return l.db.Close()
}

func createTableStmt(table *entity.Table) string {

	cols := make([]string, 0, table.NumColumns()+2)
	for _, c := range table.Columns {
		cols = append(cols, c.Name+" "+sqlType(c.Kind))
	}
	cols = append(cols, "_run_id TEXT", "_loaded_at TEXT")
	return fmt.Sprintf("CREATE TABLE %s (%s)", table.Name, strings.Join(cols, ", "))
}

func insertStmt(table *entity.Table) string {

	names := append(table.ColumnNames(), "_run_id", "_loaded_at")
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table.Name, strings.Join(names, ", "), placeholders)
}

func sqlType(kind entity.ColumnKind) string {
	switch kind {
	case entity.ColumnInt, entity.ColumnBool:
		return "INTEGER"
	case entity.ColumnReal:
		return "REAL"
	default:
		return "TEXT"
	}
}

// Load order is made deterministic for reproducible logs and predictable
// failure points.
func sortedNames(tables map[string]*entity.Table) []string {
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
