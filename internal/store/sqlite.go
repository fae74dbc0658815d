package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const defaultHistoryLimit = 50

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB

	insertRunStmt *sql.Stmt
	getRunStmt    *sql.Stmt
}

// NewSQLiteStore opens or creates a SQLite store at the given path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("store: empty sqlite path")
	}
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("store: create sqlite dir: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ping sqlite: %w", err)
	}

	if err := initSQLiteSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	st := &SQLiteStore{db: db}
	if err := st.prepareStatements(); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

func initSQLiteSchema(db *sql.DB) error {
	stmts := []string{
		`PRAGMA journal_mode = WAL`,
		`CREATE TABLE IF NOT EXISTS solve_runs (
			id TEXT PRIMARY KEY,
			problem_name TEXT NOT NULL,
			provider TEXT NOT NULL,
			started_at INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			total_cases INTEGER NOT NULL,
			passed_cases INTEGER NOT NULL,
			solved INTEGER NOT NULL,
			report TEXT NOT NULL,
			artifact_path TEXT NOT NULL,
			case_results BLOB NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_solve_runs_problem ON solve_runs(problem_name)`,
		`CREATE INDEX IF NOT EXISTS idx_solve_runs_started_at ON solve_runs(started_at)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("store: init schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) prepareStatements() error {
	if s == nil || s.db == nil {
		return errors.New("store: nil sqlite store")
	}

	ctx := context.Background()

	insert, err := s.db.PrepareContext(ctx, `
		INSERT INTO solve_runs (
			id, problem_name, provider, started_at, finished_at, total_cases,
			passed_cases, solved, report, artifact_path, case_results
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("store: prepare insert run: %w", err)
	}
	s.insertRunStmt = insert

	get, err := s.db.PrepareContext(ctx, `
		SELECT id, problem_name, provider, started_at, finished_at, total_cases,
			passed_cases, solved, report, artifact_path, case_results
		FROM solve_runs WHERE id = ?
	`)
	if err != nil {
		return fmt.Errorf("store: prepare get run: %w", err)
	}
	s.getRunStmt = get

	return nil
}

// Close releases database resources.
func (s *SQLiteStore) Close() error {
	if s == nil {
		return nil
	}
	for _, stmt := range []*sql.Stmt{s.insertRunStmt, s.getRunStmt} {
		if stmt != nil {
			_ = stmt.Close()
		}
	}
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveRun persists a solve run.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *SolveRecord) error {
	if s == nil {
		return errors.New("store: nil sqlite store")
	}
	if ctx == nil {
		return errors.New("store: nil context")
	}
	if run == nil {
		return errors.New("store: nil run")
	}

	id := strings.TrimSpace(run.ID)
	if id == "" {
		return errors.New("store: empty run id")
	}
	if strings.TrimSpace(run.ProblemName) == "" {
		return errors.New("store: empty problem name")
	}
	if run.StartedAt.IsZero() || run.FinishedAt.IsZero() {
		return errors.New("store: missing run timestamps")
	}

	caseJSON, err := json.Marshal(run.CaseResults)
	if err != nil {
		return fmt.Errorf("store: marshal case results: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin run tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt := tx.StmtContext(ctx, s.insertRunStmt)
	defer stmt.Close()

	solved := 0
	if run.Solved {
		solved = 1
	}

	_, err = stmt.ExecContext(
		ctx,
		id,
		run.ProblemName,
		run.Provider,
		run.StartedAt.UTC().UnixMilli(),
		run.FinishedAt.UTC().UnixMilli(),
		run.TotalCases,
		run.PassedCases,
		solved,
		run.Report,
		run.ArtifactPath,
		caseJSON,
	)
	if err != nil {
		return fmt.Errorf("store: insert run: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit run: %w", err)
	}
	return nil
}

// GetRun loads a run by id.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*SolveRecord, error) {
	if s == nil {
		return nil, errors.New("store: nil sqlite store")
	}
	if ctx == nil {
		return nil, errors.New("store: nil context")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("store: empty run id")
	}

	row := s.getRunStmt.QueryRowContext(ctx, id)
	rec, err := scanRunRow(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("store: get run: %w", err)
	}
	return rec, nil
}

// ListRuns returns runs matching the filter, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]*SolveRecord, error) {
	if s == nil {
		return nil, errors.New("store: nil sqlite store")
	}
	if ctx == nil {
		return nil, errors.New("store: nil context")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	var sb strings.Builder
	sb.WriteString(`SELECT id, problem_name, provider, started_at, finished_at, total_cases,
		passed_cases, solved, report, artifact_path, case_results
		FROM solve_runs WHERE 1=1`)

	var args []any
	if name := strings.TrimSpace(filter.ProblemName); name != "" {
		sb.WriteString(` AND problem_name = ?`)
		args = append(args, name)
	}
	if !filter.Since.IsZero() {
		sb.WriteString(` AND started_at >= ?`)
		args = append(args, filter.Since.UTC().UnixMilli())
	}
	if !filter.Until.IsZero() {
		sb.WriteString(` AND started_at <= ?`)
		args = append(args, filter.Until.UTC().UnixMilli())
	}
	sb.WriteString(` ORDER BY started_at DESC LIMIT ?`)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer rows.Close()

	var out []*SolveRecord
	for rows.Next() {
		rec, err := scanRunRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("store: scan run: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	return out, nil
}

func scanRunRow(scan func(...any) error) (*SolveRecord, error) {
	var (
		id           string
		problemName  string
		provider     string
		startedAtMS  int64
		finishedAtMS int64
		totalCases   int
		passedCases  int
		solved       int
		report       string
		artifactPath string
		caseJSON     []byte
	)
	if err := scan(&id, &problemName, &provider, &startedAtMS, &finishedAtMS,
		&totalCases, &passedCases, &solved, &report, &artifactPath, &caseJSON); err != nil {
		return nil, err
	}

	var cases []CaseRecord
	if len(caseJSON) > 0 {
		if err := json.Unmarshal(caseJSON, &cases); err != nil {
			return nil, fmt.Errorf("decode case results: %w", err)
		}
	}

	return &SolveRecord{
		ID:           id,
		ProblemName:  problemName,
		Provider:     provider,
		StartedAt:    time.UnixMilli(startedAtMS).UTC(),
		FinishedAt:   time.UnixMilli(finishedAtMS).UTC(),
		TotalCases:   totalCases,
		PassedCases:  passedCases,
		Solved:       solved != 0,
		Report:       report,
		ArtifactPath: artifactPath,
		CaseResults:  cases,
	}, nil
}
